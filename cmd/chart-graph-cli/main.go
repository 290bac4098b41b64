// Command chart-graph-cli analyzes a Helm chart from a local directory or a
// GitHub repository and prints its dependency graph, statistics, reference
// listing or a reference diff against another chart.
package main

import (
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := NewRootCmd(NewRootOptions()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
