// Package github provides GitHub API clients for fetching chart archives.
package github

import (
	"fmt"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	gogithub "github.com/google/go-github/v68/github"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Credentials selects how the client authenticates. A token wins over app
// credentials; with neither the client is anonymous and rate limited.
type Credentials struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPEM  string
}

// NewClient creates a GitHub API client for creds. It also returns an
// *http.Client with the same authenticated transport for archive downloads.
func NewClient(creds Credentials) (*gogithub.Client, *http.Client, error) {
	base := otelhttp.NewTransport(http.DefaultTransport)

	var client *gogithub.Client
	switch {
	case creds.Token != "":
		client = gogithub.NewClient(&http.Client{Transport: base}).WithAuthToken(creds.Token)

	case creds.AppID != 0:
		// The installation transport handles JWT generation and token refresh.
		transport, err := ghinstallation.New(base, creds.AppID, creds.InstallationID, []byte(creds.PrivateKeyPEM))
		if err != nil {
			return nil, nil, fmt.Errorf("creating github installation transport: %w", err)
		}
		client = gogithub.NewClient(&http.Client{Transport: transport})

	default:
		client = gogithub.NewClient(&http.Client{Transport: base})
	}
	return client, client.Client(), nil
}

// Mode names the authentication mode creds select, for logging.
func (c Credentials) Mode() string {
	switch {
	case c.Token != "":
		return "token"
	case c.AppID != 0:
		return "app"
	default:
		return "anonymous"
	}
}
