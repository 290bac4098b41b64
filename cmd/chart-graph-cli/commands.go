package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nathantilsley/chart-graph/api"
	"github.com/nathantilsley/chart-graph/internal/graph/domain"
	"github.com/nathantilsley/chart-graph/internal/graph/layout"
)

// errChanged is returned by diff --exit-code when the listings differ.
var errChanged = errors.New("reference listings differ")

func NewAnalyzeCmd(o *RootOptions) *cobra.Command {
	var cfg layout.Config
	cmd := &cobra.Command{
		Use:   "analyze <source>",
		Short: "Print the full analysis (chart, laid-out graph, stats) as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd.Context())
			if err != nil {
				return err
			}
			files, err := s.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var override *layout.Config
			if cmd.Flags().Changed("horizontal-spacing") || cmd.Flags().Changed("vertical-spacing") {
				override = &cfg
			}
			a, err := s.service.Analyze(cmd.Context(), files, override)
			if err != nil {
				return err
			}

			bounds := layout.Bounds(a.Graph.Nodes, cfg)
			return o.writeJSON(cmd.OutOrStdout(), api.AnalyzeResponse{
				Fingerprint: a.Fingerprint,
				Chart:       a.Chart,
				Graph:       a.Graph,
				Stats:       a.Stats,
				Bounds:      bounds,
			})
		},
	}
	cmd.Flags().Float64Var(&cfg.HorizontalSpacing, "horizontal-spacing", 0, "Override the distance between columns")
	cmd.Flags().Float64Var(&cfg.VerticalSpacing, "vertical-spacing", 0, "Override the distance between rows")
	return cmd
}

func NewStatsCmd(o *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <source>",
		Short: "Print node, edge and reference counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd.Context())
			if err != nil {
				return err
			}
			files, err := s.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a, err := s.service.Analyze(cmd.Context(), files, nil)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), a)
			return nil
		},
	}
}

func printStats(w io.Writer, a domain.Analysis) {
	fmt.Fprintf(w, "chart:      %s %s\n", a.Chart.Name, a.Chart.Version)
	fmt.Fprintf(w, "files:      %d\n", len(a.Chart.Files))
	fmt.Fprintf(w, "helpers:    %d\n", len(a.Chart.Helpers))
	fmt.Fprintf(w, "references: %d\n", len(a.Chart.References))
	counts := a.Chart.ReferenceCounts()
	for _, t := range sortedKeys(counts) {
		fmt.Fprintf(w, "  %-12s %d\n", t, counts[t])
	}
	fmt.Fprintf(w, "nodes:      %d\n", a.Stats.TotalNodes)
	for _, t := range sortedKeys(a.Stats.NodesByType) {
		fmt.Fprintf(w, "  %-12s %d\n", t, a.Stats.NodesByType[t])
	}
	fmt.Fprintf(w, "edges:      %d\n", a.Stats.TotalEdges)
	for _, t := range sortedKeys(a.Stats.EdgesByType) {
		fmt.Fprintf(w, "  %-12s %d\n", t, a.Stats.EdgesByType[t])
	}
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}

func NewReferencesCmd(o *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "references <source>",
		Short: "Print every extracted reference as file:line, type, target, expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd.Context())
			if err != nil {
				return err
			}
			files, err := s.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a, err := s.service.Analyze(cmd.Context(), files, nil)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), domain.ReferenceListing(a.Chart.References))
			return err
		},
	}
}

func NewFilterCmd(o *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filter <source> <file>",
		Short: "Print the subgraph around one chart file as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd.Context())
			if err != nil {
				return err
			}
			files, err := s.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, err := s.service.Filter(cmd.Context(), files, args[1])
			if err != nil {
				return err
			}
			return o.writeJSON(cmd.OutOrStdout(), api.FilterResponse{Graph: g, Stats: domain.ComputeStats(g)})
		},
	}
}

func NewDiffCmd(o *RootOptions) *cobra.Command {
	var exitCode bool
	cmd := &cobra.Command{
		Use:   "diff <base> <head>",
		Short: "Show how the references of two chart versions differ",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.session(cmd.Context())
			if err != nil {
				return err
			}
			base, err := s.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			head, err := s.load(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			result, err := s.service.Compare(cmd.Context(), base, head)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !result.Changed {
				fmt.Fprintln(out, "no reference changes")
				return nil
			}
			fmt.Fprintln(out, result.Diff)
			if exitCode {
				return errChanged
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Fail when the references differ")
	return cmd
}
