// Package cli implements callctl, the operator command line for calls.
package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"
)

type RootOptions struct {
	Format string // "text" | "json"

	now func() time.Time
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(time.Now)
}

func newRootCommand(now func() time.Time) *cobra.Command {
	opts := &RootOptions{now: now}

	cmd := &cobra.Command{
		Use:   "callctl",
		Short: "Inspect participatory grant calls",
		Long:  "Operator tools for grant calls: phase calculation and vote reports.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		// main prints the returned error.
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewPhaseCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}
