package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmarkun/editaisparticipativos/internal/app"
	"github.com/pmarkun/editaisparticipativos/internal/config"
	"github.com/pmarkun/editaisparticipativos/internal/lib/logger"
	"github.com/pmarkun/editaisparticipativos/internal/services/report"
)

const nameWidth = 30

func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "report <slug>",
		Short: "Print vote statistics for a call",
		Long: `Print vote statistics for the call with the given slug, read from the
database named in the config file.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), rootOpts, configPath, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to config file")

	return cmd
}

func runReport(ctx context.Context, opts *RootOptions, configPath, slug string, w io.Writer) error {
	cfg, err := config.Read(configPath)
	if err != nil {
		return err
	}

	store, err := app.OpenStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	// Logs would interleave with the table on stdout.
	reports := report.New(logger.Discard(), store, store, store, opts.now)

	r, err := reports.ForCall(ctx, slug)
	if err != nil {
		return err
	}

	return writeReport(w, opts.Format, r)
}

func writeReport(w io.Writer, format string, r report.Report) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	if _, err := fmt.Fprintf(w, "call:       %s (%s)\nphase:      %s\ngenerated:  %s\n\n",
		r.CallName, r.CallSlug, r.Phase, r.GeneratedAt.Format(time.RFC3339)); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%-30s %7s %9s %8s %9s %8s\n",
		"PROJECT", "TOTAL", "LAST 1H", "LAST 24H", "AVG/HOUR", "AVG/DAY"); err != nil {
		return err
	}

	for _, p := range r.Projects {
		if err := writeRow(w, truncate(p.ProjectName), p.Stats); err != nil {
			return err
		}
	}

	return writeRow(w, "ALL PROJECTS", r.Overall)
}

func writeRow(w io.Writer, name string, s report.Stats) error {
	_, err := fmt.Fprintf(w, "%-30s %7d %9d %8d %9.2f %8.2f\n",
		name, s.Total, s.LastHour, s.Last24Hours, s.AvgPerHour, s.AvgPerDay)
	return err
}

func truncate(name string) string {
	runes := []rune(name)
	if len(runes) <= nameWidth {
		return name
	}
	return string(runes[:nameWidth-3]) + "..."
}
