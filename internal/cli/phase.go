package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/lib/eligibility"
)

type PhaseResult struct {
	At        time.Time    `json:"at"`
	Phase     entity.Phase `json:"phase"`
	CanSubmit bool         `json:"can_submit"`
	CanVote   bool         `json:"can_vote"`
}

type phaseFlags struct {
	subscriptionStart string
	subscriptionEnd   string
	votingStart       string
	votingEnd         string
	at                string
}

func NewPhaseCommand(rootOpts *RootOptions) *cobra.Command {
	var f phaseFlags

	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Compute the phase of a call window at a given instant",
		Long: `Compute the phase of a call from its four window timestamps.

All timestamps are RFC 3339. --at defaults to the current time.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhase(rootOpts, f, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&f.subscriptionStart, "subscription-start", "", "subscription window start")
	cmd.Flags().StringVar(&f.subscriptionEnd, "subscription-end", "", "subscription window end")
	cmd.Flags().StringVar(&f.votingStart, "voting-start", "", "voting window start")
	cmd.Flags().StringVar(&f.votingEnd, "voting-end", "", "voting window end")
	cmd.Flags().StringVar(&f.at, "at", "", "instant to evaluate (default now)")

	for _, name := range []string{"subscription-start", "subscription-end", "voting-start", "voting-end"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func parseTime(flag, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return t.UTC(), nil
}

func runPhase(opts *RootOptions, f phaseFlags, w io.Writer) error {
	var (
		call entity.Call
		err  error
	)

	if call.SubscriptionStart, err = parseTime("subscription-start", f.subscriptionStart); err != nil {
		return err
	}
	if call.SubscriptionEnd, err = parseTime("subscription-end", f.subscriptionEnd); err != nil {
		return err
	}
	if call.VotingStart, err = parseTime("voting-start", f.votingStart); err != nil {
		return err
	}
	if call.VotingEnd, err = parseTime("voting-end", f.votingEnd); err != nil {
		return err
	}

	if err := eligibility.ValidateWindow(call); err != nil {
		return fmt.Errorf("invalid window: %w", err)
	}

	at := opts.now().UTC()
	if f.at != "" {
		if at, err = parseTime("at", f.at); err != nil {
			return err
		}
	}

	res := PhaseResult{
		At:        at,
		Phase:     eligibility.PhaseAt(call, at),
		CanSubmit: eligibility.CanSubmit(call, at),
		CanVote:   eligibility.CanVote(call, at),
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	_, err = fmt.Fprintf(w, "at:          %s\nphase:       %s\ncan_submit:  %t\ncan_vote:    %t\n",
		res.At.Format(time.RFC3339), res.Phase, res.CanSubmit, res.CanVote)
	return err
}
