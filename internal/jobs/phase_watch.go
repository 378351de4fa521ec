package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	"github.com/go-co-op/gocron/v2"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/lib/eligibility"
	"github.com/pmarkun/editaisparticipativos/internal/lib/metrics"
)

type CallLister interface {
	ListCalls(ctx context.Context) ([]entity.Call, error)
}

type Transition struct {
	CallID string
	Slug   string
	From   entity.Phase
	To     entity.Phase
}

// PhaseWatchJob recomputes the phase of every call, logs the calls that
// moved to a new phase since the previous run and publishes the per-phase
// counts.
type PhaseWatchJob struct {
	log      *slog.Logger
	calls    CallLister
	metrics  *metrics.Metrics
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]entity.Phase
}

func NewPhaseWatchJob(log *slog.Logger, calls CallLister, m *metrics.Metrics, interval time.Duration, now func() time.Time) *PhaseWatchJob {
	if now == nil {
		now = time.Now
	}
	return &PhaseWatchJob{
		log:      log,
		calls:    calls,
		metrics:  m,
		interval: interval,
		now:      now,
		last:     make(map[string]entity.Phase),
	}
}

func (j *PhaseWatchJob) Name() string {
	return "phase_watch"
}

func (j *PhaseWatchJob) Schedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

func (j *PhaseWatchJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	if _, _, err := j.Run(ctx); err != nil {
		j.log.Error("phase watch failed", slog.String("op", "jobs.PhaseWatchJob.Execute"), sl.Err(err))
	}
}

// Run performs one pass. The first pass only records phases; transitions
// are reported from the second pass on.
func (j *PhaseWatchJob) Run(ctx context.Context) (map[entity.Phase]int, []Transition, error) {
	const op = "jobs.PhaseWatchJob.Run"

	calls, err := j.calls.ListCalls(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	now := j.now()
	counts := make(map[entity.Phase]int, len(entity.Phases))
	var moved []Transition

	j.mu.Lock()
	for _, c := range calls {
		phase := eligibility.PhaseAt(c, now)
		counts[phase]++

		prev, seen := j.last[c.ID]
		if seen && prev != phase {
			moved = append(moved, Transition{CallID: c.ID, Slug: c.Slug, From: prev, To: phase})
		}
		j.last[c.ID] = phase
	}
	j.mu.Unlock()

	for _, t := range moved {
		j.log.Info("call changed phase",
			slog.String("call_id", t.CallID),
			slog.String("slug", t.Slug),
			slog.String("from", string(t.From)),
			slog.String("to", string(t.To)),
		)
	}

	j.metrics.CallsByPhase(ctx, counts)

	return counts, moved, nil
}
