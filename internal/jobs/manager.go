// Package jobs runs periodic background work on a gocron scheduler.
package jobs

import (
	"fmt"
	"log/slog"

	"github.com/go-co-op/gocron/v2"
)

type Job interface {
	Name() string
	Schedule() gocron.JobDefinition
	Execute()
}

type Manager struct {
	log       *slog.Logger
	scheduler gocron.Scheduler
}

func NewManager(log *slog.Logger) (*Manager, error) {
	const op = "jobs.NewManager"

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Manager{log: log, scheduler: s}, nil
}

// Register adds job in singleton mode: a run that is still going when the
// next tick arrives makes the scheduler skip to the following tick.
func (m *Manager) Register(job Job) error {
	const op = "jobs.Register"

	_, err := m.scheduler.NewJob(
		job.Schedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.Name()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, job.Name(), err)
	}

	return nil
}

func (m *Manager) Start() {
	m.scheduler.Start()
	m.log.Info("scheduler started", slog.Int("jobs", len(m.scheduler.Jobs())))
}

func (m *Manager) Stop() error {
	const op = "jobs.Stop"

	if err := m.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m.log.Info("scheduler stopped")
	return nil
}
