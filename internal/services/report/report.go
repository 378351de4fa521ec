package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"

	"github.com/pmarkun/editaisparticipativos/internal/entity"
	"github.com/pmarkun/editaisparticipativos/internal/lib/eligibility"
	"github.com/pmarkun/editaisparticipativos/internal/storage"
)

var (
	ErrCallNotFound       = errors.New("call not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type Stats struct {
	Total       int     `json:"total"`
	LastHour    int     `json:"last_hour"`
	Last24Hours int     `json:"last_24_hours"`
	AvgPerHour  float64 `json:"avg_per_hour"`
	AvgPerDay   float64 `json:"avg_per_day"`
}

type ProjectStats struct {
	ProjectID   string `json:"project_id"`
	ProjectName string `json:"project_name"`
	Stats
}

type Report struct {
	CallID      string         `json:"call_id"`
	CallName    string         `json:"call_name"`
	CallSlug    string         `json:"call_slug"`
	Phase       entity.Phase   `json:"phase"`
	GeneratedAt time.Time      `json:"generated_at"`
	Overall     Stats          `json:"overall"`
	Projects    []ProjectStats `json:"projects"`
}

type counter struct {
	total, lastHour, last24h int
}

func (c *counter) add(votedAt, hourAgo, dayAgo time.Time) {
	c.total++
	if !votedAt.Before(hourAgo) {
		c.lastHour++
	}
	if !votedAt.Before(dayAgo) {
		c.last24h++
	}
}

func (c counter) stats(hours, days float64) Stats {
	return Stats{
		Total:       c.total,
		LastHour:    c.lastHour,
		Last24Hours: c.last24h,
		AvgPerHour:  float64(c.total) / hours,
		AvgPerDay:   float64(c.total) / days,
	}
}

// Aggregate computes vote statistics for call at now.
//
// Averages divide by the time elapsed since voting started, never less than
// one hour or one day. Every project is listed, including those without
// votes; votes for unknown projects count toward the overall figures only.
// Projects are ordered by total votes, ties keeping the given order.
func Aggregate(call entity.Call, projects []entity.Project, votes []entity.Vote, now time.Time) Report {
	hourAgo := now.Add(-time.Hour)
	dayAgo := now.Add(-24 * time.Hour)

	elapsed := now.Sub(call.VotingStart)
	hours := max(elapsed.Hours(), 1)
	days := max(elapsed.Hours()/24, 1)

	var overall counter
	perProject := make(map[string]*counter, len(projects))
	for _, p := range projects {
		perProject[p.ID] = &counter{}
	}

	for _, v := range votes {
		overall.add(v.VotedAt, hourAgo, dayAgo)
		if c, ok := perProject[v.ProjectID]; ok {
			c.add(v.VotedAt, hourAgo, dayAgo)
		}
	}

	rows := make([]ProjectStats, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, ProjectStats{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Stats:       perProject[p.ID].stats(hours, days),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})

	return Report{
		CallID:      call.ID,
		CallName:    call.Name,
		CallSlug:    call.Slug,
		Phase:       eligibility.PhaseAt(call, now),
		GeneratedAt: now,
		Overall:     overall.stats(hours, days),
		Projects:    rows,
	}
}

type CallProvider interface {
	CallBySlug(ctx context.Context, slug string) (entity.Call, error)
}

type ProjectLister interface {
	ListProjects(ctx context.Context, callID string) ([]entity.Project, error)
}

type VoteLister interface {
	VotesByCall(ctx context.Context, callID string) ([]entity.Vote, error)
}

type Reports struct {
	log      *slog.Logger
	calls    CallProvider
	projects ProjectLister
	votes    VoteLister
	now      func() time.Time
}

func New(log *slog.Logger, calls CallProvider, projects ProjectLister, votes VoteLister, now func() time.Time) *Reports {
	if now == nil {
		now = time.Now
	}
	return &Reports{log: log, calls: calls, projects: projects, votes: votes, now: now}
}

// ForCall loads everything needed for the report of the call with slug.
func (r *Reports) ForCall(ctx context.Context, slug string) (Report, error) {
	const op = "report.ForCall"

	log := r.log.With(slog.String("op", op), slog.String("slug", slug))

	call, err := r.calls.CallBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, storage.ErrCallNotFound) {
			return Report{}, fmt.Errorf("%s: %w", op, ErrCallNotFound)
		}
		log.Error("failed to load call", sl.Err(err))
		return Report{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	projects, err := r.projects.ListProjects(ctx, call.ID)
	if err != nil {
		log.Error("failed to list projects", sl.Err(err))
		return Report{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	votes, err := r.votes.VotesByCall(ctx, call.ID)
	if err != nil {
		log.Error("failed to list votes", sl.Err(err))
		return Report{}, fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
	}

	return Aggregate(call, projects, votes, r.now().UTC()), nil
}
