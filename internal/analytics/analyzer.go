package analytics

import (
	"strings"
	"time"

	"github.com/mstanek/fitsite/internal/models"
)

// Analyzer derives summary and trend statistics from endurance
// activities and lifting workouts. Every calculator is a pure
// function of its inputs; the only ambient dependency is the clock,
// injectable for deterministic tests.
type Analyzer struct {
	now func() time.Time
}

type Option func(*Analyzer)

// WithNow overrides the clock used for month-to-date stats, streak
// currency and the recent-lift window.
func WithNow(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// today returns the current calendar date at midnight UTC.
func (a *Analyzer) today() time.Time {
	return dateOnly(a.now())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the number of calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(dateOnly(b).Sub(dateOnly(a)).Hours() / 24)
}

// FilterCardioWorkouts drops workouts whose muscle group label is
// "cardio" (case-insensitive) - those are tracked via Strava and
// excluded from all strength analytics.
func FilterCardioWorkouts(workouts []models.LiftingWorkout) []models.LiftingWorkout {
	filtered := make([]models.LiftingWorkout, 0, len(workouts))
	for _, w := range workouts {
		if strings.ToLower(w.MuscleGroups) != "cardio" {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// filterRuns keeps only activities classified as runs.
func filterRuns(activities []models.Activity) []models.Activity {
	runs := make([]models.Activity, 0, len(activities))
	for _, act := range activities {
		if act.Type == models.ActivityTypeRun {
			runs = append(runs, act)
		}
	}
	return runs
}
