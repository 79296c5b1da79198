// Package export writes the analytics reports as JSON files into a
// Hugo data directory, one file per report.
package export

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/mstanek/fitsite/internal/analytics"
	"github.com/mstanek/fitsite/internal/models"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const (
	recentRunsLimit = 5
	locationsLimit  = 10
	liftingPRsLimit = 20
)

// Exporter writes analytics reports to the Hugo data directory.
type Exporter struct {
	analyzer *analytics.Analyzer
	dataDir  string
}

func NewExporter(analyzer *analytics.Analyzer, dataDir string) *Exporter {
	return &Exporter{
		analyzer: analyzer,
		dataDir:  dataDir,
	}
}

// ExportAll writes every report file. Failures are collected so one
// bad file does not stop the rest of the export.
func (e *Exporter) ExportAll(activities []models.Activity, workouts []models.LiftingWorkout) error {
	if err := os.MkdirAll(e.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	var errs error

	if len(activities) > 0 {
		log.Info("exporting running data ...")
		errs = multierr.Combine(
			e.ExportRunningStats(activities),
			e.ExportRecentRuns(activities, recentRunsLimit),
			e.ExportLocations(activities, locationsLimit),
			e.ExportWeeklyMileage(activities),
			e.ExportMonthlyMileage(activities),
			e.ExportRunningPRs(activities),
			e.ExportPaceZones(activities),
			e.ExportRunningStreaks(activities),
			e.ExportHeartRateStats(activities),
			e.ExportAdvancedRunningStats(activities),
		)
	}

	if len(workouts) > 0 {
		log.Info("exporting lifting data ...")
		lifting := analytics.FilterCardioWorkouts(workouts)
		errs = multierr.Combine(
			errs,
			e.ExportWorkoutSummary(workouts),
			e.ExportLiftingPRs(lifting, liftingPRsLimit),
			e.ExportWeeklyVolume(lifting),
			e.ExportRepRangePRs(lifting),
			e.ExportStrengthStandards(lifting),
			e.ExportTrainingFrequency(lifting),
			e.ExportVolumeByMuscle(lifting),
			e.ExportVolumeTrend(lifting),
			e.ExportKeyLiftPRs(lifting),
			e.ExportAccessoryPRs(lifting),
			e.ExportAdvancedLiftingStats(workouts),
		)
	}

	if errs == nil {
		log.Infof("export complete, data written to %s", e.dataDir)
	}
	return errs
}

func (e *Exporter) ExportRunningStats(activities []models.Activity) error {
	return e.writeJSON("running_stats.json", e.analyzer.RunningStats(activities))
}

// RecentRun is one entry of the recent runs report.
type RecentRun struct {
	Name              string   `json:"name"`
	Date              string   `json:"date"`
	DistanceMiles     float64  `json:"distance_miles"`
	MovingTimeMinutes float64  `json:"moving_time_minutes"`
	PacePerMile       string   `json:"pace_per_mile"`
	ElevationGainFeet float64  `json:"elevation_gain_feet"`
	AverageHeartrate  *float64 `json:"average_heartrate"`
	SufferScore       *int     `json:"suffer_score"`
	Calories          *int     `json:"calories"`
}

// ExportRecentRuns writes the first runs of the input, which arrives
// newest first from the activity feed.
func (e *Exporter) ExportRecentRuns(activities []models.Activity, limit int) error {
	recent := make([]RecentRun, 0, limit)
	for _, act := range activities {
		if act.Type != models.ActivityTypeRun {
			continue
		}
		if len(recent) == limit {
			break
		}
		recent = append(recent, RecentRun{
			Name:              act.Name,
			Date:              act.DateString(),
			DistanceMiles:     act.DistanceMiles,
			MovingTimeMinutes: roundTo(act.MovingTimeMinutes(), 1),
			PacePerMile:       act.PacePerMile(),
			ElevationGainFeet: act.ElevationGainFeet,
			AverageHeartrate:  act.AverageHeartrate,
			SufferScore:       act.SufferScore,
			Calories:          act.Calories,
		})
	}
	return e.writeJSON("recent_runs.json", recent)
}

func (e *Exporter) ExportLocations(activities []models.Activity, limit int) error {
	locations := e.analyzer.Locations(activities)
	if len(locations) > limit {
		locations = locations[:limit]
	}
	return e.writeJSON("running_locations.json", locations)
}

func (e *Exporter) ExportWeeklyMileage(activities []models.Activity) error {
	return e.writeJSON("weekly_mileage.json", e.analyzer.WeeklyMileage(activities))
}

func (e *Exporter) ExportMonthlyMileage(activities []models.Activity) error {
	return e.writeJSON("monthly_mileage.json", e.analyzer.MonthlyMileage(activities))
}

func (e *Exporter) ExportRunningPRs(activities []models.Activity) error {
	return e.writeJSON("running_prs.json", e.analyzer.RunningPRs(activities))
}

func (e *Exporter) ExportPaceZones(activities []models.Activity) error {
	return e.writeJSON("pace_zones.json", e.analyzer.PaceZones(activities))
}

func (e *Exporter) ExportRunningStreaks(activities []models.Activity) error {
	return e.writeJSON("running_streaks.json", e.analyzer.RunningStreaks(activities))
}

func (e *Exporter) ExportHeartRateStats(activities []models.Activity) error {
	return e.writeJSON("heart_rate_stats.json", e.analyzer.HeartRateStats(activities))
}

func (e *Exporter) ExportAdvancedRunningStats(activities []models.Activity) error {
	return e.writeJSON("advanced_running_stats.json", e.analyzer.AdvancedRunningStats(activities))
}

// muscleGroupCount is the workout distribution entry of the workout
// summary.
type muscleGroupCount struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type workoutSummary struct {
	TotalWorkouts       int                `json:"total_workouts"`
	TotalVolumeLbs      float64            `json:"total_volume_lbs"`
	WorkoutDistribution []muscleGroupCount `json:"workout_distribution"`
	DateRange           dateRange          `json:"date_range"`
}

func (e *Exporter) ExportWorkoutSummary(workouts []models.LiftingWorkout) error {
	stats := e.analyzer.LiftingStats(workouts)

	distribution := make([]muscleGroupCount, 0, len(stats.WorkoutDistribution))
	for group, count := range stats.WorkoutDistribution {
		distribution = append(distribution, muscleGroupCount{Group: group, Count: count})
	}

	return e.writeJSON("workout_summary.json", workoutSummary{
		TotalWorkouts:       stats.TotalWorkouts,
		TotalVolumeLbs:      stats.TotalVolumeLbs,
		WorkoutDistribution: distribution,
		DateRange: dateRange{
			Start: stats.DateRangeStart,
			End:   stats.DateRangeEnd,
		},
	})
}

func (e *Exporter) ExportLiftingPRs(workouts []models.LiftingWorkout, limit int) error {
	prs := e.analyzer.PersonalRecords(workouts)
	if len(prs) > limit {
		prs = prs[:limit]
	}
	return e.writeJSON("lifting_prs.json", prs)
}

func (e *Exporter) ExportWeeklyVolume(workouts []models.LiftingWorkout) error {
	return e.writeJSON("weekly_volume.json", e.analyzer.WeeklyVolume(workouts))
}

func (e *Exporter) ExportRepRangePRs(workouts []models.LiftingWorkout) error {
	return e.writeJSON("rep_range_prs.json", e.analyzer.RepRangeRecords(workouts, 8, 10, true))
}

func (e *Exporter) ExportStrengthStandards(workouts []models.LiftingWorkout) error {
	bodyweight := analytics.DefaultBodyweightLbs
	for _, workout := range workouts {
		if workout.BodyweightLbs != nil {
			bodyweight = *workout.BodyweightLbs
		}
	}
	return e.writeJSON("strength_standards.json", e.analyzer.StrengthStandards(workouts, bodyweight))
}

func (e *Exporter) ExportTrainingFrequency(workouts []models.LiftingWorkout) error {
	return e.writeJSON("training_frequency.json", e.analyzer.TrainingFrequency(workouts))
}

func (e *Exporter) ExportVolumeByMuscle(workouts []models.LiftingWorkout) error {
	volumes := e.analyzer.VolumeByMuscleGroup(workouts)
	for i := range volumes {
		volumes[i].Volume = roundTo(volumes[i].Volume, 0)
	}
	return e.writeJSON("volume_by_muscle.json", volumes)
}

func (e *Exporter) ExportVolumeTrend(workouts []models.LiftingWorkout) error {
	return e.writeJSON("volume_trend.json", e.analyzer.VolumeTrend(workouts, analytics.VolumeTrendWindowWeeks))
}

func (e *Exporter) ExportKeyLiftPRs(workouts []models.LiftingWorkout) error {
	return e.writeJSON("key_lift_prs.json", e.analyzer.KeyLiftPRs(workouts))
}

func (e *Exporter) ExportAccessoryPRs(workouts []models.LiftingWorkout) error {
	return e.writeJSON("accessory_prs.json", e.analyzer.AccessoryPRs(workouts))
}

func (e *Exporter) ExportAdvancedLiftingStats(workouts []models.LiftingWorkout) error {
	return e.writeJSON("advanced_lifting_stats.json", e.analyzer.AdvancedLiftingStats(workouts))
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

func (e *Exporter) writeJSON(filename string, data any) error {
	dataBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filename, err)
	}

	if err := os.WriteFile(filepath.Join(e.dataDir, filename), dataBytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}

	log.Infof("exported %s", filename)
	return nil
}
