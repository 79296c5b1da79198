package export_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mstanek/fitsite/internal/analytics"
	"github.com/mstanek/fitsite/internal/export"
	"github.com/mstanek/fitsite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var runningReportFiles = []string{
	"running_stats.json",
	"recent_runs.json",
	"running_locations.json",
	"weekly_mileage.json",
	"monthly_mileage.json",
	"running_prs.json",
	"pace_zones.json",
	"running_streaks.json",
	"heart_rate_stats.json",
	"advanced_running_stats.json",
}

var liftingReportFiles = []string{
	"workout_summary.json",
	"lifting_prs.json",
	"weekly_volume.json",
	"rep_range_prs.json",
	"strength_standards.json",
	"training_frequency.json",
	"volume_by_muscle.json",
	"volume_trend.json",
	"key_lift_prs.json",
	"accessory_prs.json",
	"advanced_lifting_stats.json",
}

func testActivities() []models.Activity {
	return []models.Activity{
		{
			Name:              "[26:00] city park",
			Type:              models.ActivityTypeRun,
			Date:              time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			DistanceMiles:     3.1,
			MovingTimeSeconds: 1560,
		},
		{
			Name:              "[45:00] river loop",
			Type:              models.ActivityTypeRun,
			Date:              time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
			DistanceMiles:     5.0,
			MovingTimeSeconds: 2700,
		},
	}
}

func testWorkouts() []models.LiftingWorkout {
	return []models.LiftingWorkout{
		{
			Date:         time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
			MuscleGroups: "Push",
			Exercises: []models.Exercise{
				{Name: "Bench Press", WeightLbs: 225, Reps: 5},
			},
		},
		{
			Date:         time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
			MuscleGroups: "Cardio",
		},
	}
}

func TestExportAll(t *testing.T) {
	dataDir := t.TempDir()
	analyzer := analytics.NewAnalyzer(analytics.WithNow(func() time.Time {
		return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	}))
	exporter := export.NewExporter(analyzer, dataDir)

	err := exporter.ExportAll(testActivities(), testWorkouts())
	require.NoError(t, err)

	for _, filename := range append(runningReportFiles, liftingReportFiles...) {
		assert.FileExists(t, filepath.Join(dataDir, filename))
	}
}

func TestExportAll_CreatesDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "nested", "data")
	analyzer := analytics.NewAnalyzer()
	exporter := export.NewExporter(analyzer, dataDir)

	require.NoError(t, exporter.ExportAll(testActivities(), nil))

	assert.FileExists(t, filepath.Join(dataDir, "running_stats.json"))
	assert.NoFileExists(t, filepath.Join(dataDir, "workout_summary.json"))
}

func TestExportWorkoutSummary(t *testing.T) {
	dataDir := t.TempDir()
	analyzer := analytics.NewAnalyzer()
	exporter := export.NewExporter(analyzer, dataDir)

	require.NoError(t, exporter.ExportWorkoutSummary(testWorkouts()))

	raw, err := os.ReadFile(filepath.Join(dataDir, "workout_summary.json"))
	require.NoError(t, err)

	var summary struct {
		TotalWorkouts       int     `json:"total_workouts"`
		TotalVolumeLbs      float64 `json:"total_volume_lbs"`
		WorkoutDistribution []struct {
			Group string `json:"group"`
			Count int    `json:"count"`
		} `json:"workout_distribution"`
		DateRange struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"date_range"`
	}
	require.NoError(t, json.Unmarshal(raw, &summary))

	assert.Equal(t, 1, summary.TotalWorkouts, "cardio rows are not workouts")
	assert.Equal(t, 1125.0, summary.TotalVolumeLbs)
	require.Len(t, summary.WorkoutDistribution, 1)
	assert.Equal(t, "Push", summary.WorkoutDistribution[0].Group)
	assert.Equal(t, "2024-06-03", summary.DateRange.Start)
	assert.Equal(t, "2024-06-03", summary.DateRange.End)
}

func TestExportRecentRuns_Limit(t *testing.T) {
	dataDir := t.TempDir()
	exporter := export.NewExporter(analytics.NewAnalyzer(), dataDir)

	var activities []models.Activity
	for i := 0; i < 8; i++ {
		activities = append(activities, models.Activity{
			Name:              "run",
			Type:              models.ActivityTypeRun,
			Date:              time.Date(2024, 6, 10-i, 0, 0, 0, 0, time.UTC),
			DistanceMiles:     3,
			MovingTimeSeconds: 1500,
		})
	}

	require.NoError(t, exporter.ExportRecentRuns(activities, 5))

	raw, err := os.ReadFile(filepath.Join(dataDir, "recent_runs.json"))
	require.NoError(t, err)

	var recent []export.RecentRun
	require.NoError(t, json.Unmarshal(raw, &recent))
	require.Len(t, recent, 5)
	assert.Equal(t, "2024-06-10", recent[0].Date, "input order is preserved, newest first")
}

func TestExportAll_UnwritableDir(t *testing.T) {
	exporter := export.NewExporter(analytics.NewAnalyzer(), "/proc/no-such-place")
	assert.Error(t, exporter.ExportAll(testActivities(), nil))
}
