package sheets_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mstanek/fitsite/internal/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var workoutHeaders = []string{
	"Date", "Muscle Group(s)", "E1 (type,weight,reps,rpe)", "E2 (type,weight,reps,rpe)",
	"Cardio", "Push-Ups", "Pull-Ups", "Weight", "Memo",
}

func TestParseRows(t *testing.T) {
	rows := [][]string{
		workoutHeaders,
		{
			"2024-06-03", "Push",
			"Bench Press, 225, 5, 8.5", "OHP, 100, 8",
			"", "30", "", "182.4", "felt strong",
		},
		{
			"6/5/2024", "",
			"Squat, 275, 5", "",
			"run, 3.1, 25:30", "", "12", "", "",
		},
	}

	workouts, err := sheets.ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, workouts, 2)

	first := workouts[0]
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Push", first.MuscleGroups)
	require.Len(t, first.Exercises, 2)
	assert.Equal(t, "Bench Press", first.Exercises[0].Name)
	assert.Equal(t, 225.0, first.Exercises[0].WeightLbs)
	require.NotNil(t, first.Exercises[0].RPE)
	assert.Equal(t, 8.5, *first.Exercises[0].RPE)
	require.NotNil(t, first.Pushups)
	assert.Equal(t, 30, *first.Pushups)
	assert.Nil(t, first.Pullups)
	require.NotNil(t, first.BodyweightLbs)
	assert.Equal(t, 182.4, *first.BodyweightLbs)
	require.NotNil(t, first.Notes)
	assert.Equal(t, "felt strong", *first.Notes)
	assert.Nil(t, first.Cardio)

	second := workouts[1]
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), second.Date)
	assert.Equal(t, "Unknown", second.MuscleGroups, "missing muscle group falls back")
	require.Len(t, second.Exercises, 1)
	require.NotNil(t, second.Cardio)
	assert.Equal(t, "run", second.Cardio.ActivityType)
	require.NotNil(t, second.Cardio.Distance)
	assert.Equal(t, 3.1, *second.Cardio.Distance)
	require.NotNil(t, second.Pullups)
	assert.Equal(t, 12, *second.Pullups)
	assert.Nil(t, second.Notes)
}

func TestParseRows_SkipsBadRows(t *testing.T) {
	rows := [][]string{
		workoutHeaders,
		{"", "Push", "Bench Press, 225, 5"},          // no date
		{"sometime", "Push", "Bench Press, 225, 5"},  // unparseable date
		{"2024-06-03", "Push", "Bench Press, 225, 5"}, // good
		{"2024-06-04"}, // short row, still a workout day
	}

	workouts, err := sheets.ParseRows(rows)
	require.NoError(t, err)
	require.Len(t, workouts, 2)
	assert.Len(t, workouts[0].Exercises, 1)
	assert.Empty(t, workouts[1].Exercises)
}

func TestParseRows_NoDateColumn(t *testing.T) {
	rows := [][]string{
		{"Day", "Muscle Group(s)"},
		{"2024-06-03", "Push"},
	}

	_, err := sheets.ParseRows(rows)
	assert.ErrorIs(t, err, sheets.ErrDateColumnMissing)
}

func TestParseRows_Empty(t *testing.T) {
	workouts, err := sheets.ParseRows(nil)
	require.NoError(t, err)
	assert.Empty(t, workouts)
}

func TestLoadWorkoutsFromFile(t *testing.T) {
	content := "Date\tMuscle Group(s)\tE1 (type,weight,reps,rpe)\tPush-Ups\n" +
		"2024-06-03\tPush\tBench Press, 225, 5\t25\n" +
		"2024-06-05\tLegs\tSquat, 275, 5\t\n"

	path := filepath.Join(t.TempDir(), "workouts.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	workouts, err := sheets.LoadWorkoutsFromFile(path)
	require.NoError(t, err)
	require.Len(t, workouts, 2)
	assert.Equal(t, "Push", workouts[0].MuscleGroups)
	require.NotNil(t, workouts[0].Pushups)
	assert.Equal(t, 25, *workouts[0].Pushups)
	assert.Equal(t, "Legs", workouts[1].MuscleGroups)
}

func TestLoadWorkoutsFromFile_Missing(t *testing.T) {
	_, err := sheets.LoadWorkoutsFromFile(filepath.Join(t.TempDir(), "nope.tsv"))
	assert.Error(t, err)
}
