package models_test

import (
	"testing"
	"time"

	"github.com/mstanek/fitsite/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseExercise(t *testing.T) {
	t.Run("full cell with rpe", func(t *testing.T) {
		exercise, ok := models.ParseExercise("Bench Press, 225, 5, 8.5")
		require.True(t, ok)
		assert.Equal(t, "Bench Press", exercise.Name)
		assert.Equal(t, 225.0, exercise.WeightLbs)
		assert.Equal(t, 5, exercise.Reps)
		require.NotNil(t, exercise.RPE)
		assert.Equal(t, 8.5, *exercise.RPE)
	})

	t.Run("without rpe", func(t *testing.T) {
		exercise, ok := models.ParseExercise("Squat,315,3")
		require.True(t, ok)
		assert.Equal(t, "Squat", exercise.Name)
		assert.Nil(t, exercise.RPE)
	})

	t.Run("bodyweight movement with empty weight", func(t *testing.T) {
		exercise, ok := models.ParseExercise("Pull-Ups,,12")
		require.True(t, ok)
		assert.Zero(t, exercise.WeightLbs)
		assert.Equal(t, 12, exercise.Reps)
	})

	t.Run("rejected cells", func(t *testing.T) {
		for _, cell := range []string{
			"",
			"   ",
			"Bench Press",
			"Bench Press, 225",
			"Bench Press, heavy, 5",
			"Bench Press, 225, five",
			"Bench Press, 225, 5, hard",
		} {
			_, ok := models.ParseExercise(cell)
			assert.False(t, ok, "cell %q", cell)
		}
	})
}

func TestParseCardioSession(t *testing.T) {
	t.Run("distance with duration", func(t *testing.T) {
		session, ok := models.ParseCardioSession("run, 3.1, 25:30")
		require.True(t, ok)
		assert.Equal(t, "run", session.ActivityType)
		require.NotNil(t, session.Distance)
		assert.Equal(t, 3.1, *session.Distance)
		assert.Nil(t, session.Steps)
		require.NotNil(t, session.DurationMinutes)
		assert.Equal(t, 25.5, *session.DurationMinutes)
	})

	t.Run("whole number means steps", func(t *testing.T) {
		session, ok := models.ParseCardioSession("walk, 8000")
		require.True(t, ok)
		require.NotNil(t, session.Steps)
		assert.Equal(t, 8000, *session.Steps)
		assert.Nil(t, session.Distance)
	})

	t.Run("plain minutes duration", func(t *testing.T) {
		session, ok := models.ParseCardioSession("bike, 10.5, 45")
		require.True(t, ok)
		require.NotNil(t, session.DurationMinutes)
		assert.Equal(t, 45.0, *session.DurationMinutes)
	})

	t.Run("rejected cells", func(t *testing.T) {
		for _, cell := range []string{"", "run", "run, fast", "run, 3.1, later"} {
			_, ok := models.ParseCardioSession(cell)
			assert.False(t, ok, "cell %q", cell)
		}
	})
}

func TestLiftingWorkoutVolume(t *testing.T) {
	workout := models.LiftingWorkout{
		Date:         time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		MuscleGroups: "Push",
		Exercises: []models.Exercise{
			{Name: "Bench Press", WeightLbs: 200, Reps: 5},
			{Name: "OHP", WeightLbs: 100, Reps: 8},
		},
	}

	assert.Equal(t, 1800.0, workout.TotalVolume())
	assert.Equal(t, 2, workout.ExerciseCount())
	assert.Equal(t, "2024-06-03", workout.DateString())
}
