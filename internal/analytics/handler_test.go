package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mstanek/fitsite/internal/analytics"
	"github.com/mstanek/fitsite/internal/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves canned activities and workouts to the handler.
type fakeSource struct {
	activities []models.Activity
	workouts   []models.LiftingWorkout
	err        error
}

func (s *fakeSource) Activities(context.Context) ([]models.Activity, error) {
	return s.activities, s.err
}

func (s *fakeSource) Workouts(context.Context) ([]models.LiftingWorkout, error) {
	return s.workouts, s.err
}

func newTestRouter(source *fakeSource) *mux.Router {
	analyzer := newTestAnalyzer(day(2024, time.June, 15))
	router := mux.NewRouter()
	analytics.NewHandler(analyzer, source).SetupRoutes(router)
	return router
}

func get(t *testing.T, router *mux.Router, url string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandleRunningStats(t *testing.T) {
	source := &fakeSource{
		activities: []models.Activity{
			run(day(2024, time.June, 10), "[26:00] city park", 3.0, 1440),
			run(day(2024, time.June, 8), "[45:00] river loop", 5.0, 2700),
		},
	}
	router := newTestRouter(source)

	rr := get(t, router, "/running/stats")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var stats analytics.RunningStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 8.0, stats.TotalMiles)
}

func TestHandleRunningStats_SourceError(t *testing.T) {
	router := newTestRouter(&fakeSource{err: errors.New("disk on fire")})

	rr := get(t, router, "/running/stats")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestHandleLiftingStats_FiltersCardio(t *testing.T) {
	source := &fakeSource{
		workouts: []models.LiftingWorkout{
			workout(day(2024, time.June, 3), "Push", set("Bench Press", 225, 5)),
			workout(day(2024, time.June, 5), "Cardio"),
		},
	}
	router := newTestRouter(source)

	rr := get(t, router, "/lifting/stats")

	require.Equal(t, http.StatusOK, rr.Code)
	var stats analytics.LiftingStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalWorkouts)
}

func TestHandleRepRangeRecords(t *testing.T) {
	source := &fakeSource{
		workouts: []models.LiftingWorkout{
			workout(day(2024, time.June, 3), "Push",
				set("Bench Press", 185, 8),
				set("Bicep Curl", 40, 10),
			),
		},
	}
	router := newTestRouter(source)

	t.Run("defaults to key lifts in the 8-10 range", func(t *testing.T) {
		rr := get(t, router, "/lifting/rep-range")
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			RepRangePRs []analytics.RepRangeRecord `json:"rep_range_prs"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		require.Len(t, body.RepRangePRs, 1)
		assert.Equal(t, "bench press", body.RepRangePRs[0].Exercise)
	})

	t.Run("all=true includes every exercise", func(t *testing.T) {
		rr := get(t, router, "/lifting/rep-range?all=true")
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			RepRangePRs []analytics.RepRangeRecord `json:"rep_range_prs"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Len(t, body.RepRangePRs, 2)
	})

	t.Run("rejects a malformed range", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/lifting/rep-range?min_reps=abc").Code)
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/lifting/rep-range?min_reps=10&max_reps=5").Code)
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/lifting/rep-range?min_reps=0").Code)
	})
}

func TestHandleVolumeTrend_BadWindow(t *testing.T) {
	router := newTestRouter(&fakeSource{})

	assert.Equal(t, http.StatusBadRequest, get(t, router, "/lifting/volume-trend?window=0").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/lifting/volume-trend?window=x").Code)
}

func TestHandleExerciseProgression(t *testing.T) {
	source := &fakeSource{
		workouts: []models.LiftingWorkout{
			workout(day(2024, time.June, 3), "Push", set("Bench Press", 200, 5)),
			workout(day(2024, time.June, 10), "Push", set("Bench Press", 205, 5)),
		},
	}
	router := newTestRouter(source)

	t.Run("requires the exercise parameter", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/lifting/progression").Code)
	})

	t.Run("returns the dated series", func(t *testing.T) {
		rr := get(t, router, "/lifting/progression?exercise=Bench+Press")
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			Exercise    string                      `json:"exercise"`
			Progression []analytics.ExerciseSession `json:"progression"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "Bench Press", body.Exercise)
		require.Len(t, body.Progression, 2)
		assert.Equal(t, "2024-06-03", body.Progression[0].Date)
	})
}

func TestHandleUnknownMethod(t *testing.T) {
	router := newTestRouter(&fakeSource{})

	req, err := http.NewRequest("POST", "/running/stats", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
