package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mstanek/fitsite/internal/models"
	"github.com/mstanek/fitsite/internal/telemetry/tracing"
	"github.com/mstanek/fitsite/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type dataSource interface {
	Activities(ctx context.Context) ([]models.Activity, error)
	Workouts(ctx context.Context) ([]models.LiftingWorkout, error)
}

// Handler serves the analytics reports over HTTP.
type Handler struct {
	analyzer *Analyzer
	source   dataSource
}

func NewHandler(analyzer *Analyzer, source dataSource) *Handler {
	return &Handler{
		analyzer: analyzer,
		source:   source,
	}
}

// SetupRoutes mounts all analytics endpoints on the given router.
func (handler *Handler) SetupRoutes(router *mux.Router) {
	running := router.PathPrefix("/running").Subrouter()
	running.HandleFunc("/stats", handler.HandleRunningStats).Methods("GET")
	running.HandleFunc("/weekly", handler.HandleWeeklyMileage).Methods("GET")
	running.HandleFunc("/monthly", handler.HandleMonthlyMileage).Methods("GET")
	running.HandleFunc("/locations", handler.HandleLocations).Methods("GET")
	running.HandleFunc("/prs", handler.HandleRunningPRs).Methods("GET")
	running.HandleFunc("/pace-zones", handler.HandlePaceZones).Methods("GET")
	running.HandleFunc("/streaks", handler.HandleStreaks).Methods("GET")
	running.HandleFunc("/heart-rate", handler.HandleHeartRate).Methods("GET")
	running.HandleFunc("/advanced", handler.HandleAdvancedRunning).Methods("GET")

	lifting := router.PathPrefix("/lifting").Subrouter()
	lifting.HandleFunc("/stats", handler.HandleLiftingStats).Methods("GET")
	lifting.HandleFunc("/weekly", handler.HandleWeeklyVolume).Methods("GET")
	lifting.HandleFunc("/prs", handler.HandleLiftingPRs).Methods("GET")
	lifting.HandleFunc("/key-lifts", handler.HandleKeyLiftPRs).Methods("GET")
	lifting.HandleFunc("/rep-range", handler.HandleRepRangeRecords).Methods("GET")
	lifting.HandleFunc("/standards", handler.HandleStrengthStandards).Methods("GET")
	lifting.HandleFunc("/accessories", handler.HandleAccessoryPRs).Methods("GET")
	lifting.HandleFunc("/frequency", handler.HandleTrainingFrequency).Methods("GET")
	lifting.HandleFunc("/volume-trend", handler.HandleVolumeTrend).Methods("GET")
	lifting.HandleFunc("/progression", handler.HandleExerciseProgression).Methods("GET")
	lifting.HandleFunc("/advanced", handler.HandleAdvancedLifting).Methods("GET")
}

func (handler *Handler) activities(ctx context.Context, w http.ResponseWriter) ([]models.Activity, bool) {
	activities, err := handler.source.Activities(ctx)
	if err != nil {
		log.Errorf("failed to load activities: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return nil, false
	}
	return activities, true
}

func (handler *Handler) workouts(ctx context.Context, w http.ResponseWriter) ([]models.LiftingWorkout, bool) {
	workouts, err := handler.source.Workouts(ctx)
	if err != nil {
		log.Errorf("failed to load workouts: %s", err)
		http.Error(w, "failed to load workouts", http.StatusInternalServerError)
		return nil, false
	}
	return workouts, true
}

func writeReport(w http.ResponseWriter, report any) {
	responseJson, err := json.Marshal(report)
	if err != nil {
		log.Errorf("failed to marshal report: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(responseJson))
}

func (handler *Handler) HandleRunningStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.running.stats")
	defer span.End()

	activities, ok := handler.activities(ctx, w)
	if !ok {
		return
	}
	writeReport(w, handler.analyzer.RunningStats(activities))
}

func (handler *Handler) HandleWeeklyMileage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.running.weekly")
	defer span.End()

	activities, ok := handler.activities(ctx, w)
	if !ok {
		return
	}
	writeReport(w, map[string]any{"weekly_mileage": handler.analyzer.WeeklyMileage(activities)})
}

func (handler *Handler) HandleMonthlyMileage(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.running.monthly")
	defer span.End()

	activities, ok := handler.activities(ctx, w)
	if !ok {
		return
	}
	writeReport(w, map[string]any{"monthly_mileage": handler.analyzer.MonthlyMileage(activities)})
}

func (handler *Handler) HandleLocations(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.running.locations")
	defer span.End()

	activities, ok := handler.activities(ctx, w)
	if !ok {
		return
	}
	writeReport(w, map[string]any{"locations": handler.analyzer.Locations(activities)})
}

func (handler *Handler) HandleRunningPRs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.running.prs")
	defer span.End()

	activities, ok := handler.activities(ctx, w)
	if !ok {
		return
	}
	writeReport(w, handler.analyzer.RunningPRs(activities))
}

func (handler *Handler) HandlePaceZones(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.running.pace_zones")
	defer span.End()

	activities, ok := handler.activities(ctx, w)
	if !ok {
		return
	}
	writeReport(w, map[string]any{"pace_zones": handler.analyzer.PaceZones(activities)})
}

func (handler *Handler) HandleStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.running.streaks")
	defer span.End()

	activities, ok := handler.activities(ctx, w)
	if !ok {
		return
	}
	writeReport(w, handler.analyzer.RunningStreaks(activities))
}

func (handler *Handler) HandleHeartRate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.running.heart_rate")
	defer span.End()

	activities, ok := handler.activities(ctx, w)
	if !ok {
		return
	}
	writeReport(w, handler.analyzer.HeartRateStats(activities))
}

func (handler *Handler) HandleAdvancedRunning(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.running.advanced")
	defer span.End()

	activities, ok := handler.activities(ctx, w)
	if !ok {
		return
	}
	writeReport(w, handler.analyzer.AdvancedRunningStats(activities))
}

func (handler *Handler) HandleLiftingStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.stats")
	defer span.End()

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	writeReport(w, handler.analyzer.LiftingStats(workouts))
}

func (handler *Handler) HandleWeeklyVolume(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.weekly")
	defer span.End()

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	workouts = FilterCardioWorkouts(workouts)
	writeReport(w, map[string]any{"weekly_volume": handler.analyzer.WeeklyVolume(workouts)})
}

func (handler *Handler) HandleLiftingPRs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.prs")
	defer span.End()

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	workouts = FilterCardioWorkouts(workouts)
	writeReport(w, map[string]any{"personal_records": handler.analyzer.PersonalRecords(workouts)})
}

func (handler *Handler) HandleKeyLiftPRs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.key_lifts")
	defer span.End()

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	workouts = FilterCardioWorkouts(workouts)
	writeReport(w, map[string]any{"key_lift_prs": handler.analyzer.KeyLiftPRs(workouts)})
}

// HandleRepRangeRecords returns the best estimated 1RM per exercise
// within a rep range; min_reps and max_reps default to the 8-10
// hypertrophy range, and all=true lifts the key-lift filter.
func (handler *Handler) HandleRepRangeRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.rep_range")
	defer span.End()

	minReps, err := queryInt(r, "min_reps", 8)
	if err != nil {
		http.Error(w, "invalid min_reps parameter", http.StatusBadRequest)
		return
	}
	maxReps, err := queryInt(r, "max_reps", 10)
	if err != nil {
		http.Error(w, "invalid max_reps parameter", http.StatusBadRequest)
		return
	}
	if minReps <= 0 || maxReps < minReps {
		http.Error(w, "rep range must be positive and ordered", http.StatusBadRequest)
		return
	}
	keyLiftsOnly := r.URL.Query().Get("all") != "true"

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	workouts = FilterCardioWorkouts(workouts)
	writeReport(w, map[string]any{
		"rep_range_prs": handler.analyzer.RepRangeRecords(workouts, minReps, maxReps, keyLiftsOnly),
	})
}

func (handler *Handler) HandleStrengthStandards(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.standards")
	defer span.End()

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	workouts = FilterCardioWorkouts(workouts)

	bodyweight := DefaultBodyweightLbs
	for _, workout := range workouts {
		if workout.BodyweightLbs != nil {
			bodyweight = *workout.BodyweightLbs
		}
	}

	writeReport(w, map[string]any{
		"strength_standards": handler.analyzer.StrengthStandards(workouts, bodyweight),
	})
}

func (handler *Handler) HandleAccessoryPRs(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.accessories")
	defer span.End()

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	workouts = FilterCardioWorkouts(workouts)
	writeReport(w, map[string]any{"accessory_prs": handler.analyzer.AccessoryPRs(workouts)})
}

func (handler *Handler) HandleTrainingFrequency(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.frequency")
	defer span.End()

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	workouts = FilterCardioWorkouts(workouts)
	writeReport(w, handler.analyzer.TrainingFrequency(workouts))
}

func (handler *Handler) HandleVolumeTrend(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.volume_trend")
	defer span.End()

	window, err := queryInt(r, "window", VolumeTrendWindowWeeks)
	if err != nil || window <= 0 {
		http.Error(w, "invalid window parameter (must be positive integer)", http.StatusBadRequest)
		return
	}

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	workouts = FilterCardioWorkouts(workouts)
	writeReport(w, map[string]any{"volume_trend": handler.analyzer.VolumeTrend(workouts, window)})
}

func (handler *Handler) HandleExerciseProgression(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.progression")
	defer span.End()

	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		http.Error(w, "exercise parameter is required", http.StatusBadRequest)
		return
	}

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	workouts = FilterCardioWorkouts(workouts)
	writeReport(w, map[string]any{
		"exercise":    exercise,
		"progression": handler.analyzer.ExerciseProgression(workouts, exercise),
	})
}

func (handler *Handler) HandleAdvancedLifting(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.analytics.lifting.advanced")
	defer span.End()

	workouts, ok := handler.workouts(ctx, w)
	if !ok {
		return
	}
	writeReport(w, handler.analyzer.AdvancedLiftingStats(workouts))
}

func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
