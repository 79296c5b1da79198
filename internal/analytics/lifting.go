package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mstanek/fitsite/internal/models"
)

// LiftingStats is the aggregate lifting summary. Cardio-only workout
// rows are excluded, they are tracked through activity imports.
type LiftingStats struct {
	TotalWorkouts       int              `json:"total_workouts"`
	TotalVolumeLbs      float64          `json:"total_volume_lbs"`
	WorkoutDistribution map[string]int   `json:"workout_distribution"`
	DateRangeStart      string           `json:"date_range_start"`
	DateRangeEnd        string           `json:"date_range_end"`
	PersonalRecords     []PersonalRecord `json:"personal_records,omitempty"`
}

// PersonalRecord is the heaviest set ever logged for one exercise.
type PersonalRecord struct {
	Exercise  string  `json:"exercise"`
	MaxWeight float64 `json:"max_weight"`
	Reps      int     `json:"reps"`
	Date      string  `json:"date"`
}

// LiftingStats calculates the aggregate lifting statistics.
func (a *Analyzer) LiftingStats(workouts []models.LiftingWorkout) LiftingStats {
	lifting := FilterCardioWorkouts(workouts)

	if len(lifting) == 0 {
		today := a.today().Format("2006-01-02")
		return LiftingStats{
			WorkoutDistribution: map[string]int{},
			DateRangeStart:      today,
			DateRangeEnd:        today,
		}
	}

	var totalVolume float64
	distribution := make(map[string]int)
	start, end := lifting[0].Date, lifting[0].Date
	for _, w := range lifting {
		totalVolume += w.TotalVolume()
		distribution[w.MuscleGroups]++
		if w.Date.Before(start) {
			start = w.Date
		}
		if w.Date.After(end) {
			end = w.Date
		}
	}

	return LiftingStats{
		TotalWorkouts:       len(lifting),
		TotalVolumeLbs:      round(totalVolume, 0),
		WorkoutDistribution: distribution,
		DateRangeStart:      start.Format("2006-01-02"),
		DateRangeEnd:        end.Format("2006-01-02"),
		PersonalRecords:     a.PersonalRecords(lifting),
	}
}

// PersonalRecords finds the heaviest set per exercise. Exercise names
// are matched case-insensitively but not alias-normalized. A tie on
// weight keeps the earlier record.
func (a *Analyzer) PersonalRecords(workouts []models.LiftingWorkout) []PersonalRecord {
	maxes := make(map[string]PersonalRecord)
	var order []string

	for _, workout := range workouts {
		for _, exercise := range workout.Exercises {
			name := strings.ToLower(strings.TrimSpace(exercise.Name))
			current, seen := maxes[name]
			if !seen {
				order = append(order, name)
			}
			if !seen || exercise.WeightLbs > current.MaxWeight {
				maxes[name] = PersonalRecord{
					Exercise:  name,
					MaxWeight: exercise.WeightLbs,
					Reps:      exercise.Reps,
					Date:      workout.DateString(),
				}
			}
		}
	}

	prs := make([]PersonalRecord, 0, len(order))
	for _, name := range order {
		prs = append(prs, maxes[name])
	}

	sort.SliceStable(prs, func(i, j int) bool {
		return prs[i].MaxWeight > prs[j].MaxWeight
	})

	return prs
}

// WeeklyVolume is the lifting volume for one ISO week.
type WeeklyVolume struct {
	Week       string   `json:"week"`
	Volume     float64  `json:"volume"`
	Workouts   int      `json:"workouts"`
	Date       string   `json:"date"`
	RollingAvg *float64 `json:"rolling_avg,omitempty"`
}

// WeeklyVolume groups workouts by ISO (year, week) and sums total
// volume and workout count.
func (a *Analyzer) WeeklyVolume(workouts []models.LiftingWorkout) []WeeklyVolume {
	if len(workouts) == 0 {
		return nil
	}

	type weekKey struct {
		year, week int
	}
	weekly := make(map[weekKey]*WeeklyVolume)
	var keys []weekKey

	for _, workout := range workouts {
		year, week := workout.Date.ISOWeek()
		key := weekKey{year, week}
		entry, ok := weekly[key]
		if !ok {
			entry = &WeeklyVolume{
				Week: fmt.Sprintf("%d-W%02d", year, week),
				Date: workout.DateString(),
			}
			weekly[key] = entry
			keys = append(keys, key)
		}
		entry.Volume += workout.TotalVolume()
		entry.Workouts++
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	result := make([]WeeklyVolume, 0, len(keys))
	for _, key := range keys {
		entry := *weekly[key]
		entry.Volume = round(entry.Volume, 0)
		result = append(result, entry)
	}

	return result
}

// VolumeTrendWindowWeeks is the default rolling average window for
// the lifting volume trend.
const VolumeTrendWindowWeeks = 4

// VolumeTrend attaches a rolling average of weekly volume to the
// weekly volume series. Weeks before the window fills get no rolling
// average; when there are fewer weeks than the window, the plain
// weekly series is returned.
func (a *Analyzer) VolumeTrend(workouts []models.LiftingWorkout, windowWeeks int) []WeeklyVolume {
	weekly := a.WeeklyVolume(workouts)

	if len(weekly) < windowWeeks {
		return weekly
	}

	for i := range weekly {
		if i < windowWeeks-1 {
			continue
		}
		var sum float64
		for _, w := range weekly[i-windowWeeks+1 : i+1] {
			sum += w.Volume
		}
		avg := round(sum/float64(windowWeeks), 0)
		weekly[i].RollingAvg = &avg
	}

	return weekly
}

// RepRangeRecord is the best estimated 1RM for one exercise within a
// rep range.
type RepRangeRecord struct {
	Exercise     string   `json:"exercise"`
	Weight       float64  `json:"weight"`
	Reps         int      `json:"reps"`
	RPE          *float64 `json:"rpe"`
	Date         string   `json:"date"`
	Estimated1RM float64  `json:"estimated_1rm"`
}

// RepRangeRecords finds the best estimated 1RM per normalized
// exercise among sets whose reps fall in [minReps, maxReps]. With
// keyLiftsOnly set, only the key compound lifts are considered.
// A tie on estimated 1RM keeps the earlier record.
func (a *Analyzer) RepRangeRecords(workouts []models.LiftingWorkout, minReps, maxReps int, keyLiftsOnly bool) []RepRangeRecord {
	records := make(map[string]RepRangeRecord)
	var order []string

	for _, workout := range workouts {
		for _, exercise := range workout.Exercises {
			if exercise.Reps < minReps || exercise.Reps > maxReps {
				continue
			}
			if keyLiftsOnly && !IsKeyCompoundLift(exercise.Name) {
				continue
			}

			name := NormalizeExerciseName(exercise.Name)
			estimated := EstimatedOneRepMax(exercise.WeightLbs, exercise.Reps)

			current, seen := records[name]
			if !seen {
				order = append(order, name)
			}
			if !seen || estimated > current.Estimated1RM {
				records[name] = RepRangeRecord{
					Exercise:     name,
					Weight:       exercise.WeightLbs,
					Reps:         exercise.Reps,
					RPE:          exercise.RPE,
					Date:         workout.DateString(),
					Estimated1RM: round(estimated, 1),
				}
			}
		}
	}

	result := make([]RepRangeRecord, 0, len(order))
	for _, name := range order {
		result = append(result, records[name])
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Estimated1RM > result[j].Estimated1RM
	})

	return result
}

// LiftSet is a single logged set with its estimated 1RM.
type LiftSet struct {
	Weight       float64  `json:"weight"`
	Reps         int      `json:"reps"`
	RPE          *float64 `json:"rpe"`
	Date         string   `json:"date"`
	Estimated1RM float64  `json:"estimated_1rm"`
}

// RecentLift is the latest set of a key lift inside the recency
// window.
type RecentLift struct {
	Weight float64  `json:"weight"`
	Reps   int      `json:"reps"`
	RPE    *float64 `json:"rpe"`
	Date   string   `json:"date"`
}

// KeyLiftPR is the per-rep-band record set for one of the big three
// lifts, plus the most recent set for context.
type KeyLiftPR struct {
	Exercise         string      `json:"exercise"`
	StrengthPR       *LiftSet    `json:"strength_pr"`
	HypertrophyPR    *LiftSet    `json:"hypertrophy_pr"`
	EndurancePR      *LiftSet    `json:"endurance_pr"`
	Recent           *RecentLift `json:"recent"`
	BestEstimated1RM float64     `json:"best_estimated_1rm"`
}

// repBand is a closed rep interval a set is classified into.
type repBand struct {
	name     string
	min, max int
}

// repBands are checked in order; a set lands in the first band that
// contains its rep count. Sets above 20 reps land in no band.
var repBands = []repBand{
	{"strength", 1, 5},
	{"hypertrophy", 6, 10},
	{"endurance", 11, 20},
}

// recentLiftWindowDays bounds how old a set may be to still count as
// recent context next to a PR.
const recentLiftWindowDays = 14

// KeyLiftPRs tracks the big three lifts (bench press, squat,
// deadlift after normalization) across the strength, hypertrophy and
// endurance rep bands, with the most recent set of each within the
// last two weeks. Sorted by best estimated 1RM, best first.
func (a *Analyzer) KeyLiftPRs(workouts []models.LiftingWorkout) []KeyLiftPR {
	type liftRecords struct {
		bands  map[string]*LiftSet
		recent *RecentLift
	}
	records := make(map[string]*liftRecords)
	var order []string

	cutoff := a.today().AddDate(0, 0, -recentLiftWindowDays)

	for _, workout := range workouts {
		for _, exercise := range workout.Exercises {
			name := NormalizeExerciseName(exercise.Name)
			if !IsBigThreeLift(exercise.Name) {
				continue
			}

			rec, ok := records[name]
			if !ok {
				rec = &liftRecords{bands: make(map[string]*LiftSet)}
				records[name] = rec
				order = append(order, name)
			}

			estimated := EstimatedOneRepMax(exercise.WeightLbs, exercise.Reps)

			for _, band := range repBands {
				if exercise.Reps < band.min || exercise.Reps > band.max {
					continue
				}
				current := rec.bands[band.name]
				if current == nil || estimated > current.Estimated1RM {
					rec.bands[band.name] = &LiftSet{
						Weight:       exercise.WeightLbs,
						Reps:         exercise.Reps,
						RPE:          exercise.RPE,
						Date:         workout.DateString(),
						Estimated1RM: round(estimated, 1),
					}
				}
				break
			}

			if !workout.Date.Before(cutoff) {
				date := workout.DateString()
				if rec.recent == nil || date > rec.recent.Date {
					rec.recent = &RecentLift{
						Weight: exercise.WeightLbs,
						Reps:   exercise.Reps,
						RPE:    exercise.RPE,
						Date:   date,
					}
				}
			}
		}
	}

	result := make([]KeyLiftPR, 0, len(order))
	for _, name := range order {
		rec := records[name]
		pr := KeyLiftPR{
			Exercise:      name,
			StrengthPR:    rec.bands["strength"],
			HypertrophyPR: rec.bands["hypertrophy"],
			EndurancePR:   rec.bands["endurance"],
			Recent:        rec.recent,
		}
		for _, set := range rec.bands {
			if set.Estimated1RM > pr.BestEstimated1RM {
				pr.BestEstimated1RM = set.Estimated1RM
			}
		}
		result = append(result, pr)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].BestEstimated1RM > result[j].BestEstimated1RM
	})

	return result
}

// ExerciseSession is one appearance of an exercise in the
// progression timeline.
type ExerciseSession struct {
	Date         string   `json:"date"`
	Weight       float64  `json:"weight"`
	Reps         int      `json:"reps"`
	RPE          *float64 `json:"rpe"`
	Volume       float64  `json:"volume"`
	Estimated1RM float64  `json:"estimated_1rm"`
}

// ExerciseProgression lists every logged set of one exercise in date
// order. The name matches case-insensitively, without alias
// normalization.
func (a *Analyzer) ExerciseProgression(workouts []models.LiftingWorkout, exerciseName string) []ExerciseSession {
	name := strings.ToLower(strings.TrimSpace(exerciseName))

	sorted := make([]models.LiftingWorkout, len(workouts))
	copy(sorted, workouts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var progression []ExerciseSession
	for _, workout := range sorted {
		for _, exercise := range workout.Exercises {
			if strings.ToLower(strings.TrimSpace(exercise.Name)) != name {
				continue
			}
			progression = append(progression, ExerciseSession{
				Date:         workout.DateString(),
				Weight:       exercise.WeightLbs,
				Reps:         exercise.Reps,
				RPE:          exercise.RPE,
				Volume:       exercise.Volume(),
				Estimated1RM: round(EstimatedOneRepMax(exercise.WeightLbs, exercise.Reps), 1),
			})
		}
	}

	return progression
}

// MuscleGroupVolume is the total volume lifted for one muscle group
// label.
type MuscleGroupVolume struct {
	MuscleGroup string  `json:"muscle_group"`
	Volume      float64 `json:"volume"`
}

// VolumeByMuscleGroup sums total volume per muscle group label,
// highest volume first.
func (a *Analyzer) VolumeByMuscleGroup(workouts []models.LiftingWorkout) []MuscleGroupVolume {
	volumes := make(map[string]float64)
	var order []string

	for _, workout := range workouts {
		if _, ok := volumes[workout.MuscleGroups]; !ok {
			order = append(order, workout.MuscleGroups)
		}
		volumes[workout.MuscleGroups] += workout.TotalVolume()
	}

	result := make([]MuscleGroupVolume, 0, len(order))
	for _, group := range order {
		result = append(result, MuscleGroupVolume{
			MuscleGroup: group,
			Volume:      volumes[group],
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Volume > result[j].Volume
	})

	return result
}

// TrainingFrequency summarizes how often workouts happen.
type TrainingFrequency struct {
	AvgDaysBetween       float64        `json:"avg_days_between"`
	WorkoutsPerWeek      float64        `json:"workouts_per_week"`
	TotalWorkouts        int            `json:"total_workouts,omitempty"`
	MuscleGroupFrequency map[string]int `json:"muscle_group_frequency,omitempty"`
}

// TrainingFrequency calculates the average gap between workouts and
// the workouts-per-week rate over the logged period. With a single
// workout the rate is the raw count.
func (a *Analyzer) TrainingFrequency(workouts []models.LiftingWorkout) TrainingFrequency {
	if len(workouts) == 0 {
		return TrainingFrequency{}
	}

	sorted := make([]models.LiftingWorkout, len(workouts))
	copy(sorted, workouts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var avgGap float64
	if len(sorted) > 1 {
		var totalGap int
		for i := 1; i < len(sorted); i++ {
			totalGap += daysBetween(sorted[i-1].Date, sorted[i].Date)
		}
		avgGap = float64(totalGap) / float64(len(sorted)-1)
	}

	perWeek := float64(len(workouts))
	if len(sorted) >= 2 {
		spanDays := daysBetween(sorted[0].Date, sorted[len(sorted)-1].Date)
		weeks := float64(spanDays) / 7
		if weeks < 1 {
			weeks = 1
		}
		perWeek = float64(len(workouts)) / weeks
	}

	groupCounts := make(map[string]int)
	for _, workout := range workouts {
		groupCounts[workout.MuscleGroups]++
	}

	return TrainingFrequency{
		AvgDaysBetween:       round(avgGap, 1),
		WorkoutsPerWeek:      round(perWeek, 1),
		TotalWorkouts:        len(workouts),
		MuscleGroupFrequency: groupCounts,
	}
}

// DefaultBodyweightLbs is assumed when no workout carries a logged
// bodyweight.
const DefaultBodyweightLbs = 180.0

// StrengthStandard is the best estimated 1RM for one of the big
// three lift categories, relative to bodyweight.
type StrengthStandard struct {
	Lift         string  `json:"lift"`
	Exercise     string  `json:"exercise"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Estimated1RM float64 `json:"estimated_1rm"`
	BWRatio      float64 `json:"bw_ratio"`
	Date         string  `json:"date"`
}

// strengthCategory matches exercise names to a big-three category by
// substring.
type strengthCategory struct {
	name     string
	patterns []string
}

// strengthCategories are checked in order, first match wins. Bench
// variants go first so "db press" never lands in another bucket.
var strengthCategories = []strengthCategory{
	{"Bench Press", []string{"bench", "chest press", "db press", "flat db"}},
	{"Squat", []string{"squat"}},
	{"Deadlift", []string{"deadlift", "rdl"}},
}

// StrengthStandards finds the best estimated 1RM per big-three
// category and relates it to bodyweight, highest ratio first.
func (a *Analyzer) StrengthStandards(workouts []models.LiftingWorkout, bodyweightLbs float64) []StrengthStandard {
	maxes := make(map[string]StrengthStandard)
	var order []string

	for _, workout := range workouts {
		for _, exercise := range workout.Exercises {
			name := strings.ToLower(strings.TrimSpace(exercise.Name))

			var category string
			for _, cat := range strengthCategories {
				for _, pattern := range cat.patterns {
					if strings.Contains(name, pattern) {
						category = cat.name
						break
					}
				}
				if category != "" {
					break
				}
			}
			if category == "" {
				continue
			}

			estimated := EstimatedOneRepMax(exercise.WeightLbs, exercise.Reps)
			current, seen := maxes[category]
			if !seen {
				order = append(order, category)
			}
			if !seen || estimated > current.Estimated1RM {
				maxes[category] = StrengthStandard{
					Lift:         category,
					Exercise:     exercise.Name,
					Weight:       exercise.WeightLbs,
					Reps:         exercise.Reps,
					Estimated1RM: round(estimated, 1),
					BWRatio:      round(estimated/bodyweightLbs, 2),
					Date:         workout.DateString(),
				}
			}
		}
	}

	result := make([]StrengthStandard, 0, len(order))
	for _, category := range order {
		result = append(result, maxes[category])
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].BWRatio > result[j].BWRatio
	})

	return result
}

// AccessoryPR is the best performance for one accessory lift.
// Bodyweight movements track max reps, weighted movements track
// estimated 1RM.
type AccessoryPR struct {
	Lift         string   `json:"lift"`
	Exercise     string   `json:"exercise"`
	Weight       float64  `json:"weight"`
	Reps         int      `json:"reps"`
	Estimated1RM *float64 `json:"estimated_1rm,omitempty"`
	Date         string   `json:"date"`
}

// AccessoryPRs finds the best set per tracked accessory lift, in the
// order the lifts first appear. Push-ups and pull-ups also come from
// the dedicated workout counters.
func (a *Analyzer) AccessoryPRs(workouts []models.LiftingWorkout) []AccessoryPR {
	maxes := make(map[string]AccessoryPR)
	var order []string

	record := func(lift string, pr AccessoryPR) {
		if _, seen := maxes[lift]; !seen {
			order = append(order, lift)
		}
		maxes[lift] = pr
	}

	for _, workout := range workouts {
		if workout.Pushups != nil && *workout.Pushups > 0 {
			current, seen := maxes["push-ups"]
			if !seen || *workout.Pushups > current.Reps {
				record("push-ups", AccessoryPR{
					Lift:     "push-ups",
					Exercise: "push-ups",
					Reps:     *workout.Pushups,
					Date:     workout.DateString(),
				})
			}
		}

		if workout.Pullups != nil && *workout.Pullups > 0 {
			current, seen := maxes["pull-ups"]
			if !seen || *workout.Pullups > current.Reps {
				record("pull-ups", AccessoryPR{
					Lift:     "pull-ups",
					Exercise: "pull-ups",
					Reps:     *workout.Pullups,
					Date:     workout.DateString(),
				})
			}
		}

		for _, exercise := range workout.Exercises {
			name := strings.ToLower(strings.TrimSpace(exercise.Name))

			var category string
			for _, lift := range accessoryLifts {
				for _, pattern := range lift.patterns {
					if strings.Contains(name, pattern) {
						category = lift.name
						break
					}
				}
				if category != "" {
					break
				}
			}
			if category == "" {
				continue
			}

			if category == "pull-ups" || category == "push-ups" {
				current, seen := maxes[category]
				if !seen || exercise.Reps > current.Reps {
					record(category, AccessoryPR{
						Lift:     category,
						Exercise: exercise.Name,
						Weight:   exercise.WeightLbs,
						Reps:     exercise.Reps,
						Date:     workout.DateString(),
					})
				}
				continue
			}

			estimated := round(EstimatedOneRepMax(exercise.WeightLbs, exercise.Reps), 1)
			current, seen := maxes[category]
			if !seen || current.Estimated1RM == nil || estimated > *current.Estimated1RM {
				record(category, AccessoryPR{
					Lift:         category,
					Exercise:     exercise.Name,
					Weight:       exercise.WeightLbs,
					Reps:         exercise.Reps,
					Estimated1RM: &estimated,
					Date:         workout.DateString(),
				})
			}
		}
	}

	result := make([]AccessoryPR, 0, len(order))
	for _, lift := range order {
		result = append(result, maxes[lift])
	}

	return result
}

// AllExercises lists every distinct exercise name, lowercased, in
// alphabetical order.
func (a *Analyzer) AllExercises(workouts []models.LiftingWorkout) []string {
	seen := make(map[string]bool)
	for _, workout := range workouts {
		for _, exercise := range workout.Exercises {
			seen[strings.ToLower(strings.TrimSpace(exercise.Name))] = true
		}
	}

	exercises := make([]string, 0, len(seen))
	for name := range seen {
		exercises = append(exercises, name)
	}
	sort.Strings(exercises)

	return exercises
}

// AdvancedLiftingStats is the full advanced lifting report.
type AdvancedLiftingStats struct {
	KeyLiftPRs        []KeyLiftPR         `json:"key_lift_prs"`
	RepRangePRs       []RepRangeRecord    `json:"rep_range_prs"`
	StrengthStandards []StrengthStandard  `json:"strength_standards"`
	TrainingFrequency TrainingFrequency   `json:"training_frequency"`
	VolumeByMuscle    []MuscleGroupVolume `json:"volume_by_muscle"`
	VolumeTrend       []WeeklyVolume      `json:"volume_trend"`
	AllExercises      []string            `json:"all_exercises"`
}

// AdvancedLiftingStats assembles the full advanced lifting report.
// Cardio-only rows are excluded first; strength standards use the
// latest logged bodyweight, or the default when none was logged.
// Returns the zero value when nothing remains to analyze.
func (a *Analyzer) AdvancedLiftingStats(workouts []models.LiftingWorkout) AdvancedLiftingStats {
	lifting := FilterCardioWorkouts(workouts)
	if len(lifting) == 0 {
		return AdvancedLiftingStats{}
	}

	bodyweight := DefaultBodyweightLbs
	for _, w := range lifting {
		if w.BodyweightLbs != nil {
			bodyweight = *w.BodyweightLbs
		}
	}

	return AdvancedLiftingStats{
		KeyLiftPRs:        a.KeyLiftPRs(lifting),
		RepRangePRs:       a.RepRangeRecords(lifting, 8, 10, true),
		StrengthStandards: a.StrengthStandards(lifting, bodyweight),
		TrainingFrequency: a.TrainingFrequency(lifting),
		VolumeByMuscle:    a.VolumeByMuscleGroup(lifting),
		VolumeTrend:       a.VolumeTrend(lifting, VolumeTrendWindowWeeks),
		AllExercises:      a.AllExercises(lifting),
	}
}
