package models

import (
	"strconv"
	"strings"
	"time"
)

// Exercise is one logged set within a lifting workout.
// Weight is in pounds; RPE is optional (1-10 scale).
type Exercise struct {
	Name      string   `json:"name"`
	WeightLbs float64  `json:"weight_lbs"`
	Reps      int      `json:"reps"`
	RPE       *float64 `json:"rpe,omitempty"`
}

// Volume returns weight × reps for this set.
func (e Exercise) Volume() float64 {
	return e.WeightLbs * float64(e.Reps)
}

// ParseExercise parses an exercise from a spreadsheet cell in the
// "name,weight,reps[,rpe]" format. Returns false for empty or
// malformed cells.
func ParseExercise(cell string) (Exercise, bool) {
	if strings.TrimSpace(cell) == "" {
		return Exercise{}, false
	}

	parts := strings.Split(cell, ",")
	if len(parts) < 3 {
		return Exercise{}, false
	}

	name := strings.TrimSpace(parts[0])

	weight := 0.0
	if w := strings.TrimSpace(parts[1]); w != "" {
		parsed, err := strconv.ParseFloat(w, 64)
		if err != nil {
			return Exercise{}, false
		}
		weight = parsed
	}

	reps := 0
	if r := strings.TrimSpace(parts[2]); r != "" {
		parsed, err := strconv.Atoi(r)
		if err != nil {
			return Exercise{}, false
		}
		reps = parsed
	}

	var rpe *float64
	if len(parts) > 3 {
		if r := strings.TrimSpace(parts[3]); r != "" {
			parsed, err := strconv.ParseFloat(r, 64)
			if err != nil {
				return Exercise{}, false
			}
			rpe = &parsed
		}
	}

	return Exercise{
		Name:      name,
		WeightLbs: weight,
		Reps:      reps,
		RPE:       rpe,
	}, true
}

// CardioSession is an optional cardio entry attached to a lifting
// workout. Carried through to exports but not used by the strength
// calculators.
type CardioSession struct {
	ActivityType    string   `json:"activity_type"`
	Distance        *float64 `json:"distance,omitempty"`
	DurationMinutes *float64 `json:"duration_minutes,omitempty"`
	Steps           *int     `json:"steps,omitempty"`
}

// ParseCardioSession parses a cardio cell in the
// "activity,distance-or-steps[,duration]" format. A value with a
// decimal point is a distance, otherwise a step count. Duration is
// either "M:SS" or plain minutes.
func ParseCardioSession(cell string) (CardioSession, bool) {
	if strings.TrimSpace(cell) == "" {
		return CardioSession{}, false
	}

	parts := strings.Split(cell, ",")
	if len(parts) < 2 {
		return CardioSession{}, false
	}

	session := CardioSession{
		ActivityType: strings.TrimSpace(parts[0]),
	}

	if val := strings.TrimSpace(parts[1]); val != "" {
		if strings.Contains(val, ".") {
			distance, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return CardioSession{}, false
			}
			session.Distance = &distance
		} else {
			steps, err := strconv.Atoi(val)
			if err != nil {
				return CardioSession{}, false
			}
			session.Steps = &steps
		}
	}

	if len(parts) >= 3 {
		if val := strings.TrimSpace(parts[2]); val != "" {
			duration, ok := parseDurationMinutes(val)
			if !ok {
				return CardioSession{}, false
			}
			session.DurationMinutes = &duration
		}
	}

	return session, true
}

func parseDurationMinutes(val string) (float64, bool) {
	if minsStr, secsStr, found := strings.Cut(val, ":"); found {
		mins, err := strconv.Atoi(minsStr)
		if err != nil {
			return 0, false
		}
		secs, err := strconv.Atoi(secsStr)
		if err != nil {
			return 0, false
		}
		return float64(mins) + float64(secs)/60, true
	}

	minutes, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return minutes, true
}

// LiftingWorkout is one strength training session, parsed from the
// workout spreadsheet. Date carries the calendar day only. Never
// mutated after construction.
type LiftingWorkout struct {
	Date          time.Time      `json:"date"`
	MuscleGroups  string         `json:"muscle_groups"`
	Exercises     []Exercise     `json:"exercises"`
	Cardio        *CardioSession `json:"cardio,omitempty"`
	Pushups       *int           `json:"pushups,omitempty"`
	Pullups       *int           `json:"pullups,omitempty"`
	BodyweightLbs *float64       `json:"bodyweight_lbs,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

// TotalVolume returns the summed volume across all exercises.
func (w LiftingWorkout) TotalVolume() float64 {
	var total float64
	for _, e := range w.Exercises {
		total += e.Volume()
	}
	return total
}

// ExerciseCount returns the number of logged sets in this workout.
func (w LiftingWorkout) ExerciseCount() int {
	return len(w.Exercises)
}

// DateString returns the workout calendar date in ISO format.
func (w LiftingWorkout) DateString() string {
	return w.Date.Format("2006-01-02")
}
