package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/mstanek/fitsite/internal/models"

	log "github.com/sirupsen/logrus"
)

// expected column names, matched case-insensitively
const (
	dateColumn        = "date"
	muscleGroupColumn = "muscle group(s)"
	cardioColumn      = "cardio"
	pushupsColumn     = "push-ups"
	pullupsColumn     = "pull-ups"
	weightColumn      = "weight"
	memoColumn        = "memo"
)

// dateFormats the workout sheet shows up with, tried in order.
var dateFormats = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"2/1/2006",
}

// ParseRows parses workout rows as they come out of the sheet: the
// first row holds the headers, every following row is one workout
// day. Rows with a missing or unparseable date are skipped with a
// warning.
func ParseRows(rows [][]string) ([]models.LiftingWorkout, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	headers := rows[0]
	dateIdx := columnIndex(headers, dateColumn)
	if dateIdx < 0 {
		return nil, ErrDateColumnMissing
	}
	muscleIdx := columnIndex(headers, muscleGroupColumn)
	cardioIdx := columnIndex(headers, cardioColumn)
	pushupsIdx := columnIndex(headers, pushupsColumn)
	pullupsIdx := columnIndex(headers, pullupsColumn)
	weightIdx := columnIndex(headers, weightColumn)
	memoIdx := columnIndex(headers, memoColumn)
	exerciseIndices := exerciseColumns(headers)

	var workouts []models.LiftingWorkout
	for i, row := range rows[1:] {
		rowNum := i + 2

		dateVal := strings.TrimSpace(cell(row, dateIdx))
		if dateVal == "" {
			continue
		}

		date, ok := parseDate(dateVal)
		if !ok {
			log.Warnf("skipping row %d: invalid date %q", rowNum, dateVal)
			continue
		}

		var exercises []models.Exercise
		for _, idx := range exerciseIndices {
			if exercise, ok := models.ParseExercise(cell(row, idx)); ok {
				exercises = append(exercises, exercise)
			}
		}

		var cardio *models.CardioSession
		if session, ok := models.ParseCardioSession(cell(row, cardioIdx)); ok {
			cardio = &session
		}

		muscleGroups := strings.TrimSpace(cell(row, muscleIdx))
		if muscleGroups == "" {
			muscleGroups = "Unknown"
		}

		workout := models.LiftingWorkout{
			Date:          date,
			MuscleGroups:  muscleGroups,
			Exercises:     exercises,
			Cardio:        cardio,
			Pushups:       optionalInt(cell(row, pushupsIdx)),
			Pullups:       optionalInt(cell(row, pullupsIdx)),
			BodyweightLbs: optionalFloat(cell(row, weightIdx)),
		}
		if notes := strings.TrimSpace(cell(row, memoIdx)); notes != "" {
			workout.Notes = &notes
		}

		workouts = append(workouts, workout)
	}

	return workouts, nil
}

func parseDate(dateStr string) (time.Time, bool) {
	for _, format := range dateFormats {
		if date, err := time.Parse(format, dateStr); err == nil {
			return date.UTC(), true
		}
	}
	return time.Time{}, false
}

func columnIndex(headers []string, name string) int {
	for i, header := range headers {
		if strings.EqualFold(strings.TrimSpace(header), name) {
			return i
		}
	}
	return -1
}

// exerciseColumns finds the exercise cells, headed like
// "E1 (type,weight,reps,rpe)".
func exerciseColumns(headers []string) []int {
	var indices []int
	for i, header := range headers {
		if strings.HasPrefix(strings.ToUpper(header), "E") && strings.Contains(header, "(") {
			indices = append(indices, i)
		}
	}
	return indices
}

func cell(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

func optionalInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &parsed
}

func optionalFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
