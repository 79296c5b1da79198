package analytics

import "strings"

// exerciseAliases maps free-text exercise name variants to canonical
// names. Hand-curated, exact match only after lower-casing and
// trimming; no fuzzy matching.
var exerciseAliases = map[string]string{
	// bench press variations
	"flat bb bench press": "bench press",
	"flat bb bench":       "bench press",
	"bb bench press":      "bench press",
	"bb bench":            "bench press",
	"barbell bench":       "bench press",
	"barbell bench press": "bench press",
	"flat bench":          "bench press",
	"flat bench press":    "bench press",
	"paused bb bench":     "bench press",
	"paused bench":        "bench press",
	// db bench variations
	"flat db press":       "db bench press",
	"flat db bench":       "db bench press",
	"flat db bench press": "db bench press",
	"db flat bench":       "db bench press",
	"db press":            "db bench press",
	"db bench":            "db bench press",
	"dumbbell bench":      "db bench press",
	// incline bench
	"db incline press":           "incline db press",
	"incline db bench":           "incline db press",
	"incline db bench press":     "incline db press",
	"incline chest press machine": "incline press",
	// squat variations
	"bb squat":      "squat",
	"barbell squat": "squat",
	"back squat":    "squat",
	"bb back squat": "squat",
	"sumo bb squat": "sumo squat",
	"sumo squat":    "sumo squat",
	// deadlift variations
	"conventional deadlift": "deadlift",
	"bb deadlift":           "deadlift",
	"barbell deadlift":      "deadlift",
	"sumo deadlift":         "sumo deadlift",
	"rdl":                   "romanian deadlift",
	"db rdl":                "db romanian deadlift",
	// overhead press
	"military press":        "overhead press",
	"ohp":                   "overhead press",
	"bb overhead press":     "overhead press",
	"bb military press":     "overhead press",
	"standing press":        "overhead press",
	"db shoulder press":     "db overhead press",
	"seated shoulder press": "db overhead press",
	"db ohp":                "db overhead press",
	// row variations
	"bb row":                  "barbell row",
	"bb-row":                  "barbell row",
	"bb-underhand row":        "barbell row",
	"underhand bb row":        "barbell row",
	"bent over row":           "barbell row",
	"pendlay row":             "barbell row",
	"t-bar row":               "t-bar row",
	"chest supported db rows": "db row",
	"chest supported db row":  "db row",
	"cable row":               "cable row",
	"seated cable row":        "cable row",
}

// keyCompoundLifts are the lifts tracked for rep range PRs:
// the big three plus common variations.
var keyCompoundLifts = map[string]bool{
	"bench press":       true,
	"db bench press":    true,
	"squat":             true,
	"hack squat":        true,
	"deadlift":          true,
	"sumo deadlift":     true,
	"romanian deadlift": true,
}

// bigThreeLifts are the lifts tracked for estimated 1RM records.
var bigThreeLifts = map[string]bool{
	"bench press": true,
	"squat":       true,
	"deadlift":    true,
}

// NormalizeExerciseName maps an exercise name to its canonical form.
// Unknown names pass through lower-cased and trimmed.
func NormalizeExerciseName(name string) string {
	nameLower := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := exerciseAliases[nameLower]; ok {
		return canonical
	}
	return nameLower
}

// IsKeyCompoundLift reports whether the exercise normalizes to one of
// the key compound lifts.
func IsKeyCompoundLift(name string) bool {
	return keyCompoundLifts[NormalizeExerciseName(name)]
}

// IsBigThreeLift reports whether the exercise normalizes to bench
// press, squat or deadlift.
func IsBigThreeLift(name string) bool {
	return bigThreeLifts[NormalizeExerciseName(name)]
}

// accessoryLift matches exercise names to a tracked accessory lift
// by substring.
type accessoryLift struct {
	name     string
	patterns []string
}

// accessoryLifts are checked in order, first match wins.
var accessoryLifts = []accessoryLift{
	{"db press", []string{"db press", "dumbbell press", "flat db press", "incline db press"}},
	{"lat pulldown", []string{"lat pulldown", "lat pull down", "lat pull-down", "cable lat pulldown"}},
	{"pull-ups", []string{"pull-ups", "pullups", "pull ups", "chin-ups", "chinups", "chin ups"}},
	{"push-ups", []string{"push-ups", "pushups", "push ups"}},
	{"helms row", []string{"helms row", "helm row", "chest supported row"}},
}
