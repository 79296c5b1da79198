package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mstanek/fitsite/internal/models"
)

// RunRef points to a single notable run.
type RunRef struct {
	Name     string  `json:"name"`
	Date     string  `json:"date"`
	Distance float64 `json:"distance"`
	Pace     string  `json:"pace"`
}

// RunningStats is the aggregate running summary.
type RunningStats struct {
	TotalRuns          int     `json:"total_runs"`
	TotalMiles         float64 `json:"total_miles"`
	TotalTimeHours     float64 `json:"total_time_hours"`
	TotalElevationFeet float64 `json:"total_elevation_feet"`
	AvgDistance        float64 `json:"avg_distance"`
	AvgPace            string  `json:"avg_pace"`
	FastestPace        string  `json:"fastest_pace"`
	LongestRunMiles    float64 `json:"longest_run_miles"`
	RunsThisMonth      int     `json:"runs_this_month"`
	MilesThisMonth     float64 `json:"miles_this_month"`
	FastestRun         *RunRef `json:"fastest_run,omitempty"`
	LongestRun         *RunRef `json:"longest_run,omitempty"`
}

// RunningStats calculates the aggregate running statistics over all
// run-type activities. Zero-distance runs are excluded from any
// pace-based figure.
func (a *Analyzer) RunningStats(activities []models.Activity) RunningStats {
	runs := filterRuns(activities)

	if len(runs) == 0 {
		return RunningStats{
			AvgPace:     "N/A",
			FastestPace: "N/A",
		}
	}

	var totalMiles, totalElevation float64
	var totalSeconds int
	for _, r := range runs {
		totalMiles += r.DistanceMiles
		totalSeconds += r.MovingTimeSeconds
		totalElevation += r.ElevationGainFeet
	}

	var paceSum, fastestPaceSecs float64
	var validPaces int
	var fastestRun *models.Activity
	for i, r := range runs {
		pace, ok := r.PaceSeconds()
		if !ok {
			continue
		}
		paceSum += pace
		validPaces++
		if fastestRun == nil || pace < fastestPaceSecs {
			fastestPaceSecs = pace
			fastestRun = &runs[i]
		}
	}

	var avgPaceSecs float64
	if validPaces > 0 {
		avgPaceSecs = paceSum / float64(validPaces)
	}

	today := a.today()
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	var monthRuns int
	var monthMiles float64
	for _, r := range runs {
		if !r.Date.Before(monthStart) {
			monthRuns++
			monthMiles += r.DistanceMiles
		}
	}

	longest := runs[0]
	for _, r := range runs[1:] {
		if r.DistanceMiles > longest.DistanceMiles {
			longest = r
		}
	}

	stats := RunningStats{
		TotalRuns:          len(runs),
		TotalMiles:         round(totalMiles, 1),
		TotalTimeHours:     round(float64(totalSeconds)/3600, 1),
		TotalElevationFeet: round(totalElevation, 0),
		AvgDistance:        round(totalMiles/float64(len(runs)), 2),
		AvgPace:            FormatPace(avgPaceSecs),
		FastestPace:        FormatPace(fastestPaceSecs),
		LongestRunMiles:    longest.DistanceMiles,
		RunsThisMonth:      monthRuns,
		MilesThisMonth:     round(monthMiles, 1),
		LongestRun: &RunRef{
			Name:     longest.Name,
			Date:     longest.DateString(),
			Distance: longest.DistanceMiles,
			Pace:     longest.PacePerMile(),
		},
	}

	if fastestRun != nil {
		stats.FastestRun = &RunRef{
			Name:     fastestRun.Name,
			Date:     fastestRun.DateString(),
			Distance: fastestRun.DistanceMiles,
			Pace:     fastestRun.PacePerMile(),
		}
	}

	return stats
}

// WeeklyMileage is the running volume for one ISO week.
type WeeklyMileage struct {
	Week    string  `json:"week"`
	Miles   float64 `json:"miles"`
	Runs    int     `json:"runs"`
	Minutes float64 `json:"minutes"`
	Date    string  `json:"date"`
}

// WeeklyMileage groups runs by ISO (year, week) and sums mileage,
// run count and moving time.
func (a *Analyzer) WeeklyMileage(activities []models.Activity) []WeeklyMileage {
	runs := filterRuns(activities)
	if len(runs) == 0 {
		return nil
	}

	type weekKey struct {
		year, week int
	}
	weekly := make(map[weekKey]*WeeklyMileage)
	var keys []weekKey

	for _, run := range runs {
		year, week := run.Date.ISOWeek()
		key := weekKey{year, week}
		entry, ok := weekly[key]
		if !ok {
			entry = &WeeklyMileage{
				Week: fmt.Sprintf("%d-W%02d", year, week),
				Date: run.DateString(),
			}
			weekly[key] = entry
			keys = append(keys, key)
		}
		entry.Miles += run.DistanceMiles
		entry.Runs++
		entry.Minutes += run.MovingTimeMinutes()
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].week < keys[j].week
	})

	result := make([]WeeklyMileage, 0, len(keys))
	for _, key := range keys {
		entry := *weekly[key]
		entry.Miles = round(entry.Miles, 1)
		entry.Minutes = round(entry.Minutes, 1)
		result = append(result, entry)
	}

	return result
}

// MonthlyMileage is the running volume for one calendar month.
type MonthlyMileage struct {
	Month string  `json:"month"`
	Miles float64 `json:"miles"`
	Runs  int     `json:"runs"`
	Hours float64 `json:"hours"`
}

// MonthlyMileage groups runs by calendar month and sums mileage,
// run count and moving time.
func (a *Analyzer) MonthlyMileage(activities []models.Activity) []MonthlyMileage {
	runs := filterRuns(activities)
	if len(runs) == 0 {
		return nil
	}

	type monthAgg struct {
		miles   float64
		runs    int
		minutes float64
	}
	monthly := make(map[string]*monthAgg)
	for _, run := range runs {
		key := run.Date.Format("2006-01")
		agg, ok := monthly[key]
		if !ok {
			agg = &monthAgg{}
			monthly[key] = agg
		}
		agg.miles += run.DistanceMiles
		agg.runs++
		agg.minutes += run.MovingTimeMinutes()
	}

	months := make([]string, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Strings(months)

	result := make([]MonthlyMileage, 0, len(months))
	for _, month := range months {
		agg := monthly[month]
		result = append(result, MonthlyMileage{
			Month: month,
			Miles: round(agg.miles, 1),
			Runs:  agg.runs,
			Hours: round(agg.minutes/60, 1),
		})
	}

	return result
}

// LocationStats aggregates runs per location label.
type LocationStats struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Miles float64 `json:"miles"`
}

// Locations derives a location label from each run name - the text
// after the last ']' for names in the "[time] location" format, the
// whole name otherwise - and aggregates run count and mileage per
// label, most visited first.
func (a *Analyzer) Locations(activities []models.Activity) []LocationStats {
	runs := filterRuns(activities)

	locations := make(map[string]*LocationStats)
	var order []string

	for _, run := range runs {
		name := strings.ToLower(run.Name)
		loc := name
		if idx := strings.LastIndex(name, "]"); idx != -1 {
			loc = name[idx+1:]
		}
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}

		entry, ok := locations[loc]
		if !ok {
			entry = &LocationStats{Name: loc}
			locations[loc] = entry
			order = append(order, loc)
		}
		entry.Count++
		entry.Miles += run.DistanceMiles
	}

	result := make([]LocationStats, 0, len(order))
	for _, loc := range order {
		entry := *locations[loc]
		entry.Miles = round(entry.Miles, 1)
		result = append(result, entry)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	return result
}

// StreakStats holds running streak counters, in consecutive
// calendar days.
type StreakStats struct {
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	LastRunDate   string `json:"last_run_date,omitempty"`
}

// RunningStreaks calculates the longest and the currently active
// streak of consecutive days with at least one run. The current
// streak is zeroed when the last run is more than one day old.
func (a *Analyzer) RunningStreaks(activities []models.Activity) StreakStats {
	runs := filterRuns(activities)
	if len(runs) == 0 {
		return StreakStats{}
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Date.Before(runs[j].Date)
	})

	longest, current := 1, 1
	for i := 1; i < len(runs); i++ {
		diff := daysBetween(runs[i-1].Date, runs[i].Date)
		if diff == 1 {
			current++
			if current > longest {
				longest = current
			}
		} else if diff > 1 {
			current = 1
		}
	}

	// a streak stays active for one rest day, not longer
	if daysBetween(runs[len(runs)-1].Date, a.today()) > 1 {
		current = 0
	}

	return StreakStats{
		CurrentStreak: current,
		LongestStreak: longest,
		LastRunDate:   runs[len(runs)-1].DateString(),
	}
}

// paceZoneBound defines one pace zone as a half-open interval
// [min, max) in seconds per mile.
type paceZoneBound struct {
	name     string
	min, max float64
}

// paceZoneBounds are evaluated in order; every valid pace falls into
// exactly one zone.
var paceZoneBounds = []paceZoneBound{
	{"easy", 540, math.Inf(1)}, // > 9:00
	{"steady", 480, 540},       // 8:00 - 9:00
	{"tempo", 420, 480},        // 7:00 - 8:00
	{"threshold", 360, 420},    // 6:00 - 7:00
	{"speed", 0, 360},          // < 6:00
}

// PaceZone is the share of runs that fall into one pace band.
type PaceZone struct {
	Zone       string  `json:"zone"`
	PaceRange  string  `json:"pace_range"`
	Count      int     `json:"count"`
	Miles      float64 `json:"miles"`
	Percentage float64 `json:"percentage"`
}

// PaceZones buckets every run with a valid pace into exactly one of
// the five fixed pace zones.
func (a *Analyzer) PaceZones(activities []models.Activity) []PaceZone {
	var validRuns int
	counts := make([]int, len(paceZoneBounds))
	miles := make([]float64, len(paceZoneBounds))

	for _, act := range activities {
		if act.Type != models.ActivityTypeRun {
			continue
		}
		pace, ok := act.PaceSeconds()
		if !ok {
			continue
		}
		validRuns++
		for i, zone := range paceZoneBounds {
			if pace >= zone.min && pace < zone.max {
				counts[i]++
				miles[i] += act.DistanceMiles
				break
			}
		}
	}

	zones := make([]PaceZone, 0, len(paceZoneBounds))
	for i, zone := range paceZoneBounds {
		var percentage float64
		if validRuns > 0 {
			percentage = round(float64(counts[i])/float64(validRuns)*100, 1)
		}
		zones = append(zones, PaceZone{
			Zone:       zone.name,
			PaceRange:  formatPaceRange(zone.min, zone.max),
			Count:      counts[i],
			Miles:      round(miles[i], 1),
			Percentage: percentage,
		})
	}

	return zones
}

// HeartRateStats summarizes per-run average heart rates, over runs
// that carry heart rate data.
type HeartRateStats struct {
	Available        bool    `json:"available"`
	RunsWithHR       int     `json:"runs_with_hr,omitempty"`
	AvgHeartrate     float64 `json:"avg_heartrate,omitempty"`
	HighestAvgHR     float64 `json:"highest_avg_hr,omitempty"`
	LowestAvgHR      float64 `json:"lowest_avg_hr,omitempty"`
	MaxHeartrateEver *int    `json:"max_heartrate_ever,omitempty"`
}

// HeartRateStats calculates heart rate statistics over the runs that
// report an average heart rate.
func (a *Analyzer) HeartRateStats(activities []models.Activity) HeartRateStats {
	var avgHRs []float64
	var maxHR *int
	for _, act := range activities {
		if act.Type != models.ActivityTypeRun || act.AverageHeartrate == nil {
			continue
		}
		avgHRs = append(avgHRs, *act.AverageHeartrate)
		if act.MaxHeartrate != nil && (maxHR == nil || *act.MaxHeartrate > *maxHR) {
			maxHR = act.MaxHeartrate
		}
	}

	if len(avgHRs) == 0 {
		return HeartRateStats{Available: false}
	}

	sum, highest, lowest := 0.0, avgHRs[0], avgHRs[0]
	for _, hr := range avgHRs {
		sum += hr
		if hr > highest {
			highest = hr
		}
		if hr < lowest {
			lowest = hr
		}
	}

	return HeartRateStats{
		Available:        true,
		RunsWithHR:       len(avgHRs),
		AvgHeartrate:     round(sum/float64(len(avgHRs)), 0),
		HighestAvgHR:     round(highest, 0),
		LowestAvgHR:      round(lowest, 0),
		MaxHeartrateEver: maxHR,
	}
}

// PacePR points to the run with the fastest overall pace.
type PacePR struct {
	Name          string  `json:"name"`
	Date          string  `json:"date"`
	Pace          string  `json:"pace"`
	DistanceMiles float64 `json:"distance_miles"`
}

// DistancePR points to the longest run.
type DistancePR struct {
	Name          string  `json:"name"`
	Date          string  `json:"date"`
	DistanceMiles float64 `json:"distance_miles"`
	Pace          string  `json:"pace"`
	TimeMinutes   float64 `json:"time_minutes"`
}

// ElevationPR points to the run with the most elevation gain.
type ElevationPR struct {
	Name          string  `json:"name"`
	Date          string  `json:"date"`
	ElevationFeet float64 `json:"elevation_feet"`
	DistanceMiles float64 `json:"distance_miles"`
}

// EffortPR points to the run with the highest suffer score.
type EffortPR struct {
	Name          string  `json:"name"`
	Date          string  `json:"date"`
	SufferScore   int     `json:"suffer_score"`
	DistanceMiles float64 `json:"distance_miles"`
	Pace          string  `json:"pace"`
}

// FiveKPR points to the fastest run close to 5K distance, with the
// pace extrapolated to a full 5K.
type FiveKPR struct {
	Name            string  `json:"name"`
	Date            string  `json:"date"`
	Pace            string  `json:"pace"`
	ActualDistance  float64 `json:"actual_distance"`
	Estimated5KTime string  `json:"estimated_5k_time"`
}

// RunningPRs holds the running personal records; each record is
// absent when no qualifying run exists.
type RunningPRs struct {
	FastestPace   *PacePR      `json:"fastest_pace,omitempty"`
	LongestRun    *DistancePR  `json:"longest_run,omitempty"`
	MostElevation *ElevationPR `json:"most_elevation,omitempty"`
	HardestEffort *EffortPR    `json:"hardest_effort,omitempty"`
	Fastest5KPace *FiveKPR     `json:"fastest_5k_pace,omitempty"`
}

// fiveKWindow is the distance window, in miles, for runs considered
// close enough to a 5K for pace extrapolation.
const (
	fiveKWindowMinMiles = 2.8
	fiveKWindowMaxMiles = 4.0
	fiveKMiles          = 3.1
)

// RunningPRs extracts the running personal records. Zero-distance
// runs never qualify for the pace-based records.
func (a *Analyzer) RunningPRs(activities []models.Activity) RunningPRs {
	runs := filterRuns(activities)
	if len(runs) == 0 {
		return RunningPRs{}
	}

	var prs RunningPRs

	var fastest *models.Activity
	var fastestPace float64
	for i, r := range runs {
		pace, ok := r.PaceSeconds()
		if !ok || r.DistanceMiles <= 0 {
			continue
		}
		if fastest == nil || pace < fastestPace {
			fastest = &runs[i]
			fastestPace = pace
		}
	}
	if fastest != nil {
		prs.FastestPace = &PacePR{
			Name:          fastest.Name,
			Date:          fastest.DateString(),
			Pace:          fastest.PacePerMile(),
			DistanceMiles: fastest.DistanceMiles,
		}
	}

	longest := runs[0]
	for _, r := range runs[1:] {
		if r.DistanceMiles > longest.DistanceMiles {
			longest = r
		}
	}
	prs.LongestRun = &DistancePR{
		Name:          longest.Name,
		Date:          longest.DateString(),
		DistanceMiles: longest.DistanceMiles,
		Pace:          longest.PacePerMile(),
		TimeMinutes:   round(longest.MovingTimeMinutes(), 1),
	}

	mostClimb := runs[0]
	for _, r := range runs[1:] {
		if r.ElevationGainFeet > mostClimb.ElevationGainFeet {
			mostClimb = r
		}
	}
	prs.MostElevation = &ElevationPR{
		Name:          mostClimb.Name,
		Date:          mostClimb.DateString(),
		ElevationFeet: mostClimb.ElevationGainFeet,
		DistanceMiles: mostClimb.DistanceMiles,
	}

	var hardest *models.Activity
	for i, r := range runs {
		if r.SufferScore == nil {
			continue
		}
		if hardest == nil || *r.SufferScore > *hardest.SufferScore {
			hardest = &runs[i]
		}
	}
	if hardest != nil {
		prs.HardestEffort = &EffortPR{
			Name:          hardest.Name,
			Date:          hardest.DateString(),
			SufferScore:   *hardest.SufferScore,
			DistanceMiles: hardest.DistanceMiles,
			Pace:          hardest.PacePerMile(),
		}
	}

	var fastest5K *models.Activity
	var fastest5KPace float64
	for i, r := range runs {
		pace, ok := r.PaceSeconds()
		if !ok || r.DistanceMiles < fiveKWindowMinMiles || r.DistanceMiles > fiveKWindowMaxMiles {
			continue
		}
		if fastest5K == nil || pace < fastest5KPace {
			fastest5K = &runs[i]
			fastest5KPace = pace
		}
	}
	if fastest5K != nil {
		prs.Fastest5KPace = &FiveKPR{
			Name:            fastest5K.Name,
			Date:            fastest5K.DateString(),
			Pace:            fastest5K.PacePerMile(),
			ActualDistance:  fastest5K.DistanceMiles,
			Estimated5KTime: formatTimeMinutes(fastest5KPace * fiveKMiles / 60),
		}
	}

	return prs
}

// MonthlyTrend is the month-over-month running trend for one month.
type MonthlyTrend struct {
	Month         string   `json:"month"`
	Miles         float64  `json:"miles"`
	Runs          int      `json:"runs"`
	Hours         float64  `json:"hours"`
	ElevationFeet float64  `json:"elevation_feet"`
	AvgPace       string   `json:"avg_pace"`
	ChangePct     *float64 `json:"change_pct"`
}

// MonthlyTrends aggregates runs per calendar month and attaches the
// month-over-month mileage change. The change is absent for the
// first month and after a zero-mileage month.
func (a *Analyzer) MonthlyTrends(activities []models.Activity) []MonthlyTrend {
	runs := filterRuns(activities)
	if len(runs) == 0 {
		return nil
	}

	type monthAgg struct {
		miles     float64
		runs      int
		timeMins  float64
		elevation float64
		paces     []float64
	}
	monthly := make(map[string]*monthAgg)
	for _, run := range runs {
		key := run.Date.Format("2006-01")
		agg, ok := monthly[key]
		if !ok {
			agg = &monthAgg{}
			monthly[key] = agg
		}
		agg.miles += run.DistanceMiles
		agg.runs++
		agg.timeMins += run.MovingTimeMinutes()
		agg.elevation += run.ElevationGainFeet
		if pace, ok := run.PaceSeconds(); ok {
			agg.paces = append(agg.paces, pace)
		}
	}

	months := make([]string, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Strings(months)

	result := make([]MonthlyTrend, 0, len(months))
	var prevMiles *float64
	for _, month := range months {
		agg := monthly[month]

		var avgPace float64
		if len(agg.paces) > 0 {
			var sum float64
			for _, p := range agg.paces {
				sum += p
			}
			avgPace = sum / float64(len(agg.paces))
		}

		var change *float64
		if prevMiles != nil && *prevMiles > 0 {
			pct := round((agg.miles-*prevMiles) / *prevMiles*100, 1)
			change = &pct
		}

		result = append(result, MonthlyTrend{
			Month:         month,
			Miles:         round(agg.miles, 1),
			Runs:          agg.runs,
			Hours:         round(agg.timeMins/60, 1),
			ElevationFeet: round(agg.elevation, 0),
			AvgPace:       FormatPace(avgPace),
			ChangePct:     change,
		})

		miles := agg.miles
		prevMiles = &miles
	}

	return result
}

// AdvancedRunningStats is the full advanced running report.
type AdvancedRunningStats struct {
	TotalRuns       int            `json:"total_runs"`
	Streaks         StreakStats    `json:"streaks"`
	PaceZones       []PaceZone     `json:"pace_zones"`
	HeartRateStats  HeartRateStats `json:"heart_rate_stats"`
	PersonalRecords RunningPRs     `json:"personal_records"`
	MonthlyTrends   []MonthlyTrend `json:"monthly_trends"`
}

// AdvancedRunningStats assembles the full advanced running report.
// Returns the zero value when there are no runs at all.
func (a *Analyzer) AdvancedRunningStats(activities []models.Activity) AdvancedRunningStats {
	runs := filterRuns(activities)
	if len(runs) == 0 {
		return AdvancedRunningStats{}
	}

	return AdvancedRunningStats{
		TotalRuns:       len(runs),
		Streaks:         a.RunningStreaks(activities),
		PaceZones:       a.PaceZones(activities),
		HeartRateStats:  a.HeartRateStats(activities),
		PersonalRecords: a.RunningPRs(activities),
		MonthlyTrends:   a.MonthlyTrends(activities),
	}
}
