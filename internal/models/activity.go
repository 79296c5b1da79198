package models

import (
	"fmt"
	"time"
)

// ActivityType is the internal classification of a Strava activity.
type ActivityType string

const (
	ActivityTypeRun      ActivityType = "run"
	ActivityTypeWalk     ActivityType = "walk"
	ActivityTypeRide     ActivityType = "ride"
	ActivityTypeStrength ActivityType = "strength"
	ActivityTypeCardio   ActivityType = "cardio"
	ActivityTypeOther    ActivityType = "other"
)

var stravaTypeMapping = map[string]ActivityType{
	"Run":            ActivityTypeRun,
	"TrailRun":       ActivityTypeRun,
	"VirtualRun":     ActivityTypeRun,
	"Walk":           ActivityTypeWalk,
	"Hike":           ActivityTypeWalk,
	"Ride":           ActivityTypeRide,
	"VirtualRide":    ActivityTypeRide,
	"WeightTraining": ActivityTypeStrength,
}

// ActivityTypeFromStrava converts a Strava activity type string
// (e.g. "TrailRun") to the internal activity type.
func ActivityTypeFromStrava(stravaType string) ActivityType {
	if t, ok := stravaTypeMapping[stravaType]; ok {
		return t
	}
	return ActivityTypeOther
}

// Activity is a single endurance activity fetched from Strava.
// Date carries the calendar day only (midnight UTC).
type Activity struct {
	ID                  int64        `json:"id"`
	Name                string       `json:"name"`
	Type                ActivityType `json:"type"`
	SportType           string       `json:"sport_type"`
	Date                time.Time    `json:"date"`
	StartTime           time.Time    `json:"start_time"`
	DistanceMiles       float64      `json:"distance_miles"`
	DistanceMeters      float64      `json:"distance_meters"`
	MovingTimeSeconds   int          `json:"moving_time_seconds"`
	ElapsedTimeSeconds  int          `json:"elapsed_time_seconds"`
	ElevationGainFeet   float64      `json:"elevation_gain_feet"`
	ElevationGainMeters float64      `json:"elevation_gain_meters"`
	AverageSpeedMph     float64      `json:"average_speed_mph"`
	MaxSpeedMph         float64      `json:"max_speed_mph"`
	AverageHeartrate    *float64     `json:"average_heartrate,omitempty"`
	MaxHeartrate        *int         `json:"max_heartrate,omitempty"`
	AverageCadence      *float64     `json:"average_cadence,omitempty"`
	Calories            *int         `json:"calories,omitempty"`
	SufferScore         *int         `json:"suffer_score,omitempty"`
	Polyline            *string      `json:"polyline,omitempty"`
}

// MovingTimeMinutes returns the moving time converted to minutes.
func (a Activity) MovingTimeMinutes() float64 {
	return float64(a.MovingTimeSeconds) / 60
}

// PaceSeconds returns the pace in seconds per mile, and false when
// undefined (zero-distance activities have no pace).
func (a Activity) PaceSeconds() (float64, bool) {
	if a.DistanceMiles == 0 {
		return 0, false
	}
	return float64(a.MovingTimeSeconds) / a.DistanceMiles, true
}

// PacePerMile returns the pace formatted as "M:SS" per mile,
// or the empty string for zero-distance activities.
func (a Activity) PacePerMile() string {
	paceSeconds, ok := a.PaceSeconds()
	if !ok {
		return ""
	}
	minutes := int(paceSeconds) / 60
	seconds := int(paceSeconds) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// DateString returns the activity calendar date in ISO format.
func (a Activity) DateString() string {
	return a.Date.Format("2006-01-02")
}
