package strava

import (
	"math"
	"time"

	"github.com/mstanek/fitsite/internal/models"
)

const (
	metersPerMile     = 1609.34
	feetPerMeter      = 3.281
	mphPerMeterPerSec = 2.237
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// apiActivity is one activity as returned by the summary and detail
// endpoints.
type apiActivity struct {
	ID                 int64        `json:"id"`
	Name               string       `json:"name"`
	Type               string       `json:"type"`
	SportType          string       `json:"sport_type"`
	StartDateLocal     string       `json:"start_date_local"`
	Distance           float64      `json:"distance"`
	MovingTime         int          `json:"moving_time"`
	ElapsedTime        int          `json:"elapsed_time"`
	TotalElevationGain float64      `json:"total_elevation_gain"`
	AverageSpeed       float64      `json:"average_speed"`
	MaxSpeed           float64      `json:"max_speed"`
	AverageHeartrate   *float64     `json:"average_heartrate"`
	MaxHeartrate       *float64     `json:"max_heartrate"`
	AverageCadence     *float64     `json:"average_cadence"`
	Calories           *float64     `json:"calories"`
	SufferScore        *float64     `json:"suffer_score"`
	Map                *activityMap `json:"map"`
}

type activityMap struct {
	SummaryPolyline string `json:"summary_polyline"`
}

// startDateFormats cover the variants the API returns for local
// start dates.
var startDateFormats = []string{
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

// toActivity converts an API activity to the internal model,
// converting metric units to the imperial ones the reports use.
func (a apiActivity) toActivity() (models.Activity, error) {
	var startTime time.Time
	var err error
	for _, format := range startDateFormats {
		startTime, err = time.Parse(format, a.StartDateLocal)
		if err == nil {
			break
		}
	}
	if err != nil {
		return models.Activity{}, err
	}

	sportType := a.SportType
	if sportType == "" {
		sportType = a.Type
	}

	activity := models.Activity{
		ID:                  a.ID,
		Name:                a.Name,
		Type:                models.ActivityTypeFromStrava(a.Type),
		SportType:           sportType,
		Date:                time.Date(startTime.Year(), startTime.Month(), startTime.Day(), 0, 0, 0, 0, time.UTC),
		StartTime:           startTime,
		DistanceMiles:       roundTo(a.Distance/metersPerMile, 2),
		DistanceMeters:      a.Distance,
		MovingTimeSeconds:   a.MovingTime,
		ElapsedTimeSeconds:  a.ElapsedTime,
		ElevationGainFeet:   roundTo(a.TotalElevationGain*feetPerMeter, 1),
		ElevationGainMeters: a.TotalElevationGain,
		AverageSpeedMph:     roundTo(a.AverageSpeed*mphPerMeterPerSec, 2),
		MaxSpeedMph:         roundTo(a.MaxSpeed*mphPerMeterPerSec, 2),
		AverageHeartrate:    a.AverageHeartrate,
		AverageCadence:      a.AverageCadence,
	}

	if a.MaxHeartrate != nil {
		maxHR := int(*a.MaxHeartrate)
		activity.MaxHeartrate = &maxHR
	}
	if a.Calories != nil {
		calories := int(*a.Calories)
		activity.Calories = &calories
	}
	if a.SufferScore != nil {
		sufferScore := int(*a.SufferScore)
		activity.SufferScore = &sufferScore
	}
	if a.Map != nil && a.Map.SummaryPolyline != "" {
		polyline := a.Map.SummaryPolyline
		activity.Polyline = &polyline
	}

	return activity, nil
}

// ActivityStreams holds the time-series streams of one activity,
// keyed by stream type.
type ActivityStreams map[string]Stream

// Stream is one time-series data stream.
type Stream struct {
	Data         []float64 `json:"data"`
	SeriesType   string    `json:"series_type"`
	OriginalSize int       `json:"original_size"`
	Resolution   string    `json:"resolution"`
}
