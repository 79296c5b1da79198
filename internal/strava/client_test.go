package strava_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mstanek/fitsite/internal/models"
	"github.com/mstanek/fitsite/internal/strava"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const activitiesPageOne = `[
	{
		"id": 101,
		"name": "[42:10] city park",
		"type": "Run",
		"sport_type": "Run",
		"start_date_local": "2024-06-03T07:15:00Z",
		"distance": 5000,
		"moving_time": 2530,
		"elapsed_time": 2600,
		"total_elevation_gain": 100,
		"average_speed": 3.0,
		"max_speed": 4.5,
		"average_heartrate": 152.3,
		"max_heartrate": 181,
		"suffer_score": 55,
		"map": {"summary_polyline": "abc123"}
	},
	{
		"id": 102,
		"name": "evening walk",
		"type": "Walk",
		"start_date_local": "2024-06-04T19:00:00",
		"distance": 1609.34,
		"moving_time": 1200,
		"elapsed_time": 1200,
		"total_elevation_gain": 0,
		"average_speed": 1.34,
		"max_speed": 2.0
	}
]`

// fakeStrava serves the token endpoint and a two-page activity
// history, counting API hits so cache behavior is observable.
type fakeStrava struct {
	server       *httptest.Server
	tokenCalls   atomic.Int32
	apiCalls     atomic.Int32
	failActivity bool
}

func newFakeStrava(t *testing.T) *fakeStrava {
	f := &fakeStrava{}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "test-client", r.FormValue("client_id"))
		fmt.Fprint(w, `{"access_token":"fresh-token","refresh_token":"next","expires_at":1900000000}`)
	})
	mux.HandleFunc("/api/v3/athlete/activities", func(w http.ResponseWriter, r *http.Request) {
		f.apiCalls.Add(1)
		assert.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"))
		if f.failActivity {
			http.Error(w, "server blew up", http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, activitiesPageOne)
			return
		}
		fmt.Fprint(w, "[]")
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeStrava) newClient() *strava.Client {
	return strava.NewClient(
		f.server.URL+"/api/v3",
		f.server.URL+"/oauth/token",
		"test-client", "test-secret", "test-refresh",
		f.server.Client(),
	)
}

func TestFetchAllActivities(t *testing.T) {
	fake := newFakeStrava(t)
	client := fake.newClient()

	activities, err := client.FetchAllActivities(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 2)

	run := activities[0]
	assert.Equal(t, int64(101), run.ID)
	assert.Equal(t, models.ActivityTypeRun, run.Type)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), run.Date)
	assert.Equal(t, 3.11, run.DistanceMiles) // 5000 m
	assert.Equal(t, 5000.0, run.DistanceMeters)
	assert.Equal(t, 2530, run.MovingTimeSeconds)
	assert.Equal(t, 328.1, run.ElevationGainFeet) // 100 m
	assert.Equal(t, 6.71, run.AverageSpeedMph)    // 3.0 m/s
	require.NotNil(t, run.AverageHeartrate)
	assert.Equal(t, 152.3, *run.AverageHeartrate)
	require.NotNil(t, run.MaxHeartrate)
	assert.Equal(t, 181, *run.MaxHeartrate)
	require.NotNil(t, run.SufferScore)
	assert.Equal(t, 55, *run.SufferScore)
	require.NotNil(t, run.Polyline)
	assert.Equal(t, "abc123", *run.Polyline)

	walk := activities[1]
	assert.Equal(t, models.ActivityTypeWalk, walk.Type)
	assert.Equal(t, 1.0, walk.DistanceMiles)
	assert.Nil(t, walk.AverageHeartrate)
	assert.Nil(t, walk.Polyline)

	// one token refresh covers both pages
	assert.Equal(t, int32(1), fake.tokenCalls.Load())
	assert.Equal(t, int32(2), fake.apiCalls.Load())
}

func TestFetchActivitiesPage_Cache(t *testing.T) {
	fake := newFakeStrava(t)
	client := fake.newClient()
	ctx := context.Background()

	first, err := client.FetchActivitiesPage(ctx, 100, 1)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, int32(1), fake.apiCalls.Load())

	second, err := client.FetchActivitiesPage(ctx, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), fake.apiCalls.Load(), "the second read comes from cache")
}

func TestFetchAllActivities_APIError(t *testing.T) {
	fake := newFakeStrava(t)
	fake.failActivity = true
	client := fake.newClient()

	_, err := client.FetchAllActivities(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestFetchAllActivities_TokenRefreshFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad refresh token", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := strava.NewClient(
		server.URL+"/api/v3",
		server.URL+"/oauth/token",
		"test-client", "test-secret", "stale-refresh",
		server.Client(),
	)

	_, err := client.FetchAllActivities(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token refresh failed")
}
