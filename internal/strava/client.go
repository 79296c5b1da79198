package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/mstanek/fitsite/internal/models"
	"github.com/mstanek/fitsite/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultAPIBase  = "https://www.strava.com/api/v3"
	DefaultTokenURL = "https://www.strava.com/oauth/token"

	activitiesPerPage = 100

	oneHour             = 60 * 60
	activityCacheExpire = oneHour * 6
)

// Client talks to the Strava API, refreshing the OAuth access token
// on demand.
type Client struct {
	apiBase      string
	tokenURL     string
	clientID     string
	clientSecret string
	refreshToken string

	cache      *freecache.Cache
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
}

func NewClient(apiBase, tokenURL, clientID, clientSecret, refreshToken string, httpClient *http.Client) *Client {
	megabyte := 1024 * 1024
	cacheSize := 20 * megabyte

	return &Client{
		apiBase:      apiBase,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		cache:        freecache.NewCache(cacheSize),
		httpClient:   httpClient,
	}
}

// getAccessToken returns the cached access token, refreshing it via
// the OAuth refresh grant when none is held yet.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {c.refreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response bytes: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh failed with status %d: %s", resp.StatusCode, respBytes)
	}

	var token tokenResponse
	if err := json.Unmarshal(respBytes, &token); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response bytes: %w", err)
	}

	c.accessToken = token.AccessToken
	log.Infof("strava access token refreshed")

	return c.accessToken, nil
}

func (c *Client) apiGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get access token: %w", err)
	}

	apiURL := c.apiBase + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read api response bytes: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api call %s failed with status %d: %s", path, resp.StatusCode, respBytes)
	}

	return respBytes, nil
}

// FetchActivitiesPage fetches one page of the athlete's activities.
func (c *Client) FetchActivitiesPage(ctx context.Context, perPage, page int) (activities []models.Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaClient.fetchActivitiesPage")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, fmt.Sprintf("fetched activities page %d", page))
		}
	}()

	params := url.Values{
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}

	cacheKey := fmt.Sprintf("activities::%d::%d", perPage, page)
	respBytes, cacheErr := c.cache.Get([]byte(cacheKey))
	if cacheErr == nil {
		log.Tracef("found activities page %d in cache", page)
	} else {
		respBytes, err = c.apiGet(ctx, "/athlete/activities", params)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set([]byte(cacheKey), respBytes, activityCacheExpire); err != nil {
			log.Errorf("failed to write activities page %d cache: %s", page, err)
		}
	}

	var rawActivities []apiActivity
	if err := json.Unmarshal(respBytes, &rawActivities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activities page %d: %w", page, err)
	}

	for _, raw := range rawActivities {
		activity, err := raw.toActivity()
		if err != nil {
			log.Warnf("failed to parse activity %d: %s", raw.ID, err)
			continue
		}
		activities = append(activities, activity)
	}

	return activities, nil
}

// FetchAllActivities fetches the athlete's full activity history,
// paging until an empty page comes back.
func (c *Client) FetchAllActivities(ctx context.Context) (activities []models.Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaClient.fetchAllActivities")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, fmt.Sprintf("fetched %d activities", len(activities)))
		}
	}()

	for page := 1; ; page++ {
		log.Infof("fetching activities page %d", page)
		pageActivities, err := c.FetchActivitiesPage(ctx, activitiesPerPage, page)
		if err != nil {
			return nil, fmt.Errorf("fetch activities page %d: %w", page, err)
		}
		if len(pageActivities) == 0 {
			break
		}
		activities = append(activities, pageActivities...)
	}

	return activities, nil
}

// FetchActivityDetails fetches the detailed record of one activity,
// including the full polyline.
func (c *Client) FetchActivityDetails(ctx context.Context, activityID int64) (activity models.Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaClient.fetchActivityDetails")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, fmt.Sprintf("fetched details for activity %d", activityID))
		}
	}()

	respBytes, err := c.apiGet(ctx, fmt.Sprintf("/activities/%d", activityID), nil)
	if err != nil {
		return models.Activity{}, err
	}

	var raw apiActivity
	if err := json.Unmarshal(respBytes, &raw); err != nil {
		return models.Activity{}, fmt.Errorf("failed to unmarshal activity %d details: %w", activityID, err)
	}

	return raw.toActivity()
}

// defaultStreamKeys are requested when the caller does not name any.
var defaultStreamKeys = []string{"time", "distance", "heartrate", "cadence", "altitude"}

// FetchActivityStreams fetches time-series streams for one activity.
func (c *Client) FetchActivityStreams(ctx context.Context, activityID int64, keys []string) (streams ActivityStreams, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "stravaClient.fetchActivityStreams")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, fmt.Sprintf("fetched streams for activity %d", activityID))
		}
	}()

	if len(keys) == 0 {
		keys = defaultStreamKeys
	}

	params := url.Values{
		"keys":        {strings.Join(keys, ",")},
		"key_by_type": {"true"},
	}

	respBytes, err := c.apiGet(ctx, fmt.Sprintf("/activities/%d/streams", activityID), params)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(respBytes, &streams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity %d streams: %w", activityID, err)
	}

	return streams, nil
}
