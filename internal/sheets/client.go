// Package sheets ingests lifting workouts from the workout tracking
// spreadsheet, either through the Google Sheets API or from a local
// TSV/CSV export.
package sheets

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mstanek/fitsite/internal/models"
	"github.com/mstanek/fitsite/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

var ErrDateColumnMissing = errors.New("date column not found in workout data")

// Client reads workout rows from a Google Sheet with service-account
// credentials.
type Client struct {
	service   *sheetsapi.Service
	sheetID   string
	rangeName string
}

// NewClient builds a Sheets API client. Credentials come from the
// raw JSON when given, from the credentials file otherwise.
func NewClient(ctx context.Context, sheetID, rangeName string, credentialsJSON []byte, credentialsFile string) (*Client, error) {
	if sheetID == "" {
		return nil, errors.New("sheet id is required")
	}
	if rangeName == "" {
		rangeName = "Sheet1"
	}

	var creds option.ClientOption
	switch {
	case len(credentialsJSON) > 0:
		creds = option.WithCredentialsJSON(credentialsJSON)
	case credentialsFile != "":
		creds = option.WithCredentialsFile(credentialsFile)
	default:
		return nil, errors.New("no google credentials provided")
	}

	service, err := sheetsapi.NewService(ctx, creds, option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		service:   service,
		sheetID:   sheetID,
		rangeName: rangeName,
	}, nil
}

// FetchWorkouts reads and parses all workout rows from the sheet.
func (c *Client) FetchWorkouts(ctx context.Context) (workouts []models.LiftingWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sheetsClient.fetchWorkouts")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, fmt.Sprintf("fetched %d workouts", len(workouts)))
		}
	}()

	log.Infof("fetching workout data from sheet %s, range %s", c.sheetID, c.rangeName)

	result, err := c.service.Spreadsheets.Values.Get(c.sheetID, c.rangeName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get sheet values: %w", err)
	}

	rows := make([][]string, 0, len(result.Values))
	for _, row := range result.Values {
		cells := make([]string, 0, len(row))
		for _, value := range row {
			cells = append(cells, fmt.Sprintf("%v", value))
		}
		rows = append(rows, cells)
	}

	log.Infof("fetched %d rows from google sheets", len(rows))

	workouts, err = ParseRows(rows)
	if err != nil {
		return nil, err
	}

	log.Infof("parsed %d workouts from google sheets", len(workouts))
	return workouts, nil
}

// LoadWorkoutsFromFile parses workouts from a local TSV or CSV
// export of the sheet. The delimiter follows the file extension.
func LoadWorkoutsFromFile(path string) ([]models.LiftingWorkout, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workout file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if filepath.Ext(path) == ".tsv" {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read workout file: %w", err)
	}

	workouts, err := ParseRows(rows)
	if err != nil {
		return nil, err
	}

	log.Infof("loaded %d workouts from %s", len(workouts), path)
	return workouts, nil
}
