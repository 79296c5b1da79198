// Package store persists fetched activities and ingested workouts as
// JSON files, so analyze and export runs can work offline.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mstanek/fitsite/internal/models"

	log "github.com/sirupsen/logrus"
)

const (
	activitiesFile = "activities.json"
	workoutsFile   = "workouts.json"
)

// FileStore keeps activities and workouts as JSON files in one
// directory.
type FileStore struct {
	dataDir string
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dataDir: dataDir}
}

func (s *FileStore) SaveActivities(_ context.Context, activities []models.Activity) error {
	if err := s.writeJSON(activitiesFile, activities); err != nil {
		return fmt.Errorf("save activities: %w", err)
	}
	log.Infof("saved %d activities to %s", len(activities), filepath.Join(s.dataDir, activitiesFile))
	return nil
}

func (s *FileStore) Activities(_ context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	if err := s.readJSON(activitiesFile, &activities); err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	return activities, nil
}

func (s *FileStore) SaveWorkouts(_ context.Context, workouts []models.LiftingWorkout) error {
	if err := s.writeJSON(workoutsFile, workouts); err != nil {
		return fmt.Errorf("save workouts: %w", err)
	}
	log.Infof("saved %d workouts to %s", len(workouts), filepath.Join(s.dataDir, workoutsFile))
	return nil
}

func (s *FileStore) Workouts(_ context.Context) ([]models.LiftingWorkout, error) {
	var workouts []models.LiftingWorkout
	if err := s.readJSON(workoutsFile, &workouts); err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}
	return workouts, nil
}

func (s *FileStore) writeJSON(filename string, data any) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dataBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	return os.WriteFile(filepath.Join(s.dataDir, filename), dataBytes, 0o644)
}

func (s *FileStore) readJSON(filename string, target any) error {
	dataBytes, err := os.ReadFile(filepath.Join(s.dataDir, filename))
	if err != nil {
		return err
	}
	return json.Unmarshal(dataBytes, target)
}
