package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/utils"
)

// JSONStore keeps a single user's data in one JSON document. Every operation
// reads the whole document, applies its change, and writes the whole document
// back. Concurrent writers are not coordinated; the last write wins.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{
		path: path,
	}
}

// load reads the document. A missing or corrupt document reads as empty.
func (s *JSONStore) load() (models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("Storage document is corrupt, treating it as empty", "path", s.path, "error", err)
		return models.Snapshot{}, nil
	}

	snap := make(models.Snapshot, len(raw))
	for date, val := range raw {
		var day models.Day
		if err := json.Unmarshal(val, &day); err != nil {
			logger.Warn("Skipping malformed day in storage document", "path", s.path, "date", date, "error", err)
			continue
		}
		if dropped := day.Dropped(); len(dropped) > 0 {
			logger.Warn("Skipping undecodable values in storage document", "path", s.path, "date", date, "keys", dropped)
		}
		snap[date] = day
	}
	return snap, nil
}

// save replaces the document atomically so readers never see a partial write.
func (s *JSONStore) save(snap models.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	for date, day := range snap {
		if day.IsEmpty() {
			delete(snap, date)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) LoadAll(_ int64) (models.Snapshot, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	for date, day := range snap {
		if day.IsEmpty() {
			delete(snap, date)
		}
	}
	return snap, nil
}

func (s *JSONStore) SaveHabit(_ int64, date, habitKey string, duration int, note string) error {
	snap, err := s.load()
	if err != nil {
		return err
	}
	snap.PutHabit(date, habitKey, models.HabitRecord{Duration: duration, Note: note})
	return s.save(snap)
}

func (s *JSONStore) DeleteHabit(_ int64, date, habitKey string) error {
	snap, err := s.load()
	if err != nil {
		return err
	}
	day, ok := snap[date]
	if !ok {
		return nil
	}
	if _, ok := day.Habit(habitKey); !ok {
		return nil
	}
	day.DeleteHabit(habitKey)
	snap[date] = day
	return s.save(snap)
}

func (s *JSONStore) SaveMood(_ int64, date string, score int) error {
	snap, err := s.load()
	if err != nil {
		return err
	}
	snap.PutMood(date, score)
	return s.save(snap)
}

func (s *JSONStore) GetRange(_ int64, start, end string) (models.Snapshot, error) {
	dates, err := utils.ParseRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make(models.Snapshot, len(dates))
	for _, date := range dates {
		out[date] = all.Day(date)
	}
	return out, nil
}

func (s *JSONStore) GetMoodSeries(_ int64) ([]models.MoodPoint, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}

	series := []models.MoodPoint{}
	for _, date := range snap.Dates() {
		if mood := snap[date].Mood; mood != nil {
			series = append(series, models.MoodPoint{Date: date, Score: int(*mood)})
		}
	}
	return series, nil
}

func (s *JSONStore) CreateUser(_, _ string) (int64, error) {
	return 0, fmt.Errorf("create user: %w", ErrUnsupported)
}

func (s *JSONStore) GetUser(_ int64) (*models.User, error) {
	return nil, fmt.Errorf("get user: %w", ErrUnsupported)
}

func (s *JSONStore) GetUserByEmail(_ string) (*models.User, error) {
	return nil, fmt.Errorf("get user by email: %w", ErrUnsupported)
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) Close() error {
	return nil
}
