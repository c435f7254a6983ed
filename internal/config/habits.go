package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/models"
)

// Catalog is the ordered list of trackable habits.
type Catalog struct {
	Habits []models.HabitDef `yaml:"habits"`
}

// DefaultCatalog is used when no habits file exists or it cannot be used.
func DefaultCatalog() Catalog {
	return Catalog{Habits: []models.HabitDef{
		{Key: "med", Label: "Meditation"},
		{Key: "grat", Label: "Gratitude"},
		{Key: "yoga", Label: "Yoga"},
		{Key: "cardio", Label: "Cardio"},
		{Key: "weights", Label: "Weights"},
		{Key: "read", Label: "Read"},
	}}
}

// LoadCatalog reads the habits file at path. A missing, unreadable or
// malformed file yields the default catalog; invalid entries are dropped.
func LoadCatalog(path string) Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read habits file, using defaults", "path", path, "error", err)
		}
		return DefaultCatalog()
	}

	var raw Catalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		logger.Warn("Habits file is malformed, using defaults", "path", path, "error", err)
		return DefaultCatalog()
	}

	cat := Catalog{}
	seen := make(map[string]bool, len(raw.Habits))
	for _, h := range raw.Habits {
		h.Key = strings.TrimSpace(h.Key)
		h.Label = strings.TrimSpace(h.Label)
		switch {
		case h.Key == "":
			logger.Warn("Skipping habit without key", "path", path)
			continue
		case h.Key == constants.MoodKey:
			logger.Warn("Skipping habit using reserved key", "path", path, "key", h.Key)
			continue
		case seen[h.Key]:
			logger.Warn("Skipping duplicate habit", "path", path, "key", h.Key)
			continue
		}
		if h.Label == "" {
			h.Label = h.Key
		}
		seen[h.Key] = true
		cat.Habits = append(cat.Habits, h)
	}

	if len(cat.Habits) == 0 {
		logger.Warn("Habits file defines no usable habits, using defaults", "path", path)
		return DefaultCatalog()
	}
	return cat
}

// SaveCatalog writes cat to path as YAML, creating the directory if needed.
func SaveCatalog(path string, cat Catalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cat)
	if err != nil {
		return fmt.Errorf("failed to encode habits: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write habits file: %w", err)
	}
	return nil
}

// Keys returns the habit keys in catalog order.
func (c Catalog) Keys() []string {
	keys := make([]string, len(c.Habits))
	for i, h := range c.Habits {
		keys[i] = h.Key
	}
	return keys
}

// Label returns the display label for key.
func (c Catalog) Label(key string) (string, bool) {
	for _, h := range c.Habits {
		if h.Key == key {
			return h.Label, true
		}
	}
	return "", false
}

// Has reports whether key is in the catalog.
func (c Catalog) Has(key string) bool {
	_, ok := c.Label(key)
	return ok
}
