package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/models"
)

func writeHabits(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadCatalogMissingFile(t *testing.T) {
	cat := LoadCatalog(filepath.Join(t.TempDir(), "habits.yaml"))
	assert.Equal(t, DefaultCatalog(), cat)
	assert.Equal(t, []string{"med", "grat", "yoga", "cardio", "weights", "read"}, cat.Keys())
}

func TestLoadCatalogMalformed(t *testing.T) {
	path := writeHabits(t, "habits: [this is: not: valid")
	assert.Equal(t, DefaultCatalog(), LoadCatalog(path))
}

func TestLoadCatalogCustom(t *testing.T) {
	path := writeHabits(t, `
habits:
  - key: run
    label: Running
  - key: piano
`)
	cat := LoadCatalog(path)
	assert.Equal(t, []models.HabitDef{
		{Key: "run", Label: "Running"},
		{Key: "piano", Label: "piano"},
	}, cat.Habits)

	label, ok := cat.Label("run")
	assert.True(t, ok)
	assert.Equal(t, "Running", label)
	assert.True(t, cat.Has("piano"))
	assert.False(t, cat.Has("med"))
}

func TestLoadCatalogDropsInvalidEntries(t *testing.T) {
	path := writeHabits(t, `
habits:
  - key: ""
    label: Nameless
  - key: mood
    label: Mood
  - key: run
    label: Running
  - key: run
    label: Again
`)
	cat := LoadCatalog(path)
	assert.Equal(t, []string{"run"}, cat.Keys())
}

func TestLoadCatalogNoUsableEntries(t *testing.T) {
	path := writeHabits(t, "habits: []\n")
	assert.Equal(t, DefaultCatalog(), LoadCatalog(path))
}

func TestSaveCatalogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "habits.yaml")
	want := Catalog{Habits: []models.HabitDef{{Key: "swim", Label: "Swimming"}}}

	require.NoError(t, SaveCatalog(path, want))
	assert.Equal(t, want, LoadCatalog(path))
}
