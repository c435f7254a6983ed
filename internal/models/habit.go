package models

// HabitDef is one trackable activity in the habit catalog
type HabitDef struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// HabitEntry is a single logged habit for a user and day.
// Unique per (UserID, Date, HabitKey).
type HabitEntry struct {
	UserID   int64  `json:"user_id"`
	Date     string `json:"date"` // YYYY-MM-DD format
	HabitKey string `json:"habit_key"`
	Duration int    `json:"duration"` // minutes
	Note     string `json:"note"`
}

// HabitRecord is the value stored under a habit key in a day snapshot
type HabitRecord struct {
	Duration int    `json:"duration"`
	Note     string `json:"note"`
}

// Qualifies reports whether the record counts toward streaks and averages.
// A zero duration is logged but not done.
func (r HabitRecord) Qualifies() bool {
	return r.Duration != 0
}

// Record converts the entry to its snapshot value
func (e HabitEntry) Record() HabitRecord {
	return HabitRecord{Duration: e.Duration, Note: e.Note}
}
