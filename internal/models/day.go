package models

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/julianstephens/habitlit/internal/constants"
)

// Value is what a day snapshot holds under a key: a HabitRecord, a MoodScore,
// or Empty when nothing is stored.
type Value interface {
	isValue()
}

// Empty marks a key with no stored value
type Empty struct{}

func (HabitRecord) isValue() {}
func (MoodScore) isValue()   {}
func (Empty) isValue()       {}

// Day is every record stored for one calendar date
type Day struct {
	Habits map[string]HabitRecord
	Mood   *MoodScore

	// keys whose values could not be decoded
	dropped []string
}

// NewDay returns an empty day ready for writes
func NewDay() Day {
	return Day{Habits: make(map[string]HabitRecord)}
}

// Get returns the value stored under key. The reserved mood key yields the mood score.
func (d Day) Get(key string) Value {
	if key == constants.MoodKey {
		if d.Mood == nil {
			return Empty{}
		}
		return *d.Mood
	}
	if rec, ok := d.Habits[key]; ok {
		return rec
	}
	return Empty{}
}

// Habit returns the record for key and whether one exists
func (d Day) Habit(key string) (HabitRecord, bool) {
	rec, ok := d.Habits[key]
	return rec, ok
}

// SetHabit stores rec under key, replacing any previous record
func (d *Day) SetHabit(key string, rec HabitRecord) {
	if d.Habits == nil {
		d.Habits = make(map[string]HabitRecord)
	}
	d.Habits[key] = rec
}

// DeleteHabit removes the record for key if present
func (d *Day) DeleteHabit(key string) {
	delete(d.Habits, key)
}

// SetMood stores the day's mood score
func (d *Day) SetMood(score int) {
	s := MoodScore(score)
	d.Mood = &s
}

// IsEmpty reports whether the day holds no records
func (d Day) IsEmpty() bool {
	return len(d.Habits) == 0 && d.Mood == nil
}

// MarshalJSON encodes the day as {"<habit>": {"duration": n, "note": s}, "mood": n}
func (d Day) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Habits)+1)
	for key, rec := range d.Habits {
		out[key] = rec
	}
	if d.Mood != nil {
		out[constants.MoodKey] = int(*d.Mood)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the document shape written by MarshalJSON. A habit
// value that is a bare number is read as a duration in minutes; null values
// are dropped. A key whose value cannot be decoded is skipped and reported by
// Dropped, so one bad value never discards the rest of the day.
func (d *Day) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = NewDay()
	for key, val := range raw {
		if bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			continue
		}
		if key == constants.MoodKey {
			var score float64
			if err := json.Unmarshal(val, &score); err != nil {
				d.dropped = append(d.dropped, key)
				continue
			}
			d.SetMood(int(score))
			continue
		}
		rec, err := decodeHabitValue(val)
		if err != nil {
			d.dropped = append(d.dropped, key)
			continue
		}
		d.Habits[key] = rec
	}
	sort.Strings(d.dropped)
	return nil
}

// Dropped returns the keys skipped by the last decode, sorted.
func (d Day) Dropped() []string {
	return d.dropped
}

func decodeHabitValue(val json.RawMessage) (HabitRecord, error) {
	var minutes float64
	if err := json.Unmarshal(val, &minutes); err == nil {
		return HabitRecord{Duration: int(minutes)}, nil
	}

	var obj struct {
		Duration float64 `json:"duration"`
		Note     string  `json:"note"`
	}
	if err := json.Unmarshal(val, &obj); err != nil {
		return HabitRecord{}, err
	}
	return HabitRecord{Duration: int(obj.Duration), Note: obj.Note}, nil
}

// Snapshot maps ISO dates to the records stored for that day
type Snapshot map[string]Day

// Dates returns the snapshot's dates in ascending order
func (s Snapshot) Dates() []string {
	dates := make([]string, 0, len(s))
	for date := range s {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Day returns the records for date, or an empty day
func (s Snapshot) Day(date string) Day {
	if d, ok := s[date]; ok {
		return d
	}
	return NewDay()
}

// record returns the day for date, creating it when missing
func (s Snapshot) record(date string) Day {
	d, ok := s[date]
	if !ok {
		d = NewDay()
	}
	return d
}

// PutHabit stores a habit record for date
func (s Snapshot) PutHabit(date, key string, rec HabitRecord) {
	d := s.record(date)
	d.SetHabit(key, rec)
	s[date] = d
}

// PutMood stores a mood score for date
func (s Snapshot) PutMood(date string, score int) {
	d := s.record(date)
	d.SetMood(score)
	s[date] = d
}

// Ensure makes date present, as an empty day if nothing is stored
func (s Snapshot) Ensure(date string) {
	s[date] = s.record(date)
}
