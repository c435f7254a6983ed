// Package stats computes streaks and averages over day snapshots. It performs
// no I/O.
package stats

import (
	"math"
	"time"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/utils"
)

// HabitStat summarizes one habit for display.
type HabitStat struct {
	Streak      int     `json:"streak"`
	AvgDuration float64 `json:"avg_duration"`
	// Days is the number of qualifying days inside the window.
	Days int `json:"days"`
}

// MoodSummary holds mood averages over the full series and trailing windows.
type MoodSummary struct {
	Overall float64           `json:"overall"`
	Last7   float64           `json:"last_7"`
	Last30  float64           `json:"last_30"`
	Latest  *models.MoodPoint `json:"latest,omitempty"`
}

// Round rounds x to one decimal place, halves away from zero.
func Round(x float64) float64 {
	return math.Round(x*10) / 10
}

func qualifies(snap models.Snapshot, date, key string) bool {
	day, ok := snap[date]
	if !ok {
		return false
	}
	rec, ok := day.Get(key).(models.HabitRecord)
	return ok && rec.Qualifies()
}

// Streak counts consecutive qualifying days for key ending at today. A day
// without a qualifying record, today included, ends the streak. The walk
// never goes further back than the earliest date in snap.
func Streak(snap models.Snapshot, key string, today time.Time) int {
	earliest, ok := earliestDate(snap)
	if !ok {
		return 0
	}

	day := utils.DateOf(today)
	streak := 0
	for !day.Before(earliest) {
		if !qualifies(snap, utils.FormatDate(day), key) {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func earliestDate(snap models.Snapshot) (time.Time, bool) {
	for _, date := range snap.Dates() {
		if t, err := utils.ParseDate(date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AverageDuration is the mean duration of qualifying records for key over
// window, rounded to one decimal. It is 0 when nothing qualifies.
func AverageDuration(snap models.Snapshot, key string, window []string) float64 {
	total, count := 0, 0
	for _, date := range window {
		day, ok := snap[date]
		if !ok {
			continue
		}
		rec, ok := day.Get(key).(models.HabitRecord)
		if !ok || !rec.Qualifies() {
			continue
		}
		total += rec.Duration
		count++
	}
	if count == 0 {
		return 0
	}
	return Round(float64(total) / float64(count))
}

// HabitStats computes a HabitStat for each key. Streaks use all of snap;
// averages and day counts use window only.
func HabitStats(snap models.Snapshot, keys []string, window []string, today time.Time) map[string]HabitStat {
	out := make(map[string]HabitStat, len(keys))
	for _, key := range keys {
		days := 0
		for _, date := range window {
			if qualifies(snap, date, key) {
				days++
			}
		}
		out[key] = HabitStat{
			Streak:      Streak(snap, key, today),
			AvgDuration: AverageDuration(snap, key, window),
			Days:        days,
		}
	}
	return out
}

// MoodAverage averages scores dated on or after today minus (days-1).
// days <= 0 averages the whole series.
func MoodAverage(series []models.MoodPoint, today time.Time, days int) float64 {
	cutoff := ""
	if days > 0 {
		cutoff = utils.FormatDate(utils.DateOf(today).AddDate(0, 0, -(days - 1)))
	}

	total, count := 0, 0
	for _, p := range series {
		if p.Date < cutoff {
			continue
		}
		total += p.Score
		count++
	}
	if count == 0 {
		return 0
	}
	return Round(float64(total) / float64(count))
}

// MoodStats summarizes series relative to today.
func MoodStats(series []models.MoodPoint, today time.Time) MoodSummary {
	summary := MoodSummary{
		Overall: MoodAverage(series, today, 0),
		Last7:   MoodAverage(series, today, constants.MoodShortDays),
		Last30:  MoodAverage(series, today, constants.MoodLongDays),
	}
	for i := range series {
		if summary.Latest == nil || series[i].Date > summary.Latest.Date {
			p := series[i]
			summary.Latest = &p
		}
	}
	return summary
}
