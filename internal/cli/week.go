package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/stats"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

const (
	markDone = "✓"
	markMiss = "·"
)

type WeekCmd struct {
	Date string `help:"Any date in the week to show, YYYY-MM-DD (default: today)."`
}

func (c *WeekCmd) Run(ctx *Context) error {
	ref := utils.Today()
	if c.Date != "" {
		t, err := utils.ParseDate(c.Date)
		if err != nil {
			return fmt.Errorf("%w: %s (expected YYYY-MM-DD)", storage.ErrInvalidDate, c.Date)
		}
		ref = t
	}
	week := utils.WeekOf(ref)

	window, habitStats, err := loadWeek(ctx, week)
	if err != nil {
		return err
	}

	ctx.Println(titleStyle.Render(fmt.Sprintf("Week of %s", week[0])))
	ctx.Println(RenderWeek(ctx.Catalog, week, window, habitStats))
	return nil
}

// loadWeek reads the week's records and the per-habit stats shown beside them.
// Streaks are current streaks, counted back from today whichever week is shown.
func loadWeek(ctx *Context, week []string) (models.Snapshot, map[string]stats.HabitStat, error) {
	window, err := ctx.Backend.GetRange(ctx.UserID, week[0], week[len(week)-1])
	if err != nil {
		return nil, nil, err
	}
	history, err := ctx.Backend.LoadAll(ctx.UserID)
	if err != nil {
		return nil, nil, err
	}
	return window, stats.HabitStats(history, ctx.Catalog.Keys(), week, utils.Today()), nil
}

// RenderWeek draws the habit grid for week: one row per catalog habit, a
// mark per qualifying day, then streak and average columns, then mood.
func RenderWeek(cat config.Catalog, week []string, window models.Snapshot, habitStats map[string]stats.HabitStat) string {
	headers := []string{"Habit"}
	for _, date := range week {
		headers = append(headers, dayHeader(date))
	}
	headers = append(headers, "Streak", "Avg")

	var rows [][]string
	for _, h := range cat.Habits {
		row := []string{h.Label}
		for _, date := range week {
			rec, ok := window.Day(date).Get(h.Key).(models.HabitRecord)
			if ok && rec.Qualifies() {
				row = append(row, doneStyle.Render(markDone))
			} else {
				row = append(row, missStyle.Render(markMiss))
			}
		}
		st := habitStats[h.Key]
		row = append(row, strconv.Itoa(st.Streak), formatMinutes(st.AvgDuration))
		rows = append(rows, row)
	}

	mood := []string{"Mood"}
	for _, date := range week {
		if score, ok := window.Day(date).Get(constants.MoodKey).(models.MoodScore); ok {
			mood = append(mood, strconv.Itoa(int(score)))
		} else {
			mood = append(mood, missStyle.Render(markMiss))
		}
	}
	mood = append(mood, "", "")
	rows = append(rows, mood)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return cellStyle
			}
		})

	return t.Render()
}

func dayHeader(date string) string {
	t, err := utils.ParseDate(date)
	if err != nil {
		return date
	}
	return t.Format("Mon 02")
}

func formatMinutes(avg float64) string {
	if avg == 0 {
		return "-"
	}
	return strconv.FormatFloat(avg, 'f', 1, 64) + "m"
}
