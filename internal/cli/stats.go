package cli

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitlit/internal/stats"
	"github.com/julianstephens/habitlit/internal/utils"
)

type StatsCmd struct {
	JSON bool `help:"Print statistics as JSON."`
}

type statsReport struct {
	Mood   stats.MoodSummary          `json:"mood"`
	Habits map[string]stats.HabitStat `json:"habits"`
}

func (c *StatsCmd) Run(ctx *Context) error {
	history, err := ctx.Backend.LoadAll(ctx.UserID)
	if err != nil {
		return err
	}
	series, err := ctx.Backend.GetMoodSeries(ctx.UserID)
	if err != nil {
		return err
	}

	today := utils.Today()
	report := statsReport{
		Mood:   stats.MoodStats(series, today),
		Habits: stats.HabitStats(history, ctx.Catalog.Keys(), history.Dates(), today),
	}

	if c.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode statistics: %w", err)
		}
		ctx.Println(string(data))
		return nil
	}

	ctx.Println(titleStyle.Render("Mood"))
	if report.Mood.Latest == nil {
		ctx.Println(mutedStyle.Render("  no mood logged yet"))
	} else {
		ctx.Printf("  latest   %d/5 on %s\n", report.Mood.Latest.Score, report.Mood.Latest.Date)
		ctx.Printf("  7 days   %.1f\n", report.Mood.Last7)
		ctx.Printf("  30 days  %.1f\n", report.Mood.Last30)
		ctx.Printf("  overall  %.1f\n", report.Mood.Overall)
	}

	ctx.Println()
	ctx.Println(titleStyle.Render("Habits"))
	for _, h := range ctx.Catalog.Habits {
		st := report.Habits[h.Key]
		ctx.Printf("  %-12s streak %-3d days %-4d avg %s\n", h.Label, st.Streak, st.Days, formatMinutes(st.AvgDuration))
	}
	return nil
}
