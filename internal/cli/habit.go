package cli

import (
	"fmt"
	"strings"
)

type LogCmd struct {
	Habit   string `arg:"" help:"Habit key from the catalog."`
	Minutes int    `help:"Minutes spent." default:"1"`
	Note    string `help:"Optional note for this entry."`
	Date    string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *LogCmd) Run(ctx *Context) error {
	if err := ValidateHabit(ctx.Catalog, c.Habit); err != nil {
		return err
	}
	if err := ValidateMinutes(c.Minutes); err != nil {
		return err
	}
	day, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	if err := ctx.Backend.SaveHabit(ctx.UserID, day, c.Habit, c.Minutes, strings.TrimSpace(c.Note)); err != nil {
		return err
	}

	label, _ := ctx.Catalog.Label(c.Habit)
	ctx.Printf("✓ Logged %s for %d minute(s) on %s\n", label, c.Minutes, day)
	return nil
}

type UnlogCmd struct {
	Habit string `arg:"" help:"Habit key from the catalog."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *UnlogCmd) Run(ctx *Context) error {
	if err := ValidateHabit(ctx.Catalog, c.Habit); err != nil {
		return err
	}
	day, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	if err := ctx.Backend.DeleteHabit(ctx.UserID, day, c.Habit); err != nil {
		return err
	}

	label, _ := ctx.Catalog.Label(c.Habit)
	ctx.Printf("✓ Removed %s on %s\n", label, day)
	return nil
}

type MoodCmd struct {
	Score int    `arg:"" help:"Mood from 1 (low) to 5 (high)."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *MoodCmd) Run(ctx *Context) error {
	if err := ValidateMood(c.Score); err != nil {
		return err
	}
	day, err := ResolveDate(c.Date)
	if err != nil {
		return err
	}

	if err := ctx.Backend.SaveMood(ctx.UserID, day, c.Score); err != nil {
		return fmt.Errorf("failed to save mood: %w", err)
	}

	ctx.Printf("✓ Mood logged as %d/5 for %s\n", c.Score, day)
	return nil
}
