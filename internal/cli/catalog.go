package cli

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitlit/internal/config"
)

// HabitsCmd lists the catalog, or writes the default catalog file with --init.
type HabitsCmd struct {
	Init bool `help:"Write the default catalog to the habits file if none exists."`
}

func (c *HabitsCmd) Run(ctx *Context) error {
	path := ctx.Config.HabitsPath()

	if c.Init {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("habits file already exists: %s", path)
		}
		if err := config.SaveCatalog(path, config.DefaultCatalog()); err != nil {
			return err
		}
		ctx.Printf("✓ Wrote default habits to %s\n", path)
		return nil
	}

	for _, h := range ctx.Catalog.Habits {
		ctx.Printf("  %-10s %s\n", h.Key, h.Label)
	}
	ctx.Println(mutedStyle.Render("Edit " + path + " to change this list."))
	return nil
}
