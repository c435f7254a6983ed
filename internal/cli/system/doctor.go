package system

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitlit/internal/backend"
	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/migration"
	"github.com/julianstephens/habitlit/internal/storage/sqlstore"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	kind := backend.Kind(ctx.Backend)
	ctx.Printf("Backend:   %s\n", kind)
	ctx.Printf("Location:  %s\n", ctx.Backend.GetConfigPath())
	if src := ctx.Config.DatabaseURLSource; src != config.SourceNone {
		ctx.Printf("Database URL from: %s\n", src)
	}
	ctx.Printf("Habits:    %d (%s)\n", len(ctx.Catalog.Habits), ctx.Config.HabitsPath())
	for _, fb := range ctx.Selector.Fallbacks() {
		ctx.Printf("Fallback:  %s unreachable at %s: %v\n", fb.Location, fb.At.Format(time.RFC3339), fb.Err)
	}
	ctx.Println()

	hasError := false
	report := func(name string, err error, warnOnly bool) {
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", name)
		case warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", name, err)
			hasError = true
		}
	}

	reachable := checkStorageReachable(ctx)
	report("Storage reachable", reachable, false)

	if reachable == nil {
		if store, ok := ctx.Backend.(*sqlstore.Store); ok {
			report("Schema version", checkSchemaVersion(store), false)
		}
		report("Habit keys in catalog", checkUnknownHabits(ctx), true)
	} else {
		ctx.Println("⊘ Remaining storage checks: SKIPPED (storage not reachable)")
	}

	if _, err := ctx.BackupManager(); err == nil {
		report("Backups present", checkBackupsPresent(ctx), true)
	}
	report("Clock", checkClock(), false)

	if hasError {
		return errors.New("one or more checks failed")
	}
	return nil
}

func checkStorageReachable(ctx *cli.Context) error {
	if _, err := ctx.Backend.LoadAll(ctx.UserID); err != nil {
		return fmt.Errorf("failed to read storage: %w", err)
	}
	return nil
}

func checkSchemaVersion(store *sqlstore.Store) error {
	migrationFS, err := store.Dialect().Migrations()
	if err != nil {
		return err
	}
	runner := migration.NewRunner(store.DB(), migrationFS, store.Dialect().Rebind)

	if err := runner.ValidateVersion(); err != nil {
		return err
	}

	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

// checkUnknownHabits reports logged habit keys the catalog no longer lists.
func checkUnknownHabits(ctx *cli.Context) error {
	history, err := ctx.Backend.LoadAll(ctx.UserID)
	if err != nil {
		return err
	}

	unknown := map[string]bool{}
	for _, day := range history {
		for key := range day.Habits {
			if !ctx.Catalog.Has(key) {
				unknown[key] = true
			}
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	keys := make([]string, 0, len(unknown))
	for k := range unknown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Errorf("entries exist for habits missing from the catalog: %s", strings.Join(keys, ", "))
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr, err := ctx.BackupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return errors.New("no backups found - consider creating one with 'habitlit backup create'")
	}
	return nil
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
