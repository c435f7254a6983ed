package main

import (
	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitlit/internal/backend"
	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/cli/backups"
	"github.com/julianstephens/habitlit/internal/cli/system"
	"github.com/julianstephens/habitlit/internal/cli/users"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	EnvFile string `help:"Path to a .env file to load before reading the environment." type:"path" default:".env"`
	User    string `short:"u" help:"Email of the acting user (database backends only)."`
	Debug   bool   `help:"Log debug output to stderr."`

	Log     cli.LogCmd    `cmd:"" help:"Log a habit for a day."`
	Unlog   cli.UnlogCmd  `cmd:"" help:"Remove a logged habit."`
	Mood    cli.MoodCmd   `cmd:"" help:"Log the day's mood (1-5)."`
	Week    cli.WeekCmd   `cmd:"" help:"Show the weekly habit grid." default:"1"`
	Stats   cli.StatsCmd  `cmd:"" help:"Show streaks and mood averages."`
	Habits  cli.HabitsCmd `cmd:"" help:"List the habit catalog."`
	Account struct {
		Add    users.UserAddCmd    `cmd:"" help:"Create an account."`
		Show   users.UserShowCmd   `cmd:"" help:"Show an account."`
		Verify users.UserVerifyCmd `cmd:"" help:"Check an account password."`
	} `cmd:"" name:"user" help:"Manage accounts."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups of the local data file."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
	} `cmd:"" help:"Manage the connection string in the OS keyring."`
	Doctor system.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily habit and mood tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := run(kctx); err != nil {
		errors.Fatal(err)
	}
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		return err
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.ConfigDir}); err != nil {
		return err
	}

	sel := backend.NewSelector(cfg.DBPath)
	defer func() {
		if err := sel.Close(); err != nil {
			logger.Warn("Failed to close storage", "error", err)
		}
	}()

	store, err := sel.Select(cfg.BackendKey())
	if err != nil {
		return err
	}
	logger.WithBackend(backend.Kind(store))
	logger.Debug("Resolved backend", "location", store.GetConfigPath())

	appCtx := cli.NewContext(cfg, sel, store, config.LoadCatalog(cfg.HabitsPath()))
	appCtx.UserID, err = cli.ResolveUser(store, CLI.User)
	if err != nil {
		return err
	}

	return kctx.Run(appCtx)
}
