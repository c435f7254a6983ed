package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/habitlit/internal/backend"
	"github.com/julianstephens/habitlit/internal/backup"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Context is handed to every command's Run method.
type Context struct {
	Config   *config.Config
	Selector *backend.Selector
	Backend  storage.Backend
	Catalog  config.Catalog
	UserID   int64
	Out      io.Writer
}

// NewContext returns a context writing to stdout, acting as the default user.
func NewContext(cfg *config.Config, sel *backend.Selector, b storage.Backend, cat config.Catalog) *Context {
	return &Context{
		Config:   cfg,
		Selector: sel,
		Backend:  b,
		Catalog:  cat,
		UserID:   constants.DefaultUserID,
		Out:      os.Stdout,
	}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// BackupManager returns a manager for the local file behind the backend.
// Networked databases are backed up with their own tooling.
func (c *Context) BackupManager() (*backup.Manager, error) {
	switch backend.Kind(c.Backend) {
	case constants.BackendJSON:
		return backup.NewManager(c.Backend.GetConfigPath(), backup.KindJSON, c.Config.BackupDir()), nil
	case constants.BackendSQLite:
		return backup.NewManager(c.Backend.GetConfigPath(), backup.KindSQLite, c.Config.BackupDir()), nil
	default:
		return nil, errors.New("backups are only available for local storage; use pg_dump for PostgreSQL")
	}
}

// ResolveDate returns the ISO date for s, or today when s is empty.
func ResolveDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return utils.FormatDate(utils.Today()), nil
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return "", fmt.Errorf("%w: %s (expected YYYY-MM-DD)", storage.ErrInvalidDate, s)
	}
	return utils.FormatDate(t), nil
}

// ValidateHabit checks that key is in the catalog.
func ValidateHabit(cat config.Catalog, key string) error {
	if !cat.Has(key) {
		return fmt.Errorf("unknown habit key %q (valid keys: %s)", key, strings.Join(cat.Keys(), ", "))
	}
	return nil
}

func ValidateMinutes(minutes int) error {
	if minutes < 0 {
		return fmt.Errorf("minutes must be zero or more, got %d", minutes)
	}
	return nil
}

func ValidateMood(score int) error {
	if score < constants.MinMoodScore || score > constants.MaxMoodScore {
		return fmt.Errorf("mood must be between %d and %d, got %d", constants.MinMoodScore, constants.MaxMoodScore, score)
	}
	return nil
}

// ResolveUser maps an email to a user id. An empty email means the default
// user, which works on every backend.
func ResolveUser(b storage.Backend, email string) (int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return constants.DefaultUserID, nil
	}
	u, err := b.GetUserByEmail(email)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, fmt.Errorf("no user with email %s", email)
	}
	return u.ID, nil
}
