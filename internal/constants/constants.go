package constants

import "time"

const (
	AppName            = "habitlit"
	Version            = "v0.1.0"
	DefaultKeyringUser = "database-connection"

	// DateFormat is the canonical ISO-8601 date format used for every stored date (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MoodKey is the reserved day-snapshot key holding the mood score
	MoodKey = "mood"

	// DefaultUserID owns all single-tenant data and all rows adopted from
	// pre-multi-tenant databases
	DefaultUserID int64 = 1
	// DefaultUserEmail is the seeded account behind DefaultUserID
	DefaultUserEmail = "default@habitlit.local"

	// Mood score bounds, enforced at the CLI boundary only
	MinMoodScore = 1
	MaxMoodScore = 5

	// AppModeProd selects the embedded relational backend
	AppModeProd = "prod"

	// Environment
	EnvDatabaseURL = "DATABASE_URL"
	EnvAppMode     = "APP_MODE"
	EnvDataFile    = "HABITLIT_DATA_FILE"
	EnvDBPath      = "HABITLIT_DB_PATH"
	EnvConfigDir   = "HABITLIT_CONFIG_DIR"
	EnvDebug       = "HABITLIT_DEBUG"

	// Default locations
	DefaultDataFile  = "~/.habit_log.json"
	DefaultDBPath    = "data/habits.db"
	DefaultConfigDir = "~/.config/habitlit"
	HabitsFileName   = "habits.yaml"
	LogFileName      = "habitlit.log"

	// Backup constants
	MaxBackups    = 14
	BackupDirName = "backups"

	// Postgres connection pool
	PostgresMaxOpenConns    = 10
	PostgresConnMaxLifetime = 5 * time.Minute

	// SQLite busy timeout in milliseconds
	SQLiteBusyTimeoutMs = 5000

	// Statistics windows
	WeekDays      = 7
	MoodShortDays = 7
	MoodLongDays  = 30
)

// Backend kinds reported by the selector
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)
