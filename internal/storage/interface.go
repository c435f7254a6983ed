package storage

import "github.com/julianstephens/habitlit/internal/models"

// Backend is the contract every habit/mood store satisfies. Callers obtain one
// from the backend selector and never construct a variant directly.
//
// Dates are ISO strings (YYYY-MM-DD). Inputs are validated by the caller; a
// backend persists whatever duration or score it is given.
type Backend interface {
	// Entries

	// LoadAll returns every date that has at least one record for the user.
	LoadAll(userID int64) (models.Snapshot, error)
	// SaveHabit inserts or overwrites the (user, date, habit) record.
	SaveHabit(userID int64, date, habitKey string, duration int, note string) error
	// DeleteHabit removes the (user, date, habit) record. Absent records are not an error.
	DeleteHabit(userID int64, date, habitKey string) error
	// SaveMood inserts or overwrites the (user, date) mood score.
	SaveMood(userID int64, date string, score int) error
	// GetRange returns one day per calendar date in [start, end], empty days
	// included. It fails with ErrInvalidDate when a bound does not parse and
	// returns an empty snapshot when end is before start.
	GetRange(userID int64, start, end string) (models.Snapshot, error)
	// GetMoodSeries returns the user's mood scores ordered by date.
	GetMoodSeries(userID int64) ([]models.MoodPoint, error)

	// Users

	// CreateUser returns the new user's id, or ErrDuplicateEmail.
	CreateUser(email, passwordHash string) (int64, error)
	// GetUser returns nil when no user has the id.
	GetUser(id int64) (*models.User, error)
	// GetUserByEmail returns nil when no user has the email.
	GetUserByEmail(email string) (*models.User, error)

	// Utils
	GetConfigPath() string
	Close() error
}
