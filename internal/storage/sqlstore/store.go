package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Store is the relational storage.Backend shared by every engine.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	location string
}

var _ storage.Backend = (*Store)(nil)

// New wraps an open database. location is what GetConfigPath reports and
// must not contain credentials.
func New(db *sql.DB, dialect Dialect, location string) *Store {
	return &Store{
		db:       db,
		dialect:  dialect,
		location: location,
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) exec(query string, args ...any) (sql.Result, error) {
	return s.db.Exec(s.dialect.Rebind(query), args...)
}

func (s *Store) query(query string, args ...any) (*sql.Rows, error) {
	return s.db.Query(s.dialect.Rebind(query), args...)
}

func (s *Store) LoadAll(userID int64) (models.Snapshot, error) {
	snap := models.Snapshot{}

	if err := s.loadHabits(snap, "SELECT user_id, date, habit_key, duration, note FROM habit_log WHERE user_id = ?", userID); err != nil {
		return nil, err
	}
	if err := s.loadMoods(snap, "SELECT user_id, date, score FROM mood_log WHERE user_id = ?", userID); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) loadHabits(snap models.Snapshot, query string, args ...any) error {
	rows, err := s.query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query habit log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.HabitEntry
		if err := rows.Scan(&e.UserID, &e.Date, &e.HabitKey, &e.Duration, &e.Note); err != nil {
			return fmt.Errorf("failed to scan habit entry: %w", err)
		}
		snap.PutHabit(e.Date, e.HabitKey, e.Record())
	}
	return rows.Err()
}

func (s *Store) loadMoods(snap models.Snapshot, query string, args ...any) error {
	rows, err := s.query(query, args...)
	if err != nil {
		return fmt.Errorf("failed to query mood log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.MoodEntry
		if err := rows.Scan(&e.UserID, &e.Date, &e.Score); err != nil {
			return fmt.Errorf("failed to scan mood entry: %w", err)
		}
		snap.PutMood(e.Date, int(e.Score))
	}
	return rows.Err()
}

func (s *Store) SaveHabit(userID int64, date, habitKey string, duration int, note string) error {
	_, err := s.exec(`
		INSERT INTO habit_log (user_id, date, habit_key, duration, note)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date, habit_key)
		DO UPDATE SET duration = excluded.duration, note = excluded.note`,
		userID, date, habitKey, duration, note)
	if err != nil {
		if s.dialect.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %d", storage.ErrUnknownUser, userID)
		}
		return fmt.Errorf("failed to save habit: %w", err)
	}
	return nil
}

func (s *Store) DeleteHabit(userID int64, date, habitKey string) error {
	_, err := s.exec("DELETE FROM habit_log WHERE user_id = ? AND date = ? AND habit_key = ?", userID, date, habitKey)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	return nil
}

func (s *Store) SaveMood(userID int64, date string, score int) error {
	_, err := s.exec(`
		INSERT INTO mood_log (user_id, date, score)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, date)
		DO UPDATE SET score = excluded.score`,
		userID, date, score)
	if err != nil {
		if s.dialect.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %d", storage.ErrUnknownUser, userID)
		}
		return fmt.Errorf("failed to save mood: %w", err)
	}
	return nil
}

// GetRange returns every date in [start, end], with an empty Day for dates
// that have no stored rows.
func (s *Store) GetRange(userID int64, start, end string) (models.Snapshot, error) {
	dates, err := utils.ParseRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidDate, err)
	}

	snap := make(models.Snapshot, len(dates))
	for _, date := range dates {
		snap.Ensure(date)
	}
	if len(dates) == 0 {
		return snap, nil
	}

	if err := s.loadHabits(snap,
		"SELECT user_id, date, habit_key, duration, note FROM habit_log WHERE user_id = ? AND date BETWEEN ? AND ?",
		userID, dates[0], dates[len(dates)-1]); err != nil {
		return nil, err
	}
	if err := s.loadMoods(snap,
		"SELECT user_id, date, score FROM mood_log WHERE user_id = ? AND date BETWEEN ? AND ?",
		userID, dates[0], dates[len(dates)-1]); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) GetMoodSeries(userID int64) ([]models.MoodPoint, error) {
	rows, err := s.query("SELECT date, score FROM mood_log WHERE user_id = ? ORDER BY date", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood series: %w", err)
	}
	defer rows.Close()

	series := []models.MoodPoint{}
	for rows.Next() {
		var p models.MoodPoint
		if err := rows.Scan(&p.Date, &p.Score); err != nil {
			return nil, fmt.Errorf("failed to scan mood entry: %w", err)
		}
		series = append(series, p)
	}
	return series, rows.Err()
}

func (s *Store) CreateUser(email, passwordHash string) (int64, error) {
	createdAt := time.Now().UTC().Format(time.RFC3339)
	id, err := s.dialect.InsertReturningID(s.db,
		s.dialect.Rebind("INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)"),
		email, passwordHash, createdAt)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", storage.ErrDuplicateEmail, email)
		}
		return 0, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

func (s *Store) GetUser(id int64) (*models.User, error) {
	return s.getUser("SELECT id, email, password_hash, created_at FROM users WHERE id = ?", id)
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	return s.getUser("SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email)
}

func (s *Store) getUser(query string, arg any) (*models.User, error) {
	var u models.User
	var createdAt string
	err := s.db.QueryRow(s.dialect.Rebind(query), arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if createdAt != "" {
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for user %d: %w", u.ID, err)
		}
		u.CreatedAt = t
	}
	return &u, nil
}

func (s *Store) GetConfigPath() string {
	return s.location
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
