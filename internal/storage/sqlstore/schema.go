package sqlstore

import (
	"fmt"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/migration"
)

const legacySuffix = "_legacy"

// Tables that existed before accounts were introduced, in adoption order.
var legacyTables = []string{"habit_log", "mood_log"}

// InitSchema brings the database to the latest schema. It is safe to call on
// every startup. Tables from the single-tenant era (no user_id column) are
// adopted under the default user and copied into the current layout.
func (s *Store) InitSchema() error {
	for _, table := range legacyTables {
		if err := s.stageLegacyTable(table); err != nil {
			return err
		}
	}

	migrationFS, err := s.dialect.Migrations()
	if err != nil {
		return fmt.Errorf("failed to access %s migrations: %w", s.dialect.Name(), err)
	}

	runner := migration.NewRunner(s.db, migrationFS, s.dialect.Rebind)
	if _, err := runner.ApplyMigrations(func(msg string) {
		logger.Debug(msg, "dialect", s.dialect.Name())
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := s.copyLegacyHabits(); err != nil {
		return err
	}
	return s.copyLegacyMoods()
}

// stageLegacyTable adds and backfills user_id on a pre-account table, then
// moves it aside so the migration can create the current table in its place.
func (s *Store) stageLegacyTable(table string) error {
	exists, err := s.dialect.TableExists(s.db, table)
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	if !exists {
		return nil
	}

	hasUserID, err := s.dialect.ColumnExists(s.db, table, "user_id")
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	if hasUserID {
		return nil
	}

	staged, err := s.dialect.TableExists(s.db, table+legacySuffix)
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", table+legacySuffix, err)
	}
	if staged {
		return fmt.Errorf("cannot adopt legacy table %s: %s already exists", table, table+legacySuffix)
	}

	logger.Info("Adopting legacy table under default user", "table", table, "user_id", constants.DefaultUserID)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin legacy adoption of %s: %w", table, err)
	}

	stmts := []struct {
		query string
		args  []any
	}{
		{query: fmt.Sprintf("ALTER TABLE %s ADD COLUMN user_id INTEGER", table)},
		{query: fmt.Sprintf("UPDATE %s SET user_id = ? WHERE user_id IS NULL", table), args: []any{constants.DefaultUserID}},
		{query: fmt.Sprintf("ALTER TABLE %s RENAME TO %s", table, table+legacySuffix)},
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(s.dialect.Rebind(stmt.query), stmt.args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to adopt legacy table %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit legacy adoption of %s: %w", table, err)
	}
	return nil
}

func (s *Store) copyLegacyHabits() error {
	legacy := "habit_log" + legacySuffix
	exists, err := s.dialect.TableExists(s.db, legacy)
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", legacy, err)
	}
	if !exists {
		return nil
	}

	// Pre-account tables named the key column "habit".
	keyColumn := "habit_key"
	hasHabit, err := s.dialect.ColumnExists(s.db, legacy, "habit")
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", legacy, err)
	}
	if hasHabit {
		keyColumn = "habit"
	}

	insert := fmt.Sprintf(`
		INSERT INTO habit_log (user_id, date, habit_key, duration, note)
		SELECT user_id, date, %[1]s, COALESCE(duration, 0), COALESCE(note, '')
		FROM %[2]s
		WHERE date IS NOT NULL AND %[1]s IS NOT NULL
		ON CONFLICT DO NOTHING`, keyColumn, legacy)

	return s.copyAndDrop(legacy, insert)
}

func (s *Store) copyLegacyMoods() error {
	legacy := "mood_log" + legacySuffix
	exists, err := s.dialect.TableExists(s.db, legacy)
	if err != nil {
		return fmt.Errorf("failed to inspect table %s: %w", legacy, err)
	}
	if !exists {
		return nil
	}

	insert := fmt.Sprintf(`
		INSERT INTO mood_log (user_id, date, score)
		SELECT user_id, date, score
		FROM %s
		WHERE date IS NOT NULL AND score IS NOT NULL
		ON CONFLICT DO NOTHING`, legacy)

	return s.copyAndDrop(legacy, insert)
}

func (s *Store) copyAndDrop(legacy, insert string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin copy of %s: %w", legacy, err)
	}

	res, err := tx.Exec(insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to copy %s: %w", legacy, err)
	}
	if _, err := tx.Exec("DROP TABLE " + legacy); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to drop %s: %w", legacy, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit copy of %s: %w", legacy, err)
	}

	copied, _ := res.RowsAffected()
	logger.Info("Migrated legacy rows", "table", legacy, "rows", copied)
	return nil
}
