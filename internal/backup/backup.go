// Package backup keeps rotating copies of the local data file: the JSON
// document or the embedded SQLite database.
package backup

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
)

const (
	// FilePrefix starts every backup file name
	FilePrefix = constants.AppName + "-"

	timestampFormat = "20060102-150405"
)

// Kind selects how a source file is copied and verified.
type Kind string

const (
	KindJSON   Kind = constants.BackendJSON
	KindSQLite Kind = constants.BackendSQLite
)

func (k Kind) suffix() string {
	if k == KindSQLite {
		return ".db"
	}
	return ".json"
}

// Info describes one backup file.
type Info struct {
	Path      string
	Timestamp time.Time
	Seq       int
	Size      int64
}

// Manager creates, lists, rotates and restores backups of one source file.
type Manager struct {
	source    string
	kind      Kind
	backupDir string
	now       func() time.Time
}

// NewManager returns a manager for source, storing backups in backupDir.
func NewManager(source string, kind Kind, backupDir string) *Manager {
	return &Manager{
		source:    source,
		kind:      kind,
		backupDir: backupDir,
		now:       time.Now,
	}
}

func (m *Manager) BackupDir() string {
	return m.backupDir
}

// CreateBackup copies the source into a new timestamped file and prunes the
// oldest backups beyond constants.MaxBackups.
func (m *Manager) CreateBackup() (string, error) {
	path, err := m.createBackup()
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "dir", m.backupDir, "error", err)
	}
	return path, nil
}

func (m *Manager) createBackup() (string, error) {
	if _, err := os.Stat(m.source); os.IsNotExist(err) {
		return "", fmt.Errorf("nothing to back up: %s does not exist", m.source)
	}
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest, err := m.nextPath()
	if err != nil {
		return "", err
	}

	switch m.kind {
	case KindSQLite:
		err = backupDatabase(m.source, dest)
	default:
		err = backupDocument(m.source, dest)
	}
	if err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", m.source, err)
	}

	logger.Info("Created backup", "source", m.source, "backup", dest)
	return dest, nil
}

// nextPath returns an unused backup file name for the current second.
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().Format(timestampFormat)
	path := filepath.Join(m.backupDir, FilePrefix+stamp+m.kind.suffix())
	for seq := 1; fileExists(path); seq++ {
		if seq > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", FilePrefix, stamp, seq, m.kind.suffix()))
	}
	return path, nil
}

// backupDatabase copies a SQLite database with VACUUM INTO, falling back to a
// plain file copy.
func backupDatabase(src, dest string) error {
	db, err := sql.Open("sqlite", readOnlyDSN(src))
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := verifyDatabase(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		return copyFile(src, dest)
	}
	return nil
}

// backupDocument copies a JSON document, refusing to back up a corrupt one.
func backupDocument(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := verifyDocument(data); err != nil {
		return fmt.Errorf("source document appears to be corrupted: %w", err)
	}
	return atomic.WriteFile(dest, bytes.NewReader(data))
}

// ListBackups returns the backups of this manager's kind, newest first.
func (m *Manager) ListBackups() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, seq, ok := parseName(entry.Name(), m.kind.suffix())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Seq:       seq,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Seq > backups[j].Seq
	})
	return backups, nil
}

// parseName extracts the timestamp and sequence from
// habitlit-YYYYMMDD-HHMMSS[-N]<suffix>.
func parseName(name, suffix string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, suffix) {
		return time.Time{}, 0, false
	}
	stem := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), suffix)
	if len(stem) < len(timestampFormat) {
		return time.Time{}, 0, false
	}

	ts, err := time.ParseInLocation(timestampFormat, stem[:len(timestampFormat)], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}

	rest := stem[len(timestampFormat):]
	if rest == "" {
		return ts, 0, true
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(rest, "-"))
	if err != nil || !strings.HasPrefix(rest, "-") || seq < 1 {
		return time.Time{}, 0, false
	}
	return ts, seq, true
}

// rotate removes backups beyond the retention limit, oldest first.
func (m *Manager) rotate() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup replaces the source with backupPath. The current source, if
// any, is backed up first and is not counted against rotation.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	if !fileExists(backupPath) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}
	if err := m.Verify(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous string
	if fileExists(m.source) {
		p, err := m.createBackup()
		if err != nil {
			return "", fmt.Errorf("failed to back up current data before restore: %w", err)
		}
		previous = p
	}

	f, err := os.Open(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(m.source), 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := atomic.WriteFile(m.source, f); err != nil {
		return "", fmt.Errorf("failed to restore %s: %w", m.source, err)
	}
	return previous, nil
}

// Verify checks that path holds a readable file of the manager's kind.
func (m *Manager) Verify(path string) error {
	if m.kind == KindSQLite {
		db, err := sql.Open("sqlite", readOnlyDSN(path))
		if err != nil {
			return err
		}
		defer db.Close()
		return verifyDatabase(db)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return verifyDocument(data)
}

func readOnlyDSN(path string) string {
	return sqlite.FileDSN(path, url.Values{"mode": {"ro"}})
}

func verifyDatabase(db *sql.DB) error {
	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func verifyDocument(data []byte) error {
	var doc map[string]json.RawMessage
	return json.Unmarshal(data, &doc)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	return atomic.WriteFile(dst, f)
}
