// Package backend resolves which storage.Backend serves a given configuration.
package backend

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/habitlit/internal/constants"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/storage/postgres"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/storage/sqlstore"
)

// Key is the configuration a backend is resolved from. Equal keys resolve to
// the same backend instance.
type Key struct {
	DatabaseURL string
	AppMode     string
	DataFile    string
}

// Fallback records a networked connection that failed and was replaced by
// the embedded store.
type Fallback struct {
	Location string
	Err      error
	At       time.Time
}

// Selector builds and caches backends. It is safe for concurrent use.
type Selector struct {
	dbPath string

	mu        sync.Mutex
	byKey     map[Key]storage.Backend
	byPath    map[string]storage.Backend
	opened    []storage.Backend
	fallbacks []Fallback

	openPostgres func(connStr string) (storage.Backend, error)
	openSQLite   func(path string) (storage.Backend, error)
}

// NewSelector returns a selector whose embedded relational store lives at dbPath.
func NewSelector(dbPath string) *Selector {
	return &Selector{
		dbPath: dbPath,
		byKey:  make(map[Key]storage.Backend),
		byPath: make(map[string]storage.Backend),
		openPostgres: func(connStr string) (storage.Backend, error) {
			return postgres.New(connStr)
		},
		openSQLite: func(path string) (storage.Backend, error) {
			return sqlite.New(path)
		},
	}
}

// Select returns the backend for key, constructing it on first use.
// A networked store that cannot be reached is replaced by the embedded store;
// the failure is logged and kept in Fallbacks rather than returned.
func (s *Selector) Select(key Key) (storage.Backend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.byKey[key]; ok {
		return b, nil
	}

	b, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	s.byKey[key] = b
	return b, nil
}

func (s *Selector) resolve(key Key) (storage.Backend, error) {
	switch {
	case key.DatabaseURL != "":
		b, err := s.openPostgres(key.DatabaseURL)
		if err == nil {
			s.opened = append(s.opened, b)
			return b, nil
		}

		location := postgres.Location(key.DatabaseURL)
		logger.Warn("Postgres unavailable, falling back to SQLite", "database", location, "sqlite", s.dbPath, "error", err)
		s.fallbacks = append(s.fallbacks, Fallback{Location: location, Err: err, At: time.Now()})
		return s.embedded()
	case key.AppMode == constants.AppModeProd:
		return s.embedded()
	default:
		b := storage.NewJSONStore(key.DataFile)
		s.opened = append(s.opened, b)
		return b, nil
	}
}

// embedded returns the SQLite store at dbPath, sharing one handle per file.
func (s *Selector) embedded() (storage.Backend, error) {
	if b, ok := s.byPath[s.dbPath]; ok {
		return b, nil
	}
	b, err := s.openSQLite(s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded store at %s: %w", s.dbPath, err)
	}
	s.byPath[s.dbPath] = b
	s.opened = append(s.opened, b)
	return b, nil
}

// Fallbacks returns the connection failures recorded so far.
func (s *Selector) Fallbacks() []Fallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Fallback(nil), s.fallbacks...)
}

// Close closes every backend the selector opened and empties the cache.
func (s *Selector) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, b := range s.opened {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.opened = nil
	s.byKey = make(map[Key]storage.Backend)
	s.byPath = make(map[string]storage.Backend)
	return errors.Join(errs...)
}

// Kind names the storage engine behind b.
func Kind(b storage.Backend) string {
	switch v := b.(type) {
	case *storage.JSONStore:
		return constants.BackendJSON
	case *sqlstore.Store:
		return v.Dialect().Name()
	default:
		return "unknown"
	}
}
