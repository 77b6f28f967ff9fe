// Package state persists the queue between runs in a SQLite database.
package state

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "cadence"
	dbFileName   = "cadence.db"
	saveDebounce = 500 * time.Millisecond
)

type Manager struct {
	db  *sql.DB
	log zerolog.Logger

	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *QueueState
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for background save failures.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// Open opens the database in the XDG data directory.
func Open(opts ...Option) (*Manager, error) {
	dbPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return OpenPath(dbPath, opts...)
}

// OpenPath opens the database at path. ":memory:" gives a private in-memory
// database.
func OpenPath(path string, opts ...Option) (*Manager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	m := &Manager{db: db, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// DefaultPath returns the database location under the XDG data directory.
func DefaultPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	return path, errors.Wrap(err, "resolve data path")
}

// Close flushes a pending save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		if err := saveQueue(context.Background(), m.db, *pending); err != nil {
			m.log.Warn().Err(err).Msg("flush queue state")
		}
	}
	return m.db.Close()
}

// GetQueue returns the saved queue, or nil when nothing was saved.
func (m *Manager) GetQueue() (*QueueState, error) {
	return getQueue(context.Background(), m.db)
}

// SaveQueue writes state now.
func (m *Manager) SaveQueue(state QueueState) error {
	return saveQueue(context.Background(), m.db, state)
}

// ScheduleSave writes state after a short delay. A newer state scheduled
// before the delay expires replaces it.
func (m *Manager) ScheduleSave(state QueueState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &state

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			if err := saveQueue(context.Background(), m.db, *pending); err != nil {
				m.log.Warn().Err(err).Msg("save queue state")
			}
		}
	})
}
