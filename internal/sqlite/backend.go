// Package sqlite implements the show catalog store on SQLite. Paths are
// resolved by the dispatcher into selections, reads run under a shared
// lock, writes and batches run one at a time inside a transaction, and
// every committed write announces the paths it touched.
//
// The database file is opened and migrated lazily on first use. Control
// "close" releases the handle without touching the file; the next
// operation reopens it.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/showstore/internal/dispatch"
	"github.com/mesh-intelligence/showstore/internal/logging"
	"github.com/mesh-intelligence/showstore/internal/metrics"
	"github.com/mesh-intelligence/showstore/internal/notify"
	"github.com/mesh-intelligence/showstore/internal/paths"
	"github.com/mesh-intelligence/showstore/pkg/types"
)

// Notifier receives the distinct paths touched by a committed write.
type Notifier interface {
	Notify(paths ...string)
}

type subscriber interface {
	Subscribe(ctx context.Context) (<-chan types.Change, error)
}

// Option configures a Backend.
type Option func(*Backend)

// WithNotifier replaces the in-process change bus.
func WithNotifier(n Notifier) Option {
	return func(b *Backend) { b.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// WithClock sets the clock used for generated timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// Backend implements types.Store.
type Backend struct {
	mu       sync.RWMutex
	openMu   sync.Mutex
	attached bool
	config   types.Config
	db       *sql.DB
	matcher  *dispatch.Matcher
	bus      *notify.Bus
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time

	// active is set while a Transaction callback runs.
	active atomic.Pointer[Tx]
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a detached backend. Call Attach before use.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		logger: logging.Component("sqlite"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Attach validates config and prepares the backend. The data directory is
// created here; the database itself opens on first use.
func (b *Backend) Attach(config types.Config) error {
	if err := b.exclusive("attach"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	matcher, err := dispatch.Default()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	b.config = config.WithDefaults()
	b.matcher = matcher
	if b.notifier == nil || b.bus != nil {
		b.bus = notify.NewBus(b.logger)
		b.notifier = b.bus
	}
	b.attached = true
	b.logger.Debug().Str("data_dir", b.config.DataDir).Str("db_file", b.config.DatabaseFile).Msg("attached")
	return nil
}

// Detach closes the database and the change bus. Idempotent.
func (b *Backend) Detach() error {
	if err := b.exclusive("detach"); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	err := b.closeHandle()
	if b.bus != nil {
		if cerr := b.bus.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	b.attached = false
	return err
}

// Control performs the action a control path names.
func (b *Backend) Control(path string) error {
	if err := b.exclusive("control " + path); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	m, err := b.match(path)
	if err != nil {
		return err
	}
	if m.Route.Kind != dispatch.KindControl {
		return fmt.Errorf("%w: %s is not a control path", types.ErrUnsupportedOperation, path)
	}
	switch m.Route.Name {
	case dispatch.ControlClose:
		return b.closeHandle()
	}
	return fmt.Errorf("%w: %s", types.ErrUnsupportedOperation, path)
}

// Version returns the schema version of the database, opening it if
// needed.
func (b *Backend) Version() (int, error) {
	if t := b.joined(); t != nil {
		return userVersion(t.tx)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	db, err := b.handle()
	if err != nil {
		return 0, err
	}
	return userVersion(db)
}

// Subscribe delivers changes until ctx is done or the backend detaches.
func (b *Backend) Subscribe(ctx context.Context) (<-chan types.Change, error) {
	if err := b.exclusive("subscribe"); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	s, ok := b.notifier.(subscriber)
	if !ok {
		return nil, fmt.Errorf("%w: notifier does not support subscriptions", types.ErrUnsupportedOperation)
	}
	return s.Subscribe(ctx)
}

// DatabasePath returns the path of the database file.
func (b *Backend) DatabasePath() string {
	if b.joined() == nil {
		b.mu.RLock()
		defer b.mu.RUnlock()
	}
	return paths.DatabasePath(b.config.DataDir, b.config.DatabaseFile)
}

func (b *Backend) match(path string) (dispatch.Match, error) {
	if !b.attached {
		return dispatch.Match{}, types.ErrDetached
	}
	return b.matcher.Match(path)
}

// handle returns the open database, opening and migrating it on first use.
// The caller holds mu.
func (b *Backend) handle() (*sql.DB, error) {
	if !b.attached {
		return nil, types.ErrDetached
	}
	b.openMu.Lock()
	defer b.openMu.Unlock()

	if b.db != nil {
		return b.db, nil
	}
	db, err := b.open()
	if err != nil {
		return nil, err
	}
	b.db = db
	return db, nil
}

func (b *Backend) open() (*sql.DB, error) {
	path := paths.DatabasePath(b.config.DataDir, b.config.DatabaseFile)
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, &types.EngineError{Op: "opening " + path, Err: err}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &types.EngineError{Op: "opening " + path, Err: err}
	}

	from, to, err := migrate(db, b.logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	metrics.SchemaVersion.Set(float64(to))
	b.logger.Info().Str("path", path).Int("from", from).Int("to", to).Msg("database opened")
	return db, nil
}

// closeHandle releases the database handle. The caller holds mu for
// writing.
func (b *Backend) closeHandle() error {
	b.openMu.Lock()
	defer b.openMu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.logger.Debug().Msg("database handle released")
	return err
}

func dsn(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

func (b *Backend) observe(op, path string, start time.Time, err error) {
	metrics.RecordOperation(op, routeLabel(path), time.Since(start), err)
	if err != nil {
		b.logger.Debug().Err(err).Str("op", op).Str("path", path).Msg("operation failed")
	}
}

// routeLabel keeps metric cardinality bounded by labeling with the route
// name rather than the raw path.
func routeLabel(path string) string {
	m, err := dispatch.Default()
	if err != nil {
		return "unknown"
	}
	match, err := m.Match(path)
	if err != nil {
		return "unknown"
	}
	return match.Route.Name
}
