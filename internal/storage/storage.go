package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"forgefit/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// ErrNotFound is returned instead of raising on missing rows, so callers
// branch on a value rather than catching anything.
var ErrNotFound = fmt.Errorf("not found")

// Storage is the persistence collaborator: sessions, session items, set
// logs, program plans and the durable offline queue, all in one libsql
// database (remote Turso or a local file in dev mode).
type Storage struct {
	db  *sql.DB
	log *logrus.Entry
}

// New opens the database and bootstraps the schema.
func New(cfg *config.Config, log *logrus.Logger) (*Storage, error) {
	// A missing .env is fine; the config file may carry the DSN instead.
	_ = godotenv.Load()

	dsn := cfg.DB.ConnectionString
	if env := os.Getenv("TURSO_DATABASE_URL"); env != "" && !cfg.DB.DevMode {
		dsn = env
	}
	if dsn == "" {
		return nil, fmt.Errorf("no database connection string configured")
	}

	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return &Storage{db: db, log: log.WithField("component", "storage")}, nil
}

func initializeDB(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS sessions (
            id TEXT PRIMARY KEY,
            template_id TEXT NOT NULL,
            label TEXT,
            started_at TEXT NOT NULL,
            ended_at TEXT,
            duration_seconds INTEGER,
            total_sets INTEGER,
            total_volume REAL
        );

        CREATE TABLE IF NOT EXISTS session_items (
            id TEXT PRIMARY KEY,
            session_id TEXT NOT NULL,
            exercise_id TEXT NOT NULL,
            order_index INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'planned',
            skip_reason TEXT,
            UNIQUE (session_id, exercise_id),
            FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
        );

        CREATE TABLE IF NOT EXISTS set_logs (
            session_item_id TEXT NOT NULL,
            set_index INTEGER NOT NULL,
            weight REAL NOT NULL,
            reps INTEGER NOT NULL,
            rpe REAL,
            logged_at TEXT NOT NULL,
            PRIMARY KEY (session_item_id, set_index),
            FOREIGN KEY (session_item_id) REFERENCES session_items(id) ON DELETE CASCADE
        );

        CREATE TABLE IF NOT EXISTS program_plans (
            id TEXT PRIMARY KEY,
            created_at TEXT NOT NULL,
            payload TEXT NOT NULL
        );

        CREATE TABLE IF NOT EXISTS program_days (
            plan_id TEXT NOT NULL,
            week INTEGER NOT NULL,
            weekday INTEGER NOT NULL,
            date TEXT NOT NULL,
            template_id TEXT NOT NULL,
            label TEXT NOT NULL,
            PRIMARY KEY (plan_id, week, weekday),
            FOREIGN KEY (plan_id) REFERENCES program_plans(id) ON DELETE CASCADE
        );

        CREATE TABLE IF NOT EXISTS offline_queue (
            id TEXT PRIMARY KEY,
            kind TEXT NOT NULL,
            payload TEXT NOT NULL,
            enqueued_at TEXT NOT NULL
        );
    `)
	return err
}

// Online pings the database. Used as the sync pass's opportunistic network
// probe; callers treat probe errors as online.
func (s *Storage) Online(ctx context.Context) (bool, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}
