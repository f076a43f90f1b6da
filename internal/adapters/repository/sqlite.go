package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/okian/chartrec/internal/domain/model"
	"github.com/okian/chartrec/internal/domain/rate"
	"github.com/okian/chartrec/pkg/logger"
	"github.com/okian/chartrec/pkg/metrics"
)

const (
	appName    = "chartrec"
	dbFileName = "records.db"

	defaultBusyTimeout = 5 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	song_id          TEXT    NOT NULL,
	difficulty_level TEXT    NOT NULL,
	achievement_rate INTEGER NOT NULL,
	position         INTEGER NOT NULL,
	PRIMARY KEY (song_id, difficulty_level)
);
CREATE INDEX IF NOT EXISTS records_position ON records (position);
`

// SQLiteStore keeps the collection in a SQLite database file.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
	log         logger.Logger
}

// DefaultDBPath returns $XDG_DATA_HOME/chartrec/records.db, creating the
// directory if needed.
func DefaultDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		return nil, ErrNoPath
	}
	s := &SQLiteStore{
		busyTimeout: defaultBusyTimeout,
		log:         logger.Get().Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; also keeps ":memory:" on a single database.
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Debug(ctx, "sqlite store opened", logger.String("path", path))
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds()),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Load returns the stored records in their saved order.
func (s *SQLiteStore) Load(ctx context.Context) (model.Collection, error) {
	start := time.Now()
	out, err := s.load(ctx)
	metrics.RecordStoreOperation("load", time.Since(start), err)
	return out, err
}

func (s *SQLiteStore) load(ctx context.Context) (model.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT song_id, difficulty_level, achievement_rate FROM records ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	out := model.Collection{}
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.SongID, &r.DifficultyLevel, &r.AchievementRate); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := rate.Validate(r.AchievementRate); err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %w", ErrInvalidRow, r.SongID, r.DifficultyLevel, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return out, nil
}

// Save replaces the stored records with records in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, records model.Collection) error {
	start := time.Now()
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return fmt.Errorf("clear records: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO records (song_id, difficulty_level, achievement_rate, position) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, r := range records {
			if _, err := stmt.ExecContext(ctx, r.SongID, r.DifficultyLevel, r.AchievementRate, i); err != nil {
				return fmt.Errorf("insert %s/%s: %w", r.SongID, r.DifficultyLevel, err)
			}
		}
		return nil
	})
	metrics.RecordStoreOperation("save", time.Since(start), err)
	if err != nil {
		s.log.Error(ctx, "save records failed", logger.Int("records", len(records)), logger.Error(err))
	}
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
