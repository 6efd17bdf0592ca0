package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one downloaded episode recorded in the local catalog.
type Entry struct {
	ID         int64
	NotionID   string
	Season     int
	Episode    int
	Title      string
	Filename   string
	AudioPath  string
	Duration   string
	Downloaded time.Time
}

// Store tracks pulled episodes in a local SQLite database. The unique
// constraint on the workspace page ID makes re-runs converge at the storage
// layer, independent of any application-level lookup.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) applyMigrations(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS episodes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    notion_id TEXT NOT NULL UNIQUE,
    season INTEGER NOT NULL,
    episode INTEGER NOT NULL,
    title TEXT NOT NULL,
    filename TEXT NOT NULL,
    audio_path TEXT NOT NULL,
    duration TEXT NOT NULL DEFAULT '',
    downloaded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_episodes_season ON episodes(season, episode);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Record upserts an episode keyed on its workspace page ID. Concurrent runs
// racing the same episode resolve inside SQLite: the second insert becomes
// an update instead of a duplicate row.
func (s *Store) Record(ctx context.Context, entry Entry) (*Entry, error) {
	timestamp := entry.Downloaded
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO episodes (notion_id, season, episode, title, filename, audio_path, duration, downloaded_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(notion_id) DO UPDATE SET
             season = excluded.season,
             episode = excluded.episode,
             title = excluded.title,
             filename = excluded.filename,
             audio_path = excluded.audio_path,
             duration = excluded.duration,
             downloaded_at = excluded.downloaded_at`,
		entry.NotionID,
		entry.Season,
		entry.Episode,
		entry.Title,
		entry.Filename,
		entry.AudioPath,
		entry.Duration,
		timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("record episode %s: %w", entry.NotionID, err)
	}
	return s.GetByNotionID(ctx, entry.NotionID)
}

// GetByNotionID fetches one entry, nil when absent.
func (s *Store) GetByNotionID(ctx context.Context, notionID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, notion_id, season, episode, title, filename, audio_path, duration, downloaded_at
         FROM episodes WHERE notion_id = ?`, notionID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode %s: %w", notionID, err)
	}
	return entry, nil
}

// List returns every cataloged episode ordered by season and number.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, notion_id, season, episode, title, filename, audio_path, duration, downloaded_at
         FROM episodes ORDER BY season, episode`)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var entry Entry
	var downloaded string
	if err := row.Scan(
		&entry.ID,
		&entry.NotionID,
		&entry.Season,
		&entry.Episode,
		&entry.Title,
		&entry.Filename,
		&entry.AudioPath,
		&entry.Duration,
		&downloaded,
	); err != nil {
		return nil, err
	}
	if parsed, err := time.Parse(time.RFC3339Nano, downloaded); err == nil {
		entry.Downloaded = parsed
	}
	return &entry, nil
}
