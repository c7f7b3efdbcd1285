package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Decision is one recorded per-video result. Outcome holds the pipeline's
// outcome name.
type Decision struct {
	ID            int64
	RunID         string
	VideoPath     string
	Fingerprint   string
	Outcome       string
	SubtitleFile  string
	MatchedBy     string
	DownloadCount int
	DestPath      string
	Error         string
	CreatedAt     time.Time
}

// Store persists decisions in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts a decision and returns its identifier.
func (s *Store) Record(ctx context.Context, d Decision) (int64, error) {
	if d.RunID == "" || d.VideoPath == "" || d.Outcome == "" {
		return 0, errors.New("record decision: run id, video path and outcome are required")
	}
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO decisions (
            run_id, video_path, fingerprint, outcome, subtitle_file,
            matched_by, download_count, dest_path, error, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.RunID,
		d.VideoPath,
		nullableString(d.Fingerprint),
		d.Outcome,
		nullableString(d.SubtitleFile),
		nullableString(d.MatchedBy),
		d.DownloadCount,
		nullableString(d.DestPath),
		nullableString(d.Error),
		created.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert decision: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

const selectColumns = `id, run_id, video_path, fingerprint, outcome, subtitle_file,
    matched_by, download_count, dest_path, error, created_at`

// Recent returns up to limit decisions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Decision, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM decisions ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return out, nil
}

// LastForFingerprint returns the newest decision for a fingerprint.
// The boolean is false when none exists.
func (s *Store) LastForFingerprint(ctx context.Context, fingerprint string) (Decision, bool, error) {
	if fingerprint == "" {
		return Decision{}, false, nil
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM decisions WHERE fingerprint = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		fingerprint)
	d, err := scanDecision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Decision{}, false, nil
	}
	if err != nil {
		return Decision{}, false, err
	}
	return d, true, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func scanDecision(scanner interface{ Scan(dest ...any) error }) (Decision, error) {
	var (
		d             Decision
		fingerprint   sql.NullString
		subtitleFile  sql.NullString
		matchedBy     sql.NullString
		downloadCount sql.NullInt64
		destPath      sql.NullString
		errorMessage  sql.NullString
		createdAt     string
	)
	err := scanner.Scan(
		&d.ID, &d.RunID, &d.VideoPath, &fingerprint, &d.Outcome, &subtitleFile,
		&matchedBy, &downloadCount, &destPath, &errorMessage, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Decision{}, err
		}
		return Decision{}, fmt.Errorf("scan decision: %w", err)
	}
	d.Fingerprint = fingerprint.String
	d.SubtitleFile = subtitleFile.String
	d.MatchedBy = matchedBy.String
	d.DownloadCount = int(downloadCount.Int64)
	d.DestPath = destPath.String
	d.Error = errorMessage.String
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		d.CreatedAt = ts
	}
	return d, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
