// Package history keeps a local log of completed releases in a SQLite
// database, so operators can answer "what shipped, when, from which commit"
// without digging through git.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultDBPath = "~/.capstan/history.db"

const schema = `
CREATE TABLE IF NOT EXISTS releases (
    release_id   INTEGER PRIMARY KEY AUTOINCREMENT,
    project      TEXT NOT NULL,
    version      TEXT NOT NULL,
    prev_version TEXT,
    branch       TEXT NOT NULL,
    commit_hash  TEXT,
    tag          TEXT NOT NULL,
    duration_ms  INTEGER DEFAULT 0,
    created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_releases_project_created
    ON releases(project, created_at DESC);
`

// Release is one recorded release.
type Release struct {
	ID          int64
	Project     string
	Version     string
	PrevVersion string
	Branch      string
	Commit      string
	Tag         string
	Duration    time.Duration
	CreatedAt   time.Time
}

// Store is a SQLite-backed release log.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and migrates) the release log at dbPath. An empty path uses
// the default location under the operator's home directory.
func Open(dbPath string) (*Store, error) {
	resolved, err := resolvePath(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating history schema: %w", err)
	}
	return &Store{db: db, path: resolved}, nil
}

// Path returns the resolved database path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func resolvePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		p = defaultDBPath
	}
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home dir: %w", err)
		}
		p = filepath.Join(home, p[2:])
	}
	return filepath.Clean(p), nil
}

// Record inserts a release and returns its row id.
func (s *Store) Record(ctx context.Context, r Release) (int64, error) {
	if r.Project == "" {
		return 0, errors.New("project name is required")
	}
	if r.Version == "" {
		return 0, errors.New("version is required")
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO releases (project, version, prev_version, branch, commit_hash, tag, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.Project, r.Version, r.PrevVersion, r.Branch, r.Commit, r.Tag, r.Duration.Milliseconds())
	if err != nil {
		return 0, fmt.Errorf("recording release: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent releases for a project, newest first. A zero
// limit means 20. An empty project lists all projects.
func (s *Store) List(ctx context.Context, project string, limit int) ([]Release, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT release_id, project, version, prev_version, branch, commit_hash, tag, duration_ms, created_at
		FROM releases`
	args := []any{}
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at DESC, release_id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing releases: %w", err)
	}
	defer rows.Close()

	var out []Release
	for rows.Next() {
		var r Release
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Project, &r.Version, &r.PrevVersion, &r.Branch,
			&r.Commit, &r.Tag, &durationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning release: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Latest returns the most recent release for a project, or sql.ErrNoRows.
func (s *Store) Latest(ctx context.Context, project string) (Release, error) {
	releases, err := s.List(ctx, project, 1)
	if err != nil {
		return Release{}, err
	}
	if len(releases) == 0 {
		return Release{}, sql.ErrNoRows
	}
	return releases[0], nil
}
