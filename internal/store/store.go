// Package store records privacy-conscious visitor metrics in SQLite.
package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// VisitorMetric is one recorded page view. IPs are only ever stored hashed.
type VisitorMetric struct {
	ID        int       `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// ProjectStat counts how often a project's detail view was opened.
type ProjectStat struct {
	Slug  string `json:"slug"`
	Views int64  `json:"views"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalVisitors    int64           `json:"total_visitors"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	VisitorsToday    int64           `json:"visitors_today"`
	VisitorsThisWeek int64           `json:"visitors_this_week"`
	ProjectViews     int64           `json:"project_views"`
	ResumeRequests   int64           `json:"resume_requests"`
	TopProjects      []ProjectStat   `json:"top_projects"`
	RecentVisitors   []VisitorMetric `json:"recent_visitors"`
}

// DB wraps the metrics database.
type DB struct {
	db   *sql.DB
	salt string
}

// Open creates or opens the database at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return newDB(sqlDB)
}

// OpenMemory opens a private in-memory database.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// Every pooled connection would otherwise get its own empty database.
	sqlDB.SetMaxOpenConns(1)
	return newDB(sqlDB)
}

func newDB(sqlDB *sql.DB) (*DB, error) {
	salt, err := randomHex(32)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	d := &DB{db: sqlDB, salt: salt}
	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return d, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT,
	path TEXT,
	timestamp DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp);

CREATE TABLE IF NOT EXISTS project_views (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	slug TEXT NOT NULL,
	timestamp DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS resume_requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp DATETIME NOT NULL
);
`

// HashIP hashes ip with the per-process salt. The result is stable for the
// life of the process only.
func (d *DB) HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(ip + d.salt))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// RecordVisit stores one page view.
func (d *DB) RecordVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, timestamp) VALUES (?, ?, ?, ?)`,
		d.HashIP(ip), userAgent, path, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording visit: %w", err)
	}
	return nil
}

// RecordProjectView counts one opening of a project's detail view.
func (d *DB) RecordProjectView(ctx context.Context, slug string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO project_views (slug, timestamp) VALUES (?, ?)`, slug, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording project view: %w", err)
	}
	return nil
}

// RecordResumeRequest counts one click on the resume download.
func (d *DB) RecordResumeRequest(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO resume_requests (timestamp) VALUES (?)`, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording resume request: %w", err)
	}
	return nil
}

// Stats builds the dashboard summary.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := &Stats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{startOfDay}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{weekAgo}},
		{&stats.ProjectViews, `SELECT COUNT(*) FROM project_views`, nil},
		{&stats.ResumeRequests, `SELECT COUNT(*) FROM resume_requests`, nil},
	}
	for _, c := range counts {
		if err := d.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("counting: %w", err)
		}
	}

	top, err := d.TopProjects(ctx, 10)
	if err != nil {
		return nil, err
	}
	stats.TopProjects = top

	recent, err := d.RecentVisitors(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentVisitors = recent
	return stats, nil
}

// TopProjects returns the most opened projects, most viewed first.
func (d *DB) TopProjects(ctx context.Context, limit int) ([]ProjectStat, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT slug, COUNT(*) AS views
		FROM project_views
		GROUP BY slug
		ORDER BY views DESC, slug ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying project views: %w", err)
	}
	defer rows.Close()

	var out []ProjectStat
	for rows.Next() {
		var p ProjectStat
		if err := rows.Scan(&p.Slug, &p.Views); err != nil {
			return nil, fmt.Errorf("scanning project view: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecentVisitors returns the latest page views, newest first.
func (d *DB) RecentVisitors(ctx context.Context, limit int) ([]VisitorMetric, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying visitors: %w", err)
	}
	defer rows.Close()

	var out []VisitorMetric
	for rows.Next() {
		var v VisitorMetric
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning visitor: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Cleanup deletes visitor records older than maxAge and returns how many
// were removed.
func (d *DB) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	res, err := d.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up visitors: %w", err)
	}
	return res.RowsAffected()
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
