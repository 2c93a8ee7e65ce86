package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/datajobs/jobmarket/internal/model"
)

// SQLiteCache persists the fetched dataset locally so repeat runs skip the
// download. The cache holds exactly one dataset snapshot; Save replaces it.
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (or creates) a SQLite database at dbPath and ensures
// the postings table exists.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS postings (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		category_title  TEXT NOT NULL,
		title           TEXT NOT NULL,
		company         TEXT NOT NULL,
		location        TEXT NOT NULL,
		posted_at       TEXT,
		salary_year_avg REAL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating postings table: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Save replaces the cached snapshot with postings. The whole write happens in
// one transaction so a failed run never leaves a half-written cache behind.
func (c *SQLiteCache) Save(postings []model.JobPosting) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("saving postings: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM postings"); err != nil {
		return fmt.Errorf("saving postings: clearing old snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO postings
		(category_title, title, company, location, posted_at, salary_year_avg)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("saving postings: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range postings {
		var postedAt sql.NullString
		if p.PostedAt != nil {
			postedAt = sql.NullString{String: p.PostedAt.UTC().Format(time.RFC3339), Valid: true}
		}
		var salary sql.NullFloat64
		if p.SalaryYearAvg != nil {
			salary = sql.NullFloat64{Float64: *p.SalaryYearAvg, Valid: true}
		}
		if _, err := stmt.Exec(p.CategoryTitle, p.Title, p.Company, p.Location, postedAt, salary); err != nil {
			return fmt.Errorf("saving postings: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("saving postings: commit: %w", err)
	}
	return nil
}

// Load returns the cached snapshot in insertion order.
func (c *SQLiteCache) Load() ([]model.JobPosting, error) {
	rows, err := c.db.Query(`SELECT category_title, title, company, location, posted_at, salary_year_avg
		FROM postings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("loading postings: %w", err)
	}
	defer rows.Close()

	var postings []model.JobPosting
	for rows.Next() {
		var p model.JobPosting
		var postedAt sql.NullString
		var salary sql.NullFloat64
		if err := rows.Scan(&p.CategoryTitle, &p.Title, &p.Company, &p.Location, &postedAt, &salary); err != nil {
			return nil, fmt.Errorf("loading postings: scan: %w", err)
		}
		if postedAt.Valid {
			t, err := time.Parse(time.RFC3339, postedAt.String)
			if err != nil {
				return nil, fmt.Errorf("loading postings: bad posted_at %q: %w", postedAt.String, err)
			}
			p.PostedAt = &t
		}
		if salary.Valid {
			v := salary.Float64
			p.SalaryYearAvg = &v
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading postings: %w", err)
	}
	return postings, nil
}

// Count returns the number of cached postings. Zero means a cold cache.
func (c *SQLiteCache) Count() (int, error) {
	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM postings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting postings: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
