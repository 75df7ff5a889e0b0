package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/JoseAndresM/LKND/internal/model"
)

// Timestamps are stored as fixed-width UTC text so lexicographic SQL
// comparisons agree with time order.
const timeLayout = time.RFC3339

// SQLiteStore persists job records, aggregate counters and per-source
// metadata in one SQLite database. The job_id primary key is the dedup
// gate: uniqueness is enforced by the database constraint, not by a
// check-then-insert in application code.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ model.Store        = (*SQLiteStore)(nil)
	_ model.CounterStore = (*SQLiteStore)(nil)
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		job_id      TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		company     TEXT NOT NULL,
		location    TEXT NOT NULL,
		url         TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		salary      TEXT NOT NULL DEFAULT '',
		job_type    TEXT NOT NULL DEFAULT '',
		posted_date TEXT NOT NULL DEFAULT '',
		source      TEXT NOT NULL,
		found_date  TEXT NOT NULL,
		tags        TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE VIRTUAL TABLE IF NOT EXISTS jobs_fts
		USING fts5(description, content='jobs', content_rowid='rowid')`,
	`CREATE TABLE IF NOT EXISTS source_meta (
		source       TEXT PRIMARY KEY,
		last_scraped TEXT NOT NULL,
		jobs_found   INTEGER NOT NULL,
		last_run_id  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS counters (
		bucket TEXT NOT NULL,
		key    TEXT NOT NULL,
		count  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (bucket, key)
	)`,
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// InsertIfAbsent inserts the record unless its ID is already present. The
// full-text row is written in the same transaction; if indexing fails the
// record insert rolls back too, so a stored record is always searchable.
// A duplicate leaves the stored row untouched and is not an error.
func (s *SQLiteStore) InsertIfAbsent(ctx context.Context, job model.Job) (model.InsertResult, error) {
	tags := job.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return 0, &model.StoreFailure{Op: "insert", Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &model.StoreFailure{Op: "insert", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO jobs
			(job_id, title, company, location, url, description, salary, job_type, posted_date, source, found_date, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Title, job.Company, job.Location, job.URL, job.Description,
		job.Salary, job.JobType, job.PostedDate, job.Source,
		job.FoundDate.UTC().Format(timeLayout), string(tagsJSON),
	)
	if err != nil {
		return 0, &model.StoreFailure{Op: "insert", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &model.StoreFailure{Op: "insert", Err: err}
	}
	if n == 0 {
		return model.AlreadyExists, nil
	}

	rowid, err := res.LastInsertId()
	if err != nil {
		return 0, &model.StoreFailure{Op: "insert", Err: err}
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO jobs_fts (rowid, description) VALUES (?, ?)",
		rowid, job.Description,
	); err != nil {
		return 0, &model.StoreFailure{Op: "index", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &model.StoreFailure{Op: "insert", Err: err}
	}
	return model.Inserted, nil
}

const jobColumns = "job_id, title, company, location, url, description, salary, job_type, posted_date, source, found_date, tags"

// RecordsSince returns records first seen at or after the cutoff, oldest first.
func (s *SQLiteStore) RecordsSince(ctx context.Context, cutoff time.Time) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE found_date >= ? ORDER BY found_date ASC",
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("querying records since %v: %w", cutoff, err)
	}
	return scanJobs(rows)
}

// RecentRecords returns the newest records first, at most limit of them.
func (s *SQLiteStore) RecentRecords(ctx context.Context, limit int) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs ORDER BY found_date DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent records: %w", err)
	}
	return scanJobs(rows)
}

// SearchDescriptions runs a full-text query over stored descriptions and
// returns matching records, best match first.
func (s *SQLiteStore) SearchDescriptions(ctx context.Context, query string, limit int) ([]model.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM jobs
		JOIN (SELECT rowid AS fts_rowid, rank FROM jobs_fts WHERE jobs_fts MATCH ? ORDER BY rank LIMIT ?) f
		ON f.fts_rowid = jobs.rowid
		ORDER BY f.rank`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching descriptions for %q: %w", query, err)
	}
	return scanJobs(rows)
}

func scanJobs(rows *sql.Rows) ([]model.Job, error) {
	defer rows.Close()

	var out []model.Job
	for rows.Next() {
		var j model.Job
		var foundDate, tagsJSON string
		if err := rows.Scan(
			&j.ID, &j.Title, &j.Company, &j.Location, &j.URL, &j.Description,
			&j.Salary, &j.JobType, &j.PostedDate, &j.Source, &foundDate, &tagsJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		t, err := time.Parse(timeLayout, foundDate)
		if err != nil {
			return nil, fmt.Errorf("parsing found_date %q: %w", foundDate, err)
		}
		j.FoundDate = t
		if err := json.Unmarshal([]byte(tagsJSON), &j.Tags); err != nil {
			return nil, fmt.Errorf("parsing tags %q: %w", tagsJSON, err)
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job rows: %w", err)
	}
	return out, nil
}

// UpdateSourceMeta upserts the per-source observability row.
func (s *SQLiteStore) UpdateSourceMeta(ctx context.Context, source string, found int, runID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_meta (source, last_scraped, jobs_found, last_run_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			last_scraped = excluded.last_scraped,
			jobs_found   = excluded.jobs_found,
			last_run_id  = excluded.last_run_id`,
		source, time.Now().UTC().Format(timeLayout), found, runID,
	)
	if err != nil {
		return fmt.Errorf("updating source meta for %s: %w", source, err)
	}
	return nil
}

// SourceMetaRow is one source's last-scrape bookkeeping.
type SourceMetaRow struct {
	Source      string
	LastScraped time.Time
	JobsFound   int
	LastRunID   string
}

// SourceMeta returns the bookkeeping rows for every source seen so far.
func (s *SQLiteStore) SourceMeta(ctx context.Context) ([]SourceMetaRow, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT source, last_scraped, jobs_found, last_run_id FROM source_meta ORDER BY source")
	if err != nil {
		return nil, fmt.Errorf("querying source meta: %w", err)
	}
	defer rows.Close()

	var out []SourceMetaRow
	for rows.Next() {
		var r SourceMetaRow
		var scraped string
		if err := rows.Scan(&r.Source, &scraped, &r.JobsFound, &r.LastRunID); err != nil {
			return nil, fmt.Errorf("scanning source meta row: %w", err)
		}
		t, err := time.Parse(timeLayout, scraped)
		if err != nil {
			return nil, fmt.Errorf("parsing last_scraped %q: %w", scraped, err)
		}
		r.LastScraped = t
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating source meta rows: %w", err)
	}
	return out, nil
}

// AddCounts applies the pending counter increments in one transaction.
// Counters only ever grow; there is no decrement path.
func (s *SQLiteStore) AddCounts(ctx context.Context, deltas []model.CountDelta) error {
	if len(deltas) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &model.StoreFailure{Op: "flush counters", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range deltas {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO counters (bucket, key, count) VALUES (?, ?, ?)
			ON CONFLICT(bucket, key) DO UPDATE SET count = count + excluded.count`,
			d.Bucket, d.Key, d.N,
		); err != nil {
			return &model.StoreFailure{Op: "flush counters", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &model.StoreFailure{Op: "flush counters", Err: err}
	}
	return nil
}

// CounterSnapshot returns every key in the bucket with its current count.
func (s *SQLiteStore) CounterSnapshot(ctx context.Context, bucket string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, count FROM counters WHERE bucket = ?", bucket)
	if err != nil {
		return nil, fmt.Errorf("querying counters for %s: %w", bucket, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("scanning counter row: %w", err)
		}
		out[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counter rows: %w", err)
	}
	return out, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
