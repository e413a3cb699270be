// Package sqlite is the SQLite-backed result store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shelfmetrics/keyfold/pkg/keyfold/consolidate"
	"github.com/shelfmetrics/keyfold/pkg/keyfold/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite result store with WAL mode enabled, creating the
// schema when missing.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	product_type TEXT,
	records INTEGER DEFAULT 0,
	started_at TEXT,
	finished_at TEXT
);

CREATE TABLE IF NOT EXISTS results (
	title TEXT NOT NULL,
	brand TEXT NOT NULL,
	product_type TEXT NOT NULL,
	level1 TEXT,
	level2 TEXT,
	level3 TEXT,
	keyword TEXT,
	source TEXT,
	run_id TEXT,
	created_at TEXT,
	PRIMARY KEY(title, brand, product_type)
);

CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id);

CREATE TABLE IF NOT EXISTS products (
	run_id TEXT NOT NULL,
	key TEXT NOT NULL,
	title TEXT,
	brand TEXT,
	level1 TEXT,
	level2 TEXT,
	level3 TEXT,
	max_price TEXT,
	availability TEXT,
	keyword TEXT,
	peak_popularity TEXT,
	peak_seasonality TEXT,
	popularity_json TEXT,
	msv_json TEXT,
	PRIMARY KEY(run_id, key)
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteStore) PutResult(ctx context.Context, r store.Result) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO results (title, brand, product_type, level1, level2, level3, keyword, source, run_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(title, brand, product_type) DO UPDATE SET
	level1=excluded.level1, level2=excluded.level2, level3=excluded.level3,
	keyword=excluded.keyword, source=excluded.source,
	run_id=excluded.run_id, created_at=excluded.created_at`,
		r.Title, r.Brand, r.ProductType,
		r.Path.Level1, r.Path.Level2, r.Path.Level3,
		r.Keyword, r.Source, r.RunID, created.Format(time.RFC3339))
	return err
}

func (s *sqliteStore) GetResult(ctx context.Context, title, brand, productType string) (store.Result, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT title, brand, product_type, level1, level2, level3, keyword, source, run_id, created_at
FROM results WHERE title = ? AND brand = ? AND product_type = ?`,
		title, brand, productType)

	r, err := scanResult(row)
	if err == sql.ErrNoRows {
		return store.Result{}, false, nil
	}
	if err != nil {
		return store.Result{}, false, err
	}
	return r, true, nil
}

func (s *sqliteStore) ResultsByRun(ctx context.Context, runID string, limit int) ([]store.Result, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT title, brand, product_type, level1, level2, level3, keyword, source, run_id, created_at
FROM results WHERE run_id = ? ORDER BY title LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(sc scanner) (store.Result, error) {
	var r store.Result
	var created string
	err := sc.Scan(&r.Title, &r.Brand, &r.ProductType,
		&r.Path.Level1, &r.Path.Level2, &r.Path.Level3,
		&r.Keyword, &r.Source, &r.RunID, &created)
	if err != nil {
		return store.Result{}, err
	}
	if t, perr := time.Parse(time.RFC3339, created); perr == nil {
		r.CreatedAt = t
	}
	return r, nil
}

func (s *sqliteStore) PutRun(ctx context.Context, r store.Run) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, product_type, records, started_at, finished_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	product_type=excluded.product_type, records=excluded.records,
	started_at=excluded.started_at, finished_at=excluded.finished_at`,
		r.ID, r.ProductType, r.Records,
		timeText(r.StartedAt), timeText(r.FinishedAt))
	return err
}

func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, product_type, records, started_at, finished_at FROM runs WHERE id = ?`, id)

	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	return r, true, nil
}

func (s *sqliteStore) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, product_type, records, started_at, finished_at
FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Popularity and MSV maps are stored as JSON columns.
func (s *sqliteStore) PutProducts(ctx context.Context, runID string, products []*consolidate.Product) error {
	for _, p := range products {
		popularity, err := json.Marshal(p.Popularity)
		if err != nil {
			return err
		}
		msv, err := json.Marshal(p.MSV)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `
INSERT INTO products (run_id, key, title, brand, level1, level2, level3,
	max_price, availability, keyword, peak_popularity, peak_seasonality,
	popularity_json, msv_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, key) DO UPDATE SET
	title=excluded.title, brand=excluded.brand,
	level1=excluded.level1, level2=excluded.level2, level3=excluded.level3,
	max_price=excluded.max_price, availability=excluded.availability,
	keyword=excluded.keyword,
	peak_popularity=excluded.peak_popularity,
	peak_seasonality=excluded.peak_seasonality,
	popularity_json=excluded.popularity_json, msv_json=excluded.msv_json`,
			runID, p.Key, p.Title, p.Brand,
			p.Path.Level1, p.Path.Level2, p.Path.Level3,
			p.MaxPrice, p.Availability, p.Keyword,
			p.PeakPopularity, p.PeakSeasonality,
			string(popularity), string(msv))
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) ProductsByRun(ctx context.Context, runID string, limit int) ([]*consolidate.Product, error) {
	if limit <= 0 {
		limit = 10000
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT key, title, brand, level1, level2, level3, max_price, availability,
	keyword, peak_popularity, peak_seasonality, popularity_json, msv_json
FROM products WHERE run_id = ? ORDER BY key LIMIT ?`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*consolidate.Product
	for rows.Next() {
		var p consolidate.Product
		var popularity, msv string
		err := rows.Scan(&p.Key, &p.Title, &p.Brand,
			&p.Path.Level1, &p.Path.Level2, &p.Path.Level3,
			&p.MaxPrice, &p.Availability, &p.Keyword,
			&p.PeakPopularity, &p.PeakSeasonality, &popularity, &msv)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(popularity), &p.Popularity); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(msv), &p.MSV); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func timeText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func scanRun(sc scanner) (store.Run, error) {
	var r store.Run
	var started, finished string
	if err := sc.Scan(&r.ID, &r.ProductType, &r.Records, &started, &finished); err != nil {
		return store.Run{}, err
	}
	if t, err := time.Parse(time.RFC3339, started); err == nil {
		r.StartedAt = t
	}
	if t, err := time.Parse(time.RFC3339, finished); err == nil {
		r.FinishedAt = t
	}
	return r, nil
}

var _ store.Store = (*sqliteStore)(nil)
