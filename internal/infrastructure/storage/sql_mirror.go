package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/grocerlist/usdaimport/internal/domain"
)

// dialect captures the differences between the supported SQL backends
type dialect struct {
	driverName string
	// placeholder renders the n-th (1-based) bind parameter
	placeholder func(n int) string
	setup       []string
}

var dialects = map[string]dialect{
	"sqlite": {
		driverName:  "sqlite",
		placeholder: func(int) string { return "?" },
		setup:       []string{"PRAGMA journal_mode=WAL"},
	},
	"postgres": {
		driverName:  "postgres",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	},
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS grocery_items (
	id             TEXT    PRIMARY KEY,
	name           TEXT    NOT NULL,
	category       TEXT    NOT NULL,
	season         TEXT,
	is_vegan       BOOLEAN NOT NULL,
	is_gluten_free BOOLEAN NOT NULL,
	brand_owner    TEXT,
	document       TEXT    NOT NULL,
	run_id         TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS import_runs (
	run_id      TEXT    PRIMARY KEY,
	item_count  INTEGER NOT NULL,
	finished_at TEXT    NOT NULL
);
`

const categoryIndexDDL = `CREATE INDEX IF NOT EXISTS idx_grocery_items_category ON grocery_items(category)`

// SQLMirror replicates the catalogue snapshot into a relational table so it
// can be queried without loading the JSON artifact.
type SQLMirror struct {
	db      *sql.DB
	dialect dialect
}

// OpenSQLMirror connects to the mirror database and creates its tables.
// driver is "sqlite" or "postgres".
func OpenSQLMirror(ctx context.Context, driver, dsn string) (*SQLMirror, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("mirror: unsupported driver %q", driver)
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("mirror: open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mirror: ping: %w", err)
	}

	m := &SQLMirror{db: db, dialect: d}
	if err := m.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mirror: migrate: %w", err)
	}

	return m, nil
}

func (m *SQLMirror) migrate(ctx context.Context) error {
	for _, stmt := range m.dialect.setup {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := m.db.ExecContext(ctx, schemaDDL); err != nil {
		return err
	}
	_, err := m.db.ExecContext(ctx, categoryIndexDDL)
	return err
}

// Replace swaps the mirrored catalogue for items in one transaction and
// records the run.
func (m *SQLMirror) Replace(ctx context.Context, runID string, items []domain.GroceryItem) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mirror: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM grocery_items"); err != nil {
		return fmt.Errorf("mirror: clear: %w", err)
	}

	p := m.dialect.placeholder
	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO grocery_items (id, name, category, season, is_vegan, is_gluten_free, brand_owner, document, run_id)
		 VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)`,
		p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8), p(9)))
	if err != nil {
		return fmt.Errorf("mirror: prepare insert: %w", err)
	}
	defer insert.Close()

	for i := range items {
		item := &items[i]
		doc, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("mirror: encode item %s: %w", item.ID, err)
		}

		var season sql.NullString
		if item.Season != nil {
			season = sql.NullString{String: string(*item.Season), Valid: true}
		}
		var brand sql.NullString
		if item.BrandOwner != nil {
			brand = sql.NullString{String: *item.BrandOwner, Valid: true}
		}

		if _, err := insert.ExecContext(ctx,
			item.ID, item.Name, item.Category, season,
			item.IsVegan, item.IsGlutenFree, brand, string(doc), runID,
		); err != nil {
			return fmt.Errorf("mirror: insert item %s: %w", item.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO import_runs (run_id, item_count, finished_at) VALUES (%s, %s, %s)", p(1), p(2), p(3)),
		runID, len(items), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("mirror: record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mirror: commit: %w", err)
	}
	return nil
}

// Count returns the number of mirrored items
func (m *SQLMirror) Count(ctx context.Context) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM grocery_items").Scan(&n)
	return n, err
}

// Close closes the database connection
func (m *SQLMirror) Close() error {
	return m.db.Close()
}
