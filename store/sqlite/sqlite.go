/*
Package sqlite provides a SQLite-backed dataset snapshot and plan archive.

PURPOSE:
  Holds an imported copy of the three input record sets so a long-running
  server can plan without re-reading CSV files, and archives every plan
  it produces for later inspection.

INTERFACES IMPLEMENTED:
  generic.Source:     LoadDataset
  outreach.PlanStore: SavePlanRun, GetPlanRun, ListPlanRuns
  outreach.Store:     the above plus ReplaceDataset

SNAPSHOT SEMANTICS:
  ReplaceDataset swaps all three record sets in one transaction. Rows are
  stored as supplied (text), in input order, without uniqueness
  constraints: key and date validation belong to the planner, so a
  snapshot loaded from SQLite fails exactly like the CSV files would.

KEY TABLES:
  products, orders, order_items: Current input snapshot
  plan_runs:                     One row per archived plan
  plan_entries:                  Due entries and rendered text of a run

CONCURRENCY:
  Uses sync.RWMutex for thread-safety.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  the single writer.

USAGE:
  store, err := sqlite.New("./data/outreach.db")
  if err != nil {
      return err
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Source interface
  - outreach/store.go: PlanStore interface
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/outreach-engine/generic"
	"github.com/warp/outreach-engine/outreach"
)

// createdAtLayout is fixed width so created_at sorts chronologically as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements outreach.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ outreach.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Input snapshot (replaced as a whole)
	CREATE TABLE IF NOT EXISTS products (
		row_no INTEGER PRIMARY KEY,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		product_type TEXT NOT NULL,
		shelf_life_days TEXT
	);

	CREATE TABLE IF NOT EXISTS orders (
		row_no INTEGER PRIMARY KEY,
		order_id TEXT NOT NULL,
		customer_name TEXT NOT NULL,
		order_date TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS order_items (
		row_no INTEGER PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity TEXT NOT NULL
	);

	-- Plan archive
	CREATE TABLE IF NOT EXISTS plan_runs (
		id TEXT PRIMARY KEY,
		today TEXT NOT NULL,
		lead_days INTEGER NOT NULL,
		durable_after_days INTEGER NOT NULL,
		mid_after_days INTEGER NOT NULL,
		locale TEXT NOT NULL,
		entry_count INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plan_runs_created_at
		ON plan_runs(created_at DESC);

	CREATE TABLE IF NOT EXISTS plan_entries (
		run_id TEXT NOT NULL REFERENCES plan_runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		customer_name TEXT NOT NULL,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		product_type TEXT NOT NULL,
		last_order_date TEXT NOT NULL,
		trigger_date TEXT NOT NULL,
		message_type TEXT NOT NULL,
		message_text TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DATASET SNAPSHOT (generic.Source)
// =============================================================================

// ReplaceDataset validates the record sets' columns and replaces the
// stored snapshot atomically.
func (s *Store) ReplaceDataset(ctx context.Context, ds generic.Dataset) error {
	if err := outreach.ValidateColumns(ds); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"order_items", "orders", "products"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	p := ds.Products
	for i := 0; i < p.Len(); i++ {
		shelf, ok := p.Lookup(i, generic.ColShelfLifeDays)
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (row_no, product_id, product_name, product_type, shelf_life_days) VALUES (?, ?, ?, ?, ?)`,
			i+1, p.Value(i, generic.ColProductID), p.Value(i, generic.ColProductName),
			p.Value(i, generic.ColProductType), nullString(shelf, ok),
		)
		if err != nil {
			return fmt.Errorf("insert product row %d: %w", i+1, err)
		}
	}

	o := ds.Orders
	for i := 0; i < o.Len(); i++ {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO orders (row_no, order_id, customer_name, order_date) VALUES (?, ?, ?, ?)`,
			i+1, o.Value(i, generic.ColOrderID), o.Value(i, generic.ColCustomerName), o.Value(i, generic.ColOrderDate),
		)
		if err != nil {
			return fmt.Errorf("insert order row %d: %w", i+1, err)
		}
	}

	it := ds.Items
	for i := 0; i < it.Len(); i++ {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (row_no, order_id, product_id, quantity) VALUES (?, ?, ?, ?)`,
			i+1, it.Value(i, generic.ColOrderID), it.Value(i, generic.ColProductID), it.Value(i, generic.ColQuantity),
		)
		if err != nil {
			return fmt.Errorf("insert order item row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// LoadDataset returns the stored snapshot in input order.
func (s *Store) LoadDataset(ctx context.Context) (generic.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products, err := s.queryTable(ctx, generic.RecordSetProducts,
		[]string{generic.ColProductID, generic.ColProductName, generic.ColProductType, generic.ColShelfLifeDays},
		`SELECT product_id, product_name, product_type, COALESCE(shelf_life_days, '') FROM products ORDER BY row_no`)
	if err != nil {
		return generic.Dataset{}, err
	}
	orders, err := s.queryTable(ctx, generic.RecordSetOrders,
		[]string{generic.ColOrderID, generic.ColCustomerName, generic.ColOrderDate},
		`SELECT order_id, customer_name, order_date FROM orders ORDER BY row_no`)
	if err != nil {
		return generic.Dataset{}, err
	}
	items, err := s.queryTable(ctx, generic.RecordSetItems,
		[]string{generic.ColOrderID, generic.ColProductID, generic.ColQuantity},
		`SELECT order_id, product_id, quantity FROM order_items ORDER BY row_no`)
	if err != nil {
		return generic.Dataset{}, err
	}
	return generic.Dataset{Products: products, Orders: orders, Items: items}, nil
}

func (s *Store) queryTable(ctx context.Context, name string, columns []string, query string) (*generic.Table, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	defer rows.Close()

	var data [][]string
	for rows.Next() {
		rec := make([]string, len(columns))
		dest := make([]any, len(columns))
		for i := range rec {
			dest[i] = &rec[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		data = append(data, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return generic.NewTable(name, columns, data), nil
}

// =============================================================================
// PLAN ARCHIVE (outreach.PlanStore)
// =============================================================================

// SavePlanRun stores a run and its entries in one transaction.
func (s *Store) SavePlanRun(ctx context.Context, run outreach.PlanRun) error {
	if len(run.Outbox) != len(run.Entries) {
		return fmt.Errorf("plan run %s: %d entries but %d outbox messages", run.ID, len(run.Entries), len(run.Outbox))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plan_runs (id, today, lead_days, durable_after_days, mid_after_days, locale, entry_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Today.String(), run.Rules.LeadDays, run.Rules.DurableAfterDays, run.Rules.MidAfterDays,
		run.Locale, len(run.Entries), run.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save plan run: %w", err)
	}

	for i, e := range run.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_entries (run_id, seq, customer_name, product_id, product_name, product_type,
				last_order_date, trigger_date, message_type, message_text)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, e.CustomerName, string(e.ProductID), e.ProductName, e.ProductType,
			e.LastOrderDate.String(), e.TriggerDate.String(), string(e.MessageType), run.Outbox[i].MessageText,
		)
		if err != nil {
			return fmt.Errorf("failed to save plan entry %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// GetPlanRun returns a run with its entries and outbox.
func (s *Store) GetPlanRun(ctx context.Context, id string) (*outreach.PlanRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, today, lead_days, durable_after_days, mid_after_days, locale, entry_count, created_at
		FROM plan_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrPlanRunNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT customer_name, product_id, product_name, product_type, last_order_date, trigger_date,
			message_type, message_text
		FROM plan_entries WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	run.Entries = []outreach.PlanEntry{}
	run.Outbox = []outreach.OutboxMessage{}
	for rows.Next() {
		var e outreach.PlanEntry
		var productID, lastOrder, trigger, msgType, text string
		if err := rows.Scan(&e.CustomerName, &productID, &e.ProductName, &e.ProductType,
			&lastOrder, &trigger, &msgType, &text); err != nil {
			return nil, err
		}
		e.ProductID = outreach.ProductID(productID)
		e.MessageType = outreach.MessageType(msgType)
		if e.LastOrderDate, err = generic.ParseDate("last_order_date", lastOrder); err != nil {
			return nil, err
		}
		if e.TriggerDate, err = generic.ParseDate("trigger_date", trigger); err != nil {
			return nil, err
		}
		run.Entries = append(run.Entries, e)
		run.Outbox = append(run.Outbox, outreach.OutboxMessage{
			CustomerName: e.CustomerName, MessageType: e.MessageType, MessageText: text,
		})
	}
	return run, rows.Err()
}

// ListPlanRuns returns run headers, newest first.
func (s *Store) ListPlanRuns(ctx context.Context) ([]outreach.PlanRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, today, lead_days, durable_after_days, mid_after_days, locale, entry_count, created_at
		FROM plan_runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []outreach.PlanRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Reset removes the snapshot and the archive. Development only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"plan_entries", "plan_runs", "order_items", "orders", "products"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*outreach.PlanRun, error) {
	var run outreach.PlanRun
	var today, createdAt string
	if err := row.Scan(&run.ID, &today, &run.Rules.LeadDays, &run.Rules.DurableAfterDays,
		&run.Rules.MidAfterDays, &run.Locale, &run.EntryCount, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if run.Today, err = generic.ParseDate("today", today); err != nil {
		return nil, err
	}
	if run.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return nil, fmt.Errorf("plan run %s: created_at: %w", run.ID, err)
	}
	return &run, nil
}

func nullString(s string, valid bool) sql.NullString {
	return sql.NullString{String: s, Valid: valid}
}
