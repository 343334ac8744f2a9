/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists closed budgets (budget.Repository) and catalog templates.
  The same patterns apply to PostgreSQL with minor dialect changes.

INTERFACES IMPLEMENTED:
  budget.Repository: Closed budget persistence

TERMINAL RECORDS:
  Only closed budgets are accepted. A budget row holds the full snapshot
  as JSON next to a few indexed columns used for listing.

KEY TABLES:
  budgets:   Closed budgets, snapshot_json is authoritative
  templates: Catalog entries in their JSON form (versioned)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The pool is capped at one
  connection so ":memory:" databases are shared by every query.

USAGE:
  store, err := sqlite.New("./data/party.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - budget/repository.go: Interface definition
  - budget/store/memory.go: In-memory implementation for testing
  - catalog/factory.go: Template JSON schema
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/catalog"
)

// Store implements budget.Repository and template storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ budget.Repository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

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

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Closed budgets (terminal records)
	CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		client_name TEXT NOT NULL,
		event_date TEXT,
		guest_count INTEGER NOT NULL,
		total_amount TEXT NOT NULL,
		snapshot_json TEXT NOT NULL,
		closed_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_budgets_closed_at
		ON budgets(closed_at DESC);
	CREATE INDEX IF NOT EXISTS idx_budgets_client
		ON budgets(client_name);

	-- Catalog templates
	CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_templates_kind
		ON templates(kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BUDGET STORE (budget.Repository interface)
// =============================================================================

// closedAtLayout is fixed width so closed_at sorts as text.
const closedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Save stores a closed budget. Saving the same close again replaces it;
// any other budget under a saved id is refused with budget.ErrBudgetExists.
func (s *Store) Save(ctx context.Context, b budget.Budget) error {
	if err := budget.CheckSavable(b); err != nil {
		return err
	}

	snapshot, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode budget %s: %w", b.ID, err)
	}

	closedAt := b.UpdatedAt
	if b.ClosedAt != nil {
		closedAt = *b.ClosedAt
	}
	var eventDate sql.NullString
	if !b.EventDate.IsZero() {
		eventDate = nullString(b.EventDate.Format("2006-01-02"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stored string
	err = s.db.QueryRowContext(ctx, "SELECT closed_at FROM budgets WHERE id = ?", b.ID).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to check budget %s: %w", b.ID, err)
	default:
		prev, perr := time.Parse(time.RFC3339Nano, stored)
		if perr != nil || !prev.Equal(closedAt) {
			return fmt.Errorf("budget %s: %w", b.ID, budget.ErrBudgetExists)
		}
	}

	query := `
		INSERT INTO budgets (id, client_name, event_date, guest_count, total_amount, snapshot_json, closed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			client_name = excluded.client_name,
			event_date = excluded.event_date,
			guest_count = excluded.guest_count,
			total_amount = excluded.total_amount,
			snapshot_json = excluded.snapshot_json,
			closed_at = excluded.closed_at
	`
	_, err = s.db.ExecContext(ctx, query,
		b.ID,
		b.ClientName,
		eventDate,
		b.GuestCount,
		b.TotalAmount.StringFixed(2),
		string(snapshot),
		closedAt.UTC().Format(closedAtLayout),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// Get retrieves a budget by ID.
func (s *Store) Get(ctx context.Context, id string) (budget.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snapshot string
	err := s.db.QueryRowContext(ctx, "SELECT snapshot_json FROM budgets WHERE id = ?", id).Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return budget.Budget{}, budget.ErrBudgetNotFound
	}
	if err != nil {
		return budget.Budget{}, err
	}
	return decodeBudget(snapshot)
}

// List returns all budgets, most recently closed first.
func (s *Store) List(ctx context.Context) ([]budget.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT snapshot_json FROM budgets ORDER BY closed_at DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	budgets := []budget.Budget{}
	for rows.Next() {
		var snapshot string
		if err := rows.Scan(&snapshot); err != nil {
			return nil, err
		}
		b, err := decodeBudget(snapshot)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func decodeBudget(snapshot string) (budget.Budget, error) {
	var b budget.Budget
	if err := json.Unmarshal([]byte(snapshot), &b); err != nil {
		return budget.Budget{}, fmt.Errorf("failed to decode budget: %w", err)
	}
	return b, nil
}

// =============================================================================
// TEMPLATE STORE
// =============================================================================

// TemplateRecord is a stored template with its JSON config.
type TemplateRecord struct {
	ID         string
	Kind       string
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Template parses the stored config.
func (r TemplateRecord) Template() (budget.Template, error) {
	return catalog.ParseTemplate(r.ConfigJSON)
}

// SaveTemplate saves a template. Saving an existing id bumps its version.
func (s *Store) SaveTemplate(ctx context.Context, t budget.Template) error {
	config, err := catalog.MarshalTemplate(t)
	if err != nil {
		return fmt.Errorf("failed to encode template %s: %w", t.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO templates (id, kind, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			config_json = excluded.config_json,
			version = templates.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, query, t.ID, string(t.Kind), t.Name, config, now, now)
	return err
}

// GetTemplate retrieves a template record by ID.
func (s *Store) GetTemplate(ctx context.Context, id string) (*TemplateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var r TemplateRecord
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, kind, name, config_json, version, created_at, updated_at FROM templates WHERE id = ?",
		id,
	).Scan(&r.ID, &r.Kind, &r.Name, &r.ConfigJSON, &r.Version, &createdAt, &updatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}

	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// ListTemplates returns all stored templates ordered by id.
func (s *Store) ListTemplates(ctx context.Context) ([]budget.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, config_json FROM templates ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []budget.Template
	for rows.Next() {
		var id, config string
		if err := rows.Scan(&id, &config); err != nil {
			return nil, err
		}
		t, err := catalog.ParseTemplate(config)
		if err != nil {
			return nil, fmt.Errorf("stored template %s: %w", id, err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template.
func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
	return err
}

// SeedTemplates stores templates in one transaction, skipping ids that
// already exist. It returns how many were inserted.
func (s *Store) SeedTemplates(ctx context.Context, templates []budget.Template) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := 0
	for _, t := range templates {
		config, err := catalog.MarshalTemplate(t)
		if err != nil {
			return 0, err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO templates (id, kind, name, config_json, version, created_at, updated_at) VALUES (?, ?, ?, ?, 1, ?, ?)",
			t.ID, string(t.Kind), t.Name, config, now, now,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to seed template %s: %w", t.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, tx.Commit()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"budgets", "templates"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
