package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// stateRepo implements the State repository on SQLite, one JSON document
// per namespace. The mutex makes Update the serialization point for all
// read-modify-write access to a namespace.
type stateRepo struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStateRepo creates a new State repository
func NewStateRepo(dbPath string) (repo.StateRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS bot_state (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &stateRepo{db: db}, nil
}

// Load returns the state stored under name, or a zero-value state
func (r *stateRepo) Load(ctx context.Context, name string) (*domain.BotState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx, name)
}

func (r *stateRepo) load(ctx context.Context, name string) (*domain.BotState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT value FROM bot_state WHERE name = ?
	`, name)

	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return &domain.BotState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query state: %w", err)
	}

	var state domain.BotState
	if err := json.Unmarshal([]byte(value), &state); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return &state, nil
}

// Update loads, mutates, and conditionally saves the state under name
func (r *stateRepo) Update(ctx context.Context, name string, mutate func(state *domain.BotState) (bool, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.load(ctx, name)
	if err != nil {
		return err
	}

	changed, err := mutate(state)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	value, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO bot_state (name, value, updated_at)
		VALUES (?, ?, ?)
	`, name, string(value), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *stateRepo) Close() error {
	return r.db.Close()
}
