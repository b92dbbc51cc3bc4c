package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoSnapshot is returned by Load when no state has been saved yet.
var ErrNoSnapshot = errors.New("no saved lot state")

// SnapshotRepository stores the packed lot state as one opaque JSON
// blob in a single-row table. There are no partial-save primitives;
// every save replaces the previous state.
type SnapshotRepository struct {
	DB *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{DB: db}
}

// Init creates the state table when it does not exist yet.
func (r *SnapshotRepository) Init() error {
	_, err := r.DB.Exec(`
		CREATE TABLE IF NOT EXISTS lot_state (
			id         INT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating lot_state table: %w", err)
	}
	return nil
}

// Save upserts the state blob.
func (r *SnapshotRepository) Save(data []byte) error {
	query := `
		INSERT INTO lot_state (id, data, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.DB.Exec(query, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("error saving lot state: %w", err)
	}
	return nil
}

// Load returns the most recently saved state blob.
func (r *SnapshotRepository) Load() ([]byte, error) {
	var data []byte
	err := r.DB.QueryRow(`SELECT data FROM lot_state WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("error loading lot state: %w", err)
	}
	return data, nil
}
