package library

import (
	"context"
	"database/sql"
	"fmt"

	"backlogr/pkg/models"
)

// Repo persists normalized snapshots so the CLI tools can import a sheet
// once and export or inspect it offline. The serving path reads from
// memory; this table is a durable copy, not the source of truth.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// SaveSnapshot writes one ingestion run in a single transaction,
// replacing any previous snapshot stored under the same run id.
func (r *Repo) SaveSnapshot(ctx context.Context, runID string, games []models.Game) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM games WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("clear run %s: %w", runID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (id, run_id, title, platform, price, status, hours)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range games {
		if _, err := stmt.ExecContext(
			ctx, g.ID, runID, g.Title, g.Platform, g.Price, g.Status, g.Hours,
		); err != nil {
			return fmt.Errorf("insert game %d (%s): %w", g.ID, g.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// LatestRunID returns the most recently imported run id, or "" when no
// snapshot exists.
func (r *Repo) LatestRunID(ctx context.Context) (string, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT run_id FROM games
		ORDER BY imported_at DESC, run_id
		LIMIT 1
	`)

	var runID string
	if err := row.Scan(&runID); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("latest run id: %w", err)
	}
	return runID, nil
}

// LoadSnapshot reads one run back in ingestion order.
func (r *Repo) LoadSnapshot(ctx context.Context, runID string) ([]models.Game, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, platform, price, status, hours
		FROM games
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	defer rows.Close()

	out := make([]models.Game, 0, 64)
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Title, &g.Platform, &g.Price, &g.Status, &g.Hours); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
