package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/downyt/internal/models"
	"github.com/desertthunder/downyt/internal/shared"
)

// HistoryRepository persists [models.HistoryEntry] records.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new [HistoryRepository] with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Create inserts entry with a generated ID. Missing timestamps and status are filled in.
func (r *HistoryRepository) Create(ctx context.Context, entry *models.HistoryEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	entry.ID = shared.GenerateID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = entry.CreatedAt
	if entry.Status == "" {
		entry.Status = models.StatusQueued
	}

	query := `
		INSERT INTO download_history (id, task_id, url, kind, title, status, message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.TaskID, entry.URL, string(entry.Type), entry.Title,
		string(entry.Status), entry.Message, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// UpdateStatus records the latest status and message of a task.
func (r *HistoryRepository) UpdateStatus(ctx context.Context, taskID string, status models.Status, message string) error {
	query := `UPDATE download_history SET status = ?, message = ?, updated_at = ? WHERE task_id = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), message, time.Now(), taskID)
	if err != nil {
		return fmt.Errorf("failed to update history entry: %w", err)
	}
	return requireRow(result, "history entry for task "+taskID)
}

// GetByTask returns the entry for a backend task id.
func (r *HistoryRepository) GetByTask(ctx context.Context, taskID string) (*models.HistoryEntry, error) {
	query := `
		SELECT id, task_id, url, kind, title, status, message, created_at, updated_at
		FROM download_history
		WHERE task_id = ?
	`
	entry, err := scanHistory(r.db.QueryRowContext(ctx, query, taskID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history entry: %w", err)
	}
	return entry, nil
}

// List returns the most recent entries, newest first. A limit of zero or less returns everything.
func (r *HistoryRepository) List(ctx context.Context, limit int) ([]*models.HistoryEntry, error) {
	query := `
		SELECT id, task_id, url, kind, title, status, message, created_at, updated_at
		FROM download_history
		ORDER BY created_at DESC, rowid DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistory(s scanner) (*models.HistoryEntry, error) {
	var (
		entry        models.HistoryEntry
		kind, status string
	)
	err := s.Scan(&entry.ID, &entry.TaskID, &entry.URL, &kind, &entry.Title, &status, &entry.Message, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	entry.Type = models.DownloadType(kind)
	entry.Status = models.Status(status)
	return &entry, nil
}
