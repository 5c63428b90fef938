package database

import (
	"context"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// ArchiveBatch records one compressed batch of cold-stored predictions.
// The rows mirror the archive files on disk so retention can find the
// oldest batches without scanning the directory.
type ArchiveBatch struct {
	ID          int64     `db:"id" json:"id"`
	FileName    string    `db:"file_name" json:"file_name"`
	RecordCount int       `db:"record_count" json:"record_count"`
	OldestAt    time.Time `db:"oldest_at" json:"oldest_at"`
	NewestAt    time.Time `db:"newest_at" json:"newest_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ArchiveDAO provides database operations for archive batch bookkeeping
type ArchiveDAO interface {
	Insert(ctx context.Context, batch *ArchiveBatch) error
	List(ctx context.Context) ([]ArchiveBatch, error)

	// TrimOldest deletes bookkeeping rows beyond keep batches, oldest
	// first, and returns the file names of the deleted batches so the
	// caller can remove the files.
	TrimOldest(ctx context.Context, keep int) ([]string, error)
}

type archiveDAO struct {
	db *DB
}

// NewArchiveDAO creates a new ArchiveDAO instance
func NewArchiveDAO(db *DB) ArchiveDAO {
	return &archiveDAO{db: db}
}

// Insert records a newly written archive batch
func (d *archiveDAO) Insert(ctx context.Context, batch *ArchiveBatch) error {
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO archive_batches (file_name, record_count, oldest_at, newest_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := d.db.ExecContext(ctx, query,
		batch.FileName, batch.RecordCount, batch.OldestAt, batch.NewestAt, batch.CreatedAt)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to insert archive batch", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to get archive batch id", err)
	}
	batch.ID = id
	return nil
}

// List returns all archive batches, newest first
func (d *archiveDAO) List(ctx context.Context) ([]ArchiveBatch, error) {
	query := `
		SELECT id, file_name, record_count, oldest_at, newest_at, created_at
		FROM archive_batches
		ORDER BY created_at DESC, id DESC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to query archive batches", err)
	}
	defer rows.Close()

	var batches []ArchiveBatch
	for rows.Next() {
		var b ArchiveBatch
		if err := rows.Scan(&b.ID, &b.FileName, &b.RecordCount, &b.OldestAt, &b.NewestAt, &b.CreatedAt); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan archive batch row", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "archive batch iteration failed", err)
	}
	return batches, nil
}

// TrimOldest drops batches beyond the retention bound
func (d *archiveDAO) TrimOldest(ctx context.Context, keep int) ([]string, error) {
	if keep < 0 {
		keep = 0
	}

	query := `
		SELECT file_name FROM archive_batches
		ORDER BY created_at DESC, id DESC
		LIMIT -1 OFFSET ?
	`
	rows, err := d.db.QueryContext(ctx, query, keep)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to find excess archive batches", err)
	}
	defer rows.Close()

	var excess []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan archive batch name", err)
		}
		excess = append(excess, name)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "archive batch iteration failed", err)
	}
	if len(excess) == 0 {
		return nil, nil
	}

	for _, name := range excess {
		if _, err := d.db.ExecContext(ctx, "DELETE FROM archive_batches WHERE file_name = ?", name); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to delete archive batch row", err)
		}
	}
	return excess, nil
}
