package database

import (
	"context"
	"database/sql"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// ScoreEntry holds the monotonic evaluation counters for one backend.
type ScoreEntry struct {
	Backend   string `db:"backend" json:"backend"`
	Correct   int    `db:"correct" json:"correct"`
	Incorrect int    `db:"incorrect" json:"incorrect"`
	Partial   int    `db:"partial" json:"partial"`
	Total     int    `db:"total" json:"total"`
}

// Accuracy returns correct/total, 0 when no evaluations exist.
func (s ScoreEntry) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// ScoreDAO provides database operations for per-backend score tallies
type ScoreDAO interface {
	// Increment bumps the counter matching outcome plus the total for the
	// backend, creating the row on first use.
	Increment(ctx context.Context, backend string, outcome types.Outcome) error

	Get(ctx context.Context, backend string) (*ScoreEntry, error)
	List(ctx context.Context) ([]ScoreEntry, error)
}

type scoreDAO struct {
	db *DB
}

// NewScoreDAO creates a new ScoreDAO instance
func NewScoreDAO(db *DB) ScoreDAO {
	return &scoreDAO{db: db}
}

// Increment bumps the counters for one evaluation outcome
func (d *scoreDAO) Increment(ctx context.Context, backend string, outcome types.Outcome) error {
	var column string
	switch outcome {
	case types.OutcomeCorrect:
		column = "correct"
	case types.OutcomeIncorrect:
		column = "incorrect"
	case types.OutcomePartial:
		column = "partial"
	default:
		return types.NewError(types.DB_QUERY_FAILED, "unknown outcome: "+string(outcome))
	}

	query := `
		INSERT INTO backend_scores (backend, ` + column + `, total)
		VALUES (?, 1, 1)
		ON CONFLICT(backend) DO UPDATE SET
			` + column + ` = ` + column + ` + 1,
			total = total + 1
	`
	if _, err := d.db.ExecContext(ctx, query, backend); err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to increment score for "+backend, err)
	}
	return nil
}

// Get retrieves the score entry for a backend. A backend with no
// evaluations yet returns a zero-valued entry, not an error.
func (d *scoreDAO) Get(ctx context.Context, backend string) (*ScoreEntry, error) {
	query := `
		SELECT backend, correct, incorrect, partial, total
		FROM backend_scores
		WHERE backend = ?
	`

	var entry ScoreEntry
	err := d.db.QueryRowContext(ctx, query, backend).Scan(
		&entry.Backend, &entry.Correct, &entry.Incorrect, &entry.Partial, &entry.Total)
	if err != nil {
		if err == sql.ErrNoRows {
			return &ScoreEntry{Backend: backend}, nil
		}
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to load score for "+backend, err)
	}
	return &entry, nil
}

// List returns all score entries ordered by backend name
func (d *scoreDAO) List(ctx context.Context) ([]ScoreEntry, error) {
	query := `
		SELECT backend, correct, incorrect, partial, total
		FROM backend_scores
		ORDER BY backend ASC
	`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to query scores", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var entry ScoreEntry
		if err := rows.Scan(&entry.Backend, &entry.Correct, &entry.Incorrect, &entry.Partial, &entry.Total); err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan score row", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "score row iteration failed", err)
	}
	return entries, nil
}
