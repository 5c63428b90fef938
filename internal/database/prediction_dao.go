package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/signaltrustai/SignalTrust-AI-Scanner-sub000/internal/types"
)

// PredictionRecord is one persisted market-direction prediction. Outcome,
// PriceAtEval and EvaluatedAt stay nil until the record is evaluated, and
// are set exactly once.
type PredictionRecord struct {
	ID          types.ID        `db:"id" json:"id"`
	Symbol      string          `db:"symbol" json:"symbol"`
	Direction   types.Direction `db:"direction" json:"direction"`
	Confidence  float64         `db:"confidence" json:"confidence"`
	Backend     string          `db:"backend" json:"backend"`
	Strategy    string          `db:"strategy" json:"strategy"`
	PriceAt     float64         `db:"price_at" json:"price_at"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Outcome     *types.Outcome  `db:"outcome" json:"outcome,omitempty"`
	PriceAtEval *float64        `db:"price_at_eval" json:"price_at_eval,omitempty"`
	EvaluatedAt *time.Time      `db:"evaluated_at" json:"evaluated_at,omitempty"`
	Importance  float64         `db:"importance" json:"importance"`
}

// Evaluated reports whether the record's outcome has been set.
func (p *PredictionRecord) Evaluated() bool {
	return p.Outcome != nil
}

// PredictionDAO provides database operations for prediction records
type PredictionDAO interface {
	Insert(ctx context.Context, rec *PredictionRecord) error
	Get(ctx context.Context, id types.ID) (*PredictionRecord, error)

	// MarkEvaluated sets outcome, evaluation price, timestamp and importance
	// on an unevaluated record. It returns false without modifying anything
	// when the record is missing or already evaluated.
	MarkEvaluated(ctx context.Context, id types.ID, outcome types.Outcome, priceAtEval float64, evaluatedAt time.Time, importance float64) (bool, error)

	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]PredictionRecord, error)
	ListEvaluatedBefore(ctx context.Context, cutoff time.Time) ([]PredictionRecord, error)
	ListAll(ctx context.Context) ([]PredictionRecord, error)
	Count(ctx context.Context) (int, error)
	DeleteByIDs(ctx context.Context, ids []types.ID) (int, error)
}

type predictionDAO struct {
	db *DB
}

// NewPredictionDAO creates a new PredictionDAO instance
func NewPredictionDAO(db *DB) PredictionDAO {
	return &predictionDAO{db: db}
}

const predictionColumns = `
	id, symbol, direction, confidence, backend, strategy,
	price_at, created_at, outcome, price_at_eval, evaluated_at, importance
`

// Insert persists a new prediction record
func (d *predictionDAO) Insert(ctx context.Context, rec *PredictionRecord) error {
	if rec.ID.IsZero() {
		return types.NewError(types.DB_QUERY_FAILED, "prediction id must be set before insert")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO predictions (` + predictionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.ExecContext(
		ctx, query,
		rec.ID.String(),
		rec.Symbol,
		string(rec.Direction),
		rec.Confidence,
		rec.Backend,
		rec.Strategy,
		rec.PriceAt,
		rec.CreatedAt,
		nullableOutcome(rec.Outcome),
		nullableFloat(rec.PriceAtEval),
		nullableTime(rec.EvaluatedAt),
		rec.Importance,
	)
	if err != nil {
		return types.WrapError(types.DB_QUERY_FAILED, "failed to insert prediction", err)
	}
	return nil
}

// Get retrieves a prediction record by id, nil when not found
func (d *predictionDAO) Get(ctx context.Context, id types.ID) (*PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE id = ?`

	rec, err := scanPrediction(d.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to load prediction", err)
	}
	return rec, nil
}

// MarkEvaluated flips an unevaluated record to evaluated. The WHERE clause
// guards idempotence: a second call matches zero rows.
func (d *predictionDAO) MarkEvaluated(ctx context.Context, id types.ID, outcome types.Outcome, priceAtEval float64, evaluatedAt time.Time, importance float64) (bool, error) {
	query := `
		UPDATE predictions
		SET outcome = ?, price_at_eval = ?, evaluated_at = ?, importance = ?
		WHERE id = ? AND outcome IS NULL
	`

	result, err := d.db.ExecContext(ctx, query,
		string(outcome), priceAtEval, evaluatedAt, importance, id.String())
	if err != nil {
		return false, types.WrapError(types.DB_QUERY_FAILED, "failed to mark prediction evaluated", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, types.WrapError(types.DB_QUERY_FAILED, "failed to get rows affected", err)
	}
	return affected == 1, nil
}

// ListPendingBefore returns unevaluated records created before cutoff,
// oldest first. A limit <= 0 means no limit.
func (d *predictionDAO) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]PredictionRecord, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE outcome IS NULL AND created_at < ?
		ORDER BY created_at ASC
	`
	args := []interface{}{cutoff}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return d.queryPredictions(ctx, query, args...)
}

// ListEvaluatedBefore returns evaluated records created before cutoff,
// oldest first. These are the archiving candidates.
func (d *predictionDAO) ListEvaluatedBefore(ctx context.Context, cutoff time.Time) ([]PredictionRecord, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE outcome IS NOT NULL AND created_at < ?
		ORDER BY created_at ASC
	`
	return d.queryPredictions(ctx, query, cutoff)
}

// ListAll returns every active prediction record
func (d *predictionDAO) ListAll(ctx context.Context) ([]PredictionRecord, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions ORDER BY created_at ASC`
	return d.queryPredictions(ctx, query)
}

// Count returns the number of active prediction records
func (d *predictionDAO) Count(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions").Scan(&count)
	if err != nil {
		return 0, types.WrapError(types.DB_QUERY_FAILED, "failed to count predictions", err)
	}
	return count, nil
}

// DeleteByIDs removes records in chunks, returning how many rows were deleted
func (d *predictionDAO) DeleteByIDs(ctx context.Context, ids []types.ID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	const chunkSize = 500
	deleted := 0
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			args[i] = id.String()
		}

		result, err := d.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM predictions WHERE id IN (%s)", placeholders), args...)
		if err != nil {
			return deleted, types.WrapError(types.DB_QUERY_FAILED, "failed to delete predictions", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return deleted, types.WrapError(types.DB_QUERY_FAILED, "failed to get rows affected", err)
		}
		deleted += int(affected)
	}
	return deleted, nil
}

func (d *predictionDAO) queryPredictions(ctx context.Context, query string, args ...interface{}) ([]PredictionRecord, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to query predictions", err)
	}
	defer rows.Close()

	var records []PredictionRecord
	for rows.Next() {
		rec, err := scanPrediction(rows)
		if err != nil {
			return nil, types.WrapError(types.DB_QUERY_FAILED, "failed to scan prediction row", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.DB_QUERY_FAILED, "prediction row iteration failed", err)
	}
	return records, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrediction(row rowScanner) (*PredictionRecord, error) {
	var (
		rec         PredictionRecord
		idStr       string
		direction   string
		outcome     sql.NullString
		priceAtEval sql.NullFloat64
		evaluatedAt sql.NullTime
	)

	err := row.Scan(
		&idStr,
		&rec.Symbol,
		&direction,
		&rec.Confidence,
		&rec.Backend,
		&rec.Strategy,
		&rec.PriceAt,
		&rec.CreatedAt,
		&outcome,
		&priceAtEval,
		&evaluatedAt,
		&rec.Importance,
	)
	if err != nil {
		return nil, err
	}

	rec.ID = types.ID(idStr)
	rec.Direction = types.Direction(direction)
	if outcome.Valid {
		o := types.Outcome(outcome.String)
		rec.Outcome = &o
	}
	if priceAtEval.Valid {
		v := priceAtEval.Float64
		rec.PriceAtEval = &v
	}
	if evaluatedAt.Valid {
		t := evaluatedAt.Time
		rec.EvaluatedAt = &t
	}
	return &rec, nil
}

func nullableOutcome(o *types.Outcome) interface{} {
	if o == nil {
		return nil
	}
	return string(*o)
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
