package uploads

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskdesk/internal/dbx"
)

// SQLRepository implements Repository over a DBTX (either *sql.DB or
// *sql.Tx). Queries are written with '?' and rebound for the dialect.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) q(query string) string {
	return dbx.Rebind(r.dialect, query)
}

func (r *SQLRepository) Add(ctx context.Context, rec *Record) error {
	if rec.Status == "" {
		rec.Status = StatusUploaded
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	query := `INSERT INTO uploads (id, attempt_id, file_name, size, digest, url, status, task_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.q(query),
		rec.ID, rec.AttemptID, rec.FileName, rec.Size, rec.Digest, rec.URL, string(rec.Status), rec.TaskID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}
	return nil
}

func (r *SQLRepository) AddAll(ctx context.Context, recs []*Record) error {
	db, ok := r.db.(*sql.DB)
	if !ok {
		// Already inside a transaction.
		return r.addAll(ctx, recs)
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return NewSQLRepository(tx, r.dialect).addAll(ctx, recs)
	})
}

func (r *SQLRepository) addAll(ctx context.Context, recs []*Record) error {
	for _, rec := range recs {
		if err := r.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLRepository) transition(ctx context.Context, attemptID string, to Status, taskID string) (int64, error) {
	query := `UPDATE uploads SET status = ?, task_id = ? WHERE attempt_id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, r.q(query), string(to), taskID, attemptID, string(StatusUploaded))
	if err != nil {
		return 0, fmt.Errorf("failed to mark uploads %s: %w", to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) Commit(ctx context.Context, attemptID, taskID string) (int64, error) {
	return r.transition(ctx, attemptID, StatusCommitted, taskID)
}

func (r *SQLRepository) MarkOrphaned(ctx context.Context, attemptID string) (int64, error) {
	return r.transition(ctx, attemptID, StatusOrphaned, "")
}

const selectColumns = `SELECT id, attempt_id, file_name, size, digest, url, status, task_id, created_at FROM uploads`

func (r *SQLRepository) list(ctx context.Context, where string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, r.q(selectColumns+" WHERE "+where+" ORDER BY created_at, id"), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select uploads: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var rec Record
		var status string
		if err := rows.Scan(&rec.ID, &rec.AttemptID, &rec.FileName, &rec.Size, &rec.Digest,
			&rec.URL, &status, &rec.TaskID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLRepository) ListByAttempt(ctx context.Context, attemptID string) ([]Record, error) {
	return r.list(ctx, "attempt_id = ?", attemptID)
}

func (r *SQLRepository) ListOrphaned(ctx context.Context) ([]Record, error) {
	return r.list(ctx, "status = ?", string(StatusOrphaned))
}
