package uploads

import (
	"context"
	"time"
)

// Status is the lifecycle state of a journal record.
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusCommitted Status = "committed"
	StatusOrphaned  Status = "orphaned"
)

// Record describes one uploaded file.
type Record struct {
	ID        string
	AttemptID string
	FileName  string
	Size      int64
	Digest    string
	URL       string
	Status    Status
	TaskID    string
	CreatedAt time.Time
}

// Repository persists journal records.
type Repository interface {
	// Add inserts a new record in StatusUploaded.
	Add(ctx context.Context, r *Record) error

	// AddAll inserts the records of one attempt; either all are stored or
	// none is.
	AddAll(ctx context.Context, recs []*Record) error

	// Commit moves the attempt's uploaded records to StatusCommitted and
	// stores the task id. It returns the number of records changed.
	Commit(ctx context.Context, attemptID, taskID string) (int64, error)

	// MarkOrphaned moves the attempt's uploaded records to StatusOrphaned.
	MarkOrphaned(ctx context.Context, attemptID string) (int64, error)

	// ListByAttempt returns the attempt's records, oldest first.
	ListByAttempt(ctx context.Context, attemptID string) ([]Record, error)

	// ListOrphaned returns all orphaned records, oldest first.
	ListOrphaned(ctx context.Context) ([]Record, error)
}
