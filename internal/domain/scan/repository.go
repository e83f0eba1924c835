package scan

import "context"

// Repository defines the interface for scan job data access
type Repository interface {
	// Create creates a new scan job record
	Create(ctx context.Context, job *Job) error

	// GetByID retrieves a scan job by ID
	GetByID(ctx context.Context, id string) (*Job, error)

	// Update updates a scan job record
	Update(ctx context.Context, job *Job) error

	// FindActiveByAccount returns the account's pending or running job,
	// or a NotFound error when none is in flight
	FindActiveByAccount(ctx context.Context, accountID int64) (*Job, error)

	// ListByAccount retrieves an account's jobs newest-first
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*Job, int64, error)
}
