package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/scan"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
)

// ScanJobRepository implements scan.Repository
type ScanJobRepository struct {
	db *sql.DB
}

// NewScanJobRepository creates a new scan job repository
func NewScanJobRepository(db *sql.DB) scan.Repository {
	return &ScanJobRepository{db: db}
}

// Create creates a new scan job record
func (r *ScanJobRepository) Create(ctx context.Context, job *scan.Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO scan_jobs (id, account_id, requested_by, status,
			resources_scanned, violations_found, violations_resolved,
			started_at, completed_at, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.AccountID, job.RequestedBy, job.Status,
		job.ResourcesScanned, job.ViolationsFound, job.ViolationsResolved,
		job.StartedAt, job.CompletedAt, job.Error, job.CreatedAt,
	)
	if err != nil {
		return errors.DatabaseError("Failed to create scan job", err)
	}
	return nil
}

// GetByID retrieves a scan job by ID
func (r *ScanJobRepository) GetByID(ctx context.Context, id string) (*scan.Job, error) {
	row := r.db.QueryRowContext(ctx, scanJobSelect+` WHERE id = ?`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Scan job")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get scan job", err)
	}
	return job, nil
}

// Update updates a scan job record
func (r *ScanJobRepository) Update(ctx context.Context, job *scan.Job) error {
	query := `
		UPDATE scan_jobs
		SET status = ?, resources_scanned = ?, violations_found = ?,
			violations_resolved = ?, started_at = ?, completed_at = ?, error = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		job.Status, job.ResourcesScanned, job.ViolationsFound,
		job.ViolationsResolved, job.StartedAt, job.CompletedAt, job.Error, job.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update scan job", err)
	}
	return requireRowsAffected(result, "Scan job")
}

// FindActiveByAccount returns the account's pending or running job
func (r *ScanJobRepository) FindActiveByAccount(ctx context.Context, accountID int64) (*scan.Job, error) {
	row := r.db.QueryRowContext(ctx,
		scanJobSelect+` WHERE account_id = ? AND status IN (?, ?) ORDER BY created_at DESC LIMIT 1`,
		accountID, scan.StatusPending, scan.StatusRunning)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Scan job")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to find active scan job", err)
	}
	return job, nil
}

// ListByAccount retrieves an account's jobs newest-first
func (r *ScanJobRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*scan.Job, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scan_jobs WHERE account_id = ?`, accountID).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count scan jobs", err)
	}

	rows, err := r.db.QueryContext(ctx,
		scanJobSelect+` WHERE account_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		accountID, limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list scan jobs", err)
	}
	defer rows.Close()

	var jobs []*scan.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan job row", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

const scanJobSelect = `
	SELECT id, account_id, requested_by, status, resources_scanned,
		violations_found, violations_resolved, started_at, completed_at,
		error, created_at
	FROM scan_jobs`

func scanJob(row rowScanner) (*scan.Job, error) {
	var job scan.Job
	var startedAt, completedAt sql.NullTime
	if err := row.Scan(
		&job.ID, &job.AccountID, &job.RequestedBy, &job.Status,
		&job.ResourcesScanned, &job.ViolationsFound, &job.ViolationsResolved,
		&startedAt, &completedAt, &job.Error, &job.CreatedAt,
	); err != nil {
		return nil, err
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}
