package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
)

// ViolationRepository implements violation.Repository. The UNIQUE
// (resource_id, policy_id) constraint backs the one-violation-per-pair
// invariant at the storage level.
type ViolationRepository struct {
	db *sql.DB
}

// NewViolationRepository creates a new violation repository
func NewViolationRepository(db *sql.DB) violation.Repository {
	return &ViolationRepository{db: db}
}

// Create creates a new violation record
func (r *ViolationRepository) Create(ctx context.Context, v *violation.Violation) (int64, error) {
	v.UpdatedAt = time.Now()
	if v.DetectedAt.IsZero() {
		v.DetectedAt = v.UpdatedAt
	}

	details, err := marshalDetails(v.Details)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO violations (resource_id, policy_id, account_id, scan_job_id,
			status, severity, details, detected_at, resolved_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		v.ResourceID, v.PolicyID, v.AccountID, v.ScanJobID,
		v.Status, v.Severity, details, v.DetectedAt, v.ResolvedAt, v.UpdatedAt,
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to create violation", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get violation id", err)
	}
	v.ID = id
	return id, nil
}

// GetByID retrieves a violation by ID
func (r *ViolationRepository) GetByID(ctx context.Context, id int64) (*violation.Violation, error) {
	row := r.db.QueryRowContext(ctx, violationSelect+` WHERE id = ?`, id)
	v, err := scanViolation(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Violation")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get violation", err)
	}
	return v, nil
}

// GetByResourceAndPolicy retrieves the single violation for a pair
func (r *ViolationRepository) GetByResourceAndPolicy(ctx context.Context, resourceID, policyID int64) (*violation.Violation, error) {
	row := r.db.QueryRowContext(ctx,
		violationSelect+` WHERE resource_id = ? AND policy_id = ?`, resourceID, policyID)
	v, err := scanViolation(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Violation")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get violation", err)
	}
	return v, nil
}

// Update updates a violation record
func (r *ViolationRepository) Update(ctx context.Context, v *violation.Violation) error {
	v.UpdatedAt = time.Now()

	details, err := marshalDetails(v.Details)
	if err != nil {
		return err
	}

	query := `
		UPDATE violations
		SET status = ?, severity = ?, details = ?, scan_job_id = ?,
			resolved_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		v.Status, v.Severity, details, v.ScanJobID, v.ResolvedAt, v.UpdatedAt, v.ID)
	if err != nil {
		return errors.DatabaseError("Failed to update violation", err)
	}
	return requireRowsAffected(result, "Violation")
}

// List retrieves violations for an owner with filters and pagination
func (r *ViolationRepository) List(ctx context.Context, ownerID int64, filter violation.Filter, limit, offset int) ([]*violation.Violation, int64, error) {
	where := ` WHERE account_id IN (SELECT id FROM accounts WHERE owner_id = ?)`
	args := []interface{}{ownerID}

	if filter.AccountID != 0 {
		where += ` AND account_id = ?`
		args = append(args, filter.AccountID)
	}
	if filter.ResourceID != 0 {
		where += ` AND resource_id = ?`
		args = append(args, filter.ResourceID)
	}
	if filter.PolicyID != 0 {
		where += ` AND policy_id = ?`
		args = append(args, filter.PolicyID)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Severity != "" {
		where += ` AND severity = ?`
		args = append(args, filter.Severity)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM violations`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count violations", err)
	}

	query := violationSelect + where + ` ORDER BY detected_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list violations", err)
	}
	defer rows.Close()

	violations, err := collectViolations(rows)
	if err != nil {
		return nil, 0, err
	}
	return violations, total, nil
}

// ListByResource retrieves all violations for a resource
func (r *ViolationRepository) ListByResource(ctx context.Context, resourceID int64) ([]*violation.Violation, error) {
	rows, err := r.db.QueryContext(ctx,
		violationSelect+` WHERE resource_id = ? ORDER BY id`, resourceID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list violations", err)
	}
	defer rows.Close()
	return collectViolations(rows)
}

// CountByStatus counts an account's violations grouped by status
func (r *ViolationRepository) CountByStatus(ctx context.Context, accountID int64) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM violations WHERE account_id = ? GROUP BY status`,
		accountID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count violations", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.DatabaseError("Failed to scan count row", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

const violationSelect = `
	SELECT id, resource_id, policy_id, account_id, scan_job_id, status,
		severity, details, detected_at, resolved_at, updated_at
	FROM violations`

func scanViolation(row rowScanner) (*violation.Violation, error) {
	var v violation.Violation
	var details string
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&v.ID, &v.ResourceID, &v.PolicyID, &v.AccountID, &v.ScanJobID,
		&v.Status, &v.Severity, &details, &v.DetectedAt, &resolvedAt, &v.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if resolvedAt.Valid {
		v.ResolvedAt = &resolvedAt.Time
	}
	if err := json.Unmarshal([]byte(details), &v.Details); err != nil {
		return nil, err
	}
	return &v, nil
}

func collectViolations(rows *sql.Rows) ([]*violation.Violation, error) {
	var violations []*violation.Violation
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan violation row", err)
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

func marshalDetails(d violation.Details) (string, error) {
	detailsJSON, err := json.Marshal(d)
	if err != nil {
		return "", errors.Internal("Failed to encode violation details", err)
	}
	return string(detailsJSON), nil
}
