package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
)

// ResourceRepository implements resource.Repository
type ResourceRepository struct {
	db *sql.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *sql.DB) resource.Repository {
	return &ResourceRepository{db: db}
}

// GetByARN retrieves a resource by its unique external identifier
func (r *ResourceRepository) GetByARN(ctx context.Context, accountID int64, arn string) (*resource.Resource, error) {
	query := resourceSelect + ` WHERE account_id = ? AND arn = ?`
	row := r.db.QueryRowContext(ctx, query, accountID, arn)
	res, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Resource")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get resource", err)
	}
	return res, nil
}

// GetByID retrieves a resource by internal ID
func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*resource.Resource, error) {
	query := resourceSelect + ` WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	res, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Resource")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get resource", err)
	}
	return res, nil
}

// Upsert inserts a resource or refreshes the stored row keyed by ARN.
// Re-scans never create duplicates; discovered-at survives updates.
func (r *ResourceRepository) Upsert(ctx context.Context, res *resource.Resource) error {
	tags, metadata, err := marshalResourceColumns(res)
	if err != nil {
		return err
	}
	if res.DiscoveredAt.IsZero() {
		res.DiscoveredAt = time.Now()
	}
	if res.LastSeenAt.IsZero() {
		res.LastSeenAt = time.Now()
	}

	query := `
		INSERT INTO resources (account_id, arn, type, region, name, tags,
			metadata, discovered_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (arn) DO UPDATE SET
			region = excluded.region,
			name = excluded.name,
			tags = excluded.tags,
			metadata = excluded.metadata,
			last_seen_at = excluded.last_seen_at
	`
	_, err = r.db.ExecContext(ctx, query,
		res.AccountID, res.ARN, res.Type, res.Region, res.Name,
		tags, metadata, res.DiscoveredAt, res.LastSeenAt,
	)
	if err != nil {
		return errors.DatabaseError("Failed to upsert resource", err)
	}

	// The row ID is stable across upserts, so read it back by ARN
	row := r.db.QueryRowContext(ctx,
		`SELECT id, discovered_at FROM resources WHERE arn = ?`, res.ARN)
	if err := row.Scan(&res.ID, &res.DiscoveredAt); err != nil {
		return errors.DatabaseError("Failed to read back resource id", err)
	}
	return nil
}

// ListByAccount retrieves all resources belonging to an account
func (r *ResourceRepository) ListByAccount(ctx context.Context, accountID int64) ([]*resource.Resource, error) {
	rows, err := r.db.QueryContext(ctx,
		resourceSelect+` WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list resources", err)
	}
	defer rows.Close()
	return collectResources(rows)
}

// List retrieves resources for an owner with filters and pagination
func (r *ResourceRepository) List(ctx context.Context, ownerID int64, filter resource.Filter, limit, offset int) ([]*resource.Resource, int64, error) {
	where := ` WHERE account_id IN (SELECT id FROM accounts WHERE owner_id = ?)`
	args := []interface{}{ownerID}

	if filter.AccountID != 0 {
		where += ` AND account_id = ?`
		args = append(args, filter.AccountID)
	}
	if filter.Type != "" {
		where += ` AND type = ?`
		args = append(args, filter.Type)
	}
	if filter.Region != "" {
		where += ` AND region = ?`
		args = append(args, filter.Region)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM resources` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count resources", err)
	}

	query := resourceSelect + where + ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list resources", err)
	}
	defer rows.Close()

	resources, err := collectResources(rows)
	if err != nil {
		return nil, 0, err
	}
	return resources, total, nil
}

// DeleteCascade deletes a resource together with all its violations inside
// one transaction
func (r *ResourceRepository) DeleteCascade(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM violations WHERE resource_id = ?`, id); err != nil {
		return errors.DatabaseError("Failed to delete resource violations", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM resources WHERE id = ?`, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete resource", err)
	}
	if err := requireRowsAffected(result, "Resource"); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit resource delete", err)
	}
	return nil
}

const resourceSelect = `
	SELECT id, account_id, arn, type, region, name, tags, metadata,
		discovered_at, last_seen_at
	FROM resources`

func scanResource(row rowScanner) (*resource.Resource, error) {
	var res resource.Resource
	var tags, metadata string
	if err := row.Scan(
		&res.ID, &res.AccountID, &res.ARN, &res.Type, &res.Region, &res.Name,
		&tags, &metadata, &res.DiscoveredAt, &res.LastSeenAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &res.Tags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadata), &res.Metadata); err != nil {
		return nil, err
	}
	return &res, nil
}

func collectResources(rows *sql.Rows) ([]*resource.Resource, error) {
	var resources []*resource.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan resource row", err)
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func marshalResourceColumns(res *resource.Resource) (string, string, error) {
	tags := res.Tags
	if tags == nil {
		tags = map[string]string{}
	}
	metadata := res.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", "", errors.Internal("Failed to encode tags", err)
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", "", errors.Internal("Failed to encode metadata", err)
	}
	return string(tagsJSON), string(metaJSON), nil
}
