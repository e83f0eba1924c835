package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
)

// PolicyRepository implements policy.Repository. Required tags and resource
// types live in JSON columns; the domain layer only sees native maps and
// slices.
type PolicyRepository struct {
	db *sql.DB
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *sql.DB) policy.Repository {
	return &PolicyRepository{db: db}
}

// Create creates a new policy
func (r *PolicyRepository) Create(ctx context.Context, p *policy.Policy) (int64, error) {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	requiredTags, resourceTypes, err := marshalPolicyColumns(p)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO policies (owner_id, name, description, required_tags,
			resource_types, severity, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		p.OwnerID, p.Name, p.Description, requiredTags, resourceTypes,
		p.Severity, p.Enabled, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return 0, errors.DatabaseError("Failed to create policy", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get policy id", err)
	}
	p.ID = id
	return id, nil
}

// GetByID retrieves a policy by ID
func (r *PolicyRepository) GetByID(ctx context.Context, ownerID, id int64) (*policy.Policy, error) {
	query := policySelect + ` WHERE id = ? AND owner_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, ownerID)
	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Policy")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get policy", err)
	}
	return p, nil
}

// Update updates a policy
func (r *PolicyRepository) Update(ctx context.Context, p *policy.Policy) error {
	p.UpdatedAt = time.Now()

	requiredTags, resourceTypes, err := marshalPolicyColumns(p)
	if err != nil {
		return err
	}

	query := `
		UPDATE policies
		SET name = ?, description = ?, required_tags = ?, resource_types = ?,
			severity = ?, enabled = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.Description, requiredTags, resourceTypes,
		p.Severity, p.Enabled, p.UpdatedAt, p.ID, p.OwnerID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update policy", err)
	}
	return requireRowsAffected(result, "Policy")
}

// Delete deletes a policy
func (r *PolicyRepository) Delete(ctx context.Context, ownerID, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM policies WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return errors.DatabaseError("Failed to delete policy", err)
	}
	return requireRowsAffected(result, "Policy")
}

// List retrieves all policies for an owner
func (r *PolicyRepository) List(ctx context.Context, ownerID int64) ([]*policy.Policy, error) {
	return r.queryPolicies(ctx, policySelect+` WHERE owner_id = ? ORDER BY id`, ownerID)
}

// ListEnabled retrieves the owner's enabled policies
func (r *PolicyRepository) ListEnabled(ctx context.Context, ownerID int64) ([]*policy.Policy, error) {
	return r.queryPolicies(ctx,
		policySelect+` WHERE owner_id = ? AND enabled = 1 ORDER BY id`, ownerID)
}

const policySelect = `
	SELECT id, owner_id, name, description, required_tags, resource_types,
		severity, enabled, created_at, updated_at
	FROM policies`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPolicy(row rowScanner) (*policy.Policy, error) {
	var p policy.Policy
	var requiredTags, resourceTypes string
	if err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &requiredTags,
		&resourceTypes, &p.Severity, &p.Enabled, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(requiredTags), &p.RequiredTags); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(resourceTypes), &p.ResourceTypes); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PolicyRepository) queryPolicies(ctx context.Context, query string, args ...interface{}) ([]*policy.Policy, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list policies", err)
	}
	defer rows.Close()

	var policies []*policy.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan policy row", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func marshalPolicyColumns(p *policy.Policy) (string, string, error) {
	requiredTags := p.RequiredTags
	if requiredTags == nil {
		requiredTags = map[string][]string{}
	}
	resourceTypes := p.ResourceTypes
	if resourceTypes == nil {
		resourceTypes = []string{}
	}

	tagsJSON, err := json.Marshal(requiredTags)
	if err != nil {
		return "", "", errors.Internal("Failed to encode required tags", err)
	}
	typesJSON, err := json.Marshal(resourceTypes)
	if err != nil {
		return "", "", errors.Internal("Failed to encode resource types", err)
	}
	return string(tagsJSON), string(typesJSON), nil
}
