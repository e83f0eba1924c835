package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/scope"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
)

// ScopeRepository implements scope.Repository
type ScopeRepository struct {
	db *sql.DB
}

// NewScopeRepository creates a new scope repository
func NewScopeRepository(db *sql.DB) scope.Repository {
	return &ScopeRepository{db: db}
}

// ListResourceTypeScopes retrieves all resource type scopes
func (r *ScopeRepository) ListResourceTypeScopes(ctx context.Context) ([]*scope.ResourceTypeScope, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT resource_type, enabled, updated_at FROM resource_type_scopes ORDER BY resource_type`)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list resource type scopes", err)
	}
	defer rows.Close()

	var scopes []*scope.ResourceTypeScope
	for rows.Next() {
		var s scope.ResourceTypeScope
		if err := rows.Scan(&s.ResourceType, &s.Enabled, &s.UpdatedAt); err != nil {
			return nil, errors.DatabaseError("Failed to scan resource type scope row", err)
		}
		scopes = append(scopes, &s)
	}
	return scopes, rows.Err()
}

// EnabledResourceTypes retrieves the enabled resource type codes
func (r *ScopeRepository) EnabledResourceTypes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT resource_type FROM resource_type_scopes WHERE enabled = 1 ORDER BY resource_type`)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list enabled resource types", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, errors.DatabaseError("Failed to scan resource type row", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// SetResourceTypeEnabled inserts a type scope or updates its enabled flag
func (r *ScopeRepository) SetResourceTypeEnabled(ctx context.Context, resourceType string, enabled bool) error {
	query := `
		INSERT INTO resource_type_scopes (resource_type, enabled, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (resource_type) DO UPDATE SET
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, resourceType, enabled, time.Now())
	if err != nil {
		return errors.DatabaseError("Failed to set resource type scope", err)
	}
	return nil
}
