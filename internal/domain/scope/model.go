package scope

import (
	"context"
	"time"
)

// ResourceTypeScope controls whether a resource category is scanned and
// kept at all. Process-wide, not per-account.
type ResourceTypeScope struct {
	ResourceType string    `json:"resource_type"`
	Enabled      bool      `json:"enabled"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Repository defines the interface for scope data access
type Repository interface {
	// ListResourceTypeScopes retrieves all resource type scopes
	ListResourceTypeScopes(ctx context.Context) ([]*ResourceTypeScope, error)

	// EnabledResourceTypes retrieves the enabled resource type codes
	EnabledResourceTypes(ctx context.Context) ([]string, error)

	// SetResourceTypeEnabled inserts a type scope or updates its enabled flag
	SetResourceTypeEnabled(ctx context.Context, resourceType string, enabled bool) error
}
