package account

import (
	"context"
	"time"
)

// Repository defines the interface for account data access
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, account *Account) (int64, error)

	// GetByID retrieves an account by ID
	GetByID(ctx context.Context, id int64) (*Account, error)

	// Update updates an account
	Update(ctx context.Context, account *Account) error

	// UpdateLastScanned stamps the account's last successful scan time
	UpdateLastScanned(ctx context.Context, id int64, at time.Time) error

	// Delete deletes an account
	Delete(ctx context.Context, ownerID, id int64) error

	// List retrieves accounts for an owner
	List(ctx context.Context, ownerID int64, filter Filter) ([]*Account, error)

	// ListByStatus retrieves accounts across owners by status (scheduler use)
	ListByStatus(ctx context.Context, status string) ([]*Account, error)

	// UpsertRegionScope inserts a region scope or updates its enabled flag
	UpsertRegionScope(ctx context.Context, scope *RegionScope) error

	// EnsureRegionScope inserts a region scope if none exists, leaving an
	// existing row untouched. Reports whether a row was created.
	EnsureRegionScope(ctx context.Context, scope *RegionScope) (bool, error)

	// ListRegionScopes retrieves all region scopes for an account
	ListRegionScopes(ctx context.Context, accountID int64) ([]*RegionScope, error)

	// EnabledRegions retrieves the enabled region codes for an account
	EnabledRegions(ctx context.Context, accountID int64) ([]string, error)
}

// Service defines the interface for account business logic
type Service interface {
	Create(ctx context.Context, account *Account) (int64, error)
	Get(ctx context.Context, requesterID, id int64) (*Account, error)
	List(ctx context.Context, requesterID int64, filter Filter) ([]*Account, error)
	UpdateStatus(ctx context.Context, requesterID, id int64, status string) error
	SetRegionEnabled(ctx context.Context, requesterID, id int64, region string, enabled bool) error
	ListRegionScopes(ctx context.Context, requesterID, id int64) ([]*RegionScope, error)
	Delete(ctx context.Context, requesterID, id int64) error
}
