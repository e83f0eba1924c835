package violation

import "context"

// Repository defines the interface for violation data access
type Repository interface {
	// Create creates a new violation record
	Create(ctx context.Context, v *Violation) (int64, error)

	// GetByID retrieves a violation by ID
	GetByID(ctx context.Context, id int64) (*Violation, error)

	// GetByResourceAndPolicy retrieves the single violation for a
	// (resource, policy) pair, or a NotFound error
	GetByResourceAndPolicy(ctx context.Context, resourceID, policyID int64) (*Violation, error)

	// Update updates a violation record
	Update(ctx context.Context, v *Violation) error

	// List retrieves violations for an owner with filters and pagination
	List(ctx context.Context, ownerID int64, filter Filter, limit, offset int) ([]*Violation, int64, error)

	// ListByResource retrieves all violations for a resource
	ListByResource(ctx context.Context, resourceID int64) ([]*Violation, error)

	// CountByStatus counts an account's violations grouped by status
	CountByStatus(ctx context.Context, accountID int64) (map[string]int, error)
}
