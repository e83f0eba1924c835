package policy

import "context"

// Repository defines the interface for policy data access
type Repository interface {
	// Create creates a new policy
	Create(ctx context.Context, policy *Policy) (int64, error)

	// GetByID retrieves a policy by ID
	GetByID(ctx context.Context, ownerID, id int64) (*Policy, error)

	// Update updates a policy
	Update(ctx context.Context, policy *Policy) error

	// Delete deletes a policy
	Delete(ctx context.Context, ownerID, id int64) error

	// List retrieves all policies for an owner
	List(ctx context.Context, ownerID int64) ([]*Policy, error)

	// ListEnabled retrieves the owner's enabled policies, the set a scan
	// evaluates against
	ListEnabled(ctx context.Context, ownerID int64) ([]*Policy, error)
}
