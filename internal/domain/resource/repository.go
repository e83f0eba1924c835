package resource

import "context"

// Repository defines the interface for resource data access
type Repository interface {
	// GetByARN retrieves a resource by its unique external identifier
	GetByARN(ctx context.Context, accountID int64, arn string) (*Resource, error)

	// GetByID retrieves a resource by internal ID
	GetByID(ctx context.Context, id int64) (*Resource, error)

	// Upsert inserts a resource or, when the ARN is already known, updates
	// tags, metadata, name, region and last-seen. Sets ID on insert.
	Upsert(ctx context.Context, res *Resource) error

	// ListByAccount retrieves all resources belonging to an account
	ListByAccount(ctx context.Context, accountID int64) ([]*Resource, error)

	// List retrieves resources for an owner with filters and pagination
	List(ctx context.Context, ownerID int64, filter Filter, limit, offset int) ([]*Resource, int64, error)

	// DeleteCascade deletes a resource together with all its violations,
	// inside one transaction
	DeleteCascade(ctx context.Context, id int64) error
}
