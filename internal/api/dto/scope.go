package dto

// SetResourceTypeScopeRequest toggles a resource type globally
type SetResourceTypeScopeRequest struct {
	ResourceType string `json:"resource_type" validate:"required"`
	Enabled      bool   `json:"enabled"`
}
