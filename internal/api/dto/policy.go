package dto

// CreatePolicyRequest represents a policy creation request
type CreatePolicyRequest struct {
	Name          string              `json:"name" validate:"required,min=1,max=100"`
	Description   string              `json:"description,omitempty"`
	RequiredTags  map[string][]string `json:"required_tags" validate:"required,min=1"`
	ResourceTypes []string            `json:"resource_types" validate:"required,min=1"`
	Severity      string              `json:"severity,omitempty" validate:"omitempty,oneof=critical high medium low"`
	Enabled       *bool               `json:"enabled,omitempty"`
}

// UpdatePolicyRequest represents a policy update request
type UpdatePolicyRequest struct {
	Name          string              `json:"name" validate:"required,min=1,max=100"`
	Description   string              `json:"description,omitempty"`
	RequiredTags  map[string][]string `json:"required_tags" validate:"required,min=1"`
	ResourceTypes []string            `json:"resource_types" validate:"required,min=1"`
	Severity      string              `json:"severity" validate:"required,oneof=critical high medium low"`
	Enabled       bool                `json:"enabled"`
}

// SetPolicyEnabledRequest toggles a policy
type SetPolicyEnabledRequest struct {
	Enabled bool `json:"enabled"`
}
