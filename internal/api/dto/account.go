package dto

// CreateAccountRequest represents an account registration request
type CreateAccountRequest struct {
	Name               string `json:"name" validate:"required,min=1,max=100"`
	ExternalID         string `json:"external_id" validate:"required"`
	AWSAccessKeyID     string `json:"aws_access_key_id,omitempty"`
	AWSSecretAccessKey string `json:"aws_secret_access_key,omitempty"`
	AWSDefaultRegion   string `json:"aws_default_region,omitempty"`
}

// UpdateAccountStatusRequest represents a status transition request
type UpdateAccountStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=testing active invalid expired"`
}

// SetRegionScopeRequest toggles a region for an account
type SetRegionScopeRequest struct {
	Region  string `json:"region" validate:"required"`
	Enabled bool   `json:"enabled"`
}
