package client

import (
	"context"
	"fmt"
)

// PolicyService handles policy API calls
type PolicyService struct {
	client *Client
}

// CreatePolicyRequest represents a policy creation request
type CreatePolicyRequest struct {
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	RequiredTags  map[string][]string `json:"required_tags"`
	ResourceTypes []string            `json:"resource_types"`
	Severity      string              `json:"severity,omitempty"`
	Enabled       *bool               `json:"enabled,omitempty"`
}

// List retrieves the caller's policies
func (s *PolicyService) List(ctx context.Context) ([]Policy, error) {
	var policies []Policy
	if err := s.client.doRequest(ctx, "GET", "/api/policies", nil, &policies); err != nil {
		return nil, err
	}
	return policies, nil
}

// Get retrieves a policy by ID
func (s *PolicyService) Get(ctx context.Context, id int64) (*Policy, error) {
	var p Policy
	path := fmt.Sprintf("/api/policies/%d", id)
	if err := s.client.doRequest(ctx, "GET", path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new policy
func (s *PolicyService) Create(ctx context.Context, req *CreatePolicyRequest) (*Policy, error) {
	var p Policy
	if err := s.client.doRequest(ctx, "POST", "/api/policies", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetEnabled toggles a policy
func (s *PolicyService) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	path := fmt.Sprintf("/api/policies/%d/enabled", id)
	return s.client.doRequest(ctx, "PATCH", path, map[string]bool{"enabled": enabled}, nil)
}

// Delete removes a policy
func (s *PolicyService) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/policies/%d", id)
	return s.client.doRequest(ctx, "DELETE", path, nil, nil)
}
