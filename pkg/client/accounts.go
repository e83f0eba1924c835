package client

import (
	"context"
	"fmt"
	"net/url"
)

// AccountService handles account API calls
type AccountService struct {
	client *Client
}

// CreateAccountRequest represents an account registration request
type CreateAccountRequest struct {
	Name               string `json:"name"`
	ExternalID         string `json:"external_id"`
	AWSAccessKeyID     string `json:"aws_access_key_id,omitempty"`
	AWSSecretAccessKey string `json:"aws_secret_access_key,omitempty"`
	AWSDefaultRegion   string `json:"aws_default_region,omitempty"`
}

// List retrieves the caller's accounts
func (s *AccountService) List(ctx context.Context, provider, status string) ([]Account, error) {
	query := url.Values{}
	if provider != "" {
		query.Set("provider", provider)
	}
	if status != "" {
		query.Set("status", status)
	}

	path := "/api/accounts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var accounts []Account
	if err := s.client.doRequest(ctx, "GET", path, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// Get retrieves an account by ID
func (s *AccountService) Get(ctx context.Context, id int64) (*Account, error) {
	var acct Account
	path := fmt.Sprintf("/api/accounts/%d", id)
	if err := s.client.doRequest(ctx, "GET", path, nil, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// Create registers a new cloud account
func (s *AccountService) Create(ctx context.Context, req *CreateAccountRequest) (*Account, error) {
	var acct Account
	if err := s.client.doRequest(ctx, "POST", "/api/accounts", req, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// UpdateStatus moves an account through its lifecycle
func (s *AccountService) UpdateStatus(ctx context.Context, id int64, status string) error {
	path := fmt.Sprintf("/api/accounts/%d/status", id)
	return s.client.doRequest(ctx, "PATCH", path, map[string]string{"status": status}, nil)
}

// SetRegionEnabled toggles a region scope for an account
func (s *AccountService) SetRegionEnabled(ctx context.Context, id int64, region string, enabled bool) error {
	path := fmt.Sprintf("/api/accounts/%d/regions", id)
	body := map[string]interface{}{"region": region, "enabled": enabled}
	return s.client.doRequest(ctx, "PATCH", path, body, nil)
}

// ListRegionScopes retrieves an account's region scopes
func (s *AccountService) ListRegionScopes(ctx context.Context, id int64) ([]RegionScope, error) {
	var scopes []RegionScope
	path := fmt.Sprintf("/api/accounts/%d/regions", id)
	if err := s.client.doRequest(ctx, "GET", path, nil, &scopes); err != nil {
		return nil, err
	}
	return scopes, nil
}

// Delete removes an account
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/accounts/%d", id)
	return s.client.doRequest(ctx, "DELETE", path, nil, nil)
}
