package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ViolationService handles violation API calls
type ViolationService struct {
	client *Client
}

// ViolationListOptions contains options for listing violations
type ViolationListOptions struct {
	ListOptions
	AccountID  int64
	ResourceID int64
	PolicyID   int64
	Status     string
	Severity   string
}

// List retrieves violations with filters and pagination
func (s *ViolationService) List(ctx context.Context, opts *ViolationListOptions) (*Page[Violation], error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.AccountID > 0 {
			query.Set("account_id", strconv.FormatInt(opts.AccountID, 10))
		}
		if opts.ResourceID > 0 {
			query.Set("resource_id", strconv.FormatInt(opts.ResourceID, 10))
		}
		if opts.PolicyID > 0 {
			query.Set("policy_id", strconv.FormatInt(opts.PolicyID, 10))
		}
		if opts.Status != "" {
			query.Set("status", opts.Status)
		}
		if opts.Severity != "" {
			query.Set("severity", opts.Severity)
		}
	}

	path := "/api/violations"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page Page[Violation]
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get retrieves a violation by ID
func (s *ViolationService) Get(ctx context.Context, id int64) (*Violation, error) {
	var v Violation
	path := fmt.Sprintf("/api/violations/%d", id)
	if err := s.client.doRequest(ctx, "GET", path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Ignore suppresses a violation until explicitly reopened
func (s *ViolationService) Ignore(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/violations/%d/ignore", id)
	return s.client.doRequest(ctx, "POST", path, nil, nil)
}

// Reopen returns a violation to the open state
func (s *ViolationService) Reopen(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/violations/%d/reopen", id)
	return s.client.doRequest(ctx, "POST", path, nil, nil)
}

// Summary retrieves an account's violation counts grouped by status
func (s *ViolationService) Summary(ctx context.Context, accountID int64) (map[string]int, error) {
	counts := make(map[string]int)
	path := fmt.Sprintf("/api/accounts/%d/violations/summary", accountID)
	if err := s.client.doRequest(ctx, "GET", path, nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
