package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ScanService handles scan job API calls
type ScanService struct {
	client *Client
}

// Start initiates a scan for an account. The server rejects the request
// with a 409 when a scan is already in flight.
func (s *ScanService) Start(ctx context.Context, accountID int64) (*ScanJob, error) {
	var job ScanJob
	path := fmt.Sprintf("/api/accounts/%d/scans", accountID)
	if err := s.client.doRequest(ctx, "POST", path, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Get retrieves a scan job by ID
func (s *ScanService) Get(ctx context.Context, jobID string) (*ScanJob, error) {
	var job ScanJob
	if err := s.client.doRequest(ctx, "GET", "/api/scans/"+url.PathEscape(jobID), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByAccount retrieves an account's scan history newest-first
func (s *ScanService) ListByAccount(ctx context.Context, accountID int64, opts *ListOptions) (*Page[ScanJob], error) {
	query := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			query.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			query.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}

	path := fmt.Sprintf("/api/accounts/%d/scans", accountID)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page Page[ScanJob]
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
