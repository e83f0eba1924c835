package client

import (
	"context"
	"net/url"
	"strconv"
)

// ResourceService handles resource inventory API calls
type ResourceService struct {
	client *Client
}

// ResourceListOptions contains options for listing resources
type ResourceListOptions struct {
	ListOptions
	AccountID int64
	Type      string
	Region    string
}

// List retrieves the resource inventory with filters and pagination
func (s *ResourceService) List(ctx context.Context, opts *ResourceListOptions) (*Page[Resource], error) {
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
		if opts.Type != "" {
			query.Set("type", opts.Type)
		}
		if opts.Region != "" {
			query.Set("region", opts.Region)
		}
	}

	path := "/api/resources"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page Page[Resource]
	if err := s.client.doRequest(ctx, "GET", path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
