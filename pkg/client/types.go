package client

import "time"

// Account represents a connected cloud account
type Account struct {
	ID            int64      `json:"id"`
	OwnerID       int64      `json:"owner_id"`
	Name          string     `json:"name"`
	Provider      string     `json:"provider"`
	ExternalID    string     `json:"external_id"`
	Status        string     `json:"status"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty"`
}

// RegionScope marks a region as enabled or disabled for an account
type RegionScope struct {
	AccountID int64     `json:"account_id"`
	Region    string    `json:"region"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// Policy defines tagging compliance rules
type Policy struct {
	ID            int64               `json:"id"`
	OwnerID       int64               `json:"owner_id"`
	Name          string              `json:"name"`
	Description   string              `json:"description,omitempty"`
	RequiredTags  map[string][]string `json:"required_tags"`
	ResourceTypes []string            `json:"resource_types"`
	Severity      string              `json:"severity"`
	Enabled       bool                `json:"enabled"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at,omitempty"`
}

// Resource represents a discovered cloud resource
type Resource struct {
	ID           int64                  `json:"id"`
	AccountID    int64                  `json:"account_id"`
	ARN          string                 `json:"arn"`
	Type         string                 `json:"type"`
	Region       string                 `json:"region"`
	Name         string                 `json:"name,omitempty"`
	Tags         map[string]string      `json:"tags"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	DiscoveredAt time.Time              `json:"discovered_at"`
	LastSeenAt   time.Time              `json:"last_seen_at"`
}

// TagValueDetail describes a present tag whose value is not allowed
type TagValueDetail struct {
	Current string   `json:"current"`
	Allowed []string `json:"allowed"`
}

// ViolationDetails is the structured violation payload
type ViolationDetails struct {
	MissingTags []string                  `json:"missing_tags,omitempty"`
	InvalidTags map[string]TagValueDetail `json:"invalid_tags,omitempty"`
}

// Violation records that one resource breaks one policy
type Violation struct {
	ID         int64            `json:"id"`
	ResourceID int64            `json:"resource_id"`
	PolicyID   int64            `json:"policy_id"`
	AccountID  int64            `json:"account_id"`
	ScanJobID  string           `json:"scan_job_id,omitempty"`
	Status     string           `json:"status"`
	Severity   string           `json:"severity"`
	Details    ViolationDetails `json:"details"`
	DetectedAt time.Time        `json:"detected_at"`
	ResolvedAt *time.Time       `json:"resolved_at,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at,omitempty"`
}

// ScanJob represents one scan attempt for an account
type ScanJob struct {
	ID                 string     `json:"id"`
	AccountID          int64      `json:"account_id"`
	RequestedBy        int64      `json:"requested_by"`
	Status             string     `json:"status"`
	ResourcesScanned   int        `json:"resources_scanned"`
	ViolationsFound    int        `json:"violations_found"`
	ViolationsResolved int        `json:"violations_resolved"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	Error              string     `json:"error,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ResourceTypeScope controls whether a resource category is scanned
type ResourceTypeScope struct {
	ResourceType string    `json:"resource_type"`
	Enabled      bool      `json:"enabled"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListOptions contains common pagination options
type ListOptions struct {
	Page     int
	PageSize int
}

// Page is a paginated API response
type Page[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}
