package violation

import "time"

// Violation records that one resource breaks one policy. At most one
// violation exists per (resource, policy) pair; re-scans update it in
// place rather than creating a new row.
type Violation struct {
	ID         int64      `json:"id"`
	ResourceID int64      `json:"resource_id"`
	PolicyID   int64      `json:"policy_id"`
	AccountID  int64      `json:"account_id"`
	ScanJobID  string     `json:"scan_job_id,omitempty"` // job that last touched the violation
	Status     string     `json:"status"`
	Severity   string     `json:"severity"`
	Details    Details    `json:"details"`
	DetectedAt time.Time  `json:"detected_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

// Details is the structured violation payload
type Details struct {
	MissingTags []string                  `json:"missing_tags,omitempty"`
	InvalidTags map[string]TagValueDetail `json:"invalid_tags,omitempty"`
}

// TagValueDetail describes a present tag whose value is not allowed
type TagValueDetail struct {
	Current string   `json:"current"`
	Allowed []string `json:"allowed"`
}

// Violation statuses
const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
	StatusIgnored  = "ignored"
)

// IsEmpty reports whether the details describe a compliant resource
func (d Details) IsEmpty() bool {
	return len(d.MissingTags) == 0 && len(d.InvalidTags) == 0
}

// Filter contains violation filtering options
type Filter struct {
	AccountID  int64
	ResourceID int64
	PolicyID   int64
	Status     string
	Severity   string
}
