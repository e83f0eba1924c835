package policy

import "time"

// Policy defines tagging compliance rules for a set of resource types.
// RequiredTags maps a tag key to its allowed values; an empty slice means
// any present value is accepted.
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

// Severity levels
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// AppliesTo reports whether the policy covers the given resource type
func (p *Policy) AppliesTo(resourceType string) bool {
	for _, t := range p.ResourceTypes {
		if t == resourceType {
			return true
		}
	}
	return false
}
