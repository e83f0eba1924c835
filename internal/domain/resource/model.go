package resource

import "time"

// Resource represents a discovered cloud object owned by one account.
// The ARN is the primary external key: scans upsert by ARN and never
// create duplicates.
type Resource struct {
	ID           int64                  `json:"id"`
	AccountID    int64                  `json:"account_id"`
	ARN          string                 `json:"arn"`
	Type         string                 `json:"type"`
	Region       string                 `json:"region"`
	Name         string                 `json:"name"`
	Tags         map[string]string      `json:"tags"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	DiscoveredAt time.Time              `json:"discovered_at"`
	LastSeenAt   time.Time              `json:"last_seen_at"`
}

// Resource type codes
const (
	TypeS3Bucket       = "s3:bucket"
	TypeEC2VPC         = "ec2:vpc"
	TypeHostedZone     = "route53:hostedzone"
	TypeCDNDistrib     = "cloudfront:distribution"
	TypeIAMRole        = "iam:role"
)

// RegionGlobal is the region value carried by global resource types
const RegionGlobal = "global"

// globalTypes classifies resource types that have no region of their own.
// A resource's region is RegionGlobal exactly when its type is listed here.
var globalTypes = map[string]bool{
	TypeHostedZone: true,
	TypeCDNDistrib: true,
	TypeIAMRole:    true,
}

// IsGlobalType reports whether a resource type is global rather than regional
func IsGlobalType(resourceType string) bool {
	return globalTypes[resourceType]
}

// Filter contains resource filtering options
type Filter struct {
	AccountID int64
	Type      string
	Region    string
}
