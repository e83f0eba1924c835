package account

import "time"

// Account represents a connected cloud account, the unit of scanning
type Account struct {
	ID            int64      `json:"id"`
	OwnerID       int64      `json:"owner_id"`
	Name          string     `json:"name"`
	Provider      string     `json:"provider"`
	ExternalID    string     `json:"external_id"` // cloud-side account identifier
	Status        string     `json:"status"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty"`

	Credentials Credentials `json:"-"`
}

// Credentials contains provider credentials for discovery calls
type Credentials struct {
	AWSAccessKeyID     string `json:"aws_access_key_id,omitempty"`
	AWSSecretAccessKey string `json:"aws_secret_access_key,omitempty"`
	AWSDefaultRegion   string `json:"aws_default_region,omitempty"`
}

// Account lifecycle statuses. Only active accounts may be scanned.
const (
	StatusTesting = "testing"
	StatusActive  = "active"
	StatusInvalid = "invalid"
	StatusExpired = "expired"
)

// Providers
const (
	ProviderAWS = "aws"
)

// RegionScope marks a region as enabled or disabled for one account.
// Created by discovery, toggled by the user, never deleted automatically.
type RegionScope struct {
	AccountID int64     `json:"account_id"`
	Region    string    `json:"region"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// IsScannable reports whether the account may be scanned
func (a *Account) IsScannable() bool {
	return a.Status == StatusActive
}

// Filter contains account filtering options
type Filter struct {
	Provider string
	Status   string
}
