package testutil

import (
	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
)

// NopLogger returns a logger that discards all output
func NopLogger() *logger.Logger {
	return logger.NewNop()
}

// ActiveAccount returns a scannable account fixture owned by ownerID
func ActiveAccount(id, ownerID int64) *account.Account {
	return &account.Account{
		ID:         id,
		OwnerID:    ownerID,
		Name:       "test-account",
		Provider:   account.ProviderAWS,
		ExternalID: "123456789012",
		Status:     account.StatusActive,
	}
}

// RequireTagsPolicy returns an enabled policy fixture requiring the given
// tag keys (any value) on the given resource types
func RequireTagsPolicy(id, ownerID int64, resourceTypes []string, tagKeys ...string) *policy.Policy {
	required := make(map[string][]string, len(tagKeys))
	for _, key := range tagKeys {
		required[key] = nil
	}
	return &policy.Policy{
		ID:            id,
		OwnerID:       ownerID,
		Name:          "require-tags",
		RequiredTags:  required,
		ResourceTypes: resourceTypes,
		Severity:      policy.SeverityMedium,
		Enabled:       true,
	}
}

// BucketResource returns an s3 bucket resource fixture
func BucketResource(id, accountID int64, name string, tags map[string]string) *resource.Resource {
	if tags == nil {
		tags = map[string]string{}
	}
	return &resource.Resource{
		ID:        id,
		AccountID: accountID,
		ARN:       "arn:aws:s3:::" + name,
		Type:      resource.TypeS3Bucket,
		Region:    "us-east-1",
		Name:      name,
		Tags:      tags,
	}
}
