package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tagsentry/tagsentry/internal/discovery"
	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
)

// S3BucketProvider discovers S3 buckets with their tag sets
type S3BucketProvider struct{}

// NewS3BucketProvider creates an S3 bucket discovery provider
func NewS3BucketProvider() *S3BucketProvider {
	return &S3BucketProvider{}
}

func (p *S3BucketProvider) Type() string { return resource.TypeS3Bucket }

func (p *S3BucketProvider) Global() bool { return false }

// Discover lists the account's buckets with their home regions. ListBuckets
// is account-wide, so buckets outside the given regions are reported too;
// the caller registers new regions and drops disabled ones.
func (p *S3BucketProvider) Discover(ctx context.Context, acct *account.Account, regions []string) ([]discovery.Snapshot, error) {
	cfg, err := loadConfig(ctx, acct)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)

	resp, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	var snapshots []discovery.Snapshot
	for _, b := range resp.Buckets {
		name := deref(b.Name)
		if name == "" {
			continue
		}

		snapshots = append(snapshots, discovery.Snapshot{
			ARN:    fmt.Sprintf("arn:aws:s3:::%s", name),
			Type:   resource.TypeS3Bucket,
			Region: bucketRegion(ctx, client, name),
			Name:   name,
			Tags:   bucketTags(ctx, client, name),
			Metadata: map[string]interface{}{
				"created_at": b.CreationDate,
			},
		})
	}
	return snapshots, nil
}

func bucketRegion(ctx context.Context, client *s3.Client, name string) string {
	out, err := client.GetBucketLocation(ctx, &s3.GetBucketLocationInput{Bucket: &name})
	if err != nil {
		return defaultRegion
	}
	// Buckets in us-east-1 report an empty location constraint
	if out.LocationConstraint == "" {
		return defaultRegion
	}
	return string(out.LocationConstraint)
}

func bucketTags(ctx context.Context, client *s3.Client, name string) map[string]string {
	tags := map[string]string{}
	out, err := client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: &name})
	if err != nil {
		// NoSuchTagSet for untagged buckets; an untagged bucket is exactly
		// what the evaluator needs to see as an empty map
		return tags
	}
	for _, t := range out.TagSet {
		tags[deref(t.Key)] = deref(t.Value)
	}
	return tags
}
