package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/tagsentry/tagsentry/internal/discovery"
	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
)

// HostedZoneProvider discovers Route 53 hosted zones, a global resource type
type HostedZoneProvider struct{}

// NewHostedZoneProvider creates a hosted zone discovery provider
func NewHostedZoneProvider() *HostedZoneProvider {
	return &HostedZoneProvider{}
}

func (p *HostedZoneProvider) Type() string { return resource.TypeHostedZone }

func (p *HostedZoneProvider) Global() bool { return true }

// Discover lists all hosted zones in the account. The regions argument is
// ignored; hosted zones carry the global region marker.
func (p *HostedZoneProvider) Discover(ctx context.Context, acct *account.Account, _ []string) ([]discovery.Snapshot, error) {
	cfg, err := loadConfig(ctx, acct)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := route53.NewFromConfig(cfg)

	var snapshots []discovery.Snapshot
	paginator := route53.NewListHostedZonesPaginator(client, &route53.ListHostedZonesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list hosted zones: %w", err)
		}
		for _, zone := range page.HostedZones {
			zoneID := strings.TrimPrefix(deref(zone.Id), "/hostedzone/")
			snapshots = append(snapshots, discovery.Snapshot{
				ARN:    fmt.Sprintf("arn:aws:route53:::hostedzone/%s", zoneID),
				Type:   resource.TypeHostedZone,
				Region: resource.RegionGlobal,
				Name:   strings.TrimSuffix(deref(zone.Name), "."),
				Tags:   zoneTags(ctx, client, zoneID),
				Metadata: map[string]interface{}{
					"private":      zone.Config != nil && zone.Config.PrivateZone,
					"record_count": zone.ResourceRecordSetCount,
				},
			})
		}
	}
	return snapshots, nil
}

func zoneTags(ctx context.Context, client *route53.Client, zoneID string) map[string]string {
	tags := map[string]string{}
	out, err := client.ListTagsForResource(ctx, &route53.ListTagsForResourceInput{
		ResourceType: r53types.TagResourceTypeHostedzone,
		ResourceId:   &zoneID,
	})
	if err != nil || out.ResourceTagSet == nil {
		return tags
	}
	for _, t := range out.ResourceTagSet.Tags {
		tags[deref(t.Key)] = deref(t.Value)
	}
	return tags
}
