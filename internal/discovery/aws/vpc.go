package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/tagsentry/tagsentry/internal/discovery"
	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
)

// VPCProvider discovers EC2 VPCs across the account's enabled regions
type VPCProvider struct{}

// NewVPCProvider creates a VPC discovery provider
func NewVPCProvider() *VPCProvider {
	return &VPCProvider{}
}

func (p *VPCProvider) Type() string { return resource.TypeEC2VPC }

func (p *VPCProvider) Global() bool { return false }

// Discover lists VPCs region by region
func (p *VPCProvider) Discover(ctx context.Context, acct *account.Account, regions []string) ([]discovery.Snapshot, error) {
	cfg, err := loadConfig(ctx, acct)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var snapshots []discovery.Snapshot
	for _, region := range regions {
		regional := cfg
		regional.Region = region
		client := ec2.NewFromConfig(regional)

		paginator := ec2.NewDescribeVpcsPaginator(client, &ec2.DescribeVpcsInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("describe vpcs in %s: %w", region, err)
			}
			for _, vpc := range page.Vpcs {
				snapshots = append(snapshots, p.snapshot(vpc, region, acct.ExternalID))
			}
		}
	}
	return snapshots, nil
}

func (p *VPCProvider) snapshot(vpc ec2types.Vpc, region, accountExternalID string) discovery.Snapshot {
	id := deref(vpc.VpcId)
	tags := map[string]string{}
	name := id
	for _, t := range vpc.Tags {
		key := deref(t.Key)
		tags[key] = deref(t.Value)
		if key == "Name" && deref(t.Value) != "" {
			name = deref(t.Value)
		}
	}

	return discovery.Snapshot{
		ARN:    fmt.Sprintf("arn:aws:ec2:%s:%s:vpc/%s", region, accountExternalID, id),
		Type:   resource.TypeEC2VPC,
		Region: region,
		Name:   name,
		Tags:   tags,
		Metadata: map[string]interface{}{
			"cidr_block": deref(vpc.CidrBlock),
			"is_default": vpc.IsDefault != nil && *vpc.IsDefault,
			"state":      string(vpc.State),
		},
	}
}
