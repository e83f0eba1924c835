package services

import (
	"context"
	"testing"

	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/testutil"
)

type reconcilerFixture struct {
	accounts   *testutil.MockAccountRepository
	resources  *testutil.MockResourceRepository
	violations *testutil.MockViolationRepository
	scopes     *testutil.MockScopeRepository
	reconciler *ReconcilerService
}

// newReconcilerFixture seeds account 1 with three resources:
//
//	1: s3 bucket in us-east-1
//	2: vpc in eu-west-1
//	3: global hosted zone
func newReconcilerFixture(t *testing.T, enabledTypes, enabledRegions []string) *reconcilerFixture {
	t.Helper()
	ctx := context.Background()

	accounts := testutil.NewMockAccountRepository()
	resources := testutil.NewMockResourceRepository()
	violations := testutil.NewMockViolationRepository()
	scopes := testutil.NewMockScopeRepository()
	resources.Violations = violations

	accounts.Accounts[1] = testutil.ActiveAccount(1, 1)

	resources.Resources[1] = testutil.BucketResource(1, 1, "logs", nil)
	resources.Resources[2] = &resource.Resource{
		ID: 2, AccountID: 1, ARN: "arn:aws:ec2:eu-west-1:123456789012:vpc/vpc-1",
		Type: resource.TypeEC2VPC, Region: "eu-west-1", Name: "vpc-1",
	}
	resources.Resources[3] = &resource.Resource{
		ID: 3, AccountID: 1, ARN: "arn:aws:route53:::hostedzone/Z1",
		Type: resource.TypeHostedZone, Region: resource.RegionGlobal, Name: "example.com",
	}
	resources.NextID = 4

	for _, typ := range enabledTypes {
		if err := scopes.SetResourceTypeEnabled(ctx, typ, true); err != nil {
			t.Fatalf("enable type %q: %v", typ, err)
		}
	}
	for _, region := range enabledRegions {
		if err := accounts.UpsertRegionScope(ctx, &account.RegionScope{
			AccountID: 1, Region: region, Enabled: true,
		}); err != nil {
			t.Fatalf("enable region %q: %v", region, err)
		}
	}

	return &reconcilerFixture{
		accounts:   accounts,
		resources:  resources,
		violations: violations,
		scopes:     scopes,
		reconciler: NewReconcilerService(accounts, resources, scopes, testutil.NopLogger()),
	}
}

var allTypes = []string{resource.TypeS3Bucket, resource.TypeEC2VPC, resource.TypeHostedZone}

func TestReconcileScoping(t *testing.T) {
	tests := []struct {
		name           string
		enabledTypes   []string
		enabledRegions []string
		wantDeleted    []int64
	}{
		{
			name:           "everything in scope",
			enabledTypes:   allTypes,
			enabledRegions: []string{"us-east-1", "eu-west-1"},
			wantDeleted:    nil,
		},
		{
			name:           "type disabled",
			enabledTypes:   []string{resource.TypeS3Bucket, resource.TypeHostedZone},
			enabledRegions: []string{"us-east-1", "eu-west-1"},
			wantDeleted:    []int64{2},
		},
		{
			name:           "region disabled",
			enabledTypes:   allTypes,
			enabledRegions: []string{"us-east-1"},
			wantDeleted:    []int64{2},
		},
		{
			name:           "global survives while one region is enabled",
			enabledTypes:   []string{resource.TypeHostedZone},
			enabledRegions: []string{"us-east-1"},
			wantDeleted:    []int64{1, 2},
		},
		{
			name:           "no regions left deletes everything",
			enabledTypes:   allTypes,
			enabledRegions: nil,
			wantDeleted:    []int64{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReconcilerFixture(t, tt.enabledTypes, tt.enabledRegions)

			if err := f.reconciler.Reconcile(context.Background(), f.accounts.Accounts[1]); err != nil {
				t.Fatalf("Reconcile() error = %v", err)
			}

			if len(f.resources.Deleted) != len(tt.wantDeleted) {
				t.Fatalf("deleted %v, want %v", f.resources.Deleted, tt.wantDeleted)
			}
			deleted := make(map[int64]bool, len(f.resources.Deleted))
			for _, id := range f.resources.Deleted {
				deleted[id] = true
			}
			for _, id := range tt.wantDeleted {
				if !deleted[id] {
					t.Errorf("resource %d not deleted (deleted %v)", id, f.resources.Deleted)
				}
			}
		})
	}
}

func TestReconcileCascadesToViolations(t *testing.T) {
	f := newReconcilerFixture(t,
		[]string{resource.TypeEC2VPC, resource.TypeHostedZone},
		[]string{"us-east-1", "eu-west-1"},
	)
	f.violations.Violations[1] = &violation.Violation{
		ID: 1, ResourceID: 1, PolicyID: 1, AccountID: 1,
		Status: violation.StatusOpen, Severity: policy.SeverityMedium,
	}
	f.violations.Violations[2] = &violation.Violation{
		ID: 2, ResourceID: 2, PolicyID: 1, AccountID: 1,
		Status: violation.StatusIgnored, Severity: policy.SeverityMedium,
	}
	f.violations.NextID = 3

	// Bucket type disabled: resource 1 and its violation go, resource 2's stays
	if err := f.reconciler.Reconcile(context.Background(), f.accounts.Accounts[1]); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if _, ok := f.violations.Violations[1]; ok {
		t.Error("violation on deleted resource survived")
	}
	if _, ok := f.violations.Violations[2]; !ok {
		t.Error("violation on surviving resource deleted")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newReconcilerFixture(t, []string{resource.TypeS3Bucket, resource.TypeHostedZone}, []string{"us-east-1"})
	ctx := context.Background()

	if err := f.reconciler.Reconcile(ctx, f.accounts.Accounts[1]); err != nil {
		t.Fatalf("first Reconcile() error = %v", err)
	}
	firstPass := len(f.resources.Deleted)
	if firstPass == 0 {
		t.Fatal("first pass deleted nothing, fixture is wrong")
	}

	if err := f.reconciler.Reconcile(ctx, f.accounts.Accounts[1]); err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if len(f.resources.Deleted) != firstPass {
		t.Errorf("second pass deleted %d more resources, want 0", len(f.resources.Deleted)-firstPass)
	}
}
