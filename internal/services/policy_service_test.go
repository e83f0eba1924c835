package services

import (
	"context"
	"testing"

	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
	"github.com/tagsentry/tagsentry/internal/testutil"
)

func newPolicyFixture() (*PolicyService, *testutil.MockPolicyRepository) {
	policies := testutil.NewMockPolicyRepository()
	return NewPolicyService(policies, testutil.NopLogger()), policies
}

func TestPolicyCreateDefaultsSeverity(t *testing.T) {
	svc, policies := newPolicyFixture()

	id, err := svc.Create(context.Background(), &policy.Policy{
		OwnerID:       1,
		Name:          "require-env",
		RequiredTags:  map[string][]string{"env": nil},
		ResourceTypes: []string{resource.TypeS3Bucket},
		Enabled:       true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := policies.Policies[id].Severity; got != policy.SeverityMedium {
		t.Errorf("severity = %q, want %q", got, policy.SeverityMedium)
	}
}

func TestPolicyUpdatePreservesOwner(t *testing.T) {
	svc, policies := newPolicyFixture()
	policies.Policies[1] = testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket}, "env")
	policies.NextID = 2

	updated := testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket, resource.TypeEC2VPC}, "env", "owner")
	updated.OwnerID = 0 // the handler never trusts the body for ownership
	if err := svc.Update(context.Background(), 1, updated); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := policies.Policies[1].OwnerID; got != 1 {
		t.Errorf("owner id = %d, want 1", got)
	}
	if got := len(policies.Policies[1].ResourceTypes); got != 2 {
		t.Errorf("resource types = %d, want 2", got)
	}
}

func TestPolicyUpdateForeignPolicy(t *testing.T) {
	svc, policies := newPolicyFixture()
	policies.Policies[1] = testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket}, "env")
	policies.NextID = 2

	err := svc.Update(context.Background(), 2, testutil.RequireTagsPolicy(1, 2, []string{resource.TypeS3Bucket}, "env"))
	if code := appCode(t, err); code != errors.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeNotFound)
	}
}

func TestPolicySetEnabled(t *testing.T) {
	svc, policies := newPolicyFixture()
	policies.Policies[1] = testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket}, "env")
	policies.NextID = 2

	if err := svc.SetEnabled(context.Background(), 1, 1, false); err != nil {
		t.Fatalf("SetEnabled() error = %v", err)
	}
	if policies.Policies[1].Enabled {
		t.Error("policy still enabled")
	}

	enabled, err := policies.ListEnabled(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListEnabled() error = %v", err)
	}
	if len(enabled) != 0 {
		t.Errorf("disabled policy still listed as enabled: %d", len(enabled))
	}
}
