package services

import (
	"context"
	"testing"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/testutil"
)

func newEvaluatorFixture() (*EvaluatorService, *testutil.MockViolationRepository) {
	violations := testutil.NewMockViolationRepository()
	return NewEvaluatorService(violations, testutil.NopLogger()), violations
}

func TestCheckTags(t *testing.T) {
	tests := []struct {
		name        string
		tags        map[string]string
		required    map[string][]string
		wantMissing []string
		wantInvalid []string
	}{
		{
			name:     "compliant",
			tags:     map[string]string{"env": "prod", "owner": "platform"},
			required: map[string][]string{"env": {"prod", "staging"}, "owner": nil},
		},
		{
			name:        "missing tag",
			tags:        map[string]string{"owner": "platform"},
			required:    map[string][]string{"env": nil, "owner": nil},
			wantMissing: []string{"env"},
		},
		{
			name:     "empty allowed list accepts any value",
			tags:     map[string]string{"owner": "whoever-happens-to-be-on-call"},
			required: map[string][]string{"owner": {}},
		},
		{
			name:        "value outside allowed list",
			tags:        map[string]string{"env": "dev"},
			required:    map[string][]string{"env": {"prod", "staging"}},
			wantInvalid: []string{"env"},
		},
		{
			name:        "missing and invalid together",
			tags:        map[string]string{"env": "dev"},
			required:    map[string][]string{"env": {"prod"}, "owner": nil},
			wantMissing: []string{"owner"},
			wantInvalid: []string{"env"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := checkTags(tt.tags, tt.required)

			if len(details.MissingTags) != len(tt.wantMissing) {
				t.Fatalf("missing tags = %v, want %v", details.MissingTags, tt.wantMissing)
			}
			for _, key := range tt.wantMissing {
				if !contains(details.MissingTags, key) {
					t.Errorf("missing tags %v lack %q", details.MissingTags, key)
				}
			}

			if len(details.InvalidTags) != len(tt.wantInvalid) {
				t.Fatalf("invalid tags = %v, want keys %v", details.InvalidTags, tt.wantInvalid)
			}
			for _, key := range tt.wantInvalid {
				detail, ok := details.InvalidTags[key]
				if !ok {
					t.Fatalf("invalid tags %v lack %q", details.InvalidTags, key)
				}
				if detail.Current != tt.tags[key] {
					t.Errorf("invalid tag %q current = %q, want %q", key, detail.Current, tt.tags[key])
				}
				if len(detail.Allowed) != len(tt.required[key]) {
					t.Errorf("invalid tag %q allowed = %v, want %v", key, detail.Allowed, tt.required[key])
				}
			}

			if (len(tt.wantMissing) == 0 && len(tt.wantInvalid) == 0) != details.IsEmpty() {
				t.Errorf("IsEmpty() = %v for details %+v", details.IsEmpty(), details)
			}
		})
	}
}

func TestEvaluateOpensViolation(t *testing.T) {
	svc, violations := newEvaluatorFixture()
	res := testutil.BucketResource(1, 1, "logs", nil)
	pol := testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket}, "env")

	open, err := svc.Evaluate(context.Background(), res, []*policy.Policy{pol}, "job-1")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("Evaluate() returned %d violations, want 1", len(open))
	}

	v := open[0]
	if v.Status != violation.StatusOpen {
		t.Errorf("status = %q, want %q", v.Status, violation.StatusOpen)
	}
	if v.ResourceID != res.ID || v.PolicyID != pol.ID || v.AccountID != res.AccountID {
		t.Errorf("violation keys = (%d, %d, %d), want (%d, %d, %d)",
			v.ResourceID, v.PolicyID, v.AccountID, res.ID, pol.ID, res.AccountID)
	}
	if v.ScanJobID != "job-1" {
		t.Errorf("scan job id = %q, want %q", v.ScanJobID, "job-1")
	}
	if v.Severity != policy.SeverityMedium {
		t.Errorf("severity = %q, want %q", v.Severity, policy.SeverityMedium)
	}
	if len(v.Details.MissingTags) != 1 || v.Details.MissingTags[0] != "env" {
		t.Errorf("missing tags = %v, want [env]", v.Details.MissingTags)
	}
	if v.DetectedAt.IsZero() {
		t.Error("detected at not set")
	}
	if len(violations.Violations) != 1 {
		t.Errorf("stored %d violations, want 1", len(violations.Violations))
	}
}

func TestEvaluateAutoResolvesOpenViolation(t *testing.T) {
	svc, violations := newEvaluatorFixture()
	res := testutil.BucketResource(1, 1, "logs", map[string]string{"env": "prod"})
	pol := testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket}, "env")

	violations.Violations[1] = &violation.Violation{
		ID:         1,
		ResourceID: res.ID,
		PolicyID:   pol.ID,
		AccountID:  res.AccountID,
		Status:     violation.StatusOpen,
		Severity:   policy.SeverityMedium,
		Details:    violation.Details{MissingTags: []string{"env"}},
		DetectedAt: time.Now().Add(-time.Hour),
	}
	violations.NextID = 2

	open, err := svc.Evaluate(context.Background(), res, []*policy.Policy{pol}, "job-2")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("Evaluate() returned %d open violations, want 0", len(open))
	}

	stored := violations.Violations[1]
	if stored.Status != violation.StatusResolved {
		t.Errorf("status = %q, want %q", stored.Status, violation.StatusResolved)
	}
	if stored.ResolvedAt == nil {
		t.Error("resolved at not set")
	}
	if stored.ScanJobID != "job-2" {
		t.Errorf("scan job id = %q, want %q", stored.ScanJobID, "job-2")
	}
}

func TestEvaluateReopensResolvedViolation(t *testing.T) {
	svc, violations := newEvaluatorFixture()
	res := testutil.BucketResource(1, 1, "logs", nil)
	pol := testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket}, "env")

	resolvedAt := time.Now().Add(-time.Hour)
	violations.Violations[1] = &violation.Violation{
		ID:         1,
		ResourceID: res.ID,
		PolicyID:   pol.ID,
		AccountID:  res.AccountID,
		Status:     violation.StatusResolved,
		Severity:   policy.SeverityMedium,
		ResolvedAt: &resolvedAt,
		DetectedAt: time.Now().Add(-2 * time.Hour),
	}
	violations.NextID = 2

	open, err := svc.Evaluate(context.Background(), res, []*policy.Policy{pol}, "job-3")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("Evaluate() returned %d open violations, want 1", len(open))
	}

	stored := violations.Violations[1]
	if stored.Status != violation.StatusOpen {
		t.Errorf("status = %q, want %q", stored.Status, violation.StatusOpen)
	}
	if stored.ResolvedAt != nil {
		t.Error("resolved at not cleared on reopen")
	}
	if len(violations.Violations) != 1 {
		t.Errorf("stored %d violations, want 1 (reopen must not create a second row)", len(violations.Violations))
	}
}

func TestEvaluateIgnoredStaysSuppressed(t *testing.T) {
	svc, violations := newEvaluatorFixture()
	res := testutil.BucketResource(1, 1, "logs", map[string]string{"env": "sandbox"})
	pol := &policy.Policy{
		ID:            1,
		OwnerID:       1,
		Name:          "env-values",
		RequiredTags:  map[string][]string{"env": {"prod", "staging"}},
		ResourceTypes: []string{resource.TypeS3Bucket},
		Severity:      policy.SeverityHigh,
		Enabled:       true,
	}

	violations.Violations[1] = &violation.Violation{
		ID:         1,
		ResourceID: res.ID,
		PolicyID:   pol.ID,
		AccountID:  res.AccountID,
		Status:     violation.StatusIgnored,
		Severity:   policy.SeverityHigh,
		Details:    violation.Details{MissingTags: []string{"env"}},
		DetectedAt: time.Now().Add(-time.Hour),
	}
	violations.NextID = 2

	open, err := svc.Evaluate(context.Background(), res, []*policy.Policy{pol}, "job-4")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("Evaluate() returned %d open violations, want 0 (ignored stays suppressed)", len(open))
	}

	stored := violations.Violations[1]
	if stored.Status != violation.StatusIgnored {
		t.Errorf("status = %q, want %q", stored.Status, violation.StatusIgnored)
	}
	if len(stored.Details.MissingTags) != 0 {
		t.Errorf("stale missing tags %v not refreshed", stored.Details.MissingTags)
	}
	if _, ok := stored.Details.InvalidTags["env"]; !ok {
		t.Errorf("details not refreshed, invalid tags = %v", stored.Details.InvalidTags)
	}
}

func TestEvaluateIgnoredNotResolvedWhenCompliant(t *testing.T) {
	svc, violations := newEvaluatorFixture()
	res := testutil.BucketResource(1, 1, "logs", map[string]string{"env": "prod"})
	pol := testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket}, "env")

	violations.Violations[1] = &violation.Violation{
		ID:         1,
		ResourceID: res.ID,
		PolicyID:   pol.ID,
		AccountID:  res.AccountID,
		Status:     violation.StatusIgnored,
		Severity:   policy.SeverityMedium,
		Details:    violation.Details{MissingTags: []string{"env"}},
	}
	violations.NextID = 2

	if _, err := svc.Evaluate(context.Background(), res, []*policy.Policy{pol}, ""); err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got := violations.Violations[1].Status; got != violation.StatusIgnored {
		t.Errorf("status = %q, want %q (auto-resolve only touches open violations)", got, violation.StatusIgnored)
	}
}

func TestEvaluateCompliantWithoutHistory(t *testing.T) {
	svc, violations := newEvaluatorFixture()
	res := testutil.BucketResource(1, 1, "logs", map[string]string{"env": "prod"})
	pol := testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket}, "env")

	open, err := svc.Evaluate(context.Background(), res, []*policy.Policy{pol}, "job-5")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("Evaluate() returned %d violations, want 0", len(open))
	}
	if len(violations.Violations) != 0 {
		t.Errorf("stored %d violations, want 0", len(violations.Violations))
	}
}

func TestEvaluateSkipsOtherResourceTypes(t *testing.T) {
	svc, violations := newEvaluatorFixture()
	res := testutil.BucketResource(1, 1, "logs", nil)
	pol := testutil.RequireTagsPolicy(1, 1, []string{resource.TypeEC2VPC}, "env")

	open, err := svc.Evaluate(context.Background(), res, []*policy.Policy{pol}, "")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(open) != 0 || len(violations.Violations) != 0 {
		t.Errorf("vpc policy applied to a bucket: open=%d stored=%d", len(open), len(violations.Violations))
	}
}

// Evaluate returns only the violations left open; resolutions happen as a
// side effect
func TestEvaluateReturnsOnlyOpen(t *testing.T) {
	svc, violations := newEvaluatorFixture()
	res := testutil.BucketResource(1, 1, "logs", map[string]string{"env": "prod"})
	envPolicy := testutil.RequireTagsPolicy(1, 1, []string{resource.TypeS3Bucket}, "env")
	ownerPolicy := testutil.RequireTagsPolicy(2, 1, []string{resource.TypeS3Bucket}, "owner")

	violations.Violations[1] = &violation.Violation{
		ID:         1,
		ResourceID: res.ID,
		PolicyID:   envPolicy.ID,
		AccountID:  res.AccountID,
		Status:     violation.StatusOpen,
		Severity:   policy.SeverityMedium,
		Details:    violation.Details{MissingTags: []string{"env"}},
	}
	violations.NextID = 2

	open, err := svc.Evaluate(context.Background(), res, []*policy.Policy{envPolicy, ownerPolicy}, "job-6")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("Evaluate() returned %d open violations, want 1", len(open))
	}
	if open[0].PolicyID != ownerPolicy.ID {
		t.Errorf("open violation policy = %d, want %d", open[0].PolicyID, ownerPolicy.ID)
	}
	if got := violations.Violations[1].Status; got != violation.StatusResolved {
		t.Errorf("env violation status = %q, want %q", got, violation.StatusResolved)
	}
}
