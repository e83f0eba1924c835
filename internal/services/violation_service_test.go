package services

import (
	"context"
	"testing"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
	"github.com/tagsentry/tagsentry/internal/testutil"
)

func newViolationFixture() (*ViolationService, *testutil.MockViolationRepository, *testutil.MockAccountRepository) {
	accounts := testutil.NewMockAccountRepository()
	violations := testutil.NewMockViolationRepository()
	svc := NewViolationService(violations, NewAuthorizer(accounts), testutil.NopLogger())
	return svc, violations, accounts
}

func seedViolation(violations *testutil.MockViolationRepository, id, accountID int64, status string) *violation.Violation {
	v := &violation.Violation{
		ID:         id,
		ResourceID: 1,
		PolicyID:   1,
		AccountID:  accountID,
		Status:     status,
		Severity:   policy.SeverityMedium,
		DetectedAt: time.Now().Add(-time.Hour),
	}
	violations.Violations[id] = v
	if id >= violations.NextID {
		violations.NextID = id + 1
	}
	return v
}

func TestViolationGetEnforcesOwnership(t *testing.T) {
	svc, violations, accounts := newViolationFixture()
	accounts.Accounts[1] = testutil.ActiveAccount(1, 1)
	seedViolation(violations, 1, 1, violation.StatusOpen)

	if _, err := svc.Get(context.Background(), 1, 1); err != nil {
		t.Errorf("owner Get() error = %v", err)
	}

	_, err := svc.Get(context.Background(), 2, 1)
	if code := appCode(t, err); code != errors.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeForbidden)
	}
}

func TestViolationGetNotFound(t *testing.T) {
	svc, _, _ := newViolationFixture()

	_, err := svc.Get(context.Background(), 1, 42)
	if code := appCode(t, err); code != errors.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeNotFound)
	}
}

func TestViolationIgnore(t *testing.T) {
	svc, violations, accounts := newViolationFixture()
	accounts.Accounts[1] = testutil.ActiveAccount(1, 1)
	seedViolation(violations, 1, 1, violation.StatusOpen)

	if err := svc.Ignore(context.Background(), 1, 1); err != nil {
		t.Fatalf("Ignore() error = %v", err)
	}
	if got := violations.Violations[1].Status; got != violation.StatusIgnored {
		t.Fatalf("status = %q, want %q", got, violation.StatusIgnored)
	}

	// Second ignore is a no-op, not an error
	if err := svc.Ignore(context.Background(), 1, 1); err != nil {
		t.Errorf("repeated Ignore() error = %v", err)
	}
}

func TestViolationIgnoreForbiddenForNonOwner(t *testing.T) {
	svc, violations, accounts := newViolationFixture()
	accounts.Accounts[1] = testutil.ActiveAccount(1, 1)
	seedViolation(violations, 1, 1, violation.StatusOpen)

	err := svc.Ignore(context.Background(), 2, 1)
	if code := appCode(t, err); code != errors.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeForbidden)
	}
	if got := violations.Violations[1].Status; got != violation.StatusOpen {
		t.Errorf("status changed to %q by a non-owner", got)
	}
}

func TestViolationReopen(t *testing.T) {
	tests := []struct {
		name   string
		status string
	}{
		{name: "from resolved", status: violation.StatusResolved},
		{name: "from ignored", status: violation.StatusIgnored},
		{name: "already open", status: violation.StatusOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, violations, accounts := newViolationFixture()
			accounts.Accounts[1] = testutil.ActiveAccount(1, 1)
			v := seedViolation(violations, 1, 1, tt.status)
			resolvedAt := time.Now().Add(-time.Minute)
			v.ResolvedAt = &resolvedAt

			if err := svc.Reopen(context.Background(), 1, 1); err != nil {
				t.Fatalf("Reopen() error = %v", err)
			}

			stored := violations.Violations[1]
			if stored.Status != violation.StatusOpen {
				t.Errorf("status = %q, want %q", stored.Status, violation.StatusOpen)
			}
			if stored.ResolvedAt != nil {
				t.Error("resolved at not cleared")
			}
		})
	}
}

func TestViolationListChecksAccountFilterOwnership(t *testing.T) {
	svc, _, accounts := newViolationFixture()
	accounts.Accounts[1] = testutil.ActiveAccount(1, 1)

	_, _, err := svc.List(context.Background(), 2, violation.Filter{AccountID: 1}, 20, 0)
	if code := appCode(t, err); code != errors.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeForbidden)
	}

	// Without an account filter the repository scopes by owner itself
	if _, _, err := svc.List(context.Background(), 2, violation.Filter{}, 20, 0); err != nil {
		t.Errorf("unfiltered List() error = %v", err)
	}
}

func TestViolationCountByStatus(t *testing.T) {
	svc, violations, accounts := newViolationFixture()
	accounts.Accounts[1] = testutil.ActiveAccount(1, 1)
	seedViolation(violations, 1, 1, violation.StatusOpen)
	seedViolation(violations, 2, 1, violation.StatusOpen)
	seedViolation(violations, 3, 1, violation.StatusResolved)
	seedViolation(violations, 4, 1, violation.StatusIgnored)

	counts, err := svc.CountByStatus(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	want := map[string]int{
		violation.StatusOpen:     2,
		violation.StatusResolved: 1,
		violation.StatusIgnored:  1,
	}
	for status, n := range want {
		if counts[status] != n {
			t.Errorf("counts[%q] = %d, want %d", status, counts[status], n)
		}
	}

	_, err = svc.CountByStatus(context.Background(), 2, 1)
	if code := appCode(t, err); code != errors.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeForbidden)
	}
}
