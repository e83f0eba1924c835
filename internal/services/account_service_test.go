package services

import (
	"context"
	"testing"

	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
	"github.com/tagsentry/tagsentry/internal/testutil"
)

func newAccountFixture() (*AccountService, *testutil.MockAccountRepository) {
	accounts := testutil.NewMockAccountRepository()
	return NewAccountService(accounts, testutil.NopLogger()), accounts
}

func TestAccountCreateDefaults(t *testing.T) {
	svc, accounts := newAccountFixture()

	id, err := svc.Create(context.Background(), &account.Account{
		OwnerID:    1,
		Name:       "prod",
		ExternalID: "123456789012",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	acct := accounts.Accounts[id]
	if acct.Status != account.StatusTesting {
		t.Errorf("status = %q, want %q (new connections start unverified)", acct.Status, account.StatusTesting)
	}
	if acct.Provider != account.ProviderAWS {
		t.Errorf("provider = %q, want %q", acct.Provider, account.ProviderAWS)
	}
}

// Every account must come with region context, or the first scan would
// have nothing to discover
func TestAccountCreateSeedsDefaultRegionScope(t *testing.T) {
	tests := []struct {
		name          string
		defaultRegion string
		want          string
	}{
		{"credential default region", "eu-central-1", "eu-central-1"},
		{"fallback region", "", defaultScanRegion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, accounts := newAccountFixture()

			id, err := svc.Create(context.Background(), &account.Account{
				OwnerID:    1,
				Name:       "prod",
				ExternalID: "123456789012",
				Credentials: account.Credentials{
					AWSDefaultRegion: tt.defaultRegion,
				},
			})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			regions, err := accounts.EnabledRegions(context.Background(), id)
			if err != nil {
				t.Fatalf("EnabledRegions() error = %v", err)
			}
			if !contains(regions, tt.want) {
				t.Errorf("enabled regions = %v, want %q seeded", regions, tt.want)
			}
		})
	}
}

func TestAccountGetEnforcesOwnership(t *testing.T) {
	svc, accounts := newAccountFixture()
	accounts.Accounts[1] = testutil.ActiveAccount(1, 1)

	if _, err := svc.Get(context.Background(), 1, 1); err != nil {
		t.Errorf("owner Get() error = %v", err)
	}
	_, err := svc.Get(context.Background(), 2, 1)
	if code := appCode(t, err); code != errors.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeForbidden)
	}
}

func TestAccountUpdateStatus(t *testing.T) {
	svc, accounts := newAccountFixture()
	acct := testutil.ActiveAccount(1, 1)
	acct.Status = account.StatusTesting
	accounts.Accounts[1] = acct

	if err := svc.UpdateStatus(context.Background(), 1, 1, account.StatusActive); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if got := accounts.Accounts[1].Status; got != account.StatusActive {
		t.Errorf("status = %q, want %q", got, account.StatusActive)
	}

	err := svc.UpdateStatus(context.Background(), 2, 1, account.StatusExpired)
	if code := appCode(t, err); code != errors.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeForbidden)
	}
}

func TestAccountSetRegionEnabled(t *testing.T) {
	svc, accounts := newAccountFixture()
	accounts.Accounts[1] = testutil.ActiveAccount(1, 1)

	if err := svc.SetRegionEnabled(context.Background(), 1, 1, "us-east-1", true); err != nil {
		t.Fatalf("SetRegionEnabled() error = %v", err)
	}
	regions, err := accounts.EnabledRegions(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnabledRegions() error = %v", err)
	}
	if !contains(regions, "us-east-1") {
		t.Errorf("enabled regions = %v, want us-east-1", regions)
	}

	if err := svc.SetRegionEnabled(context.Background(), 1, 1, "us-east-1", false); err != nil {
		t.Fatalf("SetRegionEnabled(disable) error = %v", err)
	}
	regions, _ = accounts.EnabledRegions(context.Background(), 1)
	if contains(regions, "us-east-1") {
		t.Errorf("region still enabled after disable: %v", regions)
	}

	err = svc.SetRegionEnabled(context.Background(), 2, 1, "eu-west-1", true)
	if code := appCode(t, err); code != errors.ErrCodeForbidden {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeForbidden)
	}
}
