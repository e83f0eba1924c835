package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/domain/scan"
	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedAccount(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	id, err := NewAccountRepository(db).Create(context.Background(), &account.Account{
		OwnerID:    1,
		Name:       "prod",
		Provider:   account.ProviderAWS,
		ExternalID: "123456789012",
		Status:     account.StatusActive,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return id
}

func seedResource(t *testing.T, db *sql.DB, accountID int64, arn string) *resource.Resource {
	t.Helper()
	res := &resource.Resource{
		AccountID: accountID,
		ARN:       arn,
		Type:      resource.TypeS3Bucket,
		Region:    "us-east-1",
		Name:      "logs",
		Tags:      map[string]string{},
	}
	if err := NewResourceRepository(db).Upsert(context.Background(), res); err != nil {
		t.Fatalf("seed resource: %v", err)
	}
	return res
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("expected *errors.AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

// Re-scans must refresh the stored row keyed by ARN without duplicating
// it or losing the original discovery timestamp
func TestResourceUpsertIsKeyedByARN(t *testing.T) {
	db := openTestDB(t)
	repo := NewResourceRepository(db)
	accountID := seedAccount(t, db)

	first := &resource.Resource{
		AccountID:    accountID,
		ARN:          "arn:aws:s3:::logs",
		Type:         resource.TypeS3Bucket,
		Region:       "us-east-1",
		Name:         "logs",
		Tags:         map[string]string{},
		DiscoveredAt: time.Now().Add(-24 * time.Hour),
	}
	if err := repo.Upsert(context.Background(), first); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}

	second := &resource.Resource{
		AccountID: accountID,
		ARN:       "arn:aws:s3:::logs",
		Type:      resource.TypeS3Bucket,
		Region:    "us-east-1",
		Name:      "logs",
		Tags:      map[string]string{"env": "prod"},
	}
	if err := repo.Upsert(context.Background(), second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second upsert id = %d, want %d (row must be stable)", second.ID, first.ID)
	}
	if second.DiscoveredAt.Unix() != first.DiscoveredAt.Unix() {
		t.Errorf("discovered_at = %v, want original %v preserved", second.DiscoveredAt, first.DiscoveredAt)
	}

	stored, err := repo.ListByAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("ListByAccount() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d rows, want 1", len(stored))
	}
	if stored[0].Tags["env"] != "prod" {
		t.Errorf("tags = %v, want refreshed env=prod", stored[0].Tags)
	}
}

func TestViolationUniquePerResourceAndPolicy(t *testing.T) {
	db := openTestDB(t)
	repo := NewViolationRepository(db)
	accountID := seedAccount(t, db)
	res := seedResource(t, db, accountID, "arn:aws:s3:::logs")

	v := &violation.Violation{
		ResourceID: res.ID,
		PolicyID:   1,
		AccountID:  accountID,
		Status:     violation.StatusOpen,
		Severity:   "medium",
		Details:    violation.Details{MissingTags: []string{"env"}},
	}
	if _, err := repo.Create(context.Background(), v); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	dup := &violation.Violation{
		ResourceID: res.ID,
		PolicyID:   1,
		AccountID:  accountID,
		Status:     violation.StatusOpen,
		Severity:   "medium",
	}
	if _, err := repo.Create(context.Background(), dup); err == nil {
		t.Fatal("duplicate Create() succeeded, want unique constraint error")
	}

	// A different policy against the same resource is a separate violation
	other := &violation.Violation{
		ResourceID: res.ID,
		PolicyID:   2,
		AccountID:  accountID,
		Status:     violation.StatusOpen,
		Severity:   "medium",
	}
	if _, err := repo.Create(context.Background(), other); err != nil {
		t.Errorf("Create() with different policy error = %v", err)
	}
}

func TestResourceDeleteCascadeRemovesViolations(t *testing.T) {
	db := openTestDB(t)
	resources := NewResourceRepository(db)
	violations := NewViolationRepository(db)
	accountID := seedAccount(t, db)
	res := seedResource(t, db, accountID, "arn:aws:s3:::logs")

	vID, err := violations.Create(context.Background(), &violation.Violation{
		ResourceID: res.ID,
		PolicyID:   1,
		AccountID:  accountID,
		Status:     violation.StatusOpen,
		Severity:   "medium",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := resources.DeleteCascade(context.Background(), res.ID); err != nil {
		t.Fatalf("DeleteCascade() error = %v", err)
	}

	_, err = resources.GetByID(context.Background(), res.ID)
	if code := appErrCode(t, err); code != errors.ErrCodeNotFound {
		t.Errorf("resource code = %q, want %q", code, errors.ErrCodeNotFound)
	}
	_, err = violations.GetByID(context.Background(), vID)
	if code := appErrCode(t, err); code != errors.ErrCodeNotFound {
		t.Errorf("violation code = %q, want %q", code, errors.ErrCodeNotFound)
	}
}

func TestDeleteCascadeUnknownResource(t *testing.T) {
	db := openTestDB(t)
	seedAccount(t, db)

	err := NewResourceRepository(db).DeleteCascade(context.Background(), 99)
	if code := appErrCode(t, err); code != errors.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeNotFound)
	}
}

// EnsureRegionScope must create missing rows and leave user-toggled rows
// untouched
func TestEnsureRegionScope(t *testing.T) {
	db := openTestDB(t)
	repo := NewAccountRepository(db)
	accountID := seedAccount(t, db)

	created, err := repo.EnsureRegionScope(context.Background(), &account.RegionScope{
		AccountID: accountID,
		Region:    "eu-west-1",
		Enabled:   true,
	})
	if err != nil {
		t.Fatalf("EnsureRegionScope() error = %v", err)
	}
	if !created {
		t.Error("created = false for a new region, want true")
	}

	if err := repo.UpsertRegionScope(context.Background(), &account.RegionScope{
		AccountID: accountID,
		Region:    "eu-west-1",
		Enabled:   false,
	}); err != nil {
		t.Fatalf("UpsertRegionScope() error = %v", err)
	}

	created, err = repo.EnsureRegionScope(context.Background(), &account.RegionScope{
		AccountID: accountID,
		Region:    "eu-west-1",
		Enabled:   true,
	})
	if err != nil {
		t.Fatalf("EnsureRegionScope() error = %v", err)
	}
	if created {
		t.Error("created = true for an existing region, want false")
	}

	regions, err := repo.EnabledRegions(context.Background(), accountID)
	if err != nil {
		t.Fatalf("EnabledRegions() error = %v", err)
	}
	for _, r := range regions {
		if r == "eu-west-1" {
			t.Error("disabled region re-enabled by EnsureRegionScope")
		}
	}
}

func TestFindActiveByAccount(t *testing.T) {
	db := openTestDB(t)
	repo := NewScanJobRepository(db)
	accountID := seedAccount(t, db)

	job := &scan.Job{
		ID:          "job-1",
		AccountID:   accountID,
		RequestedBy: 1,
		Status:      scan.StatusPending,
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	active, err := repo.FindActiveByAccount(context.Background(), accountID)
	if err != nil {
		t.Fatalf("FindActiveByAccount() error = %v", err)
	}
	if active.ID != "job-1" {
		t.Errorf("active job = %q, want job-1", active.ID)
	}

	now := time.Now()
	job.Status = scan.StatusSuccess
	job.CompletedAt = &now
	if err := repo.Update(context.Background(), job); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	_, err = repo.FindActiveByAccount(context.Background(), accountID)
	if code := appErrCode(t, err); code != errors.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", code, errors.ErrCodeNotFound)
	}
}
