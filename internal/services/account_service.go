package services

import (
	"context"

	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
)

// defaultScanRegion seeds the first region scope when an account is
// connected without a default region. Matches the discovery layer's
// fallback region.
const defaultScanRegion = "us-east-1"

// AccountService implements account.Service
type AccountService struct {
	repo   account.Repository
	logger *logger.Logger
}

// NewAccountService creates a new account service
func NewAccountService(repo account.Repository, log *logger.Logger) *AccountService {
	return &AccountService{repo: repo, logger: log}
}

// Create creates a new account connection in testing status
func (s *AccountService) Create(ctx context.Context, acct *account.Account) (int64, error) {
	if acct.Status == "" {
		acct.Status = account.StatusTesting
	}
	if acct.Provider == "" {
		acct.Provider = account.ProviderAWS
	}

	id, err := s.repo.Create(ctx, acct)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to create account")
		return 0, err
	}

	// Seed the default region so the first scan has region context;
	// discovery registers further regions as it observes them
	region := acct.Credentials.AWSDefaultRegion
	if region == "" {
		region = defaultScanRegion
	}
	if _, err := s.repo.EnsureRegionScope(ctx, &account.RegionScope{
		AccountID: id,
		Region:    region,
		Enabled:   true,
	}); err != nil {
		s.logger.ErrorWithErr(err, "Failed to seed default region scope")
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id": id,
		"owner_id":   acct.OwnerID,
		"provider":   acct.Provider,
	}).Info("Account created")

	return id, nil
}

// Get retrieves an account owned by the requester
func (s *AccountService) Get(ctx context.Context, requesterID, id int64) (*account.Account, error) {
	acct, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acct.OwnerID != requesterID {
		return nil, errors.Forbidden("You do not own this account")
	}
	return acct, nil
}

// List retrieves the requester's accounts
func (s *AccountService) List(ctx context.Context, requesterID int64, filter account.Filter) ([]*account.Account, error) {
	return s.repo.List(ctx, requesterID, filter)
}

// UpdateStatus moves an account through its lifecycle
func (s *AccountService) UpdateStatus(ctx context.Context, requesterID, id int64, status string) error {
	acct, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return err
	}

	acct.Status = status
	if err := s.repo.Update(ctx, acct); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update account status")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id": id,
		"status":     status,
	}).Info("Account status updated")

	return nil
}

// SetRegionEnabled toggles one region scope for an account
func (s *AccountService) SetRegionEnabled(ctx context.Context, requesterID, id int64, region string, enabled bool) error {
	if _, err := s.Get(ctx, requesterID, id); err != nil {
		return err
	}
	return s.repo.UpsertRegionScope(ctx, &account.RegionScope{
		AccountID: id,
		Region:    region,
		Enabled:   enabled,
	})
}

// ListRegionScopes retrieves an account's region scopes
func (s *AccountService) ListRegionScopes(ctx context.Context, requesterID, id int64) ([]*account.RegionScope, error) {
	if _, err := s.Get(ctx, requesterID, id); err != nil {
		return nil, err
	}
	return s.repo.ListRegionScopes(ctx, id)
}

// Delete deletes an account
func (s *AccountService) Delete(ctx context.Context, requesterID, id int64) error {
	if _, err := s.Get(ctx, requesterID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, requesterID, id)
}
