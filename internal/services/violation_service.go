package services

import (
	"context"

	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
)

// ViolationService exposes violation queries and the user-driven status
// overrides (ignore, reopen)
type ViolationService struct {
	violations violation.Repository
	authz      *Authorizer
	logger     *logger.Logger
}

// NewViolationService creates a new violation service
func NewViolationService(violations violation.Repository, authz *Authorizer, log *logger.Logger) *ViolationService {
	return &ViolationService{
		violations: violations,
		authz:      authz,
		logger:     log,
	}
}

// Get retrieves a violation, enforcing account ownership
func (s *ViolationService) Get(ctx context.Context, requesterID, id int64) (*violation.Violation, error) {
	v, err := s.violations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireAccount(ctx, requesterID, v.AccountID); err != nil {
		return nil, err
	}
	return v, nil
}

// List retrieves the requester's violations with filters and pagination
func (s *ViolationService) List(ctx context.Context, requesterID int64, filter violation.Filter, limit, offset int) ([]*violation.Violation, int64, error) {
	if filter.AccountID != 0 {
		if _, err := s.authz.RequireAccount(ctx, requesterID, filter.AccountID); err != nil {
			return nil, 0, err
		}
	}
	return s.violations.List(ctx, requesterID, filter, limit, offset)
}

// Ignore forces a violation into the ignored status, suppressing it from
// active alerting. Idempotent.
func (s *ViolationService) Ignore(ctx context.Context, requesterID, id int64) error {
	v, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return err
	}
	if v.Status == violation.StatusIgnored {
		return nil
	}
	v.Status = violation.StatusIgnored
	if err := s.violations.Update(ctx, v); err != nil {
		return err
	}
	s.logger.WithFields(map[string]interface{}{
		"violation_id": id,
		"user_id":      requesterID,
	}).Info("Violation ignored")
	return nil
}

// Reopen forces a violation back to open and clears resolved-at, regardless
// of its current status. This is an explicit user override and works on
// ignored violations, unlike the evaluator's automatic reopen.
func (s *ViolationService) Reopen(ctx context.Context, requesterID, id int64) error {
	v, err := s.Get(ctx, requesterID, id)
	if err != nil {
		return err
	}
	v.Status = violation.StatusOpen
	v.ResolvedAt = nil
	if err := s.violations.Update(ctx, v); err != nil {
		return err
	}
	s.logger.WithFields(map[string]interface{}{
		"violation_id": id,
		"user_id":      requesterID,
	}).Info("Violation reopened")
	return nil
}

// CountByStatus counts an account's violations grouped by status
func (s *ViolationService) CountByStatus(ctx context.Context, requesterID, accountID int64) (map[string]int, error) {
	if _, err := s.authz.RequireAccount(ctx, requesterID, accountID); err != nil {
		return nil, err
	}
	return s.violations.CountByStatus(ctx, accountID)
}

// Authorizer is the single ownership check injected into core operations
type Authorizer struct {
	accounts account.Repository
}

// NewAuthorizer creates an authorizer backed by the account repository
func NewAuthorizer(accounts account.Repository) *Authorizer {
	return &Authorizer{accounts: accounts}
}

// RequireAccount loads an account and verifies the requester owns it
func (a *Authorizer) RequireAccount(ctx context.Context, requesterID, accountID int64) (*account.Account, error) {
	acct, err := a.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if acct.OwnerID != requesterID {
		return nil, errors.Forbidden("You do not own this account")
	}
	return acct, nil
}
