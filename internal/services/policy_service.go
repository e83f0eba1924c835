package services

import (
	"context"

	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
)

// PolicyService manages tagging policies
type PolicyService struct {
	repo   policy.Repository
	logger *logger.Logger
}

// NewPolicyService creates a new policy service
func NewPolicyService(repo policy.Repository, log *logger.Logger) *PolicyService {
	return &PolicyService{repo: repo, logger: log}
}

// Create creates a new policy, enabled by default
func (s *PolicyService) Create(ctx context.Context, p *policy.Policy) (int64, error) {
	if p.Severity == "" {
		p.Severity = policy.SeverityMedium
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to create policy")
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"policy_id": id,
		"owner_id":  p.OwnerID,
		"name":      p.Name,
	}).Info("Policy created")

	return id, nil
}

// Get retrieves a policy owned by the requester
func (s *PolicyService) Get(ctx context.Context, requesterID, id int64) (*policy.Policy, error) {
	return s.repo.GetByID(ctx, requesterID, id)
}

// List retrieves the requester's policies
func (s *PolicyService) List(ctx context.Context, requesterID int64) ([]*policy.Policy, error) {
	return s.repo.List(ctx, requesterID)
}

// Update replaces a policy's rules
func (s *PolicyService) Update(ctx context.Context, requesterID int64, p *policy.Policy) error {
	existing, err := s.repo.GetByID(ctx, requesterID, p.ID)
	if err != nil {
		return err
	}
	p.OwnerID = existing.OwnerID

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update policy")
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"policy_id": p.ID,
	}).Info("Policy updated")

	return nil
}

// SetEnabled toggles a policy on or off
func (s *PolicyService) SetEnabled(ctx context.Context, requesterID, id int64, enabled bool) error {
	p, err := s.repo.GetByID(ctx, requesterID, id)
	if err != nil {
		return err
	}
	p.Enabled = enabled
	return s.repo.Update(ctx, p)
}

// Delete deletes a policy
func (s *PolicyService) Delete(ctx context.Context, requesterID, id int64) error {
	return s.repo.Delete(ctx, requesterID, id)
}
