package services

import (
	"context"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/metrics"
)

// EvaluatorService checks resources against tagging policies and maintains
// the violation lifecycle: open on breach, auto-resolve on compliance,
// reopen on regression. Ignored violations keep fresh details but are never
// reactivated automatically.
type EvaluatorService struct {
	violations violation.Repository
	logger     *logger.Logger
}

// NewEvaluatorService creates a new evaluator
func NewEvaluatorService(violations violation.Repository, log *logger.Logger) *EvaluatorService {
	return &EvaluatorService{
		violations: violations,
		logger:     log,
	}
}

// Evaluate checks one resource against the applicable policies and returns
// the violations that are open after evaluation. Auto-resolutions happen as
// a side effect and are not returned. scanJobID attributes created or
// refreshed violations to the scan that produced them; it may be empty for
// ad-hoc re-checks.
func (s *EvaluatorService) Evaluate(ctx context.Context, res *resource.Resource, policies []*policy.Policy, scanJobID string) ([]*violation.Violation, error) {
	touched, err := s.evaluateResource(ctx, res, policies, scanJobID)
	if err != nil {
		return nil, err
	}
	var open []*violation.Violation
	for _, v := range touched {
		if v.Status == violation.StatusOpen {
			open = append(open, v)
		}
	}
	return open, nil
}

// evaluateResource applies every applicable policy and returns all
// violations the pass touched, whatever status they ended in
func (s *EvaluatorService) evaluateResource(ctx context.Context, res *resource.Resource, policies []*policy.Policy, scanJobID string) ([]*violation.Violation, error) {
	var touched []*violation.Violation

	for _, pol := range policies {
		if !pol.AppliesTo(res.Type) {
			continue
		}

		details := checkTags(res.Tags, pol.RequiredTags)

		v, err := s.apply(ctx, res, pol, details, scanJobID)
		if err != nil {
			return nil, err
		}
		if v != nil {
			touched = append(touched, v)
		}
	}

	return touched, nil
}

// checkTags computes the violation details for one resource/policy pair.
// A required tag with an empty allowed-values list accepts any present value.
func checkTags(tags map[string]string, required map[string][]string) violation.Details {
	var details violation.Details

	for key, allowed := range required {
		current, ok := tags[key]
		if !ok {
			details.MissingTags = append(details.MissingTags, key)
			continue
		}
		if len(allowed) == 0 {
			continue
		}
		if !contains(allowed, current) {
			if details.InvalidTags == nil {
				details.InvalidTags = make(map[string]violation.TagValueDetail)
			}
			details.InvalidTags[key] = violation.TagValueDetail{
				Current: current,
				Allowed: allowed,
			}
		}
	}

	return details
}

// apply reconciles the stored violation for (resource, policy) with the
// freshly computed details and returns the violation it touched, if any.
func (s *EvaluatorService) apply(ctx context.Context, res *resource.Resource, pol *policy.Policy, details violation.Details, scanJobID string) (*violation.Violation, error) {
	existing, err := s.violations.GetByResourceAndPolicy(ctx, res.ID, pol.ID)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); !ok || appErr.Code != errors.ErrCodeNotFound {
			return nil, err
		}
		existing = nil
	}

	if details.IsEmpty() {
		// Compliant: auto-resolve an open violation, leave everything else
		if existing == nil || existing.Status != violation.StatusOpen {
			return nil, nil
		}
		now := time.Now()
		existing.Status = violation.StatusResolved
		existing.ResolvedAt = &now
		existing.ScanJobID = scanJobID
		if err := s.violations.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.WithFields(map[string]interface{}{
			"violation_id": existing.ID,
			"resource_id":  res.ID,
			"policy_id":    pol.ID,
		}).Info("Violation auto-resolved")
		return existing, nil
	}

	if existing == nil {
		v := &violation.Violation{
			ResourceID: res.ID,
			PolicyID:   pol.ID,
			AccountID:  res.AccountID,
			ScanJobID:  scanJobID,
			Status:     violation.StatusOpen,
			Severity:   pol.Severity,
			Details:    details,
			DetectedAt: time.Now(),
		}
		id, err := s.violations.Create(ctx, v)
		if err != nil {
			return nil, err
		}
		v.ID = id
		metrics.RecordViolation(pol.Severity)
		s.logger.WithFields(map[string]interface{}{
			"violation_id": id,
			"resource_id":  res.ID,
			"policy_id":    pol.ID,
			"severity":     pol.Severity,
		}).Info("Violation detected")
		return v, nil
	}

	// Non-compliant with an existing record: refresh details in place.
	// A resolved violation reopens; an ignored one stays suppressed.
	existing.Details = details
	existing.Severity = pol.Severity
	existing.ScanJobID = scanJobID
	if existing.Status == violation.StatusResolved {
		existing.Status = violation.StatusOpen
		existing.ResolvedAt = nil
		metrics.RecordViolation(pol.Severity)
		s.logger.WithFields(map[string]interface{}{
			"violation_id": existing.ID,
			"resource_id":  res.ID,
			"policy_id":    pol.ID,
		}).Info("Violation reopened")
	}
	if err := s.violations.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
