package services

import (
	"context"

	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/domain/scope"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/metrics"
)

// ReconcilerService removes stored resources that fell outside the current
// scope settings. It only ever deletes: scope changes and discovery handle
// creation. Safe to run repeatedly; a second run with unchanged settings
// deletes nothing.
type ReconcilerService struct {
	accounts  account.Repository
	resources resource.Repository
	scopes    scope.Repository
	logger    *logger.Logger
}

// NewReconcilerService creates a new reconciler
func NewReconcilerService(
	accounts account.Repository,
	resources resource.Repository,
	scopes scope.Repository,
	log *logger.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		accounts:  accounts,
		resources: resources,
		scopes:    scopes,
		logger:    log,
	}
}

// Reconcile deletes the account's out-of-scope resources. A resource is out
// of scope when its type is disabled, when it is regional and its region is
// disabled, or when it is global and the account has no enabled region left.
// Deleting a resource cascades to its violations.
func (s *ReconcilerService) Reconcile(ctx context.Context, acct *account.Account) error {
	enabledTypes, err := s.scopes.EnabledResourceTypes(ctx)
	if err != nil {
		return err
	}
	enabledRegions, err := s.accounts.EnabledRegions(ctx, acct.ID)
	if err != nil {
		return err
	}

	typeSet := toSet(enabledTypes)
	regionSet := toSet(enabledRegions)

	resources, err := s.resources.ListByAccount(ctx, acct.ID)
	if err != nil {
		return err
	}

	deleted := 0
	for _, res := range resources {
		if !s.outOfScope(res, typeSet, regionSet) {
			continue
		}
		if err := s.resources.DeleteCascade(ctx, res.ID); err != nil {
			return err
		}
		deleted++
		s.logger.WithFields(map[string]interface{}{
			"account_id": acct.ID,
			"arn":        res.ARN,
			"type":       res.Type,
			"region":     res.Region,
		}).Info("Resource removed from inventory")
	}

	if deleted > 0 {
		metrics.RecordReconciledResources(deleted)
	}
	return nil
}

func (s *ReconcilerService) outOfScope(res *resource.Resource, enabledTypes, enabledRegions map[string]bool) bool {
	if !enabledTypes[res.Type] {
		return true
	}
	if resource.IsGlobalType(res.Type) {
		// A global resource with zero enabled regions has no region context
		// left to justify scanning it
		return len(enabledRegions) == 0
	}
	return !enabledRegions[res.Region]
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
