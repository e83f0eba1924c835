package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tagsentry/tagsentry/internal/discovery"
	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/domain/scan"
	"github.com/tagsentry/tagsentry/internal/domain/scope"
	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/metrics"
)

// ScannerService drives full account scans: discovery, resource upserts,
// per-resource evaluation and job bookkeeping
type ScannerService struct {
	accounts   account.Repository
	policies   policy.Repository
	resources  resource.Repository
	jobs       scan.Repository
	scopes     scope.Repository
	registry   *discovery.Registry
	evaluator  *EvaluatorService
	reconciler *ReconcilerService
	authz      *Authorizer
	logger     *logger.Logger

	// mu guards accountLocks; each account gets one mutex held across the
	// single-flight check and job creation so two concurrent initiations
	// cannot both pass the guard
	mu           sync.Mutex
	accountLocks map[int64]*sync.Mutex
}

// NewScannerService creates a new scanner service
func NewScannerService(
	accounts account.Repository,
	policies policy.Repository,
	resources resource.Repository,
	jobs scan.Repository,
	scopes scope.Repository,
	registry *discovery.Registry,
	evaluator *EvaluatorService,
	reconciler *ReconcilerService,
	authz *Authorizer,
	log *logger.Logger,
) *ScannerService {
	return &ScannerService{
		accounts:     accounts,
		policies:     policies,
		resources:    resources,
		jobs:         jobs,
		scopes:       scopes,
		registry:     registry,
		evaluator:    evaluator,
		reconciler:   reconciler,
		authz:        authz,
		logger:       log,
		accountLocks: make(map[int64]*sync.Mutex),
	}
}

// Initiate validates the scan request and creates a pending job. The caller
// decides whether to run Execute synchronously or in the background.
func (s *ScannerService) Initiate(ctx context.Context, accountID, requesterID int64) (*scan.Job, error) {
	acct, err := s.authz.RequireAccount(ctx, requesterID, accountID)
	if err != nil {
		return nil, err
	}
	if !acct.IsScannable() {
		return nil, errors.AccountInactive(acct.Status)
	}

	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	if active, err := s.jobs.FindActiveByAccount(ctx, accountID); err == nil && active != nil {
		return nil, errors.ScanAlreadyRunning(accountID)
	} else if err != nil {
		if appErr, ok := err.(*errors.AppError); !ok || appErr.Code != errors.ErrCodeNotFound {
			return nil, err
		}
	}

	job := &scan.Job{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		RequestedBy: requesterID,
		Status:      scan.StatusPending,
		CreatedAt:   time.Now(),
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"job_id":     job.ID,
		"account_id": accountID,
		"user_id":    requesterID,
	}).Info("Scan job created")

	return job, nil
}

// Execute runs a pending scan job to a terminal state. Any failure is
// recorded on the job and also returned to the caller.
func (s *ScannerService) Execute(ctx context.Context, jobID string) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status != scan.StatusPending {
		return errors.Conflict("Scan job is not pending")
	}

	now := time.Now()
	job.Status = scan.StatusRunning
	job.StartedAt = &now
	if err := s.jobs.Update(ctx, job); err != nil {
		return err
	}

	if err := s.run(ctx, job); err != nil {
		s.fail(ctx, job, err)
		return err
	}

	completed := time.Now()
	job.Status = scan.StatusSuccess
	job.CompletedAt = &completed
	if err := s.jobs.Update(ctx, job); err != nil {
		// A job stuck in running would block the single-flight guard forever
		s.fail(ctx, job, err)
		return err
	}

	metrics.RecordScanJob(scan.StatusSuccess, completed.Sub(*job.StartedAt), job.ResourcesScanned)
	s.logger.WithFields(map[string]interface{}{
		"job_id":              job.ID,
		"account_id":          job.AccountID,
		"resources_scanned":   job.ResourcesScanned,
		"violations_found":    job.ViolationsFound,
		"violations_resolved": job.ViolationsResolved,
	}).Info("Scan completed")

	return nil
}

// GetJob retrieves a scan job, enforcing account ownership
func (s *ScannerService) GetJob(ctx context.Context, requesterID int64, jobID string) (*scan.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authz.RequireAccount(ctx, requesterID, job.AccountID); err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs retrieves an account's scan history
func (s *ScannerService) ListJobs(ctx context.Context, requesterID, accountID int64, limit, offset int) ([]*scan.Job, int64, error) {
	if _, err := s.authz.RequireAccount(ctx, requesterID, accountID); err != nil {
		return nil, 0, err
	}
	return s.jobs.ListByAccount(ctx, accountID, limit, offset)
}

func (s *ScannerService) run(ctx context.Context, job *scan.Job) error {
	acct, err := s.accounts.GetByID(ctx, job.AccountID)
	if err != nil {
		return err
	}

	// Drop out-of-scope inventory before discovering fresh state
	if err := s.reconciler.Reconcile(ctx, acct); err != nil {
		return err
	}

	policies, err := s.policies.ListEnabled(ctx, acct.OwnerID)
	if err != nil {
		return err
	}

	enabledTypes, err := s.enabledTypeSet(ctx)
	if err != nil {
		return err
	}
	enabledRegions, err := s.accounts.EnabledRegions(ctx, acct.ID)
	if err != nil {
		return err
	}

	regionSet := make(map[string]bool, len(enabledRegions))
	for _, region := range enabledRegions {
		regionSet[region] = true
	}

	for _, provider := range s.registry.ForTypes(enabledTypes) {
		if len(enabledRegions) == 0 {
			// No region context: nothing is in scope, global types included
			break
		}

		snapshots, err := provider.Discover(ctx, acct, enabledRegions)
		if err != nil {
			return errors.DiscoveryError(provider.Type(), err)
		}

		for _, snap := range snapshots {
			if err := s.processSnapshot(ctx, job, acct, snap, policies, regionSet); err != nil {
				return err
			}
		}
	}

	return s.accounts.UpdateLastScanned(ctx, acct.ID, time.Now())
}

// processSnapshot upserts one discovered resource and evaluates it against
// the policy set, accumulating job counters. Snapshots from a region the
// account has never seen register that region as enabled; snapshots from a
// user-disabled region are dropped.
func (s *ScannerService) processSnapshot(ctx context.Context, job *scan.Job, acct *account.Account, snap discovery.Snapshot, policies []*policy.Policy, enabledRegions map[string]bool) error {
	region := snap.Region
	if resource.IsGlobalType(snap.Type) {
		region = resource.RegionGlobal
	} else if region != "" && !enabledRegions[region] {
		// Region scopes are created by discovery and toggled by users;
		// an existing row means the user disabled the region
		created, err := s.accounts.EnsureRegionScope(ctx, &account.RegionScope{
			AccountID: acct.ID,
			Region:    region,
			Enabled:   true,
			CreatedAt: time.Now(),
		})
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		enabledRegions[region] = true
	}

	res := &resource.Resource{
		AccountID:    acct.ID,
		ARN:          snap.ARN,
		Type:         snap.Type,
		Region:       region,
		Name:         snap.Name,
		Tags:         snap.Tags,
		Metadata:     snap.Metadata,
		DiscoveredAt: time.Now(),
		LastSeenAt:   time.Now(),
	}
	if err := s.resources.Upsert(ctx, res); err != nil {
		return err
	}
	job.ResourcesScanned++

	touched, err := s.evaluator.evaluateResource(ctx, res, policies, job.ID)
	if err != nil {
		return err
	}
	for _, v := range touched {
		switch v.Status {
		case violation.StatusOpen:
			job.ViolationsFound++
		case violation.StatusResolved:
			job.ViolationsResolved++
		}
	}

	return nil
}

// fail records the failure on the job; the original error still propagates
// to the caller
func (s *ScannerService) fail(ctx context.Context, job *scan.Job, cause error) {
	now := time.Now()
	job.Status = scan.StatusFailed
	job.CompletedAt = &now
	job.Error = cause.Error()
	if err := s.jobs.Update(ctx, job); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"job_id": job.ID,
		}).ErrorWithErr(err, "Failed to record scan failure")
	}
	if job.StartedAt != nil {
		metrics.RecordScanJob(scan.StatusFailed, now.Sub(*job.StartedAt), job.ResourcesScanned)
	}
	s.logger.WithFields(map[string]interface{}{
		"job_id":     job.ID,
		"account_id": job.AccountID,
	}).ErrorWithErr(cause, "Scan failed")
}

func (s *ScannerService) enabledTypeSet(ctx context.Context) (map[string]bool, error) {
	types, err := s.scopes.EnabledResourceTypes(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set, nil
}

func (s *ScannerService) accountLock(accountID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.accountLocks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		s.accountLocks[accountID] = lock
	}
	return lock
}
