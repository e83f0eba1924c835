package worker

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/services"
)

// ScanScheduler triggers periodic scans for every active account
type ScanScheduler struct {
	scanner  *services.ScannerService
	accounts account.Repository
	schedule string
	cron     *cron.Cron
	logger   *logger.Logger
}

// NewScanScheduler creates a new scan scheduler
func NewScanScheduler(
	scanner *services.ScannerService,
	accounts account.Repository,
	schedule string,
	log *logger.Logger,
) *ScanScheduler {
	return &ScanScheduler{
		scanner:  scanner,
		accounts: accounts,
		schedule: schedule,
		cron:     cron.New(),
		logger:   log,
	}
}

// Start registers the cron entry and begins scheduling
func (s *ScanScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.scanActiveAccounts(ctx)
	})
	if err != nil {
		return errors.Internal("Invalid scan schedule", err)
	}

	s.cron.Start()
	s.logger.WithFields(map[string]interface{}{
		"schedule": s.schedule,
	}).Info("Scan scheduler started")
	return nil
}

// Stop stops scheduling and waits for a running cycle to finish
func (s *ScanScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scan scheduler stopped")
}

// scanActiveAccounts initiates and executes a scan for every active
// account. Accounts with a scan already in flight are skipped.
func (s *ScanScheduler) scanActiveAccounts(ctx context.Context) {
	accounts, err := s.accounts.ListByStatus(ctx, account.StatusActive)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to list active accounts for scheduled scan")
		return
	}

	s.logger.WithFields(map[string]interface{}{
		"accounts": len(accounts),
	}).Info("Starting scheduled scan cycle")

	for _, acct := range accounts {
		job, err := s.scanner.Initiate(ctx, acct.ID, acct.OwnerID)
		if err != nil {
			if appErr, ok := err.(*errors.AppError); ok && appErr.Code == errors.ErrCodeScanRunning {
				s.logger.WithFields(map[string]interface{}{
					"account_id": acct.ID,
				}).Debug("Scan already in flight, skipping account")
				continue
			}
			s.logger.WithFields(map[string]interface{}{
				"account_id": acct.ID,
			}).ErrorWithErr(err, "Failed to initiate scheduled scan")
			continue
		}

		if err := s.scanner.Execute(ctx, job.ID); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"account_id": acct.ID,
				"job_id":     job.ID,
			}).ErrorWithErr(err, "Scheduled scan failed")
		}
	}

	s.logger.Info("Completed scheduled scan cycle")
}
