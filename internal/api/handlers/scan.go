package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/utils"
	"github.com/tagsentry/tagsentry/internal/services"
)

// ScanHandler handles scan job HTTP requests
type ScanHandler struct {
	scanner *services.ScannerService
	logger  *logger.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scanner *services.ScannerService, log *logger.Logger) *ScanHandler {
	return &ScanHandler{scanner: scanner, logger: log}
}

// Initiate handles POST /api/accounts/{id}/scans. The scan runs in the
// background; the pending job is returned immediately for polling.
func (h *ScanHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	accountID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	job, err := h.scanner.Initiate(r.Context(), accountID, userID)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}

	go func() {
		// The request context dies with the response; the scan must not
		if err := h.scanner.Execute(context.Background(), job.ID); err != nil {
			h.logger.WithFields(map[string]interface{}{
				"job_id":     job.ID,
				"account_id": accountID,
			}).WithError(err).Error("Scan execution failed")
		}
	}()

	utils.WriteSuccess(w, http.StatusAccepted, job)
}

// Get handles GET /api/scans/{id}
func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	jobID := chi.URLParam(r, "id")

	job, err := h.scanner.GetJob(r.Context(), userID, jobID)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, job)
}

// ListByAccount handles GET /api/accounts/{id}/scans
func (h *ScanHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	accountID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	page := utils.ParsePaginationParams(r)
	jobs, total, err := h.scanner.ListJobs(r.Context(), userID, accountID, page.PageSize, page.Offset)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK,
		utils.NewPaginatedResponse(jobs, page.Page, page.PageSize, total))
}
