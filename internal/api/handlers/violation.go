package handlers

import (
	"net/http"
	"strconv"

	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/utils"
	"github.com/tagsentry/tagsentry/internal/services"
)

// ViolationHandler handles violation HTTP requests
type ViolationHandler struct {
	violations *services.ViolationService
	logger     *logger.Logger
}

// NewViolationHandler creates a new violation handler
func NewViolationHandler(violations *services.ViolationService, log *logger.Logger) *ViolationHandler {
	return &ViolationHandler{violations: violations, logger: log}
}

// List handles GET /api/violations
func (h *ViolationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter := violation.Filter{
		Status:   r.URL.Query().Get("status"),
		Severity: r.URL.Query().Get("severity"),
	}
	filter.AccountID, _ = strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	filter.ResourceID, _ = strconv.ParseInt(r.URL.Query().Get("resource_id"), 10, 64)
	filter.PolicyID, _ = strconv.ParseInt(r.URL.Query().Get("policy_id"), 10, 64)

	page := utils.ParsePaginationParams(r)
	violations, total, err := h.violations.List(r.Context(), userID, filter, page.PageSize, page.Offset)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK,
		utils.NewPaginatedResponse(violations, page.Page, page.PageSize, total))
}

// Get handles GET /api/violations/{id}
func (h *ViolationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	v, err := h.violations.Get(r.Context(), userID, id)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, v)
}

// Ignore handles POST /api/violations/{id}/ignore
func (h *ViolationHandler) Ignore(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.violations.Ignore(r.Context(), userID, id); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Violation ignored", nil)
}

// Reopen handles POST /api/violations/{id}/reopen
func (h *ViolationHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.violations.Reopen(r.Context(), userID, id); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Violation reopened", nil)
}

// Summary handles GET /api/accounts/{id}/violations/summary
func (h *ViolationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	accountID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	counts, err := h.violations.CountByStatus(r.Context(), userID, accountID)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, counts)
}
