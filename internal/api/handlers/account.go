package handlers

import (
	"net/http"

	"github.com/tagsentry/tagsentry/internal/api/dto"
	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/utils"
	"github.com/tagsentry/tagsentry/internal/pkg/validator"
	"github.com/tagsentry/tagsentry/internal/services"
)

// AccountHandler handles account HTTP requests
type AccountHandler struct {
	accounts  *services.AccountService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *services.AccountService, v *validator.Validator, log *logger.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, validator: v, logger: log}
}

// Create handles POST /api/accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	acct := &account.Account{
		OwnerID:    userID,
		Name:       req.Name,
		ExternalID: req.ExternalID,
		Credentials: account.Credentials{
			AWSAccessKeyID:     req.AWSAccessKeyID,
			AWSSecretAccessKey: req.AWSSecretAccessKey,
			AWSDefaultRegion:   req.AWSDefaultRegion,
		},
	}
	if _, err := h.accounts.Create(r.Context(), acct); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, acct)
}

// Get handles GET /api/accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	acct, err := h.accounts.Get(r.Context(), userID, id)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, acct)
}

// List handles GET /api/accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter := account.Filter{
		Provider: r.URL.Query().Get("provider"),
		Status:   r.URL.Query().Get("status"),
	}
	accounts, err := h.accounts.List(r.Context(), userID, filter)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, accounts)
}

// UpdateStatus handles PATCH /api/accounts/{id}/status
func (h *AccountHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdateAccountStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.accounts.UpdateStatus(r.Context(), userID, id, req.Status); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Account status updated", nil)
}

// SetRegionScope handles PATCH /api/accounts/{id}/regions
func (h *AccountHandler) SetRegionScope(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.SetRegionScopeRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.accounts.SetRegionEnabled(r.Context(), userID, id, req.Region, req.Enabled); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Region scope updated", nil)
}

// ListRegionScopes handles GET /api/accounts/{id}/regions
func (h *AccountHandler) ListRegionScopes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	scopes, err := h.accounts.ListRegionScopes(r.Context(), userID, id)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, scopes)
}

// Delete handles DELETE /api/accounts/{id}
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.accounts.Delete(r.Context(), userID, id); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Account deleted", nil)
}
