package handlers

import (
	"net/http"

	"github.com/tagsentry/tagsentry/internal/api/dto"
	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/utils"
	"github.com/tagsentry/tagsentry/internal/pkg/validator"
	"github.com/tagsentry/tagsentry/internal/services"
)

// PolicyHandler handles policy HTTP requests
type PolicyHandler struct {
	policies  *services.PolicyService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(policies *services.PolicyService, v *validator.Validator, log *logger.Logger) *PolicyHandler {
	return &PolicyHandler{policies: policies, validator: v, logger: log}
}

// Create handles POST /api/policies
func (h *PolicyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req dto.CreatePolicyRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	p := &policy.Policy{
		OwnerID:       userID,
		Name:          req.Name,
		Description:   req.Description,
		RequiredTags:  req.RequiredTags,
		ResourceTypes: req.ResourceTypes,
		Severity:      req.Severity,
		Enabled:       true,
	}
	if req.Enabled != nil {
		p.Enabled = *req.Enabled
	}

	if _, err := h.policies.Create(r.Context(), p); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, p)
}

// Get handles GET /api/policies/{id}
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	p, err := h.policies.Get(r.Context(), userID, id)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, p)
}

// List handles GET /api/policies
func (h *PolicyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	policies, err := h.policies.List(r.Context(), userID)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, policies)
}

// Update handles PUT /api/policies/{id}
func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.UpdatePolicyRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	p := &policy.Policy{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		RequiredTags:  req.RequiredTags,
		ResourceTypes: req.ResourceTypes,
		Severity:      req.Severity,
		Enabled:       req.Enabled,
	}
	if err := h.policies.Update(r.Context(), userID, p); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, p)
}

// SetEnabled handles PATCH /api/policies/{id}/enabled
func (h *PolicyHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req dto.SetPolicyEnabledRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.policies.SetEnabled(r.Context(), userID, id, req.Enabled); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Policy updated", nil)
}

// Delete handles DELETE /api/policies/{id}
func (h *PolicyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.policies.Delete(r.Context(), userID, id); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Policy deleted", nil)
}
