package handlers

import (
	"net/http"

	"github.com/tagsentry/tagsentry/internal/api/dto"
	"github.com/tagsentry/tagsentry/internal/domain/scope"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/utils"
	"github.com/tagsentry/tagsentry/internal/pkg/validator"
)

// ScopeHandler handles resource type scope HTTP requests. Type scopes are
// process-wide, so there is no ownership dimension.
type ScopeHandler struct {
	scopes    scope.Repository
	validator *validator.Validator
	logger    *logger.Logger
}

// NewScopeHandler creates a new scope handler
func NewScopeHandler(scopes scope.Repository, v *validator.Validator, log *logger.Logger) *ScopeHandler {
	return &ScopeHandler{scopes: scopes, validator: v, logger: log}
}

// ListResourceTypes handles GET /api/scopes/resource-types
func (h *ScopeHandler) ListResourceTypes(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	scopes, err := h.scopes.ListResourceTypeScopes(r.Context())
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, scopes)
}

// SetResourceType handles PATCH /api/scopes/resource-types
func (h *ScopeHandler) SetResourceType(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	var req dto.SetResourceTypeScopeRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.scopes.SetResourceTypeEnabled(r.Context(), req.ResourceType, req.Enabled); err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	h.logger.WithFields(map[string]interface{}{
		"resource_type": req.ResourceType,
		"enabled":       req.Enabled,
	}).Info("Resource type scope updated")
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Resource type scope updated", nil)
}
