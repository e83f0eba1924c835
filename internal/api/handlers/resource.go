package handlers

import (
	"net/http"
	"strconv"

	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/utils"
)

// ResourceHandler handles resource inventory HTTP requests. Resources are
// written only by scans, so the handler reads the repository directly.
type ResourceHandler struct {
	resources resource.Repository
	logger    *logger.Logger
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resources resource.Repository, log *logger.Logger) *ResourceHandler {
	return &ResourceHandler{resources: resources, logger: log}
}

// List handles GET /api/resources
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter := resource.Filter{
		Type:   r.URL.Query().Get("type"),
		Region: r.URL.Query().Get("region"),
	}
	filter.AccountID, _ = strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)

	page := utils.ParsePaginationParams(r)
	resources, total, err := h.resources.List(r.Context(), userID, filter, page.PageSize, page.Offset)
	if err != nil {
		utils.WriteServiceError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK,
		utils.NewPaginatedResponse(resources, page.Page, page.PageSize, total))
}
