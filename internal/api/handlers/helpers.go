package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tagsentry/tagsentry/internal/api/middleware"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
	"github.com/tagsentry/tagsentry/internal/pkg/utils"
	"github.com/tagsentry/tagsentry/internal/pkg/validator"
)

// requireUserID extracts the authenticated user ID or writes a 401
func requireUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == 0 {
		utils.WriteError(w, errors.Unauthorized("Authentication required"))
		return 0, false
	}
	return userID, true
}

// parseIDParam parses a numeric {id}-style URL parameter or writes a 400
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteError(w, errors.BadRequest("Invalid "+name+" parameter"))
		return 0, false
	}
	return id, true
}

// decodeAndValidate decodes a JSON body into dst and validates it,
// writing the error response itself on failure
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.Validator, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, errors.BadRequest("Invalid request body"))
		return false
	}
	if verrs := v.Validate(dst); len(verrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Request validation failed", verrs))
		return false
	}
	return true
}
