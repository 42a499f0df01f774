// Package handlers maps the JSON HTTP surface onto the services and the
// database. Error kinds from the layers below are translated to status codes
// here and nowhere else.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"churchops/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logger.Error("unhandled error", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindBadRequest:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindInternal:
		logger.Error("internal error", zap.String("message", appErr.Message))
	}
	respondJSON(w, status, map[string]string{"error": appErr.Message})
}

// decodeJSON parses and validates a request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.BadRequest("Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.BadRequest("Invalid request body: " + err.Error())
	}
	return nil
}

func uintParam(r *http.Request, name string) (uint, error) {
	value, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0, apperr.BadRequest("Invalid " + name)
	}
	return uint(value), nil
}
