package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/fieldstone-hq/fieldstone/pkg/composables"
	"github.com/fieldstone-hq/fieldstone/pkg/serrors"
)

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		panic(err)
	}
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code string, message string) {
	writeJSON(w, status, apiError{
		Code:    code,
		Message: message,
		Meta:    map[string]string{"request_id": composables.UseRequestID(r.Context())},
	})
}

func writeValidationError(w http.ResponseWriter, r *http.Request, code string, errs serrors.ValidationErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, apiError{
		Code:    code,
		Message: "validation failed",
		Fields:  errs,
		Meta:    map[string]string{"request_id": composables.UseRequestID(r.Context())},
	})
}

func parsePagination(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
