package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/notehub/internal/common"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

var errRouteNotFound = fmt.Errorf("%w: no such route", common.ErrorNotFound)

// envelope is the success body; "success" is always set.
type envelope map[string]any

type errorResponse struct {
	Success bool     `json:"success"`
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	writeJSON(w, status, body)
}

// classify maps an error to its HTTP status and wire kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, common.ErrorUpstreamStorage):
		return http.StatusBadGateway, "upstream_storage"
	default:
		return http.StatusInternalServerError, "unknown"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, fallback logging.Logger, err error) {
	status, kind := classify(err)
	resp := errorResponse{Kind: kind, Message: err.Error()}

	var verr *common.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	log := logging.FromContext(r.Context(), fallback)
	switch {
	case status >= 500:
		log.Error(r.Context(), "request failed", "kind", kind, "error", err)
		if status == http.StatusInternalServerError {
			resp.Message = "internal error"
		}
	default:
		log.Debug(r.Context(), "request rejected", "kind", kind, "error", err)
	}

	writeJSON(w, status, resp)
}
