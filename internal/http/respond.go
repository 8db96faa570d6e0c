package http

import (
	"encoding/json"
	"net/http"

	"github.com/nexstore/storefront/internal/service"
	"github.com/nexstore/storefront/internal/session"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20 // 1MB

type ErrorResponse struct {
	Error    string            `json:"error"`
	Code     string            `json:"code,omitempty"`
	Details  string            `json:"details,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// respondResult writes the session's pending cookies and then res: render
// shapes Data on success, every other outcome becomes an ErrorResponse.
func respondResult[T any](w http.ResponseWriter, sess *session.Context, res service.Result[T], successStatus int, render func(service.Result[T]) any) {
	sess.Apply(w)

	switch res.Outcome {
	case service.OutcomeSuccess:
		respondJSON(w, successStatus, render(res))
	case service.OutcomeRejected:
		respondError(w, http.StatusBadRequest, "rejected", res.Message)
	case service.OutcomeInvalid:
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  res.Message,
			Code:   "invalid",
			Fields: res.FieldErrors,
		})
	case service.OutcomeUnauthorized:
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:    res.Message,
			Code:     "unauthorized",
			Redirect: res.Redirect,
		})
	case service.OutcomeBusy:
		respondError(w, http.StatusConflict, "in_flight", res.Message)
	default:
		respondError(w, http.StatusBadGateway, "upstream_failed", res.Message)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}
