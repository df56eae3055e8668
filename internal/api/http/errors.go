package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"rentaldesk-backend/internal/domain"
	"rentaldesk-backend/internal/logger"
	"rentaldesk-backend/internal/security"
	"rentaldesk-backend/internal/service"
	"rentaldesk-backend/internal/session"
	"rentaldesk-backend/internal/utils"
)

type errorResponse struct {
	Error    string                    `json:"error"`
	Failures []utils.ValidationFailure `json:"failures,omitempty"`
}

// statusFor mirrors the gRPC status mapping for the HTTP routes.
func statusFor(err error) int {
	var verr *utils.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, session.ErrItemIndex),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrInvalidLateFee):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrLateFeeNotAllowed),
		errors.Is(err, service.ErrSubmissionInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrStaffNotFound),
		errors.Is(err, domain.ErrBranchNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, security.ErrWrongTokenType):
		return http.StatusForbidden
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Unhandled error", "path", r.URL.Path, "error", err)
	}
	resp := errorResponse{Error: err.Error()}
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		resp.Failures = verr.Failures
	}
	writeJSON(w, code, resp)
}

func writeErrorMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}
