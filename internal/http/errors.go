package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// apiError is the client-facing form of an error.
type apiError struct {
	status  int
	message string
	code    string
}

// classifyError maps domain errors onto HTTP responses. Anything unknown is
// a 500 with a generic message.
func classifyError(err error) apiError {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return apiError{http.StatusBadRequest, "Invalid amount", "invalid_amount"}
	case errors.Is(err, core.ErrMissingDescription):
		return apiError{http.StatusBadRequest, "Description is required", "missing_description"}
	case errors.Is(err, core.ErrNotFound):
		return apiError{http.StatusNotFound, "Transaction not found", "not_found"}
	case errors.Is(err, core.ErrMalformedRequest):
		return apiError{http.StatusBadRequest, "Invalid budgets data", "malformed_request"}
	case errors.Is(err, core.ErrBudgetsDisabled):
		return apiError{http.StatusNotFound, "Budgets are disabled", "budgets_disabled"}
	case errors.Is(err, errInvalidBody):
		return apiError{http.StatusBadRequest, "Invalid request body", "malformed_request"}
	case errors.Is(err, errInvalidLimit):
		return apiError{http.StatusBadRequest, "Invalid limit", "invalid_limit"}
	}
	return apiError{http.StatusInternalServerError, "Internal server error", "internal_error"}
}

// writeError logs err and writes its JSON form. Client errors log at debug.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	e := classifyError(err)
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if e.status >= http.StatusInternalServerError {
		applog.NewStructuredLogger(logger).LogError(ctx, "Request failed", err, op, nil)
	} else {
		logger.DebugContext(ctx, "Request rejected",
			applog.FieldOperation, op,
			applog.FieldStatusCode, e.status,
			applog.FieldError, err)
	}

	ErrorResponse(e.status, e.message, e.code).Write(w)
}
