package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/visa-planner/internal/domain"
	"github.com/pkordes/visa-planner/internal/visa"
)

// ErrorDetail is the machine code plus human message of a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail as {"error":{...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the message because the handler knows what was being
// looked up.
func notFoundBody(message string) ErrorResponse {
	return errorBody("not_found", message)
}

// validationBody returns an ErrorResponse for a domain validation failure.
func validationBody(err error) ErrorResponse {
	return errorBody("validation_error", unwrapMessage(err))
}

// requestBody returns an ErrorResponse for a request rejected before it
// reached the service, such as a malformed body or path parameter.
func requestBody(message string) ErrorResponse {
	return errorBody("validation_error", message)
}

// unwrapMessage extracts the human-readable part of a wrapped error.
// A visa.ServiceError speaks for itself; otherwise everything up to the
// validation sentinel is operation context and is dropped:
// "service.PlannerService.Update: validation error: index 7 out of range" → "index 7 out of range".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *visa.ServiceError
	if errors.As(err, &se) {
		if se.Details != "" {
			return se.Message + ": " + se.Details
		}
		return se.Message
	}
	msg := err.Error()
	const marker = "validation error: "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// writeServiceError maps a session error onto status and body. Unknown
// errors are logged and hidden behind a 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, notFoundBody(domain.ErrNotFound.Error()))
	case errors.Is(err, domain.ErrRouteLocked):
		writeJSON(w, http.StatusConflict, errorBody("route_locked", "the route is planned; cancel planning to edit it"))
	case errors.Is(err, domain.ErrNoNationality):
		writeJSON(w, http.StatusConflict, errorBody("no_nationality", "select a nationality first"))
	default:
		s.log.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // the status line is already sent
	json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
// It writes the error response itself and reports whether decoding
// succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("body_too_large", "request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, requestBody("malformed JSON body: "+err.Error()))
		return false
	}
	return true
}
