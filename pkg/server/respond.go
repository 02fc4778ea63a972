package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/nodeflow/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo carries the error code and a human-readable message.
type ErrorInfo struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := err.Error()
	if code != errors.ErrCodeInternal {
		msg = errors.UserMessage(err)
		if cause := unwrapCause(err); cause != "" {
			msg += ": " + cause
		}
	}
	writeJSON(w, httpStatus(code), ErrorResponse{Error: ErrorInfo{Code: code, Message: msg}})
}

func unwrapCause(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return errors.UserMessage(e.Cause)
	}
	return ""
}

func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeUnknownNodeType,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeCycleDetected, errors.ErrCodeNodeFailed:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
