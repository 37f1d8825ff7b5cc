package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

type successEnvelope struct {
	Data any `json:"data"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeSuccessStatus(w, http.StatusOK, data)
}

func writeSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, successEnvelope{Data: data})
}

// writeError maps a typed failure to its HTTP status. Untyped errors are internal.
func writeError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.CodeInternal, err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case apperr.CodeInternal:
	case apperr.CodeRemoteStore:
		// The store's own message is surfaced so the user can see what failed
		msg = typed.Error()
	default:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("error_code", string(typed.Code())),
		zap.Error(err),
	}
	if meta.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("Request failed", fields...)
	} else {
		logger.Info("Request rejected", fields...)
	}

	writeJSON(w, meta.HTTPStatus, errorEnvelope{Error: apiError{
		Code:    string(typed.Code()),
		Message: msg,
		Details: typed.Details(),
	}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
