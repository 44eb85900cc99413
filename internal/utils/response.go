package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dzgamezone-be/internal/apperr"
	"dzgamezone-be/internal/logger"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, ErrorResponse{Message: message, Error: message})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindInsufficientStock:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError converts err into the JSON error shape. Server-side faults are logged.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	if status >= http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	WriteJSON(w, status, ErrorResponse{
		Message: apperr.MessageOf(err, http.StatusText(status)),
		Error:   err.Error(),
	})
}

var ErrInvalidJSON = apperr.Validation("invalid JSON body")

// DecodeJSON reads a JSON request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrInvalidJSON.Wrap(errors.New("empty body"))
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrInvalidJSON.Wrap(errors.New("empty body"))
		}
		return ErrInvalidJSON.Wrap(err)
	}
	return nil
}
