package httputil

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bissquit/incidentlog/internal/pkg/ctxlog"
)

// InternalErrorMessage is returned for errors without a mapping.
const InternalErrorMessage = "Internal server error."

// ErrorMapping ties a sentinel error to a status and public message.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

// ErrorMapper renders errors as {"error": message} responses. The first
// mapping matched with errors.Is wins; internal error text is never exposed.
type ErrorMapper []ErrorMapping

// Resolve returns the status and public message for err. Unmapped errors
// resolve to 500 with InternalErrorMessage and mapped=false.
func (m ErrorMapper) Resolve(err error) (status int, message string, mapped bool) {
	for _, mapping := range m {
		if !errors.Is(err, mapping.Error) {
			continue
		}
		message = mapping.Message
		if message == "" {
			message = http.StatusText(mapping.Status)
		}
		return mapping.Status, message, true
	}
	return http.StatusInternalServerError, InternalErrorMessage, false
}

// Write resolves err and writes the response. Client errors are logged at
// debug level, everything else at error level with the cause.
func (m ErrorMapper) Write(ctx context.Context, w http.ResponseWriter, err error) {
	status, message, mapped := m.Resolve(err)

	level := slog.LevelError
	if mapped && status < http.StatusInternalServerError {
		level = slog.LevelDebug
	}
	ctxlog.FromContext(ctx).Log(ctx, level, "request failed",
		"status", status,
		"error", err,
	)

	Error(w, status, message)
}
