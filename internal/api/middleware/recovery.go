package middleware

import (
	"log/slog"
	"net/http"

	"github.com/syslvlup/syslvlup/internal/api/apierr"
	"github.com/syslvlup/syslvlup/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics are answered with a JSON internal error body.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
