package api

import (
	"errors"
	"log/slog"
	"net/http"

	"alcyxob/coachhub/internal/auth"
	"alcyxob/coachhub/internal/domain"
	"alcyxob/coachhub/internal/service"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenRevoked),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrLocalAuthDisabled):
		return http.StatusNotFound
	}

	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindAlreadyExists:
		return http.StatusConflict
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindBackendUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// abortWithServiceError reports err to the client. Kinded errors carry a
// message meant for users; anything else is logged and hidden.
func abortWithServiceError(c *gin.Context, err error) {
	code := statusFor(err)
	switch code {
	case http.StatusInternalServerError:
		slog.Default().Error("unexpected error", "path", c.FullPath(), "error", err)
		abortWithError(c, code, "An unexpected error occurred.")
		return
	case http.StatusServiceUnavailable:
		slog.Default().Error("backend unavailable", "path", c.FullPath(), "error", err)
		abortWithError(c, code, "Service temporarily unavailable, try again.")
		return
	}

	message := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		message = de.Msg
	}
	abortWithError(c, code, message)
}
