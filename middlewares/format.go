package middlewares

import (
	"GoodDental/dentogram"
	"GoodDental/repositories"
	"GoodDental/services"
	"GoodDental/store"
	"GoodDental/utils"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog"
)

// RespondJSON writes a JSON response to the client.
func RespondJSON(c *gin.Context, data interface{}, status int) {
	c.JSON(status, data)
}

// HttpError logs an error and writes an HTTP error response to the client.
func HttpError(c *gin.Context, message string, status int, err error) {
	logger := zerolog.Ctx(c.Request.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Int("status", status).Msg(message)
	c.JSON(status, gin.H{"error": message})
}

// RespondError maps err to a status code. Validation errors are returned
// field by field; server errors hide their message behind fallback.
func RespondError(c *gin.Context, fallback string, err error) {
	var fields validation.Errors
	if errors.As(err, &fields) {
		zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}

	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		HttpError(c, fallback, status, err)
		return
	}
	HttpError(c, err.Error(), status, err)
}

// StatusFor returns the HTTP status that err maps to.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound),
		errors.Is(err, store.ErrNotLoaded),
		errors.Is(err, services.ErrNoSession),
		errors.Is(err, services.ErrUnknownEmployee):
		return http.StatusNotFound

	case errors.Is(err, services.ErrAlreadyClosed),
		errors.Is(err, services.ErrSessionInUse),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInsufficientStock):
		return http.StatusConflict

	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, utils.ErrTokenExpired),
		errors.Is(err, utils.ErrWrongTokenKind):
		return http.StatusUnauthorized

	case errors.Is(err, services.ErrInactiveEmployee):
		return http.StatusForbidden

	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrUnknownProduct),
		errors.Is(err, services.ErrInactiveProduct),
		errors.Is(err, services.ErrInvalidPaymentMethod),
		errors.Is(err, dentogram.ErrUnknownTooth),
		errors.Is(err, dentogram.ErrUnknownSurface),
		errors.Is(err, dentogram.ErrInvalidStatus),
		errors.Is(err, utils.ErrInvalidResetCode),
		errors.Is(err, utils.ErrPasswordTooShort),
		errors.Is(err, utils.ErrPasswordNotComplex):
		return http.StatusBadRequest

	case errors.Is(err, services.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	}

	var single validation.Error
	if errors.As(err, &single) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
