package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// validationError carries field details through echo's error path.
type validationError struct {
	details []FieldError
}

func (e *validationError) Error() string { return fmt.Sprintf("invalid payload: %v", e.details) }

func (e *validationError) Unwrap() error { return apperr.ErrValidation }

func statusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeRequestNotFound, apperr.CodeDepositNotFound, apperr.CodeCustomerNotFound:
		return http.StatusNotFound
	case apperr.CodeIllegalTransition, apperr.CodeConcurrentModification:
		return http.StatusConflict
	case apperr.CodeValidation, apperr.CodeMinDepositAmount, apperr.CodeInvalidConfirmation, apperr.CodeRefillNotAllowed:
		return http.StatusBadRequest
	case apperr.CodeUpstreamBadRequest, apperr.CodeUpstreamUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ErrorHandler renders every error returned by a handler or middleware as an
// ErrorResponse.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			status int
			body   ErrorBody
			he     *echo.HTTPError
			ve     *validationError
			ae     *apperr.Error
		)
		switch {
		case errors.As(err, &ve):
			status = http.StatusBadRequest
			body = ErrorBody{Code: string(apperr.CodeValidation), Message: apperr.ErrValidation.Message, Details: ve.details}
		case errors.As(err, &ae):
			status = statusOf(ae.Code)
			body = ErrorBody{Code: string(ae.Code), Message: ae.Message}
		case errors.As(err, &he):
			status = he.Code
			body = ErrorBody{Code: http.StatusText(he.Code), Message: fmt.Sprint(he.Message)}
		default:
			status = http.StatusInternalServerError
			body = ErrorBody{Code: string(apperr.CodeInternal), Message: "internal error"}
		}

		fields := []zap.Field{
			zap.String("code", body.Code),
			zap.Int("status", status),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Info("request rejected", fields...)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, ErrorResponse{Error: body})
		}
		if werr != nil {
			log.Warn("write error response", zap.Error(werr))
		}
	}
}
