package handlers

import (
	"errors"
	"net/http"

	"measurebook/internal/common"
	"measurebook/internal/models"
	"measurebook/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// serviceError maps a service error onto an HTTP error. Infrastructure
// failures keep the cause as the internal error and show only fallback.
func serviceError(err error, fallback string) error {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Message)
	case services.IsNotFound(err):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrObjectStoreDisabled):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
	}
}

// ErrorHandler renders every error as {"error": "<message>"} and logs
// server-side failures with their cause.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				message = m
			case error:
				message = m.Error()
			default:
				message = http.StatusText(code)
			}
			if he.Internal != nil {
				err = he.Internal
			}
		}

		if code >= http.StatusInternalServerError {
			event := logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", code)
			if id, ok := common.RequestIDFromContext(c.Request().Context()); ok {
				event = event.Str("request_id", id)
			}
			event.Msg(message)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, common.ErrorResponse{Error: message})
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}

func pathID(c echo.Context, param, fieldName string) (int64, error) {
	id, err := common.ParseID(c.Param(param), fieldName)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return id, nil
}
