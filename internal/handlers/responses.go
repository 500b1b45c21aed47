package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"measurebook/internal/models"

	"github.com/labstack/echo/v4"
)

const maxBodyBytes = 1 << 20

type projectResponse struct {
	Status  string          `json:"status"`
	Project *models.Project `json:"project"`
}

type spaceResponse struct {
	Status string        `json:"status"`
	Space  *models.Space `json:"space"`
}

type measurementResponse struct {
	Status      string              `json:"status"`
	Measurement *models.Measurement `json:"measurement"`
}

type productResponse struct {
	Status  string          `json:"status"`
	Product *models.Product `json:"product"`
}

type deleteImageRequest struct {
	URL string `json:"url"`
}

// readBody reads the whole request body. Bodies over maxBodyBytes are
// refused with 413 rather than cut short.
func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return nil, httpErr
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(body) > maxBodyBytes {
		return nil, echo.ErrStatusRequestEntityTooLarge
	}
	return body, nil
}

// decodeBody reads a create body. Unknown fields are ignored and an empty
// body leaves v at its zero value.
func decodeBody(c echo.Context, v any) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	return nil
}
