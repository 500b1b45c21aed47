package handlers

import (
	"net/http"

	"measurebook/internal/common"
	"measurebook/internal/models"

	"github.com/labstack/echo/v4"
)

func measurementPath(c echo.Context) (projectID, spaceID, measurementID int64, err error) {
	if projectID, spaceID, err = spacePath(c); err != nil {
		return 0, 0, 0, err
	}
	if measurementID, err = pathID(c, "measurementId", "measurement id"); err != nil {
		return 0, 0, 0, err
	}
	return projectID, spaceID, measurementID, nil
}

// CreateMeasurement handles POST .../spaces/:spaceId/measurements
func (h *ProjectHandlers) CreateMeasurement(c echo.Context) error {
	projectID, spaceID, err := spacePath(c)
	if err != nil {
		return err
	}
	var input models.MeasurementInput
	if err := decodeBody(c, &input); err != nil {
		return err
	}
	m, err := h.projectService.AddMeasurement(c.Request().Context(), projectID, spaceID, input)
	if err != nil {
		return serviceError(err, "Failed to add measurement")
	}
	return c.JSON(http.StatusOK, measurementResponse{Status: "ok", Measurement: m})
}

// UpdateMeasurement handles PATCH .../measurements/:measurementId
func (h *ProjectHandlers) UpdateMeasurement(c echo.Context) error {
	projectID, spaceID, measurementID, err := measurementPath(c)
	if err != nil {
		return err
	}
	body, err := readBody(c)
	if err != nil {
		return err
	}
	patch, err := models.ParseMeasurementPatch(body)
	if err != nil {
		return serviceError(err, "Failed to update measurement")
	}
	m, err := h.projectService.UpdateMeasurement(c.Request().Context(), projectID, spaceID, measurementID, patch)
	if err != nil {
		return serviceError(err, "Failed to update measurement")
	}
	return c.JSON(http.StatusOK, measurementResponse{Status: "ok", Measurement: m})
}

// DeleteMeasurement handles DELETE .../measurements/:measurementId
func (h *ProjectHandlers) DeleteMeasurement(c echo.Context) error {
	projectID, spaceID, measurementID, err := measurementPath(c)
	if err != nil {
		return err
	}
	if err := h.projectService.DeleteMeasurement(c.Request().Context(), projectID, spaceID, measurementID); err != nil {
		return serviceError(err, "Failed to delete measurement")
	}
	return c.JSON(http.StatusOK, common.OK())
}
