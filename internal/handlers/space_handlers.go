package handlers

import (
	"net/http"

	"measurebook/internal/common"
	"measurebook/internal/models"

	"github.com/labstack/echo/v4"
)

func spacePath(c echo.Context) (projectID, spaceID int64, err error) {
	if projectID, err = pathID(c, "projectId", "project id"); err != nil {
		return 0, 0, err
	}
	if spaceID, err = pathID(c, "spaceId", "space id"); err != nil {
		return 0, 0, err
	}
	return projectID, spaceID, nil
}

// CreateSpace handles POST /projects/:projectId/spaces
//
//	@Summary	Add a space to a project
//	@Tags		spaces
//	@Accept		json
//	@Produce	json
//	@Param		projectId	path		int					true	"Project ID"
//	@Param		space		body		models.SpaceInput	true	"Space"
//	@Success	200			{object}	spaceResponse
//	@Failure	404			{object}	common.ErrorResponse
//	@Router		/projects/{projectId}/spaces [post]
func (h *ProjectHandlers) CreateSpace(c echo.Context) error {
	projectID, err := pathID(c, "projectId", "project id")
	if err != nil {
		return err
	}
	var input models.SpaceInput
	if err := decodeBody(c, &input); err != nil {
		return err
	}
	space, err := h.projectService.AddSpace(c.Request().Context(), projectID, input)
	if err != nil {
		return serviceError(err, "Failed to add space")
	}
	return c.JSON(http.StatusOK, spaceResponse{Status: "ok", Space: space})
}

// UpdateSpace handles PATCH /projects/:projectId/spaces/:spaceId
func (h *ProjectHandlers) UpdateSpace(c echo.Context) error {
	projectID, spaceID, err := spacePath(c)
	if err != nil {
		return err
	}
	body, err := readBody(c)
	if err != nil {
		return err
	}
	patch, err := models.ParseSpacePatch(body)
	if err != nil {
		return serviceError(err, "Failed to update space")
	}
	space, err := h.projectService.UpdateSpace(c.Request().Context(), projectID, spaceID, patch)
	if err != nil {
		return serviceError(err, "Failed to update space")
	}
	return c.JSON(http.StatusOK, spaceResponse{Status: "ok", Space: space})
}

// DeleteSpace handles DELETE /projects/:projectId/spaces/:spaceId
func (h *ProjectHandlers) DeleteSpace(c echo.Context) error {
	projectID, spaceID, err := spacePath(c)
	if err != nil {
		return err
	}
	if err := h.projectService.DeleteSpace(c.Request().Context(), projectID, spaceID); err != nil {
		return serviceError(err, "Failed to delete space")
	}
	return c.JSON(http.StatusOK, common.OK())
}

// GetUploadURL handles GET /projects/:projectId/spaces/:spaceId/upload-url
//
//	@Summary	Presign an image upload for a space
//	@Tags		spaces
//	@Produce	json
//	@Param		projectId	path		int		true	"Project ID"
//	@Param		spaceId		path		int		true	"Space ID"
//	@Param		filename	query		string	true	"File name"
//	@Param		contentType	query		string	false	"Content type"
//	@Success	200			{object}	models.UploadURL
//	@Failure	400			{object}	common.ErrorResponse
//	@Router		/projects/{projectId}/spaces/{spaceId}/upload-url [get]
func (h *ProjectHandlers) GetUploadURL(c echo.Context) error {
	projectID, spaceID, err := spacePath(c)
	if err != nil {
		return err
	}
	out, err := h.projectService.IssueSpaceUploadURL(
		c.Request().Context(), projectID, spaceID,
		c.QueryParam("filename"), c.QueryParam("contentType"),
	)
	if err != nil {
		return serviceError(err, "Failed to generate upload URL")
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteSpaceImage handles DELETE /projects/:projectId/spaces/:spaceId/images
func (h *ProjectHandlers) DeleteSpaceImage(c echo.Context) error {
	projectID, spaceID, err := spacePath(c)
	if err != nil {
		return err
	}
	var req deleteImageRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if err := h.projectService.DeleteSpaceImage(c.Request().Context(), projectID, spaceID, req.URL); err != nil {
		return serviceError(err, "Failed to delete image")
	}
	return c.JSON(http.StatusOK, common.OK())
}
