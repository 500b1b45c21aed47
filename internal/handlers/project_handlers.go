package handlers

import (
	"net/http"

	"measurebook/internal/common"
	"measurebook/internal/models"
	"measurebook/internal/services"

	"github.com/labstack/echo/v4"
)

// ProjectHandlers serves project, space, measurement and embedded product
// routes. All of them go through ProjectService.
type ProjectHandlers struct {
	projectService services.ProjectService
}

func NewProjectHandlers(projectService services.ProjectService) *ProjectHandlers {
	return &ProjectHandlers{projectService: projectService}
}

// ListProjects handles GET /projects
//
//	@Summary	List projects
//	@Tags		projects
//	@Produce	json
//	@Success	200	{array}	models.Project
//	@Router		/projects [get]
func (h *ProjectHandlers) ListProjects(c echo.Context) error {
	projects, err := h.projectService.List(c.Request().Context())
	if err != nil {
		return serviceError(err, "Failed to fetch projects")
	}
	return c.JSON(http.StatusOK, projects)
}

// GetProject handles GET /projects/:projectId
//
//	@Summary	Get a project document
//	@Tags		projects
//	@Produce	json
//	@Param		projectId	path		int	true	"Project ID"
//	@Success	200			{object}	models.Project
//	@Failure	404			{object}	common.ErrorResponse
//	@Router		/projects/{projectId} [get]
func (h *ProjectHandlers) GetProject(c echo.Context) error {
	id, err := pathID(c, "projectId", "project id")
	if err != nil {
		return err
	}
	project, err := h.projectService.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(err, "Failed to fetch project")
	}
	return c.JSON(http.StatusOK, project)
}

// CreateProject handles POST /projects
//
//	@Summary	Create a project
//	@Tags		projects
//	@Accept		json
//	@Produce	json
//	@Param		project	body		models.ProjectInput	true	"Project"
//	@Success	200		{object}	projectResponse
//	@Failure	400		{object}	common.ErrorResponse
//	@Router		/projects [post]
func (h *ProjectHandlers) CreateProject(c echo.Context) error {
	var input models.ProjectInput
	if err := decodeBody(c, &input); err != nil {
		return err
	}
	project, err := h.projectService.Create(c.Request().Context(), input)
	if err != nil {
		return serviceError(err, "Failed to create project")
	}
	return c.JSON(http.StatusOK, projectResponse{Status: "ok", Project: project})
}

// UpdateProject handles PATCH /projects/:projectId
func (h *ProjectHandlers) UpdateProject(c echo.Context) error {
	id, err := pathID(c, "projectId", "project id")
	if err != nil {
		return err
	}
	body, err := readBody(c)
	if err != nil {
		return err
	}
	patch, err := models.ParseProjectPatch(body)
	if err != nil {
		return serviceError(err, "Failed to update project")
	}
	project, err := h.projectService.Update(c.Request().Context(), id, patch)
	if err != nil {
		return serviceError(err, "Failed to update project")
	}
	return c.JSON(http.StatusOK, projectResponse{Status: "ok", Project: project})
}

// DeleteProject handles DELETE /projects/:projectId
func (h *ProjectHandlers) DeleteProject(c echo.Context) error {
	id, err := pathID(c, "projectId", "project id")
	if err != nil {
		return err
	}
	if err := h.projectService.Delete(c.Request().Context(), id); err != nil {
		return serviceError(err, "Failed to delete project")
	}
	return c.JSON(http.StatusOK, common.OK())
}
