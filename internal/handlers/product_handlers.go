package handlers

import (
	"net/http"
	"net/url"

	"measurebook/internal/common"
	"measurebook/internal/models"

	"github.com/labstack/echo/v4"
)

func skuParam(c echo.Context) (models.SKU, error) {
	raw, err := url.PathUnescape(c.Param("sku"))
	if err != nil {
		return models.SKU{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid sku")
	}
	sku := models.NewSKU(raw)
	if sku.IsZero() {
		return models.SKU{}, echo.NewHTTPError(http.StatusBadRequest, "sku is required")
	}
	return sku, nil
}

// AddProduct handles POST .../measurements/:measurementId/products
//
//	@Summary	Attach a catalog product to a measurement
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		product	body		models.Product	true	"Product, keyed by sku"
//	@Success	200		{object}	productResponse
//	@Failure	400		{object}	common.ErrorResponse
//	@Router		/projects/{projectId}/spaces/{spaceId}/measurements/{measurementId}/products [post]
func (h *ProjectHandlers) AddProduct(c echo.Context) error {
	projectID, spaceID, measurementID, err := measurementPath(c)
	if err != nil {
		return err
	}
	var product models.Product
	if err := decodeBody(c, &product); err != nil {
		return err
	}
	added, err := h.projectService.AddProduct(c.Request().Context(), projectID, spaceID, measurementID, product)
	if err != nil {
		return serviceError(err, "Failed to add product")
	}
	return c.JSON(http.StatusOK, productResponse{Status: "ok", Product: added})
}

// UpdateProduct handles PATCH .../products/:sku
func (h *ProjectHandlers) UpdateProduct(c echo.Context) error {
	projectID, spaceID, measurementID, err := measurementPath(c)
	if err != nil {
		return err
	}
	sku, err := skuParam(c)
	if err != nil {
		return err
	}
	body, err := readBody(c)
	if err != nil {
		return err
	}
	patch, err := models.ParseProductPatch(body)
	if err != nil {
		return serviceError(err, "Failed to update product")
	}
	updated, err := h.projectService.UpdateProduct(c.Request().Context(), projectID, spaceID, measurementID, sku, patch)
	if err != nil {
		return serviceError(err, "Failed to update product")
	}
	return c.JSON(http.StatusOK, productResponse{Status: "ok", Product: updated})
}

// RemoveProduct handles DELETE .../products/:sku
func (h *ProjectHandlers) RemoveProduct(c echo.Context) error {
	projectID, spaceID, measurementID, err := measurementPath(c)
	if err != nil {
		return err
	}
	sku, err := skuParam(c)
	if err != nil {
		return err
	}
	if err := h.projectService.RemoveProduct(c.Request().Context(), projectID, spaceID, measurementID, sku); err != nil {
		return serviceError(err, "Failed to remove product")
	}
	return c.JSON(http.StatusOK, common.OK())
}
