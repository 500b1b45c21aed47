package handlers

import (
	"net/http"
	"net/url"

	"measurebook/internal/services"

	"github.com/labstack/echo/v4"
)

// CatalogHandlers serves the read-only master product list.
type CatalogHandlers struct {
	catalogService services.CatalogService
}

func NewCatalogHandlers(catalogService services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalogService: catalogService}
}

// ListProducts handles GET /products
//
//	@Summary	List the master product catalog
//	@Tags		catalog
//	@Produce	json
//	@Success	200	{array}	object
//	@Router		/products [get]
func (h *CatalogHandlers) ListProducts(c echo.Context) error {
	products, err := h.catalogService.List(c.Request().Context())
	if err != nil {
		return serviceError(err, "Failed to fetch products")
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles GET /products/:id. The id matches a record's id or sku.
//
//	@Summary	Get a catalog product by id or sku
//	@Tags		catalog
//	@Produce	json
//	@Param		id	path		string	true	"Product id or sku"
//	@Success	200	{object}	object
//	@Failure	404	{object}	common.ErrorResponse
//	@Router		/products/{id} [get]
func (h *CatalogHandlers) GetProduct(c echo.Context) error {
	key, err := url.PathUnescape(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product id")
	}
	product, err := h.catalogService.Get(c.Request().Context(), key)
	if err != nil {
		return serviceError(err, "Failed to fetch product")
	}
	return c.JSON(http.StatusOK, product)
}
