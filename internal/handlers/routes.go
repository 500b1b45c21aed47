package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Routes groups the handler sets mounted on the server.
type Routes struct {
	Projects *ProjectHandlers
	Catalog  *CatalogHandlers
	Health   *HealthHandlers
	// Gatherer backs GET /metrics. Nil skips the route.
	Gatherer prometheus.Gatherer
	// Swagger mounts /swagger/* when set.
	Swagger bool
}

// Register mounts every API route on e.
func Register(e *echo.Echo, r Routes) {
	if r.Health != nil {
		e.GET("/health", r.Health.HealthCheck)
		e.GET("/health/ready", r.Health.ReadinessCheck)
	}
	if r.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))
	}
	if r.Swagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	if p := r.Projects; p != nil {
		e.GET("/projects", p.ListProjects)
		e.POST("/projects", p.CreateProject)
		e.GET("/projects/:projectId", p.GetProject)
		e.PATCH("/projects/:projectId", p.UpdateProject)
		e.DELETE("/projects/:projectId", p.DeleteProject)

		spaces := e.Group("/projects/:projectId/spaces")
		spaces.POST("", p.CreateSpace)
		spaces.PATCH("/:spaceId", p.UpdateSpace)
		spaces.DELETE("/:spaceId", p.DeleteSpace)
		spaces.GET("/:spaceId/upload-url", p.GetUploadURL)
		spaces.DELETE("/:spaceId/images", p.DeleteSpaceImage)

		measurements := spaces.Group("/:spaceId/measurements")
		measurements.POST("", p.CreateMeasurement)
		measurements.PATCH("/:measurementId", p.UpdateMeasurement)
		measurements.DELETE("/:measurementId", p.DeleteMeasurement)

		products := measurements.Group("/:measurementId/products")
		products.POST("", p.AddProduct)
		products.PATCH("/:sku", p.UpdateProduct)
		products.DELETE("/:sku", p.RemoveProduct)
	}

	if r.Catalog != nil {
		e.GET("/products", r.Catalog.ListProducts)
		e.GET("/products/:id", r.Catalog.GetProduct)
	}

	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	})
}
