package handlers

import (
	"net/http"

	"batstats/internal/middleware"
	"batstats/internal/views"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires every dashboard route. Pages and actions run inside a
// session; assets and the health check do not.
func RegisterRoutes(e *echo.Echo, h *DashboardHandlers, health *HealthHandlers, sessions *middleware.Sessions) {
	e.GET("/health", health.HealthCheck)
	e.StaticFS("/assets", views.Assets())

	g := e.Group("", sessions.Middleware())

	g.GET("/", h.Dashboard)
	g.POST("/edit/cancel", h.CancelEdit)
	g.POST("/banners/:id/dismiss", h.DismissBanner)
	g.GET("/ws", h.Live)

	g.GET("/warehouses", h.ListWarehouses)
	g.POST("/warehouses", h.SaveWarehouse)
	g.POST("/warehouses/status", h.FilterWarehouseStatus)
	g.GET("/warehouses/:id/edit", h.EditWarehouse)
	g.POST("/warehouses/:id/delete", h.DeleteWarehouse)

	g.GET("/inventory", h.ListInventory)
	g.POST("/inventory", h.SaveInventoryItem)
	g.GET("/inventory/search", h.Search)
	g.POST("/inventory/filter", h.ApplyFilter)
	g.POST("/inventory/filter/clear", h.ClearFilter)
	g.POST("/inventory/multi-location", h.SetMultiLocationOnly)
	g.POST("/inventory/transfer", h.TransferInventoryItem)
	g.GET("/inventory/:id/edit", h.EditInventoryItem)
	g.POST("/inventory/:id/delete", h.DeleteInventoryItem)
	g.GET("/inventory/:id/locations", h.OpenLocations)
	g.POST("/inventory/:id/locations", h.AddPlacement)

	g.POST("/locations/close", h.CloseLocations)
	g.POST("/locations/remove", h.RemovePlacement)
	g.POST("/locations/transfer", h.SubmitTransfer)
	g.POST("/locations/transfer/cancel", h.CancelTransfer)
	g.POST("/locations/:locationId/quantity", h.UpdatePlacementQuantity)
	g.POST("/locations/:locationId/transfer", h.BeginTransfer)

	g.GET("/products", h.ListProductTypes)
	g.POST("/products", h.SaveProductType)
	g.POST("/products/category", h.FilterProductCategory)
	g.GET("/products/:id/edit", h.EditProductType)
	g.POST("/products/:id/delete", h.DeleteProductType)

	e.GET("/favicon.ico", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
}
