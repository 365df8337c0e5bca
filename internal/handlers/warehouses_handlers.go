package handlers

import (
	"net/http"
	"strings"

	"batstats/internal/common"
	"batstats/internal/models"
	"batstats/internal/store"

	"github.com/labstack/echo/v4"
)

// WarehouseForm is the warehouse create/update form
type WarehouseForm struct {
	ID          string `form:"id"`
	Name        string `form:"name"`
	Location    string `form:"location"`
	MaxCapacity string `form:"maxCapacity"`
	Status      string `form:"status"`
}

func (h *DashboardHandlers) ListWarehouses(c echo.Context) error {
	return h.showSection(c, store.SectionWarehouses)
}

// FilterWarehouseStatus narrows the warehouses page to one status; an empty
// status lists every warehouse.
func (h *DashboardHandlers) FilterWarehouseStatus(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	status := models.WarehouseStatus(strings.ToUpper(strings.TrimSpace(c.FormValue("status"))))
	logAction("filter warehouses by status", h.service.SetWarehouseStatus(c.Request().Context(), sid, status))
	return seeOther(c, "/warehouses")
}

func (h *DashboardHandlers) EditWarehouse(c echo.Context) error {
	return h.beginEdit(c, store.SectionWarehouses, store.EditWarehouse)
}

// SaveWarehouse creates a warehouse, or updates it when the form carries an id
func (h *DashboardHandlers) SaveWarehouse(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var form WarehouseForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	id, err := common.ParseOptionalID(form.ID, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	maxCapacity, err := common.ParseQuantity(form.MaxCapacity, "maxCapacity")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req := models.WarehouseRequest{
		Name:        form.Name,
		Location:    strings.TrimSpace(form.Location),
		MaxCapacity: maxCapacity,
		Status:      models.WarehouseStatus(strings.ToUpper(strings.TrimSpace(form.Status))),
	}
	logAction("save warehouse", h.service.SaveWarehouse(c.Request().Context(), sid, id, req))
	return seeOther(c, "/warehouses")
}

func (h *DashboardHandlers) DeleteWarehouse(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	confirmed := common.ParseBool(c.FormValue("confirmed"))
	logAction("delete warehouse", h.service.DeleteWarehouse(c.Request().Context(), sid, id, confirmed))
	return seeOther(c, "/warehouses")
}
