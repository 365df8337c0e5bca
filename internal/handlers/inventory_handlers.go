package handlers

import (
	"errors"
	"net/http"

	"batstats/internal/common"
	"batstats/internal/filter"
	"batstats/internal/models"
	"batstats/internal/store"
	"batstats/internal/views"

	"github.com/labstack/echo/v4"
)

// InventoryItemForm is the item create/update form. Warehouse and quantity
// place a new item on creation.
type InventoryItemForm struct {
	ID            string `form:"id"`
	SerialNumber  string `form:"serialNumber"`
	ProductTypeID string `form:"productTypeId"`
	WarehouseID   string `form:"warehouseId"`
	Quantity      string `form:"quantity"`
}

// FilterForm is the inventory filter bar
type FilterForm struct {
	Term          string `form:"term"`
	WarehouseID   string `form:"warehouseId"`
	ProductTypeID string `form:"productTypeId"`
}

// TransferForm is the item level transfer form
type TransferForm struct {
	ItemID                 string `form:"itemId"`
	SourceWarehouseID      string `form:"sourceWarehouseId"`
	DestinationWarehouseID string `form:"destinationWarehouseId"`
	Quantity               string `form:"quantity"`
}

func (h *DashboardHandlers) ListInventory(c echo.Context) error {
	return h.showSection(c, store.SectionInventory)
}

func (h *DashboardHandlers) EditInventoryItem(c echo.Context) error {
	return h.beginEdit(c, store.SectionInventory, store.EditItem)
}

func (h *DashboardHandlers) SaveInventoryItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var form InventoryItemForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	id, err := common.ParseOptionalID(form.ID, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	productTypeID, err := common.ParseOptionalID(form.ProductTypeID, "productTypeId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	warehouseID, err := common.ParseOptionalID(form.WarehouseID, "warehouseId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	quantity, err := common.ParseQuantity(form.Quantity, "quantity")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req := models.InventoryItemRequest{
		SerialNumber:  form.SerialNumber,
		ProductTypeID: productTypeID,
	}
	if warehouseID != 0 {
		req.WarehouseID = &warehouseID
		req.Quantity = &quantity
	}
	logAction("save inventory item", h.service.SaveInventoryItem(c.Request().Context(), sid, id, req))
	return seeOther(c, "/inventory")
}

func (h *DashboardHandlers) DeleteInventoryItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	confirmed := common.ParseBool(c.FormValue("confirmed"))
	logAction("delete inventory item", h.service.DeleteInventoryItem(c.Request().Context(), sid, id, confirmed))
	return seeOther(c, "/inventory")
}

// TransferInventoryItem moves stock between two warehouses without the
// locations dialog.
func (h *DashboardHandlers) TransferInventoryItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var form TransferForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	var req models.TransferRequest
	if req.ItemID, err = common.ParseOptionalID(form.ItemID, "itemId"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.SourceWarehouseID, err = common.ParseOptionalID(form.SourceWarehouseID, "sourceWarehouseId"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DestinationWarehouseID, err = common.ParseOptionalID(form.DestinationWarehouseID, "destinationWarehouseId"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Quantity, err = common.ParseQuantity(form.Quantity, "quantity"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logAction("transfer inventory item", h.service.TransferInventoryItem(c.Request().Context(), sid, req))
	return seeOther(c, "/inventory")
}

func (h *DashboardHandlers) ApplyFilter(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var form FilterForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	criteria := filter.Criteria{Term: form.Term}
	if criteria.WarehouseID, err = common.ParseOptionalID(form.WarehouseID, "warehouseId"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if criteria.ProductTypeID, err = common.ParseOptionalID(form.ProductTypeID, "productTypeId"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logAction("apply filter", h.service.SetFilter(c.Request().Context(), sid, criteria))
	return seeOther(c, "/inventory")
}

func (h *DashboardHandlers) ClearFilter(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	logAction("clear filter", h.service.ClearFilter(c.Request().Context(), sid))
	return seeOther(c, "/inventory")
}

// Search answers the as-you-type search with the refreshed results table and
// banners, or 204 when the term leaves the list unchanged or a newer keystroke
// won.
func (h *DashboardHandlers) Search(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	applied, err := h.service.Search(ctx, sid, c.QueryParam("term"))
	if errors.Is(err, filter.ErrSuperseded) || (err == nil && !applied) {
		return c.NoContent(http.StatusNoContent)
	}
	logAction("search", err)

	st, err := h.service.State(ctx, sid)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}
	return c.Render(http.StatusOK, "search_response", views.BuildSearchResponse(st, h.now()))
}

// MultiLocationForm toggles the multi-location listing
type MultiLocationForm struct {
	On string `form:"on"`
}

func (h *DashboardHandlers) SetMultiLocationOnly(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	var form MultiLocationForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}

	on := common.ParseBool(form.On)
	logAction("toggle multi-location", h.service.SetMultiLocationOnly(c.Request().Context(), sid, on))
	return seeOther(c, "/inventory")
}
