package handlers

import (
	"net/http"

	"batstats/internal/common"
	"batstats/internal/store"

	"github.com/labstack/echo/v4"
)

// OpenLocations renders the inventory page with the item's locations dialog
func (h *DashboardHandlers) OpenLocations(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	logAction("show inventory", h.service.ShowSection(ctx, sid, store.SectionInventory))
	logAction("open locations", h.service.OpenLocations(ctx, sid, id))
	return h.renderPage(c, sid)
}

func (h *DashboardHandlers) CloseLocations(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	logAction("close locations", h.service.CloseLocations(c.Request().Context(), sid))
	return seeOther(c, "/inventory")
}

// AddPlacement adds the item shown in the dialog to another warehouse
func (h *DashboardHandlers) AddPlacement(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	itemID, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	warehouseID, err := common.ParseOptionalID(c.FormValue("warehouseId"), "warehouseId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	quantity, err := common.ParseQuantity(c.FormValue("quantity"), "quantity")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logAction("add placement", h.service.AddPlacement(c.Request().Context(), sid, itemID, warehouseID, quantity))
	return seeOther(c, "/inventory")
}

func (h *DashboardHandlers) UpdatePlacementQuantity(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	locationID, err := common.ParseID(c.Param("locationId"), "locationId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	quantity, err := common.ParseQuantity(c.FormValue("quantity"), "quantity")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logAction("update placement quantity", h.service.UpdatePlacementQuantity(c.Request().Context(), sid, locationID, quantity))
	return seeOther(c, "/inventory")
}

func (h *DashboardHandlers) RemovePlacement(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	locationID, err := common.ParseID(c.FormValue("locationId"), "locationId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	confirmed := common.ParseBool(c.FormValue("confirmed"))
	logAction("remove placement", h.service.RemovePlacement(c.Request().Context(), sid, locationID, confirmed))
	return seeOther(c, "/inventory")
}

func (h *DashboardHandlers) BeginTransfer(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	locationID, err := common.ParseID(c.Param("locationId"), "locationId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logAction("begin transfer", h.service.BeginTransfer(c.Request().Context(), sid, locationID))
	return seeOther(c, "/inventory")
}

func (h *DashboardHandlers) SubmitTransfer(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	destinationID, err := common.ParseOptionalID(c.FormValue("destinationWarehouseId"), "destinationWarehouseId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	quantity, err := common.ParseQuantity(c.FormValue("quantity"), "quantity")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	logAction("submit transfer", h.service.SubmitTransfer(c.Request().Context(), sid, destinationID, quantity))
	return seeOther(c, "/inventory")
}

func (h *DashboardHandlers) CancelTransfer(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	logAction("cancel transfer", h.service.CancelTransfer(c.Request().Context(), sid))
	return seeOther(c, "/inventory")
}
