package handlers

import (
	"net/http"
	"strings"

	"batstats/internal/common"
	"batstats/internal/models"
	"batstats/internal/store"

	"github.com/labstack/echo/v4"
)

// ProductTypeForm is the product type create/update form
type ProductTypeForm struct {
	ID            string `form:"id"`
	Name          string `form:"name"`
	Category      string `form:"category"`
	UnitOfMeasure string `form:"unitOfMeasure"`
	Description   string `form:"description"`
}

func (h *DashboardHandlers) ListProductTypes(c echo.Context) error {
	return h.showSection(c, store.SectionProducts)
}

func (h *DashboardHandlers) FilterProductCategory(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	logAction("filter product types by category", h.service.SetProductCategory(c.Request().Context(), sid, c.FormValue("category")))
	return seeOther(c, "/products")
}

func (h *DashboardHandlers) EditProductType(c echo.Context) error {
	return h.beginEdit(c, store.SectionProducts, store.EditProductType)
}

func (h *DashboardHandlers) SaveProductType(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}

	var form ProductTypeForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	id, err := common.ParseOptionalID(form.ID, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req := models.ProductTypeRequest{
		Name:          form.Name,
		Category:      form.Category,
		UnitOfMeasure: strings.TrimSpace(form.UnitOfMeasure),
		Description:   strings.TrimSpace(form.Description),
	}
	logAction("save product type", h.service.SaveProductType(c.Request().Context(), sid, id, req))
	return seeOther(c, "/products")
}

func (h *DashboardHandlers) DeleteProductType(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	confirmed := common.ParseBool(c.FormValue("confirmed"))
	logAction("delete product type", h.service.DeleteProductType(c.Request().Context(), sid, id, confirmed))
	return seeOther(c, "/products")
}
