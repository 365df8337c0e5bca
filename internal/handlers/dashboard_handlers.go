package handlers

import (
	"log"
	"net/http"
	"time"

	"batstats/internal/common"
	"batstats/internal/middleware"
	"batstats/internal/services"
	"batstats/internal/store"
	"batstats/internal/views"
	"batstats/internal/websocket"

	"github.com/labstack/echo/v4"
)

// DashboardHandlers serves the dashboard pages and their form actions. Form
// posts answer with a 303 redirect to the section page; action failures are
// shown there as banners.
type DashboardHandlers struct {
	service services.DashboardService
	hub     *websocket.Hub
	now     func() time.Time
}

// NewDashboardHandlers creates a new dashboard handlers instance
func NewDashboardHandlers(service services.DashboardService, hub *websocket.Hub) *DashboardHandlers {
	return &DashboardHandlers{
		service: service,
		hub:     hub,
		now:     time.Now,
	}
}

func sessionID(c echo.Context) (string, error) {
	sid, ok := middleware.SessionID(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Session not found")
	}
	return sid, nil
}

func sectionPath(section store.Section) string {
	switch section {
	case store.SectionWarehouses:
		return "/warehouses"
	case store.SectionInventory:
		return "/inventory"
	case store.SectionProducts:
		return "/products"
	default:
		return "/"
	}
}

// logAction records the outcome of an action. The user already sees it as a
// banner, so it never fails the request.
func logAction(action string, err error) {
	if err != nil {
		log.Printf("DEBUG: %s finished with: %v", action, err)
	}
}

func seeOther(c echo.Context, path string) error {
	return c.Redirect(http.StatusSeeOther, path)
}

// renderPage renders the session's current section
func (h *DashboardHandlers) renderPage(c echo.Context, sid string) error {
	st, err := h.service.State(c.Request().Context(), sid)
	if err != nil {
		log.Printf("ERROR: failed to load session %s: %v", sid, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load session")
	}
	return c.Render(http.StatusOK, "layout", views.BuildPage(st, h.now()))
}

// showSection reloads a section's data and renders it
func (h *DashboardHandlers) showSection(c echo.Context, section store.Section) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	logAction("show "+string(section), h.service.ShowSection(c.Request().Context(), sid, section))
	return h.renderPage(c, sid)
}

// redirectToSection sends the browser back to whatever section it was on
func (h *DashboardHandlers) redirectToSection(c echo.Context, sid string) error {
	st, err := h.service.State(c.Request().Context(), sid)
	if err != nil {
		return seeOther(c, "/")
	}
	return seeOther(c, sectionPath(st.Section))
}

func (h *DashboardHandlers) Dashboard(c echo.Context) error {
	return h.showSection(c, store.SectionDashboard)
}

// CancelEdit leaves edit mode on any section form
func (h *DashboardHandlers) CancelEdit(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	logAction("cancel edit", h.service.CancelEdit(c.Request().Context(), sid))
	return h.redirectToSection(c, sid)
}

func (h *DashboardHandlers) DismissBanner(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	logAction("dismiss banner", h.service.DismissBanner(c.Request().Context(), sid, c.Param("id")))
	return h.redirectToSection(c, sid)
}

// beginEdit loads an entity into its section form and renders the section
func (h *DashboardHandlers) beginEdit(c echo.Context, section store.Section, kind string) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	id, err := common.ParseID(c.Param("id"), "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	logAction("show "+string(section), h.service.ShowSection(ctx, sid, section))
	logAction("begin edit", h.service.BeginEdit(ctx, sid, kind, id))
	return h.renderPage(c, sid)
}

// Live pushes refresh notifications to the session's browser tabs
func (h *DashboardHandlers) Live(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	if err := websocket.ServeWs(h.hub, sid, c.Response(), c.Request()); err != nil {
		log.Printf("WARN: websocket upgrade failed for session %s: %v", sid, err)
	}
	return nil
}
