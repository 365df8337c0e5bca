package views

import (
	"fmt"
	"sort"
	"time"

	"batstats/internal/locations"
	"batstats/internal/models"
	"batstats/internal/store"
)

// Page is everything a full page render needs. Only the block for the active
// section is set.
type Page struct {
	Section    store.Section
	Title      string
	Banners    []BannerView
	Dashboard  *DashboardView
	Warehouses *WarehousesView
	Inventory  *InventoryView
	Products   *ProductsView
}

type BannerView struct {
	ID      string
	Kind    string
	Message string
}

// DashboardView shows the stats only when Loaded; a session whose first load
// failed has nothing to count.
type DashboardView struct {
	Loaded            bool
	TotalWarehouses   int
	TotalItems        int
	TotalProductTypes int
	AverageCapacity   string
	Capacity          []CapacityRow
	Alerts            []AlertRow
}

type CapacityRow struct {
	Name    string
	Current int
	Max     int
	Class   string
	Width   string
	Label   string
}

type AlertRow struct {
	Name  string
	Class string
	Label string
}

type WarehousesView struct {
	Rows   []WarehouseRow
	Form   WarehouseForm
	Status string
}

type WarehouseRow struct {
	ID          int64
	Name        string
	Location    string
	Current     int
	Max         int
	Class       string
	Width       string
	Label       string
	Active      bool
	StatusLabel string
}

type WarehouseForm struct {
	Editing     bool
	ID          int64
	Name        string
	Location    string
	MaxCapacity int
	Status      string
}

// Option is one entry of a select box
type Option struct {
	Value    int64
	Label    string
	Selected bool
}

type InventoryView struct {
	Rows               []InventoryRow
	ShowingLabel       string
	Term               string
	WarehouseOptions   []Option
	ProductTypeOptions []Option
	Form               ItemForm
	Modal              *ModalView
	MultiLocationOnly  bool
}

type InventoryRow struct {
	ID             int64
	Serial         string
	Product        string
	Badges         []PlacementBadge
	Total          int
	LocationsLabel string
}

type PlacementBadge struct {
	Warehouse string
	Quantity  int
}

type ItemForm struct {
	Editing            bool
	ID                 int64
	SerialNumber       string
	ProductTypeOptions []Option
	WarehouseOptions   []Option
}

type ModalView struct {
	ItemID          int64
	Title           string
	Placements      []PlacementRow
	Total           int
	AddOptions      []Option
	Transferring    bool
	Source          *PlacementRow
	TransferOptions []Option
	MaxQuantity     int
}

type PlacementRow struct {
	ID            int64
	WarehouseID   int64
	WarehouseName string
	Quantity      int
	IsSource      bool
}

type ProductsView struct {
	Cards      []ProductCard
	Form       ProductForm
	Category   string
	Categories []string
}

// SearchResponse is the as-you-type search answer: the refreshed results and
// the banners the search produced.
type SearchResponse struct {
	Banners   []BannerView
	Inventory InventoryView
}

type ProductCard struct {
	ID          int64
	Name        string
	Category    string
	Description string
	Unit        string
}

type ProductForm struct {
	Editing       bool
	ID            int64
	Name          string
	Category      string
	UnitOfMeasure string
	Description   string
}

var sectionTitles = map[store.Section]string{
	store.SectionDashboard:  "Dashboard",
	store.SectionWarehouses: "Warehouses",
	store.SectionInventory:  "Inventory",
	store.SectionProducts:   "Product Types",
}

// BuildPage turns a session state into the view model of its current section.
// It never mutates the state.
func BuildPage(st *store.AppState, now time.Time) Page {
	section := store.ParseSection(string(st.Section))
	page := Page{
		Section: section,
		Title:   sectionTitles[section],
		Banners: BuildBanners(st.Banners, now),
	}

	switch section {
	case store.SectionWarehouses:
		v := BuildWarehouses(st)
		page.Warehouses = &v
	case store.SectionInventory:
		v := BuildInventory(st)
		page.Inventory = &v
	case store.SectionProducts:
		v := BuildProducts(st)
		page.Products = &v
	default:
		v := BuildDashboard(st.Warehouses, st.AllItems, st.ProductTypes)
		v.Loaded = st.Loaded
		page.Dashboard = &v
	}
	return page
}

func BuildSearchResponse(st *store.AppState, now time.Time) SearchResponse {
	return SearchResponse{
		Banners:   BuildBanners(st.Banners, now),
		Inventory: BuildInventory(st),
	}
}

// BuildBanners keeps the banners that have not expired at now
func BuildBanners(banners []store.Banner, now time.Time) []BannerView {
	out := make([]BannerView, 0, len(banners))
	for _, b := range banners {
		if now.Before(b.ExpiresAt) {
			out = append(out, BannerView{ID: b.ID, Kind: string(b.Kind), Message: b.Message})
		}
	}
	return out
}

func BuildDashboard(warehouses []models.Warehouse, items []models.InventoryItem, productTypes []models.ProductType) DashboardView {
	v := DashboardView{
		TotalWarehouses:   len(warehouses),
		TotalItems:        len(items),
		TotalProductTypes: len(productTypes),
		AverageCapacity:   FormatPercent(0, 1),
		Capacity:          make([]CapacityRow, 0, len(warehouses)),
	}

	if len(warehouses) > 0 {
		sum := 0.0
		for _, w := range warehouses {
			sum += w.Percent()
		}
		v.AverageCapacity = FormatPercent(sum/float64(len(warehouses)), 1)
	}

	var critical, warning []AlertRow
	for _, w := range warehouses {
		pct := w.Percent()
		v.Capacity = append(v.Capacity, CapacityRow{
			Name:    w.Name,
			Current: w.CurrentCapacity,
			Max:     w.MaxCapacity,
			Class:   CapacityClass(pct),
			Width:   barWidth(pct),
			Label:   FormatPercent(pct, 1),
		})
		switch CapacityClass(pct) {
		case "danger":
			critical = append(critical, AlertRow{Name: w.Name, Class: "danger", Label: FormatPercent(pct, 1)})
		case "warning":
			warning = append(warning, AlertRow{Name: w.Name, Class: "warning", Label: FormatPercent(pct, 1)})
		}
	}
	v.Alerts = append(critical, warning...)
	return v
}

func BuildWarehouses(st *store.AppState) WarehousesView {
	visible := st.VisibleWarehouses()
	v := WarehousesView{
		Rows:   make([]WarehouseRow, 0, len(visible)),
		Form:   WarehouseForm{Status: string(models.WarehouseActive)},
		Status: string(st.Scope.WarehouseStatus),
	}
	for _, w := range visible {
		pct := w.Percent()
		row := WarehouseRow{
			ID:          w.ID,
			Name:        w.Name,
			Location:    w.Location,
			Current:     w.CurrentCapacity,
			Max:         w.MaxCapacity,
			Class:       CapacityClass(pct),
			Width:       barWidth(pct),
			Label:       FormatPercent(pct, 0),
			Active:      w.IsActive(),
			StatusLabel: "Inactive",
		}
		if row.Active {
			row.StatusLabel = "Active"
		}
		v.Rows = append(v.Rows, row)
	}

	if st.Edit.Kind == store.EditWarehouse {
		if w, ok := models.FindWarehouse(st.Warehouses, st.Edit.ID); ok {
			v.Form = WarehouseForm{
				Editing:     true,
				ID:          w.ID,
				Name:        w.Name,
				Location:    w.Location,
				MaxCapacity: w.MaxCapacity,
				Status:      string(w.Status),
			}
		}
	}
	return v
}

func BuildInventory(st *store.AppState) InventoryView {
	v := InventoryView{
		Rows:               make([]InventoryRow, 0, len(st.Items)),
		ShowingLabel:       ShowingLabel(len(st.Items), len(st.AllItems)),
		Term:               st.Filter.Term,
		WarehouseOptions:   filterWarehouseOptions(st.Warehouses, st.Filter.WarehouseID),
		ProductTypeOptions: productTypeOptions(st.ProductTypes, st.Filter.ProductTypeID),
		MultiLocationOnly:  st.Scope.MultiLocationOnly,
	}
	for _, item := range st.Items {
		v.Rows = append(v.Rows, BuildInventoryRow(item))
	}

	v.Form = ItemForm{
		ProductTypeOptions: productTypeOptions(st.ProductTypes, 0),
		WarehouseOptions:   warehouseOptions(activeWarehouses(st.Warehouses), 0),
	}
	if st.Edit.Kind == store.EditItem {
		if item, ok := models.FindInventoryItem(st.AllItems, st.Edit.ID); ok {
			v.Form.Editing = true
			v.Form.ID = item.ID
			v.Form.SerialNumber = item.SerialNumber
			v.Form.ProductTypeOptions = productTypeOptions(st.ProductTypes, item.ProductTypeID())
		}
	}

	if st.Modal.IsOpen() {
		m := BuildModal(&st.Modal, st.Warehouses)
		v.Modal = &m
	}
	return v
}

func BuildInventoryRow(item models.InventoryItem) InventoryRow {
	row := InventoryRow{
		ID:             item.ID,
		Serial:         item.SerialNumber,
		Product:        item.ProductName(),
		Total:          item.Total(),
		LocationsLabel: LocationCountLabel(item.LocationCount()),
	}
	if row.Serial == "" {
		row.Serial = "N/A"
	}
	for _, loc := range item.WarehouseLocations {
		row.Badges = append(row.Badges, PlacementBadge{Warehouse: loc.WarehouseName(), Quantity: loc.Quantity})
	}
	return row
}

func BuildModal(m *locations.Modal, warehouses []models.Warehouse) ModalView {
	v := ModalView{
		ItemID:     m.ItemID,
		Title:      fmt.Sprintf("%s (%s)", m.ProductName, m.SerialNumber),
		Total:      m.Total(),
		AddOptions: warehouseOptions(m.AddOptions(warehouses), 0),
	}
	for _, p := range m.Placements {
		row := PlacementRow{
			ID:            p.ID,
			WarehouseID:   p.WarehouseID(),
			WarehouseName: p.WarehouseName(),
			Quantity:      p.Quantity,
			IsSource:      m.Mode == locations.Transferring && p.ID == m.TransferSourceID,
		}
		v.Placements = append(v.Placements, row)
		if row.IsSource {
			source := row
			v.Source = &source
		}
	}
	if v.Source != nil {
		v.Transferring = true
		v.TransferOptions = warehouseOptions(m.TransferOptions(warehouses), 0)
		v.MaxQuantity = m.MaxTransferQuantity()
	}
	return v
}

func BuildProducts(st *store.AppState) ProductsView {
	visible := st.VisibleProductTypes()
	v := ProductsView{
		Cards:      make([]ProductCard, 0, len(visible)),
		Category:   st.Scope.Category,
		Categories: categories(st.ProductTypes, st.Scope.Category),
	}
	for _, p := range visible {
		card := ProductCard{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Description: p.Description,
			Unit:        p.UnitOfMeasure,
		}
		if card.Description == "" {
			card.Description = "No description available"
		}
		v.Cards = append(v.Cards, card)
	}

	if st.Edit.Kind == store.EditProductType {
		if p, ok := models.FindProductType(st.ProductTypes, st.Edit.ID); ok {
			v.Form = ProductForm{
				Editing:       true,
				ID:            p.ID,
				Name:          p.Name,
				Category:      p.Category,
				UnitOfMeasure: p.UnitOfMeasure,
				Description:   p.Description,
			}
		}
	}
	return v
}

// categories lists the distinct product categories in order, keeping the
// selected one even when no cached product type carries it any more.
func categories(pts []models.ProductType, selected string) []string {
	seen := make(map[string]bool, len(pts))
	var out []string
	for _, p := range pts {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	if selected != "" && !seen[selected] {
		out = append(out, selected)
	}
	sort.Strings(out)
	return out
}

func activeWarehouses(ws []models.Warehouse) []models.Warehouse {
	out := make([]models.Warehouse, 0, len(ws))
	for _, w := range ws {
		if w.IsActive() {
			out = append(out, w)
		}
	}
	return out
}

func warehouseOptions(ws []models.Warehouse, selected int64) []Option {
	out := make([]Option, 0, len(ws))
	for _, w := range ws {
		out = append(out, Option{
			Value:    w.ID,
			Label:    fmt.Sprintf("%s (Available: %d)", w.Name, w.AvailableCapacity),
			Selected: w.ID == selected,
		})
	}
	return out
}

func filterWarehouseOptions(ws []models.Warehouse, selected int64) []Option {
	out := make([]Option, 0, len(ws))
	for _, w := range ws {
		out = append(out, Option{Value: w.ID, Label: w.Name, Selected: w.ID == selected})
	}
	return out
}

func productTypeOptions(pts []models.ProductType, selected int64) []Option {
	out := make([]Option, 0, len(pts))
	for _, p := range pts {
		out = append(out, Option{
			Value:    p.ID,
			Label:    fmt.Sprintf("%s (%s)", p.Name, p.Category),
			Selected: p.ID == selected,
		})
	}
	return out
}
