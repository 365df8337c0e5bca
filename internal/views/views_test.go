package views

import (
	"strings"
	"testing"
	"time"

	"batstats/internal/filter"
	"batstats/internal/models"
	"batstats/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func testState() *store.AppState {
	north := models.Warehouse{ID: 1, Name: "North", Location: "Leeds", MaxCapacity: 100, CurrentCapacity: 90, AvailableCapacity: 10, CapacityPercentage: 90, Status: models.WarehouseActive}
	south := models.Warehouse{ID: 2, Name: "South", Location: "Kent", MaxCapacity: 200, CurrentCapacity: 160, AvailableCapacity: 40, CapacityPercentage: 80, Status: models.WarehouseActive}
	east := models.Warehouse{ID: 3, Name: "East", Location: "Hull", MaxCapacity: 50, CurrentCapacity: 5, AvailableCapacity: 45, CapacityPercentage: 10, Status: models.WarehouseInactive}
	bat := models.ProductType{ID: 1, Name: "Cricket Bat", Category: "Bats", UnitOfMeasure: "piece"}

	st := store.NewAppState()
	st.Warehouses = []models.Warehouse{north, south, east}
	st.ProductTypes = []models.ProductType{bat}
	st.AllItems = []models.InventoryItem{
		{
			ID:           7,
			SerialNumber: "BAT-007",
			ProductType:  &bat,
			WarehouseLocations: []models.WarehouseLocation{
				{ID: 11, Warehouse: &north, Quantity: 3},
				{ID: 12, Warehouse: &south, Quantity: 5},
			},
		},
		{ID: 8, SerialNumber: "", ProductType: nil},
	}
	st.Refilter(filter.StrategyClient)
	st.Loaded = true
	return st
}

func TestCapacityClass(t *testing.T) {
	assert.Equal(t, "danger", CapacityClass(90))
	assert.Equal(t, "danger", CapacityClass(100))
	assert.Equal(t, "warning", CapacityClass(89.99))
	assert.Equal(t, "warning", CapacityClass(75))
	assert.Equal(t, "success", CapacityClass(74.9))
	assert.Equal(t, "success", CapacityClass(0))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "90%", FormatPercent(90, 0))
	assert.Equal(t, "90.0%", FormatPercent(90, 1))
	assert.Equal(t, "33.3%", FormatPercent(100.0/3, 1))
	assert.Equal(t, "67%", FormatPercent(66.6, 0))
	assert.Equal(t, "0.0%", FormatPercent(0, 1))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "0 locations", LocationCountLabel(0))
	assert.Equal(t, "1 location", LocationCountLabel(1))
	assert.Equal(t, "2 locations", LocationCountLabel(2))
	assert.Equal(t, "Showing 1 of 4 items", ShowingLabel(1, 4))
}

func TestBuildWarehouses_NearlyFull(t *testing.T) {
	st := store.NewAppState()
	st.Warehouses = []models.Warehouse{{ID: 1, Name: "North", MaxCapacity: 100, CurrentCapacity: 90, Status: models.WarehouseActive}}

	v := BuildWarehouses(st)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "danger", v.Rows[0].Class)
	assert.Equal(t, "90%", v.Rows[0].Label)
	assert.Equal(t, "Active", v.Rows[0].StatusLabel)
	assert.False(t, v.Form.Editing)
}

func TestBuildDashboard(t *testing.T) {
	st := testState()
	v := BuildDashboard(st.Warehouses, st.AllItems, st.ProductTypes)

	assert.Equal(t, 3, v.TotalWarehouses)
	assert.Equal(t, 2, v.TotalItems)
	assert.Equal(t, 1, v.TotalProductTypes)
	assert.Equal(t, "60.0%", v.AverageCapacity)
	require.Len(t, v.Capacity, 3)
	assert.Equal(t, "90.0%", v.Capacity[0].Label)
	assert.Equal(t, "danger", v.Capacity[0].Class)

	require.Len(t, v.Alerts, 2)
	assert.Equal(t, AlertRow{Name: "North", Class: "danger", Label: "90.0%"}, v.Alerts[0])
	assert.Equal(t, AlertRow{Name: "South", Class: "warning", Label: "80.0%"}, v.Alerts[1])

	empty := BuildDashboard(nil, nil, nil)
	assert.Equal(t, "0.0%", empty.AverageCapacity)
	assert.Empty(t, empty.Alerts)
}

func TestBuildPage_DashboardWaitsForFirstLoad(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	st := store.NewAppState()
	page := BuildPage(st, testNow)
	require.NotNil(t, page.Dashboard)
	assert.False(t, page.Dashboard.Loaded)

	html, err := r.RenderPage(page)
	require.NoError(t, err)
	assert.Contains(t, html, "Dashboard data is unavailable right now.")
	assert.NotContains(t, html, "Warehouse Capacity")

	html, err = r.RenderPage(BuildPage(testState(), testNow))
	require.NoError(t, err)
	assert.NotContains(t, html, "Dashboard data is unavailable right now.")
	assert.Contains(t, html, "Warehouse Capacity")
}

func TestBuildWarehouses_StatusScope(t *testing.T) {
	st := testState()
	st.Scope.WarehouseStatus = models.WarehouseInactive
	st.ScopedWarehouses = []models.Warehouse{st.Warehouses[2]}

	v := BuildWarehouses(st)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "East", v.Rows[0].Name)
	assert.Equal(t, "INACTIVE", v.Status)
}

func TestBuildProducts_CategoryScope(t *testing.T) {
	st := testState()
	ball := models.ProductType{ID: 2, Name: "Cricket Ball", Category: "Balls"}
	st.ProductTypes = append(st.ProductTypes, ball)
	st.Scope.Category = "Balls"
	st.ScopedProductTypes = []models.ProductType{ball}

	v := BuildProducts(st)
	require.Len(t, v.Cards, 1)
	assert.Equal(t, "Cricket Ball", v.Cards[0].Name)
	assert.Equal(t, []string{"Balls", "Bats"}, v.Categories)

	st.Scope.Category = "Gloves"
	st.ScopedProductTypes = nil
	v = BuildProducts(st)
	assert.Empty(t, v.Cards)
	assert.Equal(t, []string{"Balls", "Bats", "Gloves"}, v.Categories)
}

func TestRender_SearchResponseCarriesBanners(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	st := testState()
	st.Section = store.SectionInventory
	st.PushBanner(store.BannerDanger, "Search failed, showing all items", testNow, 5*time.Second)

	var buf strings.Builder
	require.NoError(t, r.Render(&buf, "search_response", BuildSearchResponse(st, testNow), nil))
	html := buf.String()
	assert.Contains(t, html, `id="banners"`)
	assert.Contains(t, html, "Search failed, showing all items")
	assert.Contains(t, html, `id="inventoryResults"`)
	assert.Contains(t, html, "BAT-007")
	assert.NotContains(t, html, "<!DOCTYPE html>")
}

func TestBuildInventoryRow(t *testing.T) {
	st := testState()

	row := BuildInventoryRow(st.AllItems[0])
	assert.Equal(t, 8, row.Total)
	assert.Equal(t, "2 locations", row.LocationsLabel)
	assert.Equal(t, []PlacementBadge{{Warehouse: "North", Quantity: 3}, {Warehouse: "South", Quantity: 5}}, row.Badges)

	bare := BuildInventoryRow(st.AllItems[1])
	assert.Equal(t, "N/A", bare.Serial)
	assert.Equal(t, "Unknown Product", bare.Product)
	assert.Equal(t, "0 locations", bare.LocationsLabel)
}

func TestBuildInventory_FilterAndModal(t *testing.T) {
	st := testState()
	st.Section = store.SectionInventory
	st.Filter = filter.Criteria{WarehouseID: 2}
	st.Refilter(filter.StrategyClient)
	st.Modal.Open(st.AllItems[0])
	require.NoError(t, st.Modal.BeginTransfer(11))

	v := BuildInventory(st)
	assert.Equal(t, "Showing 1 of 2 items", v.ShowingLabel)
	assert.True(t, v.WarehouseOptions[1].Selected)
	require.Len(t, v.Form.WarehouseOptions, 2, "inactive warehouses cannot receive new items")
	assert.Equal(t, "North (Available: 10)", v.Form.WarehouseOptions[0].Label)

	require.NotNil(t, v.Modal)
	assert.Equal(t, "Cricket Bat (BAT-007)", v.Modal.Title)
	assert.Equal(t, 8, v.Modal.Total)
	assert.True(t, v.Modal.Transferring)
	require.NotNil(t, v.Modal.Source)
	assert.Equal(t, "North", v.Modal.Source.WarehouseName)
	assert.Equal(t, 3, v.Modal.MaxQuantity)
	require.Len(t, v.Modal.TransferOptions, 1)
	assert.Equal(t, int64(2), v.Modal.TransferOptions[0].Value)
}

func TestBuildProducts_EditForm(t *testing.T) {
	st := testState()
	st.Edit = store.EditTarget{Kind: store.EditProductType, ID: 1}

	v := BuildProducts(st)
	require.Len(t, v.Cards, 1)
	assert.Equal(t, "No description available", v.Cards[0].Description)
	assert.True(t, v.Form.Editing)
	assert.Equal(t, "piece", v.Form.UnitOfMeasure)
}

func TestBuildBanners_SkipsExpired(t *testing.T) {
	banners := []store.Banner{
		{ID: "a", Kind: store.BannerSuccess, Message: "saved", ExpiresAt: testNow.Add(time.Second)},
		{ID: "b", Kind: store.BannerDanger, Message: "old", ExpiresAt: testNow.Add(-time.Second)},
	}
	assert.Equal(t, []BannerView{{ID: "a", Kind: "success", Message: "saved"}}, BuildBanners(banners, testNow))
}

func TestRenderPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	st := testState()
	st.PushBanner(store.BannerSuccess, "Warehouse created successfully", testNow, 5*time.Second)

	for _, section := range []store.Section{store.SectionDashboard, store.SectionWarehouses, store.SectionInventory, store.SectionProducts} {
		t.Run(string(section), func(t *testing.T) {
			st.Section = section
			if section == store.SectionInventory {
				st.Modal.Open(st.AllItems[0])
			}

			first, err := r.RenderPage(BuildPage(st, testNow))
			require.NoError(t, err)
			second, err := r.RenderPage(BuildPage(st, testNow))
			require.NoError(t, err)

			assert.Equal(t, first, second, "rendering is deterministic")
			assert.Contains(t, first, "Warehouse created successfully")
		})
	}

	st.Section = store.SectionWarehouses
	html, err := r.RenderPage(BuildPage(st, testNow))
	require.NoError(t, err)
	assert.Contains(t, html, "bg-danger")
	assert.Contains(t, html, "90%")
	assert.Contains(t, html, `action="/warehouses/1/delete"`)
	assert.Contains(t, html, `name="confirmed"`)

	st.Section = store.SectionInventory
	html, err = r.RenderPage(BuildPage(st, testNow))
	require.NoError(t, err)
	assert.Contains(t, html, "2 locations")
	assert.Contains(t, html, "Showing 2 of 2 items")
	assert.Contains(t, html, "Manage Locations: Cricket Bat (BAT-007)")
}

func TestRender_EscapesUserContent(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	st := store.NewAppState()
	st.Section = store.SectionProducts
	st.ProductTypes = []models.ProductType{{ID: 1, Name: "<script>alert(1)</script>", Category: "Bats"}}

	html, err := r.RenderPage(BuildPage(st, testNow))
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestAssets(t *testing.T) {
	f, err := Assets().Open("app.js")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
