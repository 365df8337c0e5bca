package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"batstats/internal/caching"
	"batstats/internal/client"
	"batstats/internal/filter"
	"batstats/internal/locations"
	"batstats/internal/models"
	"batstats/internal/store"
	"batstats/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ScheduleReconcile(sessionID string, delay time.Duration) error {
	args := m.Called(sessionID, delay)
	return args.Error(0)
}

const (
	sid            = "s1"
	reconcileDelay = 500 * time.Millisecond
)

type DashboardServiceTestSuite struct {
	suite.Suite
	backend    *testutil.FakeBackend
	reconciler *MockReconciler
	service    DashboardService
	ctx        context.Context

	north, south, east, closed models.Warehouse
	bat, ball                  models.ProductType
	batItem, ballItem          models.InventoryItem
	northPlacement             int64
	southPlacement             int64
}

func (s *DashboardServiceTestSuite) SetupTest() {
	s.backend = testutil.NewFakeBackend(s.T())
	s.reconciler = new(MockReconciler)
	s.ctx = context.Background()
	s.service = s.newService(filter.StrategyServer, 0)

	s.north = s.backend.SeedWarehouse("North", 100, models.WarehouseActive)
	s.south = s.backend.SeedWarehouse("South", 50, models.WarehouseActive)
	s.east = s.backend.SeedWarehouse("East", 20, models.WarehouseActive)
	s.closed = s.backend.SeedWarehouse("Closed", 10, models.WarehouseInactive)
	s.bat = s.backend.SeedProductType("Cricket Bat", "Bats")
	s.ball = s.backend.SeedProductType("Leather Ball", "Balls")
	s.batItem = s.backend.SeedItem("BAT-001", s.bat.ID)
	s.northPlacement = s.backend.SeedPlacement(s.batItem.ID, s.north.ID, 3)
	s.southPlacement = s.backend.SeedPlacement(s.batItem.ID, s.south.ID, 5)
	s.ballItem = s.backend.SeedItem("BAL-001", s.ball.ID)
}

func (s *DashboardServiceTestSuite) newService(strategy filter.Strategy, debounce time.Duration) DashboardService {
	api := client.NewAPIClient(s.backend.BaseURL(), 2*time.Second)
	st := store.NewStore(caching.NewMemorySessionStore(), time.Hour, strategy)
	return NewDashboardService(api, st, filter.NewDebouncer(debounce), s.reconciler, Options{
		SearchMinLength: 2,
		ReconcileDelay:  reconcileDelay,
		BannerTTL:       time.Minute,
	})
}

func TestDashboardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DashboardServiceTestSuite))
}

func (s *DashboardServiceTestSuite) state() *store.AppState {
	st, err := s.service.State(s.ctx, sid)
	s.Require().NoError(err)
	return st
}

func (s *DashboardServiceTestSuite) lastBanner() store.Banner {
	st := s.state()
	s.Require().NotEmpty(st.Banners)
	return st.Banners[len(st.Banners)-1]
}

func (s *DashboardServiceTestSuite) openBatItem() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))
	s.Require().NoError(s.service.OpenLocations(s.ctx, sid, s.batItem.ID))
}

func (s *DashboardServiceTestSuite) TestShowSection_LoadsDashboard() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionDashboard))

	st := s.state()
	s.True(st.Loaded)
	s.Len(st.Warehouses, 4)
	s.Len(st.AllItems, 2)
	s.Len(st.ProductTypes, 2)
	s.Empty(st.Banners)
}

func (s *DashboardServiceTestSuite) TestShowSection_FailureBecomesBanner() {
	s.backend.FailNext("GET /api/warehouses", 1)

	err := s.service.ShowSection(s.ctx, sid, store.SectionDashboard)
	s.Require().Error(err)

	st := s.state()
	s.False(st.Loaded)
	s.Empty(st.Warehouses, "nothing is applied when one fetch fails")
	s.Empty(st.AllItems)
	b := s.lastBanner()
	s.Equal(store.BannerDanger, b.Kind)
	s.Equal("Failed to load dashboard data", b.Message)
}

func (s *DashboardServiceTestSuite) TestSaveWarehouse_ValidationSendsNothing() {
	err := s.service.SaveWarehouse(s.ctx, sid, 0, models.WarehouseRequest{Name: "  ", MaxCapacity: 10})
	s.ErrorIs(err, ErrNameRequired)

	err = s.service.SaveWarehouse(s.ctx, sid, 0, models.WarehouseRequest{Name: "West", MaxCapacity: 0})
	s.ErrorIs(err, ErrInvalidCapacity)

	s.Equal(0, s.backend.CountRequests("POST"))
	b := s.lastBanner()
	s.Equal(store.BannerWarning, b.Kind)
	s.Equal("Maximum capacity must be at least 1", b.Message)
}

func (s *DashboardServiceTestSuite) TestSaveWarehouse_CreateAndUpdate() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionWarehouses))

	err := s.service.SaveWarehouse(s.ctx, sid, 0, models.WarehouseRequest{Name: "West", Location: "Perth", MaxCapacity: 30})
	s.Require().NoError(err)
	st := s.state()
	s.Len(st.Warehouses, 5)
	s.Equal("Warehouse created successfully", s.lastBanner().Message)

	s.Require().NoError(s.service.BeginEdit(s.ctx, sid, store.EditWarehouse, s.north.ID))
	s.Equal(1, s.backend.CountRequests("GET /api/warehouses/1"))
	s.Equal(store.EditTarget{Kind: store.EditWarehouse, ID: s.north.ID}, s.state().Edit)

	err = s.service.SaveWarehouse(s.ctx, sid, s.north.ID, models.WarehouseRequest{Name: "North Hub", Location: "Leeds", MaxCapacity: 120})
	s.Require().NoError(err)
	st = s.state()
	w, ok := models.FindWarehouse(st.Warehouses, s.north.ID)
	s.Require().True(ok)
	s.Equal("North Hub", w.Name)
	s.Equal(models.WarehouseActive, w.Status, "status defaults to active")
	s.Equal(store.EditTarget{}, st.Edit)
	s.Equal("Warehouse updated successfully", s.lastBanner().Message)
}

func (s *DashboardServiceTestSuite) TestDeleteWarehouse_RequiresConfirmation() {
	err := s.service.DeleteWarehouse(s.ctx, sid, s.closed.ID, false)
	s.ErrorIs(err, ErrConfirmationRequired)
	s.Equal(0, s.backend.CountRequests("DELETE"))
	s.Equal(store.BannerWarning, s.lastBanner().Kind)

	s.Require().NoError(s.service.DeleteWarehouse(s.ctx, sid, s.closed.ID, true))
	s.Equal(1, s.backend.CountRequests("DELETE /api/warehouses/4"))
	s.Len(s.state().Warehouses, 3)
	s.Equal("Warehouse deleted successfully", s.lastBanner().Message)
}

func (s *DashboardServiceTestSuite) TestDeleteInventoryItem_ShowsBackendMessage() {
	s.backend.FailNext("DELETE /api/inventory", 1)

	err := s.service.DeleteInventoryItem(s.ctx, sid, s.ballItem.ID, true)
	s.Require().Error(err)
	s.Equal(500, client.StatusCode(err))

	b := s.lastBanner()
	s.Equal(store.BannerDanger, b.Kind)
	s.Equal("simulated failure", b.Message)
}

func (s *DashboardServiceTestSuite) TestDeleteInventoryItem_ClosesItsModal() {
	s.openBatItem()

	s.Require().NoError(s.service.DeleteInventoryItem(s.ctx, sid, s.batItem.ID, true))
	st := s.state()
	s.False(st.Modal.IsOpen())
	s.Len(st.AllItems, 1)
}

func (s *DashboardServiceTestSuite) TestSaveInventoryItem_CreateWithPlacement() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))

	err := s.service.SaveInventoryItem(s.ctx, sid, 0, models.InventoryItemRequest{})
	s.ErrorIs(err, ErrMissingProductType)

	warehouseID := s.east.ID
	zero := 0
	err = s.service.SaveInventoryItem(s.ctx, sid, 0, models.InventoryItemRequest{
		ProductTypeID: s.ball.ID, WarehouseID: &warehouseID, Quantity: &zero,
	})
	s.ErrorIs(err, locations.ErrInvalidQuantity)
	s.Equal(0, s.backend.CountRequests("POST"))

	four := 4
	err = s.service.SaveInventoryItem(s.ctx, sid, 0, models.InventoryItemRequest{
		ProductTypeID: s.ball.ID, WarehouseID: &warehouseID, Quantity: &four,
	})
	s.Require().NoError(err)

	st := s.state()
	s.Len(st.AllItems, 3)
	created := st.AllItems[2]
	s.Equal("BAL-003", created.SerialNumber, "the backend generates the serial")
	s.Equal(4, created.Total())
	east, _ := models.FindWarehouse(st.Warehouses, s.east.ID)
	s.Equal(4, east.CurrentCapacity, "warehouses are reloaded with the inventory")
	s.Equal("Inventory item created successfully", s.lastBanner().Message)
}

func (s *DashboardServiceTestSuite) TestTransferInventoryItem() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))

	err := s.service.TransferInventoryItem(s.ctx, sid, models.TransferRequest{
		ItemID: s.batItem.ID, SourceWarehouseID: s.south.ID, DestinationWarehouseID: s.east.ID, Quantity: 6,
	})
	s.ErrorIs(err, locations.ErrExceedsSource)
	s.Equal("Transfer quantity exceeds the quantity at the source (max 5)", s.lastBanner().Message)

	err = s.service.TransferInventoryItem(s.ctx, sid, models.TransferRequest{
		ItemID: s.batItem.ID, SourceWarehouseID: s.south.ID, DestinationWarehouseID: s.east.ID, Quantity: 5,
	})
	s.Require().NoError(err)
	s.Equal(1, s.backend.CountRequests("POST /api/inventory/transfer"))

	item, ok := models.FindInventoryItem(s.state().AllItems, s.batItem.ID)
	s.Require().True(ok)
	s.False(item.HoldsWarehouse(s.south.ID), "a full transfer empties the source")
	s.True(item.HoldsWarehouse(s.east.ID))
	s.Equal(8, item.Total())
}

func (s *DashboardServiceTestSuite) TestProductTypes_SaveEditDelete() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionProducts))

	err := s.service.SaveProductType(s.ctx, sid, 0, models.ProductTypeRequest{Name: "Helmet", Category: "Protection", UnitOfMeasure: "piece"})
	s.Require().NoError(err)
	s.Len(s.state().ProductTypes, 3)
	s.Equal("Product type created successfully", s.lastBanner().Message)

	s.Require().NoError(s.service.BeginEdit(s.ctx, sid, store.EditProductType, s.bat.ID))
	s.Equal(store.SectionProducts, s.state().Section)

	err = s.service.BeginEdit(s.ctx, sid, store.EditProductType, 999)
	s.ErrorIs(err, ErrNotFound)

	s.Require().NoError(s.service.CancelEdit(s.ctx, sid))
	s.Equal(store.EditTarget{}, s.state().Edit)

	s.ErrorIs(s.service.DeleteProductType(s.ctx, sid, s.bat.ID, false), ErrConfirmationRequired)
	s.ErrorIs(s.service.BeginEdit(s.ctx, sid, "nonsense", 1), ErrInvalidEditKind)
}

func (s *DashboardServiceTestSuite) TestOpenLocations_FromCache() {
	s.openBatItem()
	s.Equal(0, s.backend.CountRequests("GET /api/inventory/7"))

	st := s.state()
	s.Equal(locations.Viewing, st.Modal.Mode)
	s.Len(st.Modal.Placements, 2)
	s.Equal(8, st.Modal.Total())

	options := st.Modal.AddOptions(st.Warehouses)
	s.Require().Len(options, 1, "only active warehouses not holding the item")
	s.Equal(s.east.ID, options[0].ID)
}

func (s *DashboardServiceTestSuite) TestOpenLocations_NotCached() {
	s.Require().NoError(s.service.OpenLocations(s.ctx, sid, s.batItem.ID))

	s.Equal(1, s.backend.CountRequests("GET /api/inventory/7"))
	s.Equal(2, s.backend.CountRequests("GET /api/warehouse-inventory/item/7"), "placements and total")
	s.Equal(1, s.backend.CountRequests("GET /api/warehouse-inventory/item/7/total"))
	st := s.state()
	s.Equal("BAT-001", st.Modal.SerialNumber)
	s.Equal("Cricket Bat", st.Modal.ProductName)
	s.Len(st.Modal.Placements, 2)

	cached, ok := models.FindInventoryItem(st.AllItems, s.batItem.ID)
	s.Require().True(ok, "the fetched item joins the cache")
	s.Equal(8, cached.TotalQuantity)
}

func (s *DashboardServiceTestSuite) TestOpenLocations_NotCachedFailure() {
	s.backend.FailNext("GET /api/warehouse-inventory/item/7/total", 1)

	err := s.service.OpenLocations(s.ctx, sid, s.batItem.ID)
	s.Require().Error(err)

	st := s.state()
	s.False(st.Modal.IsOpen())
	s.Empty(st.AllItems)
	s.Equal(store.BannerDanger, s.lastBanner().Kind)
}

func (s *DashboardServiceTestSuite) TestAddPlacement() {
	s.openBatItem()

	err := s.service.AddPlacement(s.ctx, sid, s.batItem.ID, s.east.ID, 0)
	s.ErrorIs(err, locations.ErrInvalidQuantity)
	err = s.service.AddPlacement(s.ctx, sid, s.batItem.ID, s.north.ID, 1)
	s.ErrorIs(err, locations.ErrWarehouseOccupied)
	s.Equal(0, s.backend.CountRequests("POST /api/warehouse-inventory"))

	s.Require().NoError(s.service.AddPlacement(s.ctx, sid, s.batItem.ID, s.east.ID, 4))

	st := s.state()
	s.Len(st.Modal.Placements, 3)
	s.Equal(12, st.Modal.Total())
	item, _ := models.FindInventoryItem(st.AllItems, s.batItem.ID)
	s.Equal(12, item.Total())
	s.Empty(st.Modal.AddOptions(st.Warehouses))
	s.Equal("Item added to warehouse successfully", s.lastBanner().Message)

	locs, err := client.NewAPIClient(s.backend.BaseURL(), time.Second).ListItemLocations(s.ctx, s.batItem.ID)
	s.Require().NoError(err)
	s.Len(locs, 3)
	s.Equal(4, locs[2].Quantity)
}

func (s *DashboardServiceTestSuite) TestAddPlacement_CapacityErrorKeepsState() {
	s.openBatItem()

	err := s.service.AddPlacement(s.ctx, sid, s.batItem.ID, s.east.ID, 21)
	s.Require().Error(err)
	s.Equal(400, client.StatusCode(err))

	st := s.state()
	s.Len(st.Modal.Placements, 2)
	s.Contains(s.lastBanner().Message, "insufficient capacity")
}

func (s *DashboardServiceTestSuite) TestAddPlacement_StaleItemIsRejected() {
	s.openBatItem()

	err := s.service.AddPlacement(s.ctx, sid, s.ballItem.ID, s.east.ID, 1)
	s.ErrorIs(err, locations.ErrItemMismatch)
	s.Equal(0, s.backend.CountRequests("POST /api/warehouse-inventory"))

	st := s.state()
	s.Equal(s.batItem.ID, st.Modal.ItemID)
	s.Len(st.Modal.Placements, 2)
	ball, _ := models.FindInventoryItem(st.AllItems, s.ballItem.ID)
	s.Zero(ball.Total(), "nothing is added to the other item")
	s.Equal(store.BannerWarning, s.lastBanner().Kind)
}

func (s *DashboardServiceTestSuite) TestUpdatePlacementQuantity() {
	s.openBatItem()

	s.ErrorIs(s.service.UpdatePlacementQuantity(s.ctx, sid, s.northPlacement, -1), locations.ErrInvalidQuantity)
	s.ErrorIs(s.service.UpdatePlacementQuantity(s.ctx, sid, 999, 1), locations.ErrPlacementNotFound)

	s.Require().NoError(s.service.UpdatePlacementQuantity(s.ctx, sid, s.northPlacement, 10))
	st := s.state()
	p, ok := st.Modal.Placement(s.northPlacement)
	s.Require().True(ok)
	s.Equal(10, p.Quantity)
	s.Equal(15, st.Modal.Total())
}

func (s *DashboardServiceTestSuite) TestUpdatePlacementQuantity_BackendRejectionKeepsState() {
	s.openBatItem()

	err := s.service.UpdatePlacementQuantity(s.ctx, sid, s.northPlacement, 200)
	s.Require().Error(err)
	s.Equal(400, client.StatusCode(err))
	s.Equal(1, s.backend.CountRequests("PUT /api/warehouse-inventory/"))

	st := s.state()
	p, ok := st.Modal.Placement(s.northPlacement)
	s.Require().True(ok)
	s.Equal(3, p.Quantity)
	s.Equal(8, st.Modal.Total())
	b := s.lastBanner()
	s.Equal(store.BannerDanger, b.Kind)
	s.Equal("Warehouse 'North' has insufficient capacity for additional 197 units", b.Message)
}

func (s *DashboardServiceTestSuite) TestSubmitTransfer_BackendRejectionKeepsTransferring() {
	s.backend.SeedPlacement(s.ballItem.ID, s.east.ID, 19)
	s.openBatItem()
	s.Require().NoError(s.service.BeginTransfer(s.ctx, sid, s.northPlacement))

	err := s.service.SubmitTransfer(s.ctx, sid, s.east.ID, 2)
	s.Require().Error(err)
	s.Equal(400, client.StatusCode(err))
	s.Equal(1, s.backend.CountRequests("POST /api/warehouse-inventory/transfer"))

	st := s.state()
	s.Equal(locations.Transferring, st.Modal.Mode, "the user can pick another destination")
	s.Equal(s.northPlacement, st.Modal.TransferSourceID)
	s.Len(st.Modal.Placements, 2)
	s.Equal(8, st.Modal.Total())
	b := s.lastBanner()
	s.Equal(store.BannerDanger, b.Kind)
	s.Equal("Destination warehouse has insufficient capacity", b.Message)
}

func (s *DashboardServiceTestSuite) TestSubmitTransfer_ExceedingSourceChangesNothing() {
	s.openBatItem()
	s.Require().NoError(s.service.BeginTransfer(s.ctx, sid, s.northPlacement))
	before := s.state().Modal

	err := s.service.SubmitTransfer(s.ctx, sid, s.east.ID, 4)
	s.ErrorIs(err, locations.ErrExceedsSource)
	s.ErrorIs(s.service.SubmitTransfer(s.ctx, sid, s.north.ID, 1), locations.ErrSameWarehouse)
	s.ErrorIs(s.service.SubmitTransfer(s.ctx, sid, 0, 1), locations.ErrMissingDestination)

	s.Equal(before, s.state().Modal)
	s.Equal(0, s.backend.CountRequests("POST /api/warehouse-inventory/transfer"))
	s.Equal(store.BannerWarning, s.lastBanner().Kind)
}

func (s *DashboardServiceTestSuite) TestSubmitTransfer() {
	s.openBatItem()
	s.Require().NoError(s.service.BeginTransfer(s.ctx, sid, s.northPlacement))
	s.Equal(locations.Transferring, s.state().Modal.Mode)

	s.Require().NoError(s.service.SubmitTransfer(s.ctx, sid, s.east.ID, 2))

	st := s.state()
	s.Equal(locations.Viewing, st.Modal.Mode)
	s.Len(st.Modal.Placements, 3)
	s.Equal(8, st.Modal.Total())
	north, _ := models.FindWarehouse(st.Warehouses, s.north.ID)
	s.Equal(1, north.CurrentCapacity)
	s.Equal("Item transferred successfully", s.lastBanner().Message)
}

func (s *DashboardServiceTestSuite) TestCancelTransfer() {
	s.openBatItem()
	s.Require().NoError(s.service.BeginTransfer(s.ctx, sid, s.southPlacement))
	s.Require().NoError(s.service.CancelTransfer(s.ctx, sid))

	st := s.state()
	s.Equal(locations.Viewing, st.Modal.Mode)
	s.Len(st.Modal.Placements, 2)

	s.Require().NoError(s.service.CloseLocations(s.ctx, sid))
	s.False(s.state().Modal.IsOpen())
}

func (s *DashboardServiceTestSuite) TestRemovePlacement_RequiresConfirmation() {
	s.openBatItem()

	err := s.service.RemovePlacement(s.ctx, sid, s.northPlacement, false)
	s.ErrorIs(err, ErrConfirmationRequired)
	s.Equal(0, s.backend.CountRequests("DELETE"))
	s.Len(s.state().Modal.Placements, 2)
	s.reconciler.AssertNotCalled(s.T(), "ScheduleReconcile", mock.Anything, mock.Anything)
}

func (s *DashboardServiceTestSuite) TestRemovePlacement_OptimisticThenReconciled() {
	s.reconciler.On("ScheduleReconcile", sid, reconcileDelay).Return(nil).Once()
	s.openBatItem()

	s.Require().NoError(s.service.RemovePlacement(s.ctx, sid, s.northPlacement, true))

	st := s.state()
	s.Require().True(st.Modal.IsOpen(), "one placement is left")
	s.Require().Len(st.Modal.Placements, 1)
	s.Equal(s.southPlacement, st.Modal.Placements[0].ID)
	item, _ := models.FindInventoryItem(st.AllItems, s.batItem.ID)
	s.Equal(5, item.Total())
	s.Equal(5, item.TotalQuantity)
	s.reconciler.AssertExpectations(s.T())

	// the server moved on meanwhile; the delayed refetch wins
	s.backend.SetPlacementQuantity(s.southPlacement, 7)
	section, err := s.service.Reconcile(s.ctx, sid)
	s.Require().NoError(err)
	s.Equal("inventory", section)

	st = s.state()
	s.Require().Len(st.Modal.Placements, 1)
	s.Equal(7, st.Modal.Placements[0].Quantity)
}

func (s *DashboardServiceTestSuite) TestRemovePlacement_BackendFailureKeepsPlacement() {
	s.openBatItem()
	s.backend.FailNext("DELETE /api/warehouse-inventory", 1)

	err := s.service.RemovePlacement(s.ctx, sid, s.northPlacement, true)
	s.Require().Error(err)
	s.Equal(500, client.StatusCode(err))

	st := s.state()
	s.Len(st.Modal.Placements, 2, "nothing is removed locally")
	item, _ := models.FindInventoryItem(st.AllItems, s.batItem.ID)
	s.Equal(8, item.Total())
	b := s.lastBanner()
	s.Equal(store.BannerDanger, b.Kind)
	s.Equal("simulated failure", b.Message)
	s.reconciler.AssertNotCalled(s.T(), "ScheduleReconcile", mock.Anything, mock.Anything)
}

func (s *DashboardServiceTestSuite) TestRemovePlacement_RevisitWaitsForReconcile() {
	s.reconciler.On("ScheduleReconcile", sid, reconcileDelay).Return(nil).Once()
	svc := s.service.(*dashboardService)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	s.openBatItem()

	s.Require().NoError(s.service.RemovePlacement(s.ctx, sid, s.northPlacement, true))
	s.Equal(now.Add(reconcileDelay), s.state().ReconcileDue)
	before := s.backend.CountRequests("GET /api/inventory")

	// the redirect after the removal renders the optimistic state
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))
	s.Equal(before, s.backend.CountRequests("GET /api/inventory"))
	s.Len(s.state().Modal.Placements, 1)

	_, err := s.service.Reconcile(s.ctx, sid)
	s.Require().NoError(err)
	s.True(s.state().ReconcileDue.IsZero())
	s.Equal(before+1, s.backend.CountRequests("GET /api/inventory"))

	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))
	s.Equal(before+2, s.backend.CountRequests("GET /api/inventory"))
}

func (s *DashboardServiceTestSuite) TestRemovePlacement_OtherSectionStillLoads() {
	s.reconciler.On("ScheduleReconcile", sid, reconcileDelay).Return(nil).Once()
	s.openBatItem()
	s.Require().NoError(s.service.RemovePlacement(s.ctx, sid, s.northPlacement, true))
	before := s.backend.CountRequests("GET /api/warehouses")

	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionWarehouses))
	s.Equal(before+1, s.backend.CountRequests("GET /api/warehouses"))
}

func (s *DashboardServiceTestSuite) TestRemovePlacement_LastOneClosesModal() {
	s.reconciler.On("ScheduleReconcile", sid, reconcileDelay).Return(nil).Twice()
	s.openBatItem()

	s.Require().NoError(s.service.RemovePlacement(s.ctx, sid, s.northPlacement, true))
	s.True(s.state().Modal.IsOpen())
	s.Require().NoError(s.service.RemovePlacement(s.ctx, sid, s.southPlacement, true))
	s.False(s.state().Modal.IsOpen())

	s.ErrorIs(s.service.RemovePlacement(s.ctx, sid, s.southPlacement, true), locations.ErrModalClosed)
	s.reconciler.AssertExpectations(s.T())
}

func (s *DashboardServiceTestSuite) TestSearch_ShortTermKeepsList() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))

	applied, err := s.service.Search(s.ctx, sid, "B")
	s.Require().NoError(err)
	s.False(applied)
	s.Equal(0, s.backend.CountRequests("GET /api/inventory/search"))
	s.Len(s.state().Items, 2)

	applied, err = s.service.Search(s.ctx, sid, "bat")
	s.Require().NoError(err)
	s.True(applied)
	s.Equal(1, s.backend.CountRequests("GET /api/inventory/search"))
	st := s.state()
	s.Require().Len(st.Items, 1)
	s.Equal("BAT-001", st.Items[0].SerialNumber)
	s.Len(st.AllItems, 2, "the canonical cache is untouched")

	applied, err = s.service.Search(s.ctx, sid, "b")
	s.Require().NoError(err)
	s.False(applied)
	s.Len(s.state().Items, 1, "a single character leaves the list unchanged")

	applied, err = s.service.Search(s.ctx, sid, "  ")
	s.Require().NoError(err)
	s.True(applied)
	st = s.state()
	s.Nil(st.SearchBase)
	s.Len(st.Items, 2)
}

func (s *DashboardServiceTestSuite) TestSearch_NewerRequestSupersedes() {
	service := s.newService(filter.StrategyServer, 50*time.Millisecond)
	s.Require().NoError(service.ShowSection(s.ctx, sid, store.SectionInventory))

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = service.Search(s.ctx, sid, "bat")
	}()
	time.Sleep(10 * time.Millisecond)
	applied, err := service.Search(s.ctx, sid, "ball")
	wg.Wait()

	s.ErrorIs(firstErr, filter.ErrSuperseded)
	s.Require().NoError(err)
	s.True(applied)
	s.Equal(1, s.backend.CountRequests("GET /api/inventory/search"))

	st, err := service.State(s.ctx, sid)
	s.Require().NoError(err)
	s.Require().Len(st.Items, 1)
	s.Equal("BAL-001", st.Items[0].SerialNumber)
}

func (s *DashboardServiceTestSuite) TestSetFilter_ComposesWithServerSearch() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))

	s.Require().NoError(s.service.SetFilter(s.ctx, sid, filter.Criteria{Term: "001", WarehouseID: s.south.ID}))
	st := s.state()
	s.Len(st.SearchBase, 2)
	s.Require().Len(st.Items, 1)
	s.Equal("BAT-001", st.Items[0].SerialNumber)

	// reconciling repeats the active search
	_, err := s.service.Reconcile(s.ctx, sid)
	s.Require().NoError(err)
	s.Equal(2, s.backend.CountRequests("GET /api/inventory/search"))
	s.Len(s.state().Items, 1)

	s.Require().NoError(s.service.ClearFilter(s.ctx, sid))
	st = s.state()
	s.Equal(filter.Criteria{}, st.Filter)
	s.Nil(st.SearchBase)
	s.Len(st.Items, 2)
}

func (s *DashboardServiceTestSuite) TestSetFilter_SearchFailureReloadsAll() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))
	s.backend.FailNext("GET /api/inventory/search", 1)

	s.Require().NoError(s.service.SetFilter(s.ctx, sid, filter.Criteria{Term: "bat"}))

	st := s.state()
	s.Nil(st.SearchBase)
	s.Empty(st.Filter.Term)
	s.Len(st.Items, 2)
	s.Equal("Search failed, showing all items", s.lastBanner().Message)
}

func (s *DashboardServiceTestSuite) TestSetFilter_ClientStrategy() {
	service := s.newService(filter.StrategyClient, 0)
	s.Require().NoError(service.ShowSection(s.ctx, sid, store.SectionInventory))

	s.Require().NoError(service.SetFilter(s.ctx, sid, filter.Criteria{Term: "l", ProductTypeID: s.ball.ID}))
	s.Equal(0, s.backend.CountRequests("GET /api/inventory/search"))

	st, err := service.State(s.ctx, sid)
	s.Require().NoError(err)
	s.Require().Len(st.Items, 1)
	s.Equal("BAL-001", st.Items[0].SerialNumber)
}

func (s *DashboardServiceTestSuite) TestSetWarehouseStatus() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionWarehouses))

	s.Require().NoError(s.service.SetWarehouseStatus(s.ctx, sid, models.WarehouseInactive))
	s.Equal(1, s.backend.CountRequests("GET /api/warehouses/status/INACTIVE"))
	st := s.state()
	s.Require().Len(st.VisibleWarehouses(), 1)
	s.Equal("Closed", st.VisibleWarehouses()[0].Name)
	s.Len(st.Warehouses, 4, "selects elsewhere keep every warehouse")

	// saving reloads the scoped listing too
	s.Require().NoError(s.service.SaveWarehouse(s.ctx, sid, 0, models.WarehouseRequest{
		Name: "Annex", Location: "Hove", MaxCapacity: 5, Status: models.WarehouseInactive,
	}))
	s.Len(s.state().VisibleWarehouses(), 2)

	s.ErrorIs(s.service.SetWarehouseStatus(s.ctx, sid, "CLOSED"), ErrUnknownStatus)
	s.Equal(models.WarehouseInactive, s.state().Scope.WarehouseStatus)

	s.Require().NoError(s.service.SetWarehouseStatus(s.ctx, sid, ""))
	st = s.state()
	s.Nil(st.ScopedWarehouses)
	s.Len(st.VisibleWarehouses(), 5)
}

func (s *DashboardServiceTestSuite) TestSetProductCategory() {
	s.Require().NoError(s.service.SetProductCategory(s.ctx, sid, " Balls "))

	s.Equal(1, s.backend.CountRequests("GET /api/products/category/Balls"))
	st := s.state()
	s.Equal(store.SectionProducts, st.Section)
	s.Require().Len(st.VisibleProductTypes(), 1)
	s.Equal("Leather Ball", st.VisibleProductTypes()[0].Name)
	s.Len(st.ProductTypes, 2)
}

func (s *DashboardServiceTestSuite) TestSetMultiLocationOnly() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))

	s.Require().NoError(s.service.SetMultiLocationOnly(s.ctx, sid, true))
	s.Equal(1, s.backend.CountRequests("GET /api/inventory/multi-location"))
	st := s.state()
	s.Require().Len(st.Items, 1)
	s.Equal("BAT-001", st.Items[0].SerialNumber)

	// reloads keep the listing current
	s.Require().NoError(s.service.SetFilter(s.ctx, sid, filter.Criteria{Term: "bat"}))
	s.Len(s.state().Items, 1)
	_, err := s.service.Reconcile(s.ctx, sid)
	s.Require().NoError(err)
	s.Equal(2, s.backend.CountRequests("GET /api/inventory/multi-location"))

	s.Require().NoError(s.service.SetMultiLocationOnly(s.ctx, sid, false))
	st = s.state()
	s.Nil(st.MultiLocation)
	s.Len(st.Items, 1, "the search still applies")
}

func (s *DashboardServiceTestSuite) TestSetMultiLocationOnly_FailureTurnsItOff() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionInventory))
	s.backend.FailNext("GET /api/inventory/multi-location", 1)

	s.Require().Error(s.service.SetMultiLocationOnly(s.ctx, sid, true))
	st := s.state()
	s.False(st.Scope.MultiLocationOnly)
	s.Len(st.Items, 2)
	s.Equal("Failed to load inventory items", s.lastBanner().Message)
}

func (s *DashboardServiceTestSuite) TestRefresh_ReloadsCurrentSection() {
	s.Require().NoError(s.service.ShowSection(s.ctx, sid, store.SectionProducts))
	before := s.backend.CountRequests("GET /api/products")

	section, err := s.service.Refresh(s.ctx, sid)
	s.Require().NoError(err)
	s.Equal("products", section)
	s.Equal(before+1, s.backend.CountRequests("GET /api/products"))
	s.Equal(0, s.backend.CountRequests("GET /api/warehouses"))
}

func (s *DashboardServiceTestSuite) TestSweep_FreesIdleSessions() {
	api := client.NewAPIClient(s.backend.BaseURL(), 2*time.Second)
	st := store.NewStore(caching.NewMemorySessionStore(), 20*time.Millisecond, filter.StrategyServer)
	debouncer := filter.NewDebouncer(0)
	service := NewDashboardService(api, st, debouncer, s.reconciler, Options{SearchMinLength: 2})

	for i := 0; i < 20; i++ {
		_, err := service.Search(s.ctx, fmt.Sprintf("bot-%d", i), "bat")
		s.Require().NoError(err)
	}
	s.Equal(20, debouncer.Sessions())

	time.Sleep(50 * time.Millisecond)
	swept, err := service.Sweep(s.ctx)
	s.Require().NoError(err)
	s.Equal(20, swept)
	s.Zero(debouncer.Sessions())
}

func TestBannerText(t *testing.T) {
	assert.Equal(t, "Name is required", bannerText(ErrNameRequired))
	assert.Equal(t, "Warehouse full", bannerText(&client.APIError{StatusCode: 400, Message: "Warehouse full"}))
}

func TestSectionCollections(t *testing.T) {
	require.Equal(t, store.Warehouses, sectionCollections(store.SectionWarehouses))
	require.Equal(t, store.ProductTypes, sectionCollections(store.SectionProducts))
	require.Equal(t, store.AllCollections, sectionCollections(store.SectionInventory))
	require.Equal(t, store.AllCollections, sectionCollections(store.SectionDashboard))
}
