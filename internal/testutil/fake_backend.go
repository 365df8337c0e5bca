package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"batstats/internal/models"

	"github.com/labstack/echo/v4"
)

// FakeBackend is an in-memory stand-in for the BatStats REST API. It keeps the
// capacity and transfer rules of the real service so that dashboard code can
// be exercised end to end.
type FakeBackend struct {
	Server *httptest.Server

	mu           sync.Mutex
	nextID       int64
	warehouses   map[int64]*models.Warehouse
	productTypes map[int64]*models.ProductType
	items        map[int64]*models.InventoryItem
	placements   map[int64]*placement
	requests     []string
	failures     map[string]int
}

type placement struct {
	id          int64
	warehouseID int64
	itemID      int64
	quantity    int
}

// NewFakeBackend starts a fake backend that is closed when the test ends
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	fb := &FakeBackend{
		nextID:       1,
		warehouses:   make(map[int64]*models.Warehouse),
		productTypes: make(map[int64]*models.ProductType),
		items:        make(map[int64]*models.InventoryItem),
		placements:   make(map[int64]*placement),
		failures:     make(map[string]int),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(fb.record)

	api := e.Group("/api")
	api.GET("/warehouses", fb.listWarehouses)
	api.GET("/warehouses/:id", fb.getWarehouse)
	api.GET("/warehouses/status/:status", fb.listWarehousesByStatus)
	api.POST("/warehouses", fb.createWarehouse)
	api.PUT("/warehouses/:id", fb.updateWarehouse)
	api.DELETE("/warehouses/:id", fb.deleteWarehouse)

	api.GET("/inventory", fb.listItems)
	api.GET("/inventory/search", fb.searchItems)
	api.GET("/inventory/multi-location", fb.multiLocationItems)
	api.GET("/inventory/:id", fb.getItem)
	api.POST("/inventory", fb.createItem)
	api.PUT("/inventory/:id", fb.updateItem)
	api.DELETE("/inventory/:id", fb.deleteItem)
	api.POST("/inventory/transfer", fb.transfer)

	api.GET("/products", fb.listProductTypes)
	api.GET("/products/category/:category", fb.listProductTypesByCategory)
	api.POST("/products", fb.createProductType)
	api.PUT("/products/:id", fb.updateProductType)
	api.DELETE("/products/:id", fb.deleteProductType)

	api.GET("/warehouse-inventory/item/:id", fb.itemLocations)
	api.GET("/warehouse-inventory/item/:id/total", fb.itemTotal)
	api.POST("/warehouse-inventory", fb.addPlacement)
	api.PUT("/warehouse-inventory/:id", fb.updatePlacement)
	api.DELETE("/warehouse-inventory/:id", fb.deletePlacement)
	api.DELETE("/warehouse-inventory/warehouse/:warehouseId/item/:itemId", fb.removeFromWarehouse)
	api.POST("/warehouse-inventory/transfer", fb.transfer)

	fb.Server = httptest.NewServer(e)
	t.Cleanup(fb.Server.Close)
	return fb
}

// BaseURL is the API root to hand to the client
func (fb *FakeBackend) BaseURL() string {
	return fb.Server.URL + "/api"
}

// FailNext makes the next n requests whose "METHOD path" starts with prefix
// answer 500.
func (fb *FakeBackend) FailNext(prefix string, n int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failures[prefix] = n
}

// Requests returns every "METHOD path" seen so far
func (fb *FakeBackend) Requests() []string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]string, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// CountRequests counts recorded requests starting with prefix
func (fb *FakeBackend) CountRequests(prefix string) int {
	n := 0
	for _, r := range fb.Requests() {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// SeedWarehouse adds a warehouse directly
func (fb *FakeBackend) SeedWarehouse(name string, maxCapacity int, status models.WarehouseStatus) models.Warehouse {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	w := &models.Warehouse{ID: fb.newID(), Name: name, Location: name + " City", MaxCapacity: maxCapacity, Status: status}
	fb.warehouses[w.ID] = w
	return fb.warehouseView(w)
}

func (fb *FakeBackend) SeedProductType(name, category string) models.ProductType {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p := &models.ProductType{ID: fb.newID(), Name: name, Category: category, UnitOfMeasure: "unit"}
	fb.productTypes[p.ID] = p
	return *p
}

func (fb *FakeBackend) SeedItem(serial string, productTypeID int64) models.InventoryItem {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	item := &models.InventoryItem{ID: fb.newID(), SerialNumber: serial, ProductType: fb.productTypes[productTypeID]}
	fb.items[item.ID] = item
	return fb.itemView(item)
}

// SeedPlacement places quantity of an item in a warehouse without capacity checks
func (fb *FakeBackend) SeedPlacement(itemID, warehouseID int64, quantity int) int64 {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p := &placement{id: fb.newID(), warehouseID: warehouseID, itemID: itemID, quantity: quantity}
	fb.placements[p.id] = p
	return p.id
}

// SetPlacementQuantity changes a placement behind the dashboard's back
func (fb *FakeBackend) SetPlacementQuantity(locationID int64, quantity int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if p, ok := fb.placements[locationID]; ok {
		p.quantity = quantity
	}
}

// Item returns the current server view of an item
func (fb *FakeBackend) Item(id int64) (models.InventoryItem, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	item, ok := fb.items[id]
	if !ok {
		return models.InventoryItem{}, false
	}
	return fb.itemView(item), true
}

func (fb *FakeBackend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + c.Request().URL.Path
		fb.mu.Lock()
		fb.requests = append(fb.requests, key)
		for prefix, n := range fb.failures {
			if n > 0 && strings.HasPrefix(key, prefix) {
				fb.failures[prefix] = n - 1
				fb.mu.Unlock()
				return fail(c, http.StatusInternalServerError, "simulated failure")
			}
		}
		fb.mu.Unlock()
		return next(c)
	}
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    status,
		"error":     http.StatusText(status),
		"message":   message,
	})
}

func (fb *FakeBackend) newID() int64 {
	id := fb.nextID
	fb.nextID++
	return id
}

func idParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func (fb *FakeBackend) used(warehouseID int64) int {
	total := 0
	for _, p := range fb.placements {
		if p.warehouseID == warehouseID {
			total += p.quantity
		}
	}
	return total
}

func (fb *FakeBackend) warehouseView(w *models.Warehouse) models.Warehouse {
	out := *w
	out.CurrentCapacity = fb.used(w.ID)
	out.AvailableCapacity = out.MaxCapacity - out.CurrentCapacity
	if out.MaxCapacity > 0 {
		out.CapacityPercentage = float64(out.CurrentCapacity) / float64(out.MaxCapacity) * 100
	}
	return out
}

func (fb *FakeBackend) locationsFor(itemID int64) []models.WarehouseLocation {
	var ids []int64
	for id, p := range fb.placements {
		if p.itemID == itemID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	locations := make([]models.WarehouseLocation, 0, len(ids))
	for _, id := range ids {
		p := fb.placements[id]
		w := fb.warehouseView(fb.warehouses[p.warehouseID])
		locations = append(locations, models.WarehouseLocation{ID: p.id, Warehouse: &w, Quantity: p.quantity})
	}
	return locations
}

func (fb *FakeBackend) itemView(item *models.InventoryItem) models.InventoryItem {
	out := *item
	out.WarehouseLocations = fb.locationsFor(item.ID)
	out.TotalQuantity = out.Total()
	return out
}

func (fb *FakeBackend) sortedItems(keep func(models.InventoryItem) bool) []models.InventoryItem {
	var ids []int64
	for id := range fb.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]models.InventoryItem, 0, len(ids))
	for _, id := range ids {
		view := fb.itemView(fb.items[id])
		if keep == nil || keep(view) {
			out = append(out, view)
		}
	}
	return out
}

func (fb *FakeBackend) findPlacement(warehouseID, itemID int64) *placement {
	for _, p := range fb.placements {
		if p.warehouseID == warehouseID && p.itemID == itemID {
			return p
		}
	}
	return nil
}

// Warehouses

func (fb *FakeBackend) listWarehouses(c echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return c.JSON(http.StatusOK, fb.sortedWarehouses(""))
}

func (fb *FakeBackend) sortedWarehouses(status models.WarehouseStatus) []models.Warehouse {
	var ids []int64
	for id := range fb.warehouses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.Warehouse, 0, len(ids))
	for _, id := range ids {
		w := fb.warehouses[id]
		if status == "" || w.Status == status {
			out = append(out, fb.warehouseView(w))
		}
	}
	return out
}

func (fb *FakeBackend) getWarehouse(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	w, ok := fb.warehouses[id]
	if !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Warehouse not found with id: %d", id))
	}
	return c.JSON(http.StatusOK, fb.warehouseView(w))
}

func (fb *FakeBackend) listWarehousesByStatus(c echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return c.JSON(http.StatusOK, fb.sortedWarehouses(models.WarehouseStatus(c.Param("status"))))
}

func (fb *FakeBackend) createWarehouse(c echo.Context) error {
	var req models.WarehouseRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.MaxCapacity <= 0 {
		return fail(c, http.StatusBadRequest, "Name and a positive max capacity are required")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	w := &models.Warehouse{ID: fb.newID(), Name: req.Name, Location: req.Location, MaxCapacity: req.MaxCapacity, Status: req.Status}
	if w.Status == "" {
		w.Status = models.WarehouseActive
	}
	fb.warehouses[w.ID] = w
	return c.JSON(http.StatusCreated, fb.warehouseView(w))
}

func (fb *FakeBackend) updateWarehouse(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req models.WarehouseRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	w, ok := fb.warehouses[id]
	if !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Warehouse not found with id: %d", id))
	}
	if req.MaxCapacity < fb.used(id) {
		return fail(c, http.StatusBadRequest, "Max capacity cannot be below current capacity")
	}
	w.Name, w.Location, w.MaxCapacity, w.Status = req.Name, req.Location, req.MaxCapacity, req.Status
	return c.JSON(http.StatusOK, fb.warehouseView(w))
}

func (fb *FakeBackend) deleteWarehouse(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, ok := fb.warehouses[id]; !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Warehouse not found with id: %d", id))
	}
	if fb.used(id) > 0 {
		return fail(c, http.StatusBadRequest, "Cannot delete a warehouse that still holds inventory")
	}
	delete(fb.warehouses, id)
	return c.NoContent(http.StatusNoContent)
}

// Inventory

func (fb *FakeBackend) listItems(c echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return c.JSON(http.StatusOK, fb.sortedItems(nil))
}

func (fb *FakeBackend) searchItems(c echo.Context) error {
	term := strings.ToLower(c.QueryParam("term"))
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return c.JSON(http.StatusOK, fb.sortedItems(func(item models.InventoryItem) bool {
		return strings.Contains(strings.ToLower(item.SerialNumber), term) ||
			strings.Contains(strings.ToLower(item.ProductName()), term)
	}))
}

func (fb *FakeBackend) multiLocationItems(c echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return c.JSON(http.StatusOK, fb.sortedItems(func(item models.InventoryItem) bool {
		return item.LocationCount() > 1
	}))
}

func (fb *FakeBackend) getItem(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	item, ok := fb.items[id]
	if !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Inventory item not found with id: %d", id))
	}
	return c.JSON(http.StatusOK, fb.itemView(item))
}

func (fb *FakeBackend) createItem(c echo.Context) error {
	var req models.InventoryItemRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	pt, ok := fb.productTypes[req.ProductTypeID]
	if !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Product type not found with id: %d", req.ProductTypeID))
	}
	serial := req.SerialNumber
	if serial == "" {
		prefix := strings.ToUpper(pt.Category)
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
		serial = fmt.Sprintf("%s-%03d", prefix, len(fb.items)+1)
	}
	for _, existing := range fb.items {
		if existing.SerialNumber == serial {
			return fail(c, http.StatusConflict, fmt.Sprintf("Item with serial number %s already exists", serial))
		}
	}
	if req.WarehouseID != nil && req.Quantity != nil {
		w, ok := fb.warehouses[*req.WarehouseID]
		if !ok {
			return fail(c, http.StatusNotFound, fmt.Sprintf("Warehouse not found with id: %d", *req.WarehouseID))
		}
		if fb.used(w.ID)+*req.Quantity > w.MaxCapacity {
			return fail(c, http.StatusBadRequest, fmt.Sprintf("Warehouse '%s' has insufficient capacity", w.Name))
		}
	}
	item := &models.InventoryItem{ID: fb.newID(), SerialNumber: serial, ProductType: pt}
	fb.items[item.ID] = item
	if req.WarehouseID != nil && req.Quantity != nil {
		p := &placement{id: fb.newID(), warehouseID: *req.WarehouseID, itemID: item.ID, quantity: *req.Quantity}
		fb.placements[p.id] = p
	}
	return c.JSON(http.StatusCreated, fb.itemView(item))
}

func (fb *FakeBackend) updateItem(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req models.InventoryItemRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	item, ok := fb.items[id]
	if !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Inventory item not found with id: %d", id))
	}
	if req.ProductTypeID != 0 {
		pt, ok := fb.productTypes[req.ProductTypeID]
		if !ok {
			return fail(c, http.StatusNotFound, fmt.Sprintf("Product type not found with id: %d", req.ProductTypeID))
		}
		item.ProductType = pt
	}
	return c.JSON(http.StatusOK, fb.itemView(item))
}

func (fb *FakeBackend) deleteItem(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, ok := fb.items[id]; !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Inventory item not found with id: %d", id))
	}
	delete(fb.items, id)
	for pid, p := range fb.placements {
		if p.itemID == id {
			delete(fb.placements, pid)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (fb *FakeBackend) transfer(c echo.Context) error {
	var req models.TransferRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	source := fb.findPlacement(req.SourceWarehouseID, req.ItemID)
	if source == nil {
		return fail(c, http.StatusNotFound, "Item not found in source warehouse")
	}
	if req.Quantity <= 0 || source.quantity < req.Quantity {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("Insufficient quantity at source. Available: %d", source.quantity))
	}
	dest, ok := fb.warehouses[req.DestinationWarehouseID]
	if !ok {
		return fail(c, http.StatusNotFound, "Destination warehouse not found")
	}
	if fb.used(dest.ID)+req.Quantity > dest.MaxCapacity {
		return fail(c, http.StatusBadRequest, "Destination warehouse has insufficient capacity")
	}
	if source.quantity == req.Quantity {
		delete(fb.placements, source.id)
	} else {
		source.quantity -= req.Quantity
	}
	if existing := fb.findPlacement(dest.ID, req.ItemID); existing != nil {
		existing.quantity += req.Quantity
	} else {
		p := &placement{id: fb.newID(), warehouseID: dest.ID, itemID: req.ItemID, quantity: req.Quantity}
		fb.placements[p.id] = p
	}
	return c.NoContent(http.StatusOK)
}

// Product types

func (fb *FakeBackend) listProductTypes(c echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return c.JSON(http.StatusOK, fb.sortedProductTypes(""))
}

func (fb *FakeBackend) listProductTypesByCategory(c echo.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return c.JSON(http.StatusOK, fb.sortedProductTypes(c.Param("category")))
}

func (fb *FakeBackend) sortedProductTypes(category string) []models.ProductType {
	var ids []int64
	for id := range fb.productTypes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.ProductType, 0, len(ids))
	for _, id := range ids {
		if category == "" || fb.productTypes[id].Category == category {
			out = append(out, *fb.productTypes[id])
		}
	}
	return out
}

func (fb *FakeBackend) createProductType(c echo.Context) error {
	var req models.ProductTypeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return fail(c, http.StatusBadRequest, "Name is required")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p := &models.ProductType{ID: fb.newID(), Name: req.Name, Category: req.Category, UnitOfMeasure: req.UnitOfMeasure, Description: req.Description}
	fb.productTypes[p.ID] = p
	return c.JSON(http.StatusCreated, p)
}

func (fb *FakeBackend) updateProductType(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req models.ProductTypeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p, ok := fb.productTypes[id]
	if !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Product type not found with id: %d", id))
	}
	p.Name, p.Category, p.UnitOfMeasure, p.Description = req.Name, req.Category, req.UnitOfMeasure, req.Description
	return c.JSON(http.StatusOK, p)
}

func (fb *FakeBackend) deleteProductType(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, ok := fb.productTypes[id]; !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Product type not found with id: %d", id))
	}
	for _, item := range fb.items {
		if item.ProductType != nil && item.ProductType.ID == id {
			return fail(c, http.StatusBadRequest, "Product type is still used by inventory items")
		}
	}
	delete(fb.productTypes, id)
	return c.NoContent(http.StatusNoContent)
}

// Placements

func (fb *FakeBackend) itemLocations(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return c.JSON(http.StatusOK, fb.locationsFor(id))
}

func (fb *FakeBackend) itemTotal(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	total := 0
	for _, loc := range fb.locationsFor(id) {
		total += loc.Quantity
	}
	return c.JSON(http.StatusOK, models.TotalQuantity{TotalQuantity: total})
}

func (fb *FakeBackend) addPlacement(c echo.Context) error {
	var req models.AddPlacementRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	item, ok := fb.items[req.InventoryItemID]
	if !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Inventory item not found with id: %d", req.InventoryItemID))
	}
	w, ok := fb.warehouses[req.WarehouseID]
	if !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Warehouse not found with id: %d", req.WarehouseID))
	}
	if fb.findPlacement(w.ID, item.ID) != nil {
		return fail(c, http.StatusConflict, fmt.Sprintf("Item %s already exists in warehouse %s", item.SerialNumber, w.Name))
	}
	if req.Quantity <= 0 {
		return fail(c, http.StatusBadRequest, "Quantity must be at least 1")
	}
	if fb.used(w.ID)+req.Quantity > w.MaxCapacity {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("Warehouse '%s' has insufficient capacity. Available: %d, Required: %d",
			w.Name, w.MaxCapacity-fb.used(w.ID), req.Quantity))
	}
	p := &placement{id: fb.newID(), warehouseID: w.ID, itemID: item.ID, quantity: req.Quantity}
	fb.placements[p.id] = p
	view := fb.warehouseView(w)
	return c.JSON(http.StatusCreated, models.WarehouseLocation{ID: p.id, Warehouse: &view, Quantity: p.quantity})
}

func (fb *FakeBackend) updatePlacement(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	var req models.QuantityUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p, ok := fb.placements[id]
	if !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Warehouse location not found with id: %d", id))
	}
	if req.Quantity <= 0 {
		return fail(c, http.StatusBadRequest, "Quantity must be at least 1")
	}
	w := fb.warehouses[p.warehouseID]
	if diff := req.Quantity - p.quantity; diff > 0 && fb.used(w.ID)+diff > w.MaxCapacity {
		return fail(c, http.StatusBadRequest, fmt.Sprintf("Warehouse '%s' has insufficient capacity for additional %d units", w.Name, diff))
	}
	p.quantity = req.Quantity
	view := fb.warehouseView(w)
	return c.JSON(http.StatusOK, models.WarehouseLocation{ID: p.id, Warehouse: &view, Quantity: p.quantity})
}

func (fb *FakeBackend) deletePlacement(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid id")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if _, ok := fb.placements[id]; !ok {
		return fail(c, http.StatusNotFound, fmt.Sprintf("Warehouse location not found with id: %d", id))
	}
	delete(fb.placements, id)
	return c.NoContent(http.StatusNoContent)
}

func (fb *FakeBackend) removeFromWarehouse(c echo.Context) error {
	warehouseID, err := idParam(c, "warehouseId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid warehouse id")
	}
	itemID, err := idParam(c, "itemId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid item id")
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()
	p := fb.findPlacement(warehouseID, itemID)
	if p == nil {
		return fail(c, http.StatusNotFound, "Item not found in specified warehouse")
	}
	delete(fb.placements, p.id)
	return c.NoContent(http.StatusNoContent)
}
