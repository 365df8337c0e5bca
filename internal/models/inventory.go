package models

// WarehouseLocation is one placement: a warehouse holding some quantity of an item
type WarehouseLocation struct {
	ID        int64      `json:"id"`
	Warehouse *Warehouse `json:"warehouse"`
	Quantity  int        `json:"quantity"`
}

// WarehouseID returns the id of the placement's warehouse, or 0 when the
// backend did not embed it.
func (l WarehouseLocation) WarehouseID() int64 {
	if l.Warehouse == nil {
		return 0
	}
	return l.Warehouse.ID
}

// WarehouseName returns the warehouse name or "Unknown"
func (l WarehouseLocation) WarehouseName() string {
	if l.Warehouse == nil || l.Warehouse.Name == "" {
		return "Unknown"
	}
	return l.Warehouse.Name
}

type InventoryItem struct {
	ID                 int64               `json:"id"`
	SerialNumber       string              `json:"serialNumber"`
	ProductType        *ProductType        `json:"productType"`
	WarehouseLocations []WarehouseLocation `json:"warehouseLocations"`
	TotalQuantity      int                 `json:"totalQuantity,omitempty"`
}

// Total sums the quantities of all placements
func (i InventoryItem) Total() int {
	total := 0
	for _, loc := range i.WarehouseLocations {
		total += loc.Quantity
	}
	return total
}

func (i InventoryItem) LocationCount() int {
	return len(i.WarehouseLocations)
}

// LocationIn returns the placement of the item in the given warehouse
func (i InventoryItem) LocationIn(warehouseID int64) (*WarehouseLocation, bool) {
	for idx := range i.WarehouseLocations {
		if i.WarehouseLocations[idx].WarehouseID() == warehouseID {
			return &i.WarehouseLocations[idx], true
		}
	}
	return nil, false
}

func (i InventoryItem) HoldsWarehouse(warehouseID int64) bool {
	_, ok := i.LocationIn(warehouseID)
	return ok
}

// ProductName returns the product type name or "Unknown Product"
func (i InventoryItem) ProductName() string {
	if i.ProductType == nil || i.ProductType.Name == "" {
		return "Unknown Product"
	}
	return i.ProductType.Name
}

// ProductTypeID returns the product type id, or 0 when missing
func (i InventoryItem) ProductTypeID() int64 {
	if i.ProductType == nil {
		return 0
	}
	return i.ProductType.ID
}

// InventoryItemRequest is the body for creating or updating an item. An empty
// SerialNumber lets the backend generate one; WarehouseID and Quantity place
// the new item on creation.
type InventoryItemRequest struct {
	SerialNumber  string `json:"serialNumber,omitempty"`
	ProductTypeID int64  `json:"productTypeId"`
	WarehouseID   *int64 `json:"warehouseId,omitempty"`
	Quantity      *int   `json:"quantity,omitempty"`
}

func FindInventoryItem(items []InventoryItem, id int64) (*InventoryItem, bool) {
	for idx := range items {
		if items[idx].ID == id {
			return &items[idx], true
		}
	}
	return nil, false
}
