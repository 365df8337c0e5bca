package models

// AddPlacementRequest places an existing item into a warehouse
type AddPlacementRequest struct {
	InventoryItemID int64 `json:"inventoryItemId"`
	WarehouseID     int64 `json:"warehouseId"`
	Quantity        int   `json:"quantity"`
}

// QuantityUpdateRequest sets the quantity held at one placement
type QuantityUpdateRequest struct {
	Quantity int `json:"quantity"`
}

// TransferRequest moves quantity of an item between two warehouses
type TransferRequest struct {
	ItemID                 int64 `json:"itemId"`
	SourceWarehouseID      int64 `json:"sourceWarehouseId"`
	DestinationWarehouseID int64 `json:"destinationWarehouseId"`
	Quantity               int   `json:"quantity"`
}

// TotalQuantity is returned by the item total endpoint
type TotalQuantity struct {
	TotalQuantity int `json:"totalQuantity"`
}
