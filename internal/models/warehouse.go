package models

type WarehouseStatus string

const (
	WarehouseActive   WarehouseStatus = "ACTIVE"
	WarehouseInactive WarehouseStatus = "INACTIVE"
)

// Warehouse mirrors the BatStats warehouse resource. AvailableCapacity and
// CapacityPercentage are computed by the backend.
type Warehouse struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	Location           string          `json:"location"`
	MaxCapacity        int             `json:"maxCapacity"`
	CurrentCapacity    int             `json:"currentCapacity"`
	AvailableCapacity  int             `json:"availableCapacity"`
	CapacityPercentage float64         `json:"capacityPercentage"`
	Status             WarehouseStatus `json:"status"`
}

// IsActive reports whether the warehouse accepts new stock
func (w Warehouse) IsActive() bool {
	return w.Status == WarehouseActive
}

// Percent returns the server-computed capacity percentage, deriving it from
// the capacity counts only when the backend left it out.
func (w Warehouse) Percent() float64 {
	if w.CapacityPercentage != 0 || w.MaxCapacity <= 0 {
		return w.CapacityPercentage
	}
	return float64(w.CurrentCapacity) / float64(w.MaxCapacity) * 100
}

// WarehouseRequest is the body for creating or updating a warehouse
type WarehouseRequest struct {
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	MaxCapacity int             `json:"maxCapacity"`
	Status      WarehouseStatus `json:"status"`
}

// FindWarehouse looks up a warehouse by id with a linear scan
func FindWarehouse(warehouses []Warehouse, id int64) (*Warehouse, bool) {
	for i := range warehouses {
		if warehouses[i].ID == id {
			return &warehouses[i], true
		}
	}
	return nil, false
}
