package locations

import (
	"errors"
	"fmt"

	"batstats/internal/models"
)

type Mode string

const (
	Closed       Mode = "closed"
	Viewing      Mode = "viewing"
	Transferring Mode = "transferring"
)

// Validation failures detected before any request is sent
var (
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrMissingDestination  = errors.New("please select a destination warehouse")
	ErrSameWarehouse       = errors.New("destination must differ from the source warehouse")
	ErrExceedsSource       = errors.New("transfer quantity exceeds the quantity at the source")
	ErrMissingWarehouse    = errors.New("please select a warehouse")
	ErrModalClosed         = errors.New("no item is being managed")
	ErrNotTransferring     = errors.New("no transfer in progress")
	ErrPlacementNotFound   = errors.New("placement not found")
	ErrWarehouseOccupied   = errors.New("item is already stored in that warehouse")
	ErrWarehouseNotAllowed = errors.New("warehouse is not available for this item")
	ErrItemMismatch        = errors.New("the dialog is managing a different item")
)

// Modal is the state of the "manage locations" dialog for one item.
// The zero value is a closed modal.
type Modal struct {
	Mode         Mode                       `json:"mode"`
	ItemID       int64                      `json:"itemId"`
	SerialNumber string                     `json:"serialNumber"`
	ProductName  string                     `json:"productName"`
	Placements   []models.WarehouseLocation `json:"placements"`
	// TransferSourceID is the placement being transferred from while Transferring
	TransferSourceID int64 `json:"transferSourceId"`
}

func (m *Modal) IsOpen() bool {
	return m.Mode == Viewing || m.Mode == Transferring
}

// Open shows the placements of the item. Any previous state is discarded.
func (m *Modal) Open(item models.InventoryItem) {
	*m = Modal{
		Mode:         Viewing,
		ItemID:       item.ID,
		SerialNumber: item.SerialNumber,
		ProductName:  item.ProductName(),
		Placements:   clonePlacements(item.WarehouseLocations),
	}
}

func (m *Modal) Close() {
	*m = Modal{Mode: Closed}
}

// Total is the sum of the displayed placement quantities
func (m *Modal) Total() int {
	total := 0
	for _, p := range m.Placements {
		total += p.Quantity
	}
	return total
}

// Placement finds a displayed placement by id
func (m *Modal) Placement(placementID int64) (*models.WarehouseLocation, bool) {
	for i := range m.Placements {
		if m.Placements[i].ID == placementID {
			return &m.Placements[i], true
		}
	}
	return nil, false
}

func (m *Modal) holds(warehouseID int64) bool {
	for _, p := range m.Placements {
		if p.WarehouseID() == warehouseID {
			return true
		}
	}
	return false
}

// AddOptions lists the active warehouses that do not hold the item yet
func (m *Modal) AddOptions(warehouses []models.Warehouse) []models.Warehouse {
	out := make([]models.Warehouse, 0, len(warehouses))
	for _, w := range warehouses {
		if w.IsActive() && !m.holds(w.ID) {
			out = append(out, w)
		}
	}
	return out
}

// BeginTransfer captures the source placement and switches to Transferring
func (m *Modal) BeginTransfer(placementID int64) error {
	if !m.IsOpen() {
		return ErrModalClosed
	}
	if _, ok := m.Placement(placementID); !ok {
		return ErrPlacementNotFound
	}
	m.Mode = Transferring
	m.TransferSourceID = placementID
	return nil
}

// Source returns the placement being transferred from
func (m *Modal) Source() (*models.WarehouseLocation, bool) {
	if m.Mode != Transferring {
		return nil, false
	}
	return m.Placement(m.TransferSourceID)
}

// TransferOptions lists active warehouses other than the source warehouse
func (m *Modal) TransferOptions(warehouses []models.Warehouse) []models.Warehouse {
	source, ok := m.Source()
	if !ok {
		return nil
	}
	out := make([]models.Warehouse, 0, len(warehouses))
	for _, w := range warehouses {
		if w.IsActive() && w.ID != source.WarehouseID() {
			out = append(out, w)
		}
	}
	return out
}

// MaxTransferQuantity is the quantity held at the source placement
func (m *Modal) MaxTransferQuantity() int {
	source, ok := m.Source()
	if !ok {
		return 0
	}
	return source.Quantity
}

// CancelTransfer returns to Viewing without touching the placements
func (m *Modal) CancelTransfer() {
	if m.Mode == Transferring {
		m.Mode = Viewing
	}
	m.TransferSourceID = 0
}

// RemoveLocal drops a placement from the displayed list and reports whether
// the modal closed because no placement is left.
func (m *Modal) RemoveLocal(placementID int64) bool {
	kept := m.Placements[:0:0]
	for _, p := range m.Placements {
		if p.ID != placementID {
			kept = append(kept, p)
		}
	}
	m.Placements = kept
	if m.Mode == Transferring && m.TransferSourceID == placementID {
		m.CancelTransfer()
	}
	if m.IsOpen() && len(m.Placements) == 0 {
		m.Close()
		return true
	}
	return false
}

// Reconcile re-resolves the managed item against a freshly fetched item list.
// The server copy replaces the displayed placements. The modal closes when the
// item no longer exists and leaves Transferring when its source disappeared.
func (m *Modal) Reconcile(items []models.InventoryItem) {
	if !m.IsOpen() {
		return
	}
	item, ok := models.FindInventoryItem(items, m.ItemID)
	if !ok {
		m.Close()
		return
	}
	m.SerialNumber = item.SerialNumber
	m.ProductName = item.ProductName()
	m.Placements = clonePlacements(item.WarehouseLocations)

	if m.Mode == Transferring {
		if _, ok := m.Placement(m.TransferSourceID); !ok {
			m.CancelTransfer()
		}
	}
}

// ValidateAdd checks an "add to warehouse" submission for itemID
func (m *Modal) ValidateAdd(warehouses []models.Warehouse, itemID, warehouseID int64, quantity int) error {
	if !m.IsOpen() {
		return ErrModalClosed
	}
	if itemID != m.ItemID {
		return ErrItemMismatch
	}
	if warehouseID == 0 {
		return ErrMissingWarehouse
	}
	if err := ValidateQuantity(quantity); err != nil {
		return err
	}
	if m.holds(warehouseID) {
		return ErrWarehouseOccupied
	}
	if _, ok := models.FindWarehouse(m.AddOptions(warehouses), warehouseID); !ok {
		return ErrWarehouseNotAllowed
	}
	return nil
}

// ValidateUpdate checks a quantity change for one of the displayed placements
func (m *Modal) ValidateUpdate(placementID int64, quantity int) error {
	if !m.IsOpen() {
		return ErrModalClosed
	}
	if _, ok := m.Placement(placementID); !ok {
		return ErrPlacementNotFound
	}
	return ValidateQuantity(quantity)
}

// ValidateTransfer checks a transfer submission against the captured source
// and returns the request to send.
func (m *Modal) ValidateTransfer(destinationID int64, quantity int) (models.TransferRequest, error) {
	source, ok := m.Source()
	if !ok {
		return models.TransferRequest{}, ErrNotTransferring
	}
	if destinationID == 0 {
		return models.TransferRequest{}, ErrMissingDestination
	}
	if destinationID == source.WarehouseID() {
		return models.TransferRequest{}, ErrSameWarehouse
	}
	if err := ValidateQuantity(quantity); err != nil {
		return models.TransferRequest{}, err
	}
	if quantity > source.Quantity {
		return models.TransferRequest{}, fmt.Errorf("%w (max %d)", ErrExceedsSource, source.Quantity)
	}
	return models.TransferRequest{
		ItemID:                 m.ItemID,
		SourceWarehouseID:      source.WarehouseID(),
		DestinationWarehouseID: destinationID,
		Quantity:               quantity,
	}, nil
}

func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return nil
}

func clonePlacements(in []models.WarehouseLocation) []models.WarehouseLocation {
	out := make([]models.WarehouseLocation, len(in))
	copy(out, in)
	return out
}
