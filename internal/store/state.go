package store

import (
	"time"

	"batstats/internal/filter"
	"batstats/internal/locations"
	"batstats/internal/models"

	"github.com/google/uuid"
)

type Section string

const (
	SectionDashboard  Section = "dashboard"
	SectionWarehouses Section = "warehouses"
	SectionInventory  Section = "inventory"
	SectionProducts   Section = "products"
)

// ParseSection maps a path segment to a section, defaulting to the dashboard
func ParseSection(s string) Section {
	switch Section(s) {
	case SectionWarehouses, SectionInventory, SectionProducts:
		return Section(s)
	default:
		return SectionDashboard
	}
}

type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerDanger  BannerKind = "danger"
	BannerWarning BannerKind = "warning"
	BannerInfo    BannerKind = "info"
)

// Banner is a transient notification shown above the page content
type Banner struct {
	ID        string     `json:"id"`
	Kind      BannerKind `json:"kind"`
	Message   string     `json:"message"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// EditTarget names the entity currently loaded into an edit form
type EditTarget struct {
	Kind string `json:"kind,omitempty"`
	ID   int64  `json:"id,omitempty"`
}

const (
	EditWarehouse   = "warehouse"
	EditItem        = "item"
	EditProductType = "productType"
)

// Scope narrows a section to a server side listing. The zero value shows
// everything.
type Scope struct {
	WarehouseStatus   models.WarehouseStatus `json:"warehouseStatus,omitempty"`
	Category          string                 `json:"category,omitempty"`
	MultiLocationOnly bool                   `json:"multiLocationOnly,omitempty"`
}

// AppState is everything the dashboard remembers about one browser session.
// Collections are replaced wholesale on every load. SearchBase holds the last
// server search result and is nil when no search is active; SearchTerm is the
// term that produced it. The Scoped collections and MultiLocation are loaded
// alongside their canonical collection while the matching Scope field is set.
// Loaded turns true once every collection arrived in a single load.
type AppState struct {
	Section      Section                `json:"section"`
	Warehouses   []models.Warehouse     `json:"warehouses"`
	AllItems     []models.InventoryItem `json:"allItems"`
	SearchBase   []models.InventoryItem `json:"searchBase"`
	SearchTerm   string                 `json:"searchTerm"`
	Items        []models.InventoryItem `json:"items"`
	ProductTypes []models.ProductType   `json:"productTypes"`
	Filter       filter.Criteria        `json:"filter"`
	Modal        locations.Modal        `json:"modal"`
	Banners      []Banner               `json:"banners"`
	Edit         EditTarget             `json:"edit"`
	Loaded       bool                   `json:"loaded"`

	Scope              Scope                  `json:"scope"`
	ScopedWarehouses   []models.Warehouse     `json:"scopedWarehouses,omitempty"`
	ScopedProductTypes []models.ProductType   `json:"scopedProductTypes,omitempty"`
	MultiLocation      []models.InventoryItem `json:"multiLocation,omitempty"`

	// ReconcileDue is when a scheduled reconcile will refetch the inventory
	ReconcileDue time.Time `json:"reconcileDue"`
}

// NewAppState returns the state of a fresh session
func NewAppState() *AppState {
	return &AppState{
		Section: SectionDashboard,
		Modal:   locations.Modal{Mode: locations.Closed},
	}
}

// Refilter recomputes the displayed items from the canonical or searched set.
// With MultiLocationOnly the items must also be in the server's multi-location
// listing and still be spread over more than one warehouse locally.
func (s *AppState) Refilter(strategy filter.Strategy) {
	s.Items = filter.View(s.AllItems, s.SearchBase, s.Filter, strategy)
	if !s.Scope.MultiLocationOnly {
		return
	}

	spread := make(map[int64]bool, len(s.MultiLocation))
	for _, item := range s.MultiLocation {
		spread[item.ID] = true
	}
	kept := s.Items[:0:0]
	for _, item := range s.Items {
		if spread[item.ID] && item.LocationCount() > 1 {
			kept = append(kept, item)
		}
	}
	s.Items = kept
}

// VisibleWarehouses is the warehouse list of the warehouses page
func (s *AppState) VisibleWarehouses() []models.Warehouse {
	if s.Scope.WarehouseStatus != "" {
		return s.ScopedWarehouses
	}
	return s.Warehouses
}

// VisibleProductTypes is the product type list of the products page
func (s *AppState) VisibleProductTypes() []models.ProductType {
	if s.Scope.Category != "" {
		return s.ScopedProductTypes
	}
	return s.ProductTypes
}

// ReconcilePending reports whether a scheduled reconcile has yet to run
func (s *AppState) ReconcilePending(now time.Time) bool {
	return now.Before(s.ReconcileDue)
}

// PushBanner queues a notification that disappears after ttl
func (s *AppState) PushBanner(kind BannerKind, message string, now time.Time, ttl time.Duration) {
	s.Banners = append(s.Banners, Banner{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		ExpiresAt: now.Add(ttl),
	})
}

// PruneBanners drops expired notifications
func (s *AppState) PruneBanners(now time.Time) {
	kept := s.Banners[:0:0]
	for _, b := range s.Banners {
		if now.Before(b.ExpiresAt) {
			kept = append(kept, b)
		}
	}
	s.Banners = kept
}

// DismissBanner removes one notification by id
func (s *AppState) DismissBanner(id string) {
	kept := s.Banners[:0:0]
	for _, b := range s.Banners {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	s.Banners = kept
}

// ClearSearch forgets the server search result
func (s *AppState) ClearSearch() {
	s.SearchBase = nil
	s.SearchTerm = ""
}

// RemovePlacementLocal drops a placement from every cached copy of the item.
// It is the optimistic half of a removal; the reconcile job restores the
// server's view afterwards.
func (s *AppState) RemovePlacementLocal(itemID, placementID int64) {
	strip := func(items []models.InventoryItem) {
		for i := range items {
			if items[i].ID != itemID {
				continue
			}
			kept := make([]models.WarehouseLocation, 0, len(items[i].WarehouseLocations))
			for _, loc := range items[i].WarehouseLocations {
				if loc.ID != placementID {
					kept = append(kept, loc)
				}
			}
			items[i].WarehouseLocations = kept
			items[i].TotalQuantity = items[i].Total()
		}
	}
	strip(s.AllItems)
	strip(s.SearchBase)
	strip(s.MultiLocation)
	strip(s.Items)
}

// Apply installs a snapshot. Only the collections present in the snapshot are
// replaced, each together with its scoped listing.
func (s *AppState) Apply(snap *Snapshot) {
	if snap.Has(Warehouses) {
		s.Warehouses = snap.Warehouses
		s.ScopedWarehouses = snap.ScopedWarehouses
	}
	if snap.Has(Items) {
		s.AllItems = snap.Items
		if snap.Searched {
			s.SearchBase = snap.SearchResults
			s.SearchTerm = snap.SearchTerm
		}
		s.MultiLocation = snap.MultiLocation
		s.Modal.Reconcile(s.AllItems)
	}
	if snap.Has(ProductTypes) {
		s.ProductTypes = snap.ProductTypes
		s.ScopedProductTypes = snap.ScopedProductTypes
	}
	if snap.Has(AllCollections) {
		s.Loaded = true
	}
}
