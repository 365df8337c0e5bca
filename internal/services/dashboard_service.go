package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"batstats/internal/client"
	"batstats/internal/filter"
	"batstats/internal/locations"
	"batstats/internal/models"
	"batstats/internal/store"

	"golang.org/x/sync/errgroup"
)

// ErrConfirmationRequired is returned by destructive actions that were
// submitted without an explicit confirmation. No request is sent.
var ErrConfirmationRequired = errors.New("confirmation required")

// Form validation failures
var (
	ErrNameRequired        = errors.New("name is required")
	ErrInvalidCapacity     = errors.New("maximum capacity must be at least 1")
	ErrMissingProductType  = errors.New("please select a product type")
	ErrNotFound            = errors.New("not found")
	ErrInvalidEditKind     = errors.New("unknown edit target")
	ErrMissingItem         = errors.New("please select an item")
	ErrMissingSourceOrDest = errors.New("please select both a source and a destination warehouse")
	ErrUnknownStatus       = errors.New("unknown warehouse status")
)

// Reconciler schedules a delayed refetch whose result overwrites the
// session's optimistic local state.
type Reconciler interface {
	ScheduleReconcile(sessionID string, delay time.Duration) error
}

// Options tunes the dashboard behaviour
type Options struct {
	SearchMinLength int
	ReconcileDelay  time.Duration
	BannerTTL       time.Duration
}

// DashboardService is the action boundary of the dashboard. Every method
// reports failures as banners on the session state and also returns them.
type DashboardService interface {
	State(ctx context.Context, sessionID string) (*store.AppState, error)
	ShowSection(ctx context.Context, sessionID string, section store.Section) error
	DismissBanner(ctx context.Context, sessionID, bannerID string) error

	SaveWarehouse(ctx context.Context, sessionID string, id int64, req models.WarehouseRequest) error
	DeleteWarehouse(ctx context.Context, sessionID string, id int64, confirmed bool) error

	SaveInventoryItem(ctx context.Context, sessionID string, id int64, req models.InventoryItemRequest) error
	DeleteInventoryItem(ctx context.Context, sessionID string, id int64, confirmed bool) error
	TransferInventoryItem(ctx context.Context, sessionID string, req models.TransferRequest) error

	SaveProductType(ctx context.Context, sessionID string, id int64, req models.ProductTypeRequest) error
	DeleteProductType(ctx context.Context, sessionID string, id int64, confirmed bool) error

	BeginEdit(ctx context.Context, sessionID, kind string, id int64) error
	CancelEdit(ctx context.Context, sessionID string) error

	SetFilter(ctx context.Context, sessionID string, criteria filter.Criteria) error
	ClearFilter(ctx context.Context, sessionID string) error
	SetWarehouseStatus(ctx context.Context, sessionID string, status models.WarehouseStatus) error
	SetProductCategory(ctx context.Context, sessionID, category string) error
	SetMultiLocationOnly(ctx context.Context, sessionID string, on bool) error
	Search(ctx context.Context, sessionID, term string) (applied bool, err error)

	OpenLocations(ctx context.Context, sessionID string, itemID int64) error
	CloseLocations(ctx context.Context, sessionID string) error
	AddPlacement(ctx context.Context, sessionID string, itemID, warehouseID int64, quantity int) error
	UpdatePlacementQuantity(ctx context.Context, sessionID string, placementID int64, quantity int) error
	RemovePlacement(ctx context.Context, sessionID string, placementID int64, confirmed bool) error
	BeginTransfer(ctx context.Context, sessionID string, placementID int64) error
	CancelTransfer(ctx context.Context, sessionID string) error
	SubmitTransfer(ctx context.Context, sessionID string, destinationID int64, quantity int) error

	Reconcile(ctx context.Context, sessionID string) (section string, err error)
	Refresh(ctx context.Context, sessionID string) (section string, err error)
	Sweep(ctx context.Context) (int, error)
}

type dashboardService struct {
	api        client.APIClient
	store      *store.Store
	debouncer  *filter.Debouncer
	reconciler Reconciler
	opts       Options
	now        func() time.Time
}

func NewDashboardService(api client.APIClient, st *store.Store, debouncer *filter.Debouncer, reconciler Reconciler, opts Options) DashboardService {
	if opts.SearchMinLength < 1 {
		opts.SearchMinLength = 1
	}
	return &dashboardService{
		api:        api,
		store:      st,
		debouncer:  debouncer,
		reconciler: reconciler,
		opts:       opts,
		now:        time.Now,
	}
}

// sectionCollections lists what a section shows. The inventory page needs
// warehouses and product types for its selects.
func sectionCollections(section store.Section) store.Collections {
	switch section {
	case store.SectionWarehouses:
		return store.Warehouses
	case store.SectionProducts:
		return store.ProductTypes
	default:
		return store.AllCollections
	}
}

func (s *dashboardService) banner(st *store.AppState, kind store.BannerKind, message string) {
	st.PushBanner(kind, message, s.now(), s.opts.BannerTTL)
}

func (s *dashboardService) success(st *store.AppState, message string) {
	s.banner(st, store.BannerSuccess, message)
}

// fail logs err and turns it into a danger banner. A non-empty message
// replaces the error text shown to the user.
func (s *dashboardService) fail(st *store.AppState, action, message string, err error) error {
	log.Printf("ERROR: %s: %v", action, err)
	if message == "" {
		message = bannerText(err)
	}
	s.banner(st, store.BannerDanger, message)
	return err
}

// invalid reports a local validation failure. Nothing was sent.
func (s *dashboardService) invalid(st *store.AppState, err error) error {
	s.banner(st, store.BannerWarning, bannerText(err))
	return err
}

func (s *dashboardService) unconfirmed(st *store.AppState, what string) error {
	s.banner(st, store.BannerWarning, fmt.Sprintf("Please confirm deleting this %s", what))
	return ErrConfirmationRequired
}

// bannerText is the user facing form of an error
func bannerText(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	msg := err.Error()
	if msg == "" {
		return "Unexpected error"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// activeSearch is the term whose server result must be refreshed along with
// the inventory, or "" when none is active.
func (s *dashboardService) activeSearch(st *store.AppState) string {
	if s.store.Strategy() != filter.StrategyServer || st.SearchBase == nil {
		return ""
	}
	return st.SearchTerm
}

// query names the server listings the session's state depends on
func (s *dashboardService) query(st *store.AppState) store.Query {
	return store.Query{
		SearchTerm:      s.activeSearch(st),
		WarehouseStatus: st.Scope.WarehouseStatus,
		Category:        st.Scope.Category,
		MultiLocation:   st.Scope.MultiLocationOnly,
	}
}

// reload refetches the given collections wholesale. A failing server search
// falls back to the full list.
func (s *dashboardService) reload(ctx context.Context, st *store.AppState, what store.Collections) error {
	q := s.query(st)
	snap, err := store.Load(ctx, s.api, what, q)
	var searchErr *store.SearchError
	if errors.As(err, &searchErr) {
		log.Printf("WARN: %v, reloading all items", err)
		st.ClearSearch()
		st.Filter.Term = ""
		s.banner(st, store.BannerDanger, "Search failed, showing all items")
		q.SearchTerm = ""
		snap, err = store.Load(ctx, s.api, what, q)
	}
	if err != nil {
		return err
	}
	st.Apply(snap)
	return nil
}

func (s *dashboardService) State(ctx context.Context, sessionID string) (*store.AppState, error) {
	st, err := s.store.View(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st.PruneBanners(s.now())
	return st, nil
}

func (s *dashboardService) ShowSection(ctx context.Context, sessionID string, section store.Section) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		if st.Section != section {
			st.Edit = store.EditTarget{}
		}
		sameSection := st.Section == section
		st.Section = section
		st.PruneBanners(s.now())

		// the scheduled reconcile refetches what an optimistic change left behind
		if sameSection && st.ReconcilePending(s.now()) {
			return nil
		}
		if err := s.reload(ctx, st, sectionCollections(section)); err != nil {
			return s.fail(st, "load "+string(section), loadFailureText(section), err)
		}
		return nil
	})
}

func loadFailureText(section store.Section) string {
	switch section {
	case store.SectionWarehouses:
		return "Failed to load warehouses"
	case store.SectionInventory:
		return "Failed to load inventory items"
	case store.SectionProducts:
		return "Failed to load product types"
	default:
		return "Failed to load dashboard data"
	}
}

func (s *dashboardService) DismissBanner(ctx context.Context, sessionID, bannerID string) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.DismissBanner(bannerID)
		return nil
	})
}

func (s *dashboardService) SaveWarehouse(ctx context.Context, sessionID string, id int64, req models.WarehouseRequest) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return s.invalid(st, ErrNameRequired)
		}
		if req.MaxCapacity < 1 {
			return s.invalid(st, ErrInvalidCapacity)
		}
		if req.Status == "" {
			req.Status = models.WarehouseActive
		}

		var err error
		if id != 0 {
			_, err = s.api.UpdateWarehouse(ctx, id, req)
		} else {
			_, err = s.api.CreateWarehouse(ctx, req)
		}
		if err != nil {
			return s.fail(st, "save warehouse", "Failed to save warehouse", err)
		}

		st.Edit = store.EditTarget{}
		if id != 0 {
			s.success(st, "Warehouse updated successfully")
		} else {
			s.success(st, "Warehouse created successfully")
		}
		if err := s.reload(ctx, st, store.Warehouses); err != nil {
			return s.fail(st, "reload warehouses", "Failed to load warehouses", err)
		}
		return nil
	})
}

func (s *dashboardService) DeleteWarehouse(ctx context.Context, sessionID string, id int64, confirmed bool) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		if !confirmed {
			return s.unconfirmed(st, "warehouse")
		}
		if err := s.api.DeleteWarehouse(ctx, id); err != nil {
			return s.fail(st, "delete warehouse", "", err)
		}

		if st.Edit.Kind == store.EditWarehouse && st.Edit.ID == id {
			st.Edit = store.EditTarget{}
		}
		s.success(st, "Warehouse deleted successfully")
		if err := s.reload(ctx, st, store.Warehouses); err != nil {
			return s.fail(st, "reload warehouses", "Failed to load warehouses", err)
		}
		return nil
	})
}

func (s *dashboardService) SaveInventoryItem(ctx context.Context, sessionID string, id int64, req models.InventoryItemRequest) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		req.SerialNumber = strings.TrimSpace(req.SerialNumber)
		if req.ProductTypeID == 0 {
			return s.invalid(st, ErrMissingProductType)
		}
		if id != 0 {
			// placement is managed through the locations dialog
			req.WarehouseID = nil
			req.Quantity = nil
		}
		if req.WarehouseID != nil && req.Quantity != nil {
			if err := locations.ValidateQuantity(*req.Quantity); err != nil {
				return s.invalid(st, err)
			}
		}

		var err error
		if id != 0 {
			_, err = s.api.UpdateInventoryItem(ctx, id, req)
		} else {
			_, err = s.api.CreateInventoryItem(ctx, req)
		}
		if err != nil {
			return s.fail(st, "save inventory item", "", err)
		}

		st.Edit = store.EditTarget{}
		if id != 0 {
			s.success(st, "Inventory item updated successfully")
		} else {
			s.success(st, "Inventory item created successfully")
		}
		if err := s.reload(ctx, st, store.Items|store.Warehouses); err != nil {
			return s.fail(st, "reload inventory", "Failed to load inventory items", err)
		}
		return nil
	})
}

func (s *dashboardService) DeleteInventoryItem(ctx context.Context, sessionID string, id int64, confirmed bool) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		if !confirmed {
			return s.unconfirmed(st, "inventory item")
		}
		if err := s.api.DeleteInventoryItem(ctx, id); err != nil {
			return s.fail(st, "delete inventory item", "", err)
		}

		if st.Edit.Kind == store.EditItem && st.Edit.ID == id {
			st.Edit = store.EditTarget{}
		}
		s.success(st, "Inventory item deleted successfully")
		if err := s.reload(ctx, st, store.Items|store.Warehouses); err != nil {
			return s.fail(st, "reload inventory", "Failed to load inventory items", err)
		}
		return nil
	})
}

// TransferInventoryItem moves stock through the item level transfer endpoint
func (s *dashboardService) TransferInventoryItem(ctx context.Context, sessionID string, req models.TransferRequest) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		if req.ItemID == 0 {
			return s.invalid(st, ErrMissingItem)
		}
		if req.SourceWarehouseID == 0 || req.DestinationWarehouseID == 0 {
			return s.invalid(st, ErrMissingSourceOrDest)
		}
		if req.SourceWarehouseID == req.DestinationWarehouseID {
			return s.invalid(st, locations.ErrSameWarehouse)
		}
		if err := locations.ValidateQuantity(req.Quantity); err != nil {
			return s.invalid(st, err)
		}
		if item, ok := models.FindInventoryItem(st.AllItems, req.ItemID); ok {
			if loc, ok := item.LocationIn(req.SourceWarehouseID); ok && req.Quantity > loc.Quantity {
				return s.invalid(st, fmt.Errorf("%w (max %d)", locations.ErrExceedsSource, loc.Quantity))
			}
		}

		if err := s.api.TransferInventoryItem(ctx, req); err != nil {
			return s.fail(st, "transfer inventory item", "", err)
		}

		s.success(st, "Item transferred successfully")
		if err := s.reload(ctx, st, store.Items|store.Warehouses); err != nil {
			return s.fail(st, "reload inventory", "Failed to load inventory items", err)
		}
		return nil
	})
}

func (s *dashboardService) SaveProductType(ctx context.Context, sessionID string, id int64, req models.ProductTypeRequest) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		req.Name = strings.TrimSpace(req.Name)
		req.Category = strings.TrimSpace(req.Category)
		if req.Name == "" {
			return s.invalid(st, ErrNameRequired)
		}

		var err error
		if id != 0 {
			_, err = s.api.UpdateProductType(ctx, id, req)
		} else {
			_, err = s.api.CreateProductType(ctx, req)
		}
		if err != nil {
			return s.fail(st, "save product type", "Failed to save product type", err)
		}

		st.Edit = store.EditTarget{}
		if id != 0 {
			s.success(st, "Product type updated successfully")
		} else {
			s.success(st, "Product type created successfully")
		}
		if err := s.reload(ctx, st, store.ProductTypes); err != nil {
			return s.fail(st, "reload product types", "Failed to load product types", err)
		}
		return nil
	})
}

func (s *dashboardService) DeleteProductType(ctx context.Context, sessionID string, id int64, confirmed bool) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		if !confirmed {
			return s.unconfirmed(st, "product type")
		}
		if err := s.api.DeleteProductType(ctx, id); err != nil {
			return s.fail(st, "delete product type", "", err)
		}

		if st.Edit.Kind == store.EditProductType && st.Edit.ID == id {
			st.Edit = store.EditTarget{}
		}
		s.success(st, "Product type deleted successfully")
		if err := s.reload(ctx, st, store.ProductTypes); err != nil {
			return s.fail(st, "reload product types", "Failed to load product types", err)
		}
		return nil
	})
}

// BeginEdit loads an entity into its section's form. Warehouses and items are
// fetched fresh; product types come from the cache.
func (s *dashboardService) BeginEdit(ctx context.Context, sessionID, kind string, id int64) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		switch kind {
		case store.EditWarehouse:
			st.Section = store.SectionWarehouses
			w, err := s.api.GetWarehouse(ctx, id)
			if err != nil {
				return s.fail(st, "load warehouse", "", err)
			}
			replaceWarehouse(st, *w)
		case store.EditItem:
			st.Section = store.SectionInventory
			item, err := s.api.GetInventoryItem(ctx, id)
			if err != nil {
				return s.fail(st, "load inventory item", "", err)
			}
			replaceItem(st, *item)
		case store.EditProductType:
			st.Section = store.SectionProducts
			if _, ok := models.FindProductType(st.ProductTypes, id); !ok {
				return s.invalid(st, fmt.Errorf("product type %d %w", id, ErrNotFound))
			}
		default:
			return ErrInvalidEditKind
		}
		st.Edit = store.EditTarget{Kind: kind, ID: id}
		return nil
	})
}

func replaceWarehouse(st *store.AppState, w models.Warehouse) {
	if cached, ok := models.FindWarehouse(st.Warehouses, w.ID); ok {
		*cached = w
		return
	}
	st.Warehouses = append(st.Warehouses, w)
}

func replaceItem(st *store.AppState, item models.InventoryItem) {
	if cached, ok := models.FindInventoryItem(st.AllItems, item.ID); ok {
		*cached = item
		return
	}
	st.AllItems = append(st.AllItems, item)
}

func (s *dashboardService) CancelEdit(ctx context.Context, sessionID string) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.Edit = store.EditTarget{}
		return nil
	})
}

// SetFilter applies the filter bar. With the server strategy the text term
// follows the search policy; the warehouse and product selects always apply.
func (s *dashboardService) SetFilter(ctx context.Context, sessionID string, criteria filter.Criteria) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.Section = store.SectionInventory
		st.Filter.WarehouseID = criteria.WarehouseID
		st.Filter.ProductTypeID = criteria.ProductTypeID
		return s.applyTerm(ctx, st, criteria.Term)
	})
}

// applyTerm runs the search policy for term against the session state
func (s *dashboardService) applyTerm(ctx context.Context, st *store.AppState, term string) error {
	term = strings.TrimSpace(term)
	if s.store.Strategy() == filter.StrategyClient {
		st.Filter.Term = term
		return nil
	}

	switch filter.Decide(term, s.opts.SearchMinLength) {
	case filter.KeepCurrent:
		st.Filter.Term = term
		return nil
	case filter.ReloadAll:
		st.Filter.Term = ""
		st.ClearSearch()
		if err := s.reload(ctx, st, store.Items); err != nil {
			return s.fail(st, "reload inventory", "Failed to load inventory items", err)
		}
		return nil
	default:
		st.Filter.Term = term
		results, err := s.api.SearchInventoryItems(ctx, term)
		if err != nil {
			log.Printf("WARN: search for %q failed, reloading all items: %v", term, err)
			s.banner(st, store.BannerDanger, "Search failed, showing all items")
			st.Filter.Term = ""
			st.ClearSearch()
			if err := s.reload(ctx, st, store.Items); err != nil {
				return s.fail(st, "reload inventory", "Failed to load inventory items", err)
			}
			return nil
		}
		if results == nil {
			results = []models.InventoryItem{}
		}
		st.SearchBase = results
		st.SearchTerm = term
		return nil
	}
}

// SetWarehouseStatus lists only the warehouses with status on the warehouses
// page. An empty status lists all of them.
func (s *dashboardService) SetWarehouseStatus(ctx context.Context, sessionID string, status models.WarehouseStatus) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.Section = store.SectionWarehouses
		switch status {
		case "", models.WarehouseActive, models.WarehouseInactive:
		default:
			return s.invalid(st, fmt.Errorf("%w %q", ErrUnknownStatus, status))
		}
		st.Scope.WarehouseStatus = status
		if err := s.reload(ctx, st, store.Warehouses); err != nil {
			return s.fail(st, "reload warehouses", "Failed to load warehouses", err)
		}
		return nil
	})
}

// SetProductCategory lists only the product types of category on the products
// page. An empty category lists all of them.
func (s *dashboardService) SetProductCategory(ctx context.Context, sessionID, category string) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.Section = store.SectionProducts
		st.Scope.Category = strings.TrimSpace(category)
		if err := s.reload(ctx, st, store.ProductTypes); err != nil {
			return s.fail(st, "reload product types", "Failed to load product types", err)
		}
		return nil
	})
}

// SetMultiLocationOnly restricts the inventory table to items stored in more
// than one warehouse.
func (s *dashboardService) SetMultiLocationOnly(ctx context.Context, sessionID string, on bool) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.Section = store.SectionInventory
		st.Scope.MultiLocationOnly = on
		if !on {
			st.MultiLocation = nil
			st.Refilter(s.store.Strategy())
			return nil
		}
		if err := s.reload(ctx, st, store.Items); err != nil {
			st.Scope.MultiLocationOnly = false
			return s.fail(st, "reload inventory", "Failed to load inventory items", err)
		}
		return nil
	})
}

func (s *dashboardService) ClearFilter(ctx context.Context, sessionID string) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.Section = store.SectionInventory
		st.Filter = filter.Criteria{}
		st.ClearSearch()
		if err := s.reload(ctx, st, store.Items); err != nil {
			return s.fail(st, "reload inventory", "Failed to load inventory items", err)
		}
		return nil
	})
}

// Search is the as-you-type search. It waits out the debounce delay and
// reports applied=false when the term leaves the list unchanged. A request
// overtaken by a newer one fails with filter.ErrSuperseded.
func (s *dashboardService) Search(ctx context.Context, sessionID, term string) (bool, error) {
	seq := s.debouncer.Begin(sessionID)
	if err := s.debouncer.Wait(ctx, sessionID, seq); err != nil {
		return false, err
	}

	if s.store.Strategy() == filter.StrategyServer &&
		filter.Decide(term, s.opts.SearchMinLength) == filter.KeepCurrent {
		return false, nil
	}

	err := s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		// a newer keystroke arrived while this one queued for the session
		if !s.debouncer.IsLatest(sessionID, seq) {
			return filter.ErrSuperseded
		}
		st.Section = store.SectionInventory
		return s.applyTerm(ctx, st, term)
	})
	if errors.Is(err, filter.ErrSuperseded) {
		return false, err
	}
	return err == nil, err
}

// OpenLocations opens the locations dialog for an item. Items missing from the
// cache are fetched from the backend together with their placements and total,
// and added to the cache.
func (s *dashboardService) OpenLocations(ctx context.Context, sessionID string, itemID int64) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.Section = store.SectionInventory
		if item, ok := models.FindInventoryItem(st.AllItems, itemID); ok {
			st.Modal.Open(*item)
			return nil
		}

		item, err := s.fetchItem(ctx, itemID)
		if err != nil {
			return s.fail(st, "load inventory item", "", err)
		}
		replaceItem(st, *item)
		st.Modal.Open(*item)
		return nil
	})
}

// fetchItem loads an item with its placements and server side total
func (s *dashboardService) fetchItem(ctx context.Context, itemID int64) (*models.InventoryItem, error) {
	var (
		item       *models.InventoryItem
		placements []models.WarehouseLocation
		total      int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		item, err = s.api.GetInventoryItem(gctx, itemID)
		return err
	})
	g.Go(func() error {
		var err error
		placements, err = s.api.ListItemLocations(gctx, itemID)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.api.GetItemTotalQuantity(gctx, itemID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	item.WarehouseLocations = placements
	item.TotalQuantity = total
	if sum := item.Total(); sum != total {
		log.Printf("WARN: item %d placements sum to %d, backend total is %d", itemID, sum, total)
	}
	return item, nil
}

func (s *dashboardService) CloseLocations(ctx context.Context, sessionID string) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.Modal.Close()
		return nil
	})
}

// AddPlacement stores itemID in another warehouse. itemID must be the item the
// locations dialog is showing.
func (s *dashboardService) AddPlacement(ctx context.Context, sessionID string, itemID, warehouseID int64, quantity int) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		if err := st.Modal.ValidateAdd(st.Warehouses, itemID, warehouseID, quantity); err != nil {
			return s.invalid(st, err)
		}

		req := models.AddPlacementRequest{
			InventoryItemID: itemID,
			WarehouseID:     warehouseID,
			Quantity:        quantity,
		}
		if _, err := s.api.AddPlacement(ctx, req); err != nil {
			return s.fail(st, "add placement", "", err)
		}

		s.success(st, "Item added to warehouse successfully")
		return s.reloadAfterPlacementChange(ctx, st)
	})
}

func (s *dashboardService) UpdatePlacementQuantity(ctx context.Context, sessionID string, placementID int64, quantity int) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		if err := st.Modal.ValidateUpdate(placementID, quantity); err != nil {
			return s.invalid(st, err)
		}
		if _, err := s.api.UpdatePlacementQuantity(ctx, placementID, quantity); err != nil {
			return s.fail(st, "update placement quantity", "", err)
		}

		s.success(st, "Quantity updated successfully")
		return s.reloadAfterPlacementChange(ctx, st)
	})
}

// RemovePlacement deletes a placement, removes it locally right away and
// schedules a refetch that replaces the local copy.
func (s *dashboardService) RemovePlacement(ctx context.Context, sessionID string, placementID int64, confirmed bool) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		if !st.Modal.IsOpen() {
			return s.invalid(st, locations.ErrModalClosed)
		}
		if _, ok := st.Modal.Placement(placementID); !ok {
			return s.invalid(st, locations.ErrPlacementNotFound)
		}
		if !confirmed {
			s.banner(st, store.BannerWarning, "Please confirm removing the item from this warehouse")
			return ErrConfirmationRequired
		}
		if err := s.api.DeletePlacement(ctx, placementID); err != nil {
			return s.fail(st, "remove placement", "", err)
		}

		itemID := st.Modal.ItemID
		st.Modal.RemoveLocal(placementID)
		st.RemovePlacementLocal(itemID, placementID)
		s.success(st, "Item removed from warehouse successfully")

		if err := s.reconciler.ScheduleReconcile(sessionID, s.opts.ReconcileDelay); err != nil {
			log.Printf("WARN: failed to schedule reconcile for session %s: %v", sessionID, err)
			return nil
		}
		st.ReconcileDue = s.now().Add(s.opts.ReconcileDelay)
		return nil
	})
}

func (s *dashboardService) BeginTransfer(ctx context.Context, sessionID string, placementID int64) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		if err := st.Modal.BeginTransfer(placementID); err != nil {
			return s.invalid(st, err)
		}
		return nil
	})
}

func (s *dashboardService) CancelTransfer(ctx context.Context, sessionID string) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		st.Modal.CancelTransfer()
		return nil
	})
}

func (s *dashboardService) SubmitTransfer(ctx context.Context, sessionID string, destinationID int64, quantity int) error {
	return s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		req, err := st.Modal.ValidateTransfer(destinationID, quantity)
		if err != nil {
			return s.invalid(st, err)
		}
		if err := s.api.TransferPlacement(ctx, req); err != nil {
			return s.fail(st, "transfer placement", "", err)
		}

		st.Modal.CancelTransfer()
		s.success(st, "Item transferred successfully")
		return s.reloadAfterPlacementChange(ctx, st)
	})
}

// reloadAfterPlacementChange refreshes inventory and warehouse capacity; the
// open dialog is re-resolved from the fresh items.
func (s *dashboardService) reloadAfterPlacementChange(ctx context.Context, st *store.AppState) error {
	if err := s.reload(ctx, st, store.Items|store.Warehouses); err != nil {
		return s.fail(st, "reload inventory", "Failed to load inventory items", err)
	}
	return nil
}

// Reconcile replaces optimistic local state with the server's inventory and
// warehouses.
func (s *dashboardService) Reconcile(ctx context.Context, sessionID string) (string, error) {
	var section store.Section
	err := s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		section = st.Section
		st.ReconcileDue = time.Time{}
		if err := s.reload(ctx, st, store.Items|store.Warehouses); err != nil {
			return fmt.Errorf("failed to reconcile: %w", err)
		}
		return nil
	})
	return string(section), err
}

// Refresh reloads whatever the session's current section shows
func (s *dashboardService) Refresh(ctx context.Context, sessionID string) (string, error) {
	var section store.Section
	err := s.store.Update(ctx, sessionID, func(st *store.AppState) error {
		section = st.Section
		if err := s.reload(ctx, st, sectionCollections(st.Section)); err != nil {
			return fmt.Errorf("failed to refresh: %w", err)
		}
		return nil
	})
	return string(section), err
}

// Sweep frees what is held for sessions idle past the session TTL
func (s *dashboardService) Sweep(ctx context.Context) (int, error) {
	dropped, err := s.store.Sweep(ctx)
	for _, id := range dropped {
		s.debouncer.Forget(id)
	}
	s.debouncer.ForgetIdle(s.store.TTL())
	return len(dropped), err
}
