package store

import (
	"context"
	"fmt"

	"batstats/internal/client"
	"batstats/internal/models"

	"golang.org/x/sync/errgroup"
)

// SearchError marks a load that failed only because the server search did
type SearchError struct {
	Term string
	Err  error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("failed to search inventory for %q: %v", e.Term, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Collections is a set of cached collections to fetch
type Collections uint8

const (
	Warehouses Collections = 1 << iota
	Items
	ProductTypes

	AllCollections = Warehouses | Items | ProductTypes
)

// Query lists the server side listings to fetch along with the collections.
// Each is only fetched when its collection is requested.
type Query struct {
	SearchTerm      string
	WarehouseStatus models.WarehouseStatus
	Category        string
	MultiLocation   bool
}

// Snapshot is the result of one all-or-nothing load
type Snapshot struct {
	Fetched      Collections
	Warehouses   []models.Warehouse
	Items        []models.InventoryItem
	ProductTypes []models.ProductType
	// SearchResults and SearchTerm are set when Searched is true
	SearchResults []models.InventoryItem
	SearchTerm    string
	Searched      bool

	ScopedWarehouses   []models.Warehouse
	ScopedProductTypes []models.ProductType
	MultiLocation      []models.InventoryItem
}

// Has reports whether every collection in c was fetched
func (s *Snapshot) Has(c Collections) bool {
	return s.Fetched&c == c
}

// Load fetches the requested collections concurrently. The listings named by q
// are fetched as part of the same load, so an active search is repeated with
// the inventory. Nothing is returned unless every fetch succeeds.
func Load(ctx context.Context, api client.APIClient, what Collections, q Query) (*Snapshot, error) {
	snap := &Snapshot{Fetched: what}
	g, gctx := errgroup.WithContext(ctx)

	if what&Warehouses != 0 {
		g.Go(func() error {
			warehouses, err := api.ListWarehouses(gctx)
			if err != nil {
				return fmt.Errorf("failed to load warehouses: %w", err)
			}
			snap.Warehouses = nonNilWarehouses(warehouses)
			return nil
		})
		if q.WarehouseStatus != "" {
			g.Go(func() error {
				warehouses, err := api.ListWarehousesByStatus(gctx, q.WarehouseStatus)
				if err != nil {
					return fmt.Errorf("failed to load %s warehouses: %w", q.WarehouseStatus, err)
				}
				snap.ScopedWarehouses = nonNilWarehouses(warehouses)
				return nil
			})
		}
	}
	if what&Items != 0 {
		g.Go(func() error {
			items, err := api.ListInventoryItems(gctx)
			if err != nil {
				return fmt.Errorf("failed to load inventory: %w", err)
			}
			snap.Items = nonNilItems(items)
			return nil
		})
		if q.SearchTerm != "" {
			snap.Searched = true
			snap.SearchTerm = q.SearchTerm
			g.Go(func() error {
				results, err := api.SearchInventoryItems(gctx, q.SearchTerm)
				if err != nil {
					return &SearchError{Term: q.SearchTerm, Err: err}
				}
				snap.SearchResults = nonNilItems(results)
				return nil
			})
		}
		if q.MultiLocation {
			g.Go(func() error {
				items, err := api.ListMultiLocationItems(gctx)
				if err != nil {
					return fmt.Errorf("failed to load multi-location items: %w", err)
				}
				snap.MultiLocation = nonNilItems(items)
				return nil
			})
		}
	}
	if what&ProductTypes != 0 {
		g.Go(func() error {
			productTypes, err := api.ListProductTypes(gctx)
			if err != nil {
				return fmt.Errorf("failed to load product types: %w", err)
			}
			if productTypes == nil {
				productTypes = []models.ProductType{}
			}
			snap.ProductTypes = productTypes
			return nil
		})
		if q.Category != "" {
			g.Go(func() error {
				productTypes, err := api.ListProductTypesByCategory(gctx, q.Category)
				if err != nil {
					return fmt.Errorf("failed to load %s product types: %w", q.Category, err)
				}
				if productTypes == nil {
					productTypes = []models.ProductType{}
				}
				snap.ScopedProductTypes = productTypes
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// LoadDashboard fetches warehouses, inventory and product types together
func LoadDashboard(ctx context.Context, api client.APIClient) (*Snapshot, error) {
	return Load(ctx, api, AllCollections, Query{})
}

func nonNilWarehouses(ws []models.Warehouse) []models.Warehouse {
	if ws == nil {
		return []models.Warehouse{}
	}
	return ws
}

func nonNilItems(items []models.InventoryItem) []models.InventoryItem {
	if items == nil {
		return []models.InventoryItem{}
	}
	return items
}
