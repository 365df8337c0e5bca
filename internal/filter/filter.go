package filter

import (
	"strings"

	"batstats/internal/models"
)

// Strategy selects where the text predicate is evaluated
type Strategy string

const (
	// StrategyServer sends the text term to the backend search endpoint and
	// composes the warehouse and product predicates over its result.
	StrategyServer Strategy = "server"
	// StrategyClient evaluates every predicate over the canonical item list.
	StrategyClient Strategy = "client"
)

// Criteria is the inventory filter bar. Zero values mean "no constraint".
type Criteria struct {
	Term          string `json:"term"`
	WarehouseID   int64  `json:"warehouseId"`
	ProductTypeID int64  `json:"productTypeId"`
}

// IsEmpty reports whether no predicate is active
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Term) == "" && c.WarehouseID == 0 && c.ProductTypeID == 0
}

// WithoutTerm drops the text predicate, keeping the others
func (c Criteria) WithoutTerm() Criteria {
	c.Term = ""
	return c
}

// MatchesTerm is the text predicate: a case-insensitive substring of the
// serial number or the product name.
func MatchesTerm(item models.InventoryItem, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.SerialNumber), term) {
		return true
	}
	return item.ProductType != nil && strings.Contains(strings.ToLower(item.ProductType.Name), term)
}

// MatchesWarehouse is true when the item has a placement in the warehouse
func MatchesWarehouse(item models.InventoryItem, warehouseID int64) bool {
	return warehouseID == 0 || item.HoldsWarehouse(warehouseID)
}

func MatchesProductType(item models.InventoryItem, productTypeID int64) bool {
	return productTypeID == 0 || item.ProductTypeID() == productTypeID
}

// Matches reports whether the item satisfies every active predicate
func (c Criteria) Matches(item models.InventoryItem) bool {
	return MatchesTerm(item, c.Term) &&
		MatchesWarehouse(item, c.WarehouseID) &&
		MatchesProductType(item, c.ProductTypeID)
}

// Apply returns the items matching every active predicate, in their original
// order. The input slice is never modified.
func Apply(items []models.InventoryItem, c Criteria) []models.InventoryItem {
	out := make([]models.InventoryItem, 0, len(items))
	for _, item := range items {
		if c.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// View derives the displayed list. With the server strategy the text predicate
// has already been applied by the backend when searchBase is non-nil.
func View(all, searchBase []models.InventoryItem, c Criteria, strategy Strategy) []models.InventoryItem {
	if strategy == StrategyClient {
		return Apply(all, c)
	}
	if searchBase != nil {
		return Apply(searchBase, c.WithoutTerm())
	}
	return Apply(all, c.WithoutTerm())
}
