package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"batstats/internal/models"
)

// APIClient is the BatStats backend as seen by the dashboard. Every method
// issues exactly one request.
type APIClient interface {
	// Warehouses
	ListWarehouses(ctx context.Context) ([]models.Warehouse, error)
	GetWarehouse(ctx context.Context, id int64) (*models.Warehouse, error)
	ListWarehousesByStatus(ctx context.Context, status models.WarehouseStatus) ([]models.Warehouse, error)
	CreateWarehouse(ctx context.Context, req models.WarehouseRequest) (*models.Warehouse, error)
	UpdateWarehouse(ctx context.Context, id int64, req models.WarehouseRequest) (*models.Warehouse, error)
	DeleteWarehouse(ctx context.Context, id int64) error

	// Inventory items
	ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error)
	SearchInventoryItems(ctx context.Context, term string) ([]models.InventoryItem, error)
	ListMultiLocationItems(ctx context.Context) ([]models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, req models.InventoryItemRequest) (*models.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id int64, req models.InventoryItemRequest) (*models.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id int64) error
	TransferInventoryItem(ctx context.Context, req models.TransferRequest) error

	// Product types
	ListProductTypes(ctx context.Context) ([]models.ProductType, error)
	ListProductTypesByCategory(ctx context.Context, category string) ([]models.ProductType, error)
	CreateProductType(ctx context.Context, req models.ProductTypeRequest) (*models.ProductType, error)
	UpdateProductType(ctx context.Context, id int64, req models.ProductTypeRequest) (*models.ProductType, error)
	DeleteProductType(ctx context.Context, id int64) error

	// Placements
	ListItemLocations(ctx context.Context, itemID int64) ([]models.WarehouseLocation, error)
	GetItemTotalQuantity(ctx context.Context, itemID int64) (int, error)
	AddPlacement(ctx context.Context, req models.AddPlacementRequest) (*models.WarehouseLocation, error)
	UpdatePlacementQuantity(ctx context.Context, locationID int64, quantity int) (*models.WarehouseLocation, error)
	DeletePlacement(ctx context.Context, locationID int64) error
	RemoveItemFromWarehouse(ctx context.Context, warehouseID, itemID int64) error
	TransferPlacement(ctx context.Context, req models.TransferRequest) error
}

type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a BatStats REST client. A zero timeout leaves requests
// bounded only by their context.
func NewAPIClient(baseURL string, timeout time.Duration) APIClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// makeRequest performs an HTTP request against the BatStats API and decodes a
// successful JSON body into out when out is non-nil.
func (c *apiClient) makeRequest(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	reqURL := c.baseURL + endpoint

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Printf("DEBUG: BatStats API request: %s %s", method, reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		log.Printf("WARN: BatStats API error: %s %s status %d: %s", method, reqURL, resp.StatusCode, apiErr.Message)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *apiClient) ListWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	if err := c.makeRequest(ctx, http.MethodGet, "/warehouses", nil, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (c *apiClient) GetWarehouse(ctx context.Context, id int64) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/warehouses/%d", id), nil, &warehouse); err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (c *apiClient) ListWarehousesByStatus(ctx context.Context, status models.WarehouseStatus) ([]models.Warehouse, error) {
	var warehouses []models.Warehouse
	endpoint := "/warehouses/status/" + url.PathEscape(string(status))
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, &warehouses); err != nil {
		return nil, err
	}
	return warehouses, nil
}

func (c *apiClient) CreateWarehouse(ctx context.Context, req models.WarehouseRequest) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := c.makeRequest(ctx, http.MethodPost, "/warehouses", req, &warehouse); err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (c *apiClient) UpdateWarehouse(ctx context.Context, id int64, req models.WarehouseRequest) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := c.makeRequest(ctx, http.MethodPut, fmt.Sprintf("/warehouses/%d", id), req, &warehouse); err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (c *apiClient) DeleteWarehouse(ctx context.Context, id int64) error {
	return c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/warehouses/%d", id), nil, nil)
}

func (c *apiClient) ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := c.makeRequest(ctx, http.MethodGet, "/inventory", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *apiClient) GetInventoryItem(ctx context.Context, id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/inventory/%d", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *apiClient) SearchInventoryItems(ctx context.Context, term string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	endpoint := "/inventory/search?term=" + url.QueryEscape(term)
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *apiClient) ListMultiLocationItems(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := c.makeRequest(ctx, http.MethodGet, "/inventory/multi-location", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *apiClient) CreateInventoryItem(ctx context.Context, req models.InventoryItemRequest) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.makeRequest(ctx, http.MethodPost, "/inventory", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *apiClient) UpdateInventoryItem(ctx context.Context, id int64, req models.InventoryItemRequest) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := c.makeRequest(ctx, http.MethodPut, fmt.Sprintf("/inventory/%d", id), req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *apiClient) DeleteInventoryItem(ctx context.Context, id int64) error {
	return c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/inventory/%d", id), nil, nil)
}

func (c *apiClient) TransferInventoryItem(ctx context.Context, req models.TransferRequest) error {
	return c.makeRequest(ctx, http.MethodPost, "/inventory/transfer", req, nil)
}

func (c *apiClient) ListProductTypes(ctx context.Context) ([]models.ProductType, error) {
	var productTypes []models.ProductType
	if err := c.makeRequest(ctx, http.MethodGet, "/products", nil, &productTypes); err != nil {
		return nil, err
	}
	return productTypes, nil
}

func (c *apiClient) ListProductTypesByCategory(ctx context.Context, category string) ([]models.ProductType, error) {
	var productTypes []models.ProductType
	endpoint := "/products/category/" + url.PathEscape(category)
	if err := c.makeRequest(ctx, http.MethodGet, endpoint, nil, &productTypes); err != nil {
		return nil, err
	}
	return productTypes, nil
}

func (c *apiClient) CreateProductType(ctx context.Context, req models.ProductTypeRequest) (*models.ProductType, error) {
	var productType models.ProductType
	if err := c.makeRequest(ctx, http.MethodPost, "/products", req, &productType); err != nil {
		return nil, err
	}
	return &productType, nil
}

func (c *apiClient) UpdateProductType(ctx context.Context, id int64, req models.ProductTypeRequest) (*models.ProductType, error) {
	var productType models.ProductType
	if err := c.makeRequest(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), req, &productType); err != nil {
		return nil, err
	}
	return &productType, nil
}

func (c *apiClient) DeleteProductType(ctx context.Context, id int64) error {
	return c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

func (c *apiClient) ListItemLocations(ctx context.Context, itemID int64) ([]models.WarehouseLocation, error) {
	var locations []models.WarehouseLocation
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/warehouse-inventory/item/%d", itemID), nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

func (c *apiClient) GetItemTotalQuantity(ctx context.Context, itemID int64) (int, error) {
	var total models.TotalQuantity
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/warehouse-inventory/item/%d/total", itemID), nil, &total); err != nil {
		return 0, err
	}
	return total.TotalQuantity, nil
}

func (c *apiClient) AddPlacement(ctx context.Context, req models.AddPlacementRequest) (*models.WarehouseLocation, error) {
	var location models.WarehouseLocation
	if err := c.makeRequest(ctx, http.MethodPost, "/warehouse-inventory", req, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (c *apiClient) UpdatePlacementQuantity(ctx context.Context, locationID int64, quantity int) (*models.WarehouseLocation, error) {
	var location models.WarehouseLocation
	req := models.QuantityUpdateRequest{Quantity: quantity}
	if err := c.makeRequest(ctx, http.MethodPut, fmt.Sprintf("/warehouse-inventory/%d", locationID), req, &location); err != nil {
		return nil, err
	}
	return &location, nil
}

func (c *apiClient) DeletePlacement(ctx context.Context, locationID int64) error {
	return c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/warehouse-inventory/%d", locationID), nil, nil)
}

func (c *apiClient) RemoveItemFromWarehouse(ctx context.Context, warehouseID, itemID int64) error {
	endpoint := fmt.Sprintf("/warehouse-inventory/warehouse/%d/item/%d", warehouseID, itemID)
	return c.makeRequest(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (c *apiClient) TransferPlacement(ctx context.Context, req models.TransferRequest) error {
	return c.makeRequest(ctx, http.MethodPost, "/warehouse-inventory/transfer", req, nil)
}
