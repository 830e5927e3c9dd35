//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products/")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusOK)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) < 5 {
		t.Fatalf("products: got %d, want at least 5", len(products))
	}

	byName := make(map[string]productResponse, len(products))
	for _, p := range products {
		byName[p.Name] = p
	}
	if got := byName["Pad Thai"].PriceInt; got != 8000 {
		t.Errorf("Pad Thai price: got %d, want 8000", got)
	}
	if got := byName["Tom Yum Kung"].PriceInt; got != 15000 {
		t.Errorf("Tom Yum Kung price: got %d, want 15000", got)
	}
}

func TestProductCRUD(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/products/", map[string]any{
		"name":     "Massaman Curry",
		"priceInt": 13500,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: got %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	created := decodeJSON[productResponse](t, resp)
	resp.Body.Close()
	if created.ID == "" {
		t.Fatal("created product has no id")
	}
	if !created.IsActive {
		t.Error("created product should be active")
	}

	patchResp := doJSON(t, http.MethodPatch, "/api/products/"+created.ID, map[string]any{
		"priceInt": 14000,
	})
	if patchResp.StatusCode != http.StatusOK {
		t.Fatalf("update status: got %d, want %d", patchResp.StatusCode, http.StatusOK)
	}
	updated := decodeJSON[productResponse](t, patchResp)
	patchResp.Body.Close()
	if updated.PriceInt != 14000 {
		t.Errorf("updated price: got %d, want 14000", updated.PriceInt)
	}
	if updated.Name != "Massaman Curry" {
		t.Errorf("partial update touched name: got %q", updated.Name)
	}

	delReq, err := http.NewRequest(http.MethodDelete, baseURL+"/api/products/"+created.ID, nil)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	delResp, err := httpClient.Do(delReq)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status: got %d, want %d", delResp.StatusCode, http.StatusNoContent)
	}

	// Deactivated products stay fetchable but cannot be ordered.
	getResp := doGet(t, "/api/products/"+created.ID)
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get after delete status: got %d, want %d", getResp.StatusCode, http.StatusOK)
	}
	fetched := decodeJSON[productResponse](t, getResp)
	getResp.Body.Close()
	if fetched.IsActive {
		t.Error("deleted product still active")
	}

	orderResp := doJSON(t, http.MethodPost, "/api/orders/", orderRequest{
		Items: []orderItemRequest{{ProductID: created.ID, Quantity: 1}},
	})
	defer orderResp.Body.Close()
	if orderResp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("order deactivated product: got %d, want %d", orderResp.StatusCode, http.StatusUnprocessableEntity)
	}
	if got := decodeJSON[errorResponse](t, orderResp); got.Code != "PRODUCTS_UNAVAILABLE" {
		t.Errorf("error code: got %q, want PRODUCTS_UNAVAILABLE", got.Code)
	}
}

func TestCreateProductValidation(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/products/", map[string]any{
		"name":     "   ",
		"priceInt": 100,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestCreateDuplicateDiscount(t *testing.T) {
	resp := doJSON(t, http.MethodPost, "/api/discounts/", map[string]any{
		"code":  "SUMMER10",
		"type":  "PERCENTAGE",
		"value": 10,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	if got := decodeJSON[errorResponse](t, resp); got.Code != "DUPLICATE_CODE" {
		t.Errorf("error code: got %q, want DUPLICATE_CODE", got.Code)
	}
}
