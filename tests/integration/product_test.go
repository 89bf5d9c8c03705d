//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func listProducts(t *testing.T, query string) productListResponse {
	t.Helper()

	resp := doGet(t, "/api/v1/products"+query)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	return decodeJSON[productListResponse](t, resp)
}

func TestListProducts_Seeded(t *testing.T) {
	list := listProducts(t, "")

	if list.Total != seededTotal {
		t.Fatalf("total: got %d, want %d", list.Total, seededTotal)
	}
	if len(list.Products) != seededTotal {
		t.Fatalf("products: got %d, want %d", len(list.Products), seededTotal)
	}
	for _, p := range list.Products {
		if p.ID == "" || p.Name == "" || p.Slug == "" {
			t.Errorf("product %+v missing id, name or slug", p)
		}
		if p.Price <= 0 {
			t.Errorf("product %q price: got %v, want > 0", p.Name, p.Price)
		}
	}
}

func TestListProducts_Pagination(t *testing.T) {
	list := listProducts(t, "?page=1&limit=2")

	if len(list.Products) != 2 {
		t.Fatalf("page size: got %d, want 2", len(list.Products))
	}
	if list.Pages != 2 {
		t.Errorf("pages: got %d, want 2", list.Pages)
	}
	if list.NextPage != 2 {
		t.Errorf("nextPage: got %d, want 2", list.NextPage)
	}

	second := listProducts(t, "?page=2&limit=2")
	if len(second.Products) != 1 {
		t.Errorf("second page size: got %d, want 1", len(second.Products))
	}
	if second.PrevPage != 1 {
		t.Errorf("prevPage: got %d, want 1", second.PrevPage)
	}
}

func TestListProducts_BrandFilter(t *testing.T) {
	list := listProducts(t, "?brand=nike")

	if list.Total != 1 {
		t.Fatalf("total: got %d, want 1", list.Total)
	}
	if list.Products[0].Brand != "nike" {
		t.Errorf("brand: got %q, want nike", list.Products[0].Brand)
	}
}

func TestGetProduct(t *testing.T) {
	list := listProducts(t, "")
	id := list.Products[0].ID

	resp := doGet(t, "/api/v1/products/"+id)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[struct {
		Status  string         `json:"status"`
		Product productPayload `json:"product"`
	}](t, resp)
	if body.Product.ID != id {
		t.Errorf("id: got %q, want %q", body.Product.ID, id)
	}
	if body.Product.QtyLeft <= 0 {
		t.Errorf("qtyLeft: got %d, want > 0", body.Product.QtyLeft)
	}
}

func TestGetProduct_Unknown(t *testing.T) {
	resp := doGet(t, "/api/v1/products/00000000-0000-0000-0000-000000000000")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestCreateProduct_RequiresAdmin(t *testing.T) {
	body := map[string]any{
		"name":     "Unauthorized Sneaker",
		"brand":    "nike",
		"category": "sneakers",
		"price":    "59.99",
	}

	resp := doPost(t, "/api/v1/products/", body, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", resp.StatusCode)
	}

	customer := registerAndLogin(t, uniqueEmail("not-admin"), "s3cret-pass")
	resp = doPost(t, "/api/v1/products/", body, customer)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer token: expected 403, got %d", resp.StatusCode)
	}
}

func TestListCategories(t *testing.T) {
	resp := doGet(t, "/api/v1/categories")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[struct {
		Status     string `json:"status"`
		Categories []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
			Slug string `json:"slug"`
		} `json:"categories"`
	}](t, resp)
	if len(body.Categories) == 0 {
		t.Error("expected seeded categories")
	}
}
