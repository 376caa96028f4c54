package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/cart"
	"github.com/blastmusic247/blast-gear-full/internal/catalog"
	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/go-chi/chi/v5"
)

type fakeCarts struct {
	stores map[string]*cart.Store
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{stores: make(map[string]*cart.Store)}
}

func (f *fakeCarts) ForSession(id string) *cart.Store {
	if store, ok := f.stores[id]; ok {
		return store
	}
	store := cart.NewStore(cart.NewMemoryStorage())
	f.stores[id] = store
	return store
}

type fakeProducts struct {
	products map[string]domain.Product
	err      error
}

func (f *fakeProducts) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeProducts) List(ctx context.Context, category string) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Product
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Create(ctx context.Context, product *domain.Product) error {
	if f.err != nil {
		return f.err
	}
	if product.ID == "" {
		product.ID = "generated-id"
	}
	f.products[product.ID] = *product
	return nil
}

func (f *fakeProducts) Update(ctx context.Context, product *domain.Product) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.products[product.ID]; !ok {
		return catalog.ErrProductNotFound
	}
	f.products[product.ID] = *product
	return nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.products[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func withSession(r *http.Request, session string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionIDKey, session)
	return r.WithContext(ctx)
}

func withCartID(r *http.Request, cartID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("cartId", cartID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func testTee() domain.Product {
	return domain.Product{
		ID:       "p1",
		Name:     "Blast Tee",
		Price:    25.00,
		Image:    "/img/tee.jpg",
		Sizes:    []string{"M", "L"},
		Category: "apparel",
		InStock:  true,
	}
}

func TestAddItem_Success(t *testing.T) {
	carts := newFakeCarts()
	products := &fakeProducts{products: map[string]domain.Product{"p1": testTee()}}
	handler := NewCartHandler(carts, products, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Size: "M", Quantity: 2})
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/items", bytes.NewReader(body)), "sess-1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected status code %d, got %d", http.StatusCreated, recorder.Code)
	}

	var items domain.Cart
	if err := json.NewDecoder(recorder.Body).Decode(&items); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 line item, got %d", len(items))
	}
	if items[0].UnitPrice != 25.00 {
		t.Errorf("Expected server-side price 25.00, got %v", items[0].UnitPrice)
	}
	if items[0].Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", items[0].Quantity)
	}
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	carts := newFakeCarts()
	products := &fakeProducts{products: map[string]domain.Product{"p1": testTee()}}
	handler := NewCartHandler(carts, products, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Size: "M"})
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/items", bytes.NewReader(body)), "sess-1")

	handler.AddItem(recorder, request)

	var items domain.Cart
	json.NewDecoder(recorder.Body).Decode(&items)
	if len(items) != 1 || items[0].Quantity != 1 {
		t.Errorf("Expected one item with quantity 1, got %+v", items)
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	carts := newFakeCarts()
	products := &fakeProducts{products: map[string]domain.Product{}}
	handler := NewCartHandler(carts, products, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "nope", Quantity: 1})
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/items", bytes.NewReader(body)), "sess-1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status code %d, got %d", http.StatusNotFound, recorder.Code)
	}
}

func TestAddItem_InvalidJSON(t *testing.T) {
	handler := NewCartHandler(newFakeCarts(), &fakeProducts{}, 5*time.Second)

	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/items", bytes.NewReader([]byte("invalid json"))), "sess-1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	json.NewDecoder(recorder.Body).Decode(&response)
	if response.Code != "invalid_request" {
		t.Errorf("Expected error code 'invalid_request', got '%s'", response.Code)
	}
}

func TestAddItem_MissingProductID(t *testing.T) {
	handler := NewCartHandler(newFakeCarts(), &fakeProducts{}, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{Quantity: 1})
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/items", bytes.NewReader(body)), "sess-1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestGetCart_SessionScoped(t *testing.T) {
	carts := newFakeCarts()
	products := &fakeProducts{products: map[string]domain.Product{"p1": testTee()}}
	handler := NewCartHandler(carts, products, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Size: "M", Quantity: 1})
	recorder := httptest.NewRecorder()
	handler.AddItem(recorder, withSession(httptest.NewRequest("POST", "/items", bytes.NewReader(body)), "sess-1"))

	// Another session sees an empty cart.
	recorder = httptest.NewRecorder()
	handler.GetCart(recorder, withSession(httptest.NewRequest("GET", "/", nil), "sess-2"))

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	var items domain.Cart
	json.NewDecoder(recorder.Body).Decode(&items)
	if len(items) != 0 {
		t.Errorf("Expected empty cart for fresh session, got %d items", len(items))
	}
}

func TestUpdateQuantity_Success(t *testing.T) {
	carts := newFakeCarts()
	products := &fakeProducts{products: map[string]domain.Product{"p1": testTee()}}
	handler := NewCartHandler(carts, products, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Size: "M", Quantity: 1})
	recorder := httptest.NewRecorder()
	handler.AddItem(recorder, withSession(httptest.NewRequest("POST", "/items", bytes.NewReader(body)), "sess-1"))

	var added domain.Cart
	json.NewDecoder(recorder.Body).Decode(&added)

	update, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 5})
	recorder = httptest.NewRecorder()
	request := withSession(httptest.NewRequest("PUT", "/items/"+added[0].CartID, bytes.NewReader(update)), "sess-1")
	request = withCartID(request, added[0].CartID)

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	var items domain.Cart
	json.NewDecoder(recorder.Body).Decode(&items)
	if items[0].Quantity != 5 {
		t.Errorf("Expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestUpdateQuantity_UnknownIDIsNoOp(t *testing.T) {
	carts := newFakeCarts()
	products := &fakeProducts{products: map[string]domain.Product{"p1": testTee()}}
	handler := NewCartHandler(carts, products, 5*time.Second)

	update, _ := json.Marshal(UpdateQuantityRequestDTO{Quantity: 5})
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("PUT", "/items/ghost", bytes.NewReader(update)), "sess-1")
	request = withCartID(request, "ghost")

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	var items domain.Cart
	json.NewDecoder(recorder.Body).Decode(&items)
	if len(items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(items))
	}
}

func TestRemoveItem_Success(t *testing.T) {
	carts := newFakeCarts()
	products := &fakeProducts{products: map[string]domain.Product{"p1": testTee()}}
	handler := NewCartHandler(carts, products, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Size: "M", Quantity: 1})
	recorder := httptest.NewRecorder()
	handler.AddItem(recorder, withSession(httptest.NewRequest("POST", "/items", bytes.NewReader(body)), "sess-1"))

	var added domain.Cart
	json.NewDecoder(recorder.Body).Decode(&added)

	recorder = httptest.NewRecorder()
	request := withSession(httptest.NewRequest("DELETE", "/items/"+added[0].CartID, nil), "sess-1")
	request = withCartID(request, added[0].CartID)

	handler.RemoveItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	var items domain.Cart
	json.NewDecoder(recorder.Body).Decode(&items)
	if len(items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(items))
	}
}

func TestClearCart_Success(t *testing.T) {
	carts := newFakeCarts()
	products := &fakeProducts{products: map[string]domain.Product{"p1": testTee()}}
	handler := NewCartHandler(carts, products, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Size: "M", Quantity: 3})
	recorder := httptest.NewRecorder()
	handler.AddItem(recorder, withSession(httptest.NewRequest("POST", "/items", bytes.NewReader(body)), "sess-1"))

	recorder = httptest.NewRecorder()
	handler.ClearCart(recorder, withSession(httptest.NewRequest("DELETE", "/", nil), "sess-1"))

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}

	recorder = httptest.NewRecorder()
	handler.GetCart(recorder, withSession(httptest.NewRequest("GET", "/", nil), "sess-1"))
	var items domain.Cart
	json.NewDecoder(recorder.Body).Decode(&items)
	if len(items) != 0 {
		t.Errorf("Expected empty cart after clear, got %d items", len(items))
	}
}

func TestAddItem_ProductLookupFailure(t *testing.T) {
	products := &fakeProducts{err: errors.New("mongo down")}
	handler := NewCartHandler(newFakeCarts(), products, 5*time.Second)

	body, _ := json.Marshal(AddItemRequestDTO{ProductID: "p1", Quantity: 1})
	recorder := httptest.NewRecorder()
	request := withSession(httptest.NewRequest("POST", "/items", bytes.NewReader(body)), "sess-1")

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected status code %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
}
