package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/rl1809/beer-stock/internal/adapter/storage"
	"github.com/rl1809/beer-stock/internal/core/domain"
	"github.com/rl1809/beer-stock/internal/core/service"
)

type failingRepo struct {
	*storage.MemoryAdapter
}

func (f *failingRepo) FindAll(ctx context.Context) ([]domain.Beer, error) {
	return nil, errors.New("connection refused")
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := service.NewBeerService(storage.NewMemoryAdapter(), 3)
	return NewHTTPHandler(svc, zap.NewNop()).Routes()
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func validBeer(name string) beerDTO {
	return beerDTO{
		Name:     name,
		Brand:    "Ambev",
		Max:      50,
		Quantity: 10,
		Type:     string(domain.BeerTypeLager),
	}
}

func createBeer(t *testing.T, h http.Handler, dto beerDTO) string {
	t.Helper()

	rec := doRequest(t, h, http.MethodPost, "/api/v1/beers", dto)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created createdDTO
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return created.ID
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorDTO
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Message
}

func TestHTTP_HealthCheck(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHTTP_CreateAndRead(t *testing.T) {
	h := newTestRouter(t)
	id := createBeer(t, h, validBeer("Brahma"))
	if id == "" {
		t.Fatal("expected id in response")
	}

	rec := doRequest(t, h, http.MethodGet, "/api/v1/beers/Brahma", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got beerDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	want := validBeer("Brahma")
	want.ID = id
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestHTTP_ReadNameWithSlash(t *testing.T) {
	h := newTestRouter(t)
	id := createBeer(t, h, validBeer("Pale/Ale"))

	rec := doRequest(t, h, http.MethodGet, "/api/v1/beers/Pale%2FAle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got beerDTO
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != id || got.Name != "Pale/Ale" {
		t.Errorf("unexpected beer: %+v", got)
	}

	rec = doRequest(t, h, http.MethodGet, "/api/v1/beers/Dark%2FAle", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "invalid name Dark/Ale" {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestHTTP_ReadNameWithSpace(t *testing.T) {
	h := newTestRouter(t)
	createBeer(t, h, validBeer("Pale Ale"))

	rec := doRequest(t, h, http.MethodGet, "/api/v1/beers/Pale%20Ale", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHTTP_CreateDuplicate(t *testing.T) {
	h := newTestRouter(t)
	createBeer(t, h, validBeer("Brahma"))

	rec := doRequest(t, h, http.MethodPost, "/api/v1/beers", validBeer("Brahma"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "a beer already exists with name Brahma" {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestHTTP_CreateValidation(t *testing.T) {
	long := string(bytes.Repeat([]byte("a"), 101))

	tests := []struct {
		name   string
		mutate func(*beerDTO)
	}{
		{"short name", func(d *beerDTO) { d.Name = "a" }},
		{"long name", func(d *beerDTO) { d.Name = long }},
		{"short brand", func(d *beerDTO) { d.Brand = "" }},
		{"negative max", func(d *beerDTO) { d.Max = -1 }},
		{"unknown type", func(d *beerDTO) { d.Type = "PILSEN" }},
		{"quantity above max", func(d *beerDTO) { d.Quantity = 51 }},
		{"negative quantity", func(d *beerDTO) { d.Quantity = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t)
			dto := validBeer("Brahma")
			tt.mutate(&dto)

			rec := doRequest(t, h, http.MethodPost, "/api/v1/beers", dto)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}

			list := doRequest(t, h, http.MethodGet, "/api/v1/beers", nil)
			var beers []beerDTO
			json.NewDecoder(list.Body).Decode(&beers)
			if len(beers) != 0 {
				t.Errorf("expected nothing stored, got %d beers", len(beers))
			}
		})
	}
}

func TestHTTP_CreateInvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/beers", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHTTP_ReadMissing(t *testing.T) {
	rec := doRequest(t, newTestRouter(t), http.MethodGet, "/api/v1/beers/Skol", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "invalid name Skol" {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestHTTP_List(t *testing.T) {
	h := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/api/v1/beers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("expected empty array, got %q", body)
	}

	createBeer(t, h, validBeer("Brahma"))
	createBeer(t, h, validBeer("Skol"))

	rec = doRequest(t, h, http.MethodGet, "/api/v1/beers", nil)
	var beers []beerDTO
	if err := json.NewDecoder(rec.Body).Decode(&beers); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(beers) != 2 {
		t.Errorf("expected 2 beers, got %d", len(beers))
	}
}

func TestHTTP_Delete(t *testing.T) {
	h := newTestRouter(t)
	id := createBeer(t, h, validBeer("Brahma"))

	rec := doRequest(t, h, http.MethodDelete, "/api/v1/beers/"+id, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodDelete, "/api/v1/beers/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "invalid id "+id {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestHTTP_AdjustQuantity(t *testing.T) {
	h := newTestRouter(t)
	id := createBeer(t, h, validBeer("Brahma"))
	path := "/api/v1/beers/" + id + "/stock"

	rec := doRequest(t, h, http.MethodPatch, path, quantityDTO{Quantity: 40})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got beerDTO
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Quantity != 50 {
		t.Errorf("expected quantity 50, got %d", got.Quantity)
	}

	rec = doRequest(t, h, http.MethodPatch, path, quantityDTO{Quantity: 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "space available for 0 beer(s)" {
		t.Errorf("unexpected message: %s", msg)
	}

	rec = doRequest(t, h, http.MethodPatch, path, quantityDTO{Quantity: -51})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "only available 50 beer(s)" {
		t.Errorf("unexpected message: %s", msg)
	}

	rec = doRequest(t, h, http.MethodPatch, "/api/v1/beers/missing/stock", quantityDTO{Quantity: 1})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHTTP_InternalError(t *testing.T) {
	svc := service.NewBeerService(&failingRepo{MemoryAdapter: storage.NewMemoryAdapter()}, 1)
	h := NewHTTPHandler(svc, zap.NewNop()).Routes()

	rec := doRequest(t, h, http.MethodGet, "/api/v1/beers", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "internal error" {
		t.Errorf("expected internal details hidden, got: %s", msg)
	}
}
