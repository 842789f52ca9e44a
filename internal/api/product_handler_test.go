package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/V4L3NT1NO/TrabajitoCarrito/internal/domain"
)

func setupProductHandler(catalog *CatalogMock) chi.Router {
	h := NewProductHandler(catalog, 5*time.Second, zap.NewNop())
	r := chi.NewRouter()
	r.Get("/products", h.List)
	r.Get("/products/{id}", h.Get)
	return r
}

func TestProductHandler_List_Success(t *testing.T) {
	r := setupProductHandler(&CatalogMock{products: map[int64]domain.Product{
		1: {ID: 1, Name: "Pan", Price: 10, Stock: 100, Category: "food"},
		2: {ID: 2, Name: "Mouse", Price: 200, Stock: 5, Category: "technology"},
	}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProductsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Products, 2)
}

func TestProductHandler_List_BackendDown(t *testing.T) {
	r := setupProductHandler(&CatalogMock{err: domain.ErrConnection})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/products", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProductHandler_Get_Success(t *testing.T) {
	r := setupProductHandler(&CatalogMock{products: map[int64]domain.Product{
		1: {ID: 1, Name: "Pan", Price: 10, Stock: 100, Category: "food"},
	}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/products/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ProductResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Pan", resp.Name)
	assert.Equal(t, "food", resp.Category)
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	r := setupProductHandler(&CatalogMock{products: map[int64]domain.Product{}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/products/999", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductHandler_Get_BadID(t *testing.T) {
	r := setupProductHandler(&CatalogMock{products: map[int64]domain.Product{}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/products/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductHandler_Get_UpstreamError(t *testing.T) {
	r := setupProductHandler(&CatalogMock{err: &domain.UpstreamError{StatusCode: 500, Body: "boom"}})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/products/1", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
