package store_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storenetdev/storenet-backend/internal/modules/store"
)

func setupRouter(t *testing.T) (*chi.Mux, *fixture) {
	t.Helper()
	f := setupStores(t, "QC")
	router := chi.NewRouter()
	store.NewHandler(f.nodes["QC"]).RegisterRoutes(router)
	return router, f
}

func doJSON(t *testing.T, router *chi.Mux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddItemEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/QC/items", map[string]interface{}{
		"manager_id": "QCM0001",
		"item_id":    "QC1001",
		"item_name":  "Laptop",
		"quantity":   5,
		"price":      900,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Item QC1001 successfully added/updated.", body.Status)

	t.Run("Foreign manager gets 401", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/QC/items", map[string]interface{}{
			"manager_id": "ONM0001",
			"item_id":    "QC1002",
			"item_name":  "Headphones",
			"quantity":   1,
			"price":      150,
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Non-positive quantity gets 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/QC/items", map[string]interface{}{
			"manager_id": "QCM0001",
			"item_id":    "QC1002",
			"item_name":  "Headphones",
			"quantity":   0,
			"price":      150,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPurchaseEndpoint(t *testing.T) {
	router, _ := setupRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/QC/items", map[string]interface{}{
		"manager_id": "QCM0001",
		"item_id":    "QC1001",
		"item_name":  "Laptop",
		"quantity":   1,
		"price":      900,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/stores/QC/purchases", map[string]interface{}{
		"customer_id": "QCU1234",
		"item_id":     "QC1001",
		"date":        "01012025",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result store.PurchaseResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 900.0, result.PriceCharged)

	t.Run("Malformed date gets 400", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/QC/purchases", map[string]interface{}{
			"customer_id": "QCU1234",
			"item_id":     "QC1001",
			"date":        "not-a-date",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Waitlist outcome is still 200", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/QC/purchases", map[string]interface{}{
			"customer_id": "QCU5678",
			"item_id":     "QC1001",
			"date":        "02012025",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var result store.PurchaseResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Success)
		assert.Equal(t, "Item unavailable. Added to waitlist.", result.Message)
	})
}

func TestRemoveAndListEndpoints(t *testing.T) {
	router, _ := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/QC/items/QC9999/remove", map[string]interface{}{
		"manager_id": "QCM0001",
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Item QC9999 does not exist.", body.Status)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stores/QC/items?manager_id=QCM0001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report struct {
		Report string `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "No items available.", report.Report)
}

func TestRemoteReturnEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	// No record exists, so the remote return is not accepted.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/stores/QC/remote/returns", map[string]interface{}{
		"customer_id": "ONU1234",
		"item_id":     "QC1001",
		"date":        "01012025",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Accepted bool `json:"accepted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Accepted)
}
