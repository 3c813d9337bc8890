package store_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storenetdev/storenet-backend/internal/apperr"
	"github.com/storenetdev/storenet-backend/internal/modules/store"
)

// startPeer serves a real ON node over HTTP, stocked with one camera.
func startPeer(t *testing.T) (*httptest.Server, *fixture) {
	t.Helper()
	f := setupStores(t, "ON")
	router := chi.NewRouter()
	store.NewHandler(f.nodes["ON"]).RegisterRoutes(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	_, err := f.nodes["ON"].AddItem(context.Background(), "ONM0001", "ON2001", "Camera", 2, 100)
	require.NoError(t, err)
	return srv, f
}

func TestClientRoundTrip(t *testing.T) {
	srv, f := startPeer(t)
	client := store.NewClient(srv.URL+"/api/v1/stores/ON", time.Second)
	ctx := context.Background()

	t.Run("Remote lookup", func(t *testing.T) {
		report, err := client.RequestRemoteItemLookup(ctx, "Camera")
		require.NoError(t, err)
		assert.Equal(t, "ON2001 2 100.00", report)
	})

	t.Run("Remote purchase", func(t *testing.T) {
		result, err := client.RequestRemotePurchase(ctx, "QCU1234", "ON2001", "01012025", 1000)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 100.0, result.PriceCharged)
		assert.Equal(t, 900.0, f.accounts.RemainingBudget("QCU1234"))
	})

	t.Run("Remote return", func(t *testing.T) {
		accepted, err := client.RequestRemoteReturn(ctx, "QCU1234", "ON2001", "05012025")
		require.NoError(t, err)
		assert.True(t, accepted)
		assert.Equal(t, 1000.0, f.accounts.RemainingBudget("QCU1234"))
	})

	t.Run("Remote validation failure keeps its classification", func(t *testing.T) {
		_, err := client.RequestRemotePurchase(ctx, "QCU1234", "ON2001", "bogus", 1000)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestClientServerError(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	client := store.NewClient(broken.URL, time.Second)
	_, err := client.RequestRemoteItemLookup(context.Background(), "Camera")
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}

func TestClientTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(slow.Close)

	client := store.NewClient(slow.URL, 50*time.Millisecond)
	_, err := client.RequestRemoteItemLookup(context.Background(), "Camera")
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}

func TestClientConnectionRefused(t *testing.T) {
	client := store.NewClient("http://127.0.0.1:1/api/v1/stores/ON", 100*time.Millisecond)
	_, err := client.RequestRemoteReturn(context.Background(), "QCU1234", "ON2001", "01012025")
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
}
