package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pantry-keeper/internal/infrastructure/config"
	"pantry-keeper/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.Handler) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewHTTPGateway(&config.Config{
		Gateway: config.GatewayConfig{
			BaseURL: srv.URL,
			Timeout: 5 * time.Second,
		},
	})
}

func TestHTTPGateway_ListItems(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/pantry/items", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]common.PantryItem{
			{ID: "p-1", Name: "Milk", Quantity: 2, Unit: "L"},
		})
	}))

	items, err := gw.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p-1", items[0].ID)
}

func TestHTTPGateway_CreateItems_PreservesOrder(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Items []common.PantryItemDraft `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		created := make([]common.PantryItem, len(body.Items))
		for i, d := range body.Items {
			created[i] = common.PantryItem{ID: d.Name, Name: d.Name, Quantity: d.Quantity}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}))

	created, err := gw.CreateItems(context.Background(), []common.PantryItemDraft{
		{Name: "Eggs", Quantity: 12},
		{Name: "Butter", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Eggs", created[0].Name)
	assert.Equal(t, "Butter", created[1].Name)
}

func TestHTTPGateway_CreateItems_CountMismatch(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]common.PantryItem{})
	}))

	_, err := gw.CreateItems(context.Background(), []common.PantryItemDraft{
		{Name: "Eggs", Quantity: 12},
	})
	require.Error(t, err)
	assert.True(t, common.IsPersistenceError(err))
}

func TestHTTPGateway_ErrorStatusBecomesPersistenceError(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))

	_, err := gw.ListItems(context.Background())
	require.Error(t, err)
	assert.True(t, common.IsPersistenceError(err))

	err = gw.DeleteItem(context.Background(), "p-1")
	require.Error(t, err)
	assert.True(t, common.IsPersistenceError(err))
}

func TestHTTPGateway_RecordRecipeUse(t *testing.T) {
	var got struct {
		Servings int                `json:"servings"`
		Deltas   map[string]float64 `json:"deltas"`
	}
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/r-1/use", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))

	err := gw.RecordRecipeUse(context.Background(), "r-1", 4, map[string]float64{"p-1": 4})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Servings)
	assert.Equal(t, map[string]float64{"p-1": 4}, got.Deltas)
}
