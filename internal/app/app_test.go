package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/cafepos/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/cafepos/internal/health"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.MetricsAddr = "127.0.0.1:0"
	cfg.CatalogSeedPath = writeSeedFile(t)

	a, err := New(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a
}

func TestNew_CompleteOrderRefreshesHistoryView(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	assert.Empty(t, a.HistoryView.Snapshot().Orders)
	assert.Equal(t, []string{"history-view"}, a.Notifier.Subscribers())

	espressoID, err := a.Catalog.FindProductIDByName(ctx, "Espresso")
	require.NoError(t, err)
	products, err := a.Catalog.ListProducts(ctx, domain.BySearch("lat"))
	require.NoError(t, err)
	require.Len(t, products, 1)

	cart := a.NewCart()
	cart.AddProduct(espressoID, "Espresso", decimal.RequireFromString("25"))
	cart.Increase(espressoID)
	cart.AddCatalogProduct(products[0])

	orderID, err := a.Writer.Complete(ctx, cart)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	snapshot := a.HistoryView.Snapshot()
	require.Len(t, snapshot.Orders, 1)
	assert.Equal(t, orderID, snapshot.Orders[0].ID)
	assert.True(t, decimal.RequireFromString("85").Equal(snapshot.Orders[0].TotalAmount))
	assert.True(t, decimal.RequireFromString("85").Equal(snapshot.TodayTotal))

	items, err := a.History.GetOrderItems(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Espresso", items[0].ProductName)
	assert.Equal(t, 2, items[0].Quantity)

	require.NoError(t, a.HistoryView.DeleteOrder(ctx, orderID))
	assert.Empty(t, a.HistoryView.Snapshot().Orders)
	assert.True(t, a.HistoryView.Snapshot().TodayTotal.IsZero())
}

func TestNew_EmptyCartIsRejected(t *testing.T) {
	a := newTestApp(t)

	_, err := a.Writer.Complete(context.Background(), a.NewCart())
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Empty(t, a.HistoryView.Snapshot().Orders)
}

func TestNew_InvalidTimezone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Nowhere/City"

	_, err := New(context.Background(), cfg, testLogger())
	require.Error(t, err)
}

func TestAppClose_Idempotent(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
	assert.Empty(t, a.Notifier.Subscribers())
}

func TestOpsMux_Endpoints(t *testing.T) {
	handler := healthcheck.NewHandler("test")
	handler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func(context.Context) error { return nil }))
	srv := httptest.NewServer(newOpsMux(handler))
	t.Cleanup(srv.Close)

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{path: "/livez", wantCode: http.StatusOK, wantBody: "ok"},
		{path: "/readyz", wantCode: http.StatusOK, wantBody: "ready"},
		{path: "/metrics", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, tt.wantBody, string(body))
			}
		})
	}

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload healthcheck.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, healthcheck.StatusHealthy, payload.Status)
	assert.Equal(t, "test", payload.Version)
	assert.Contains(t, payload.Checks, "storage")
}

func TestOpsMux_ReadyzUnhealthyStorage(t *testing.T) {
	handler := healthcheck.NewHandler("test")
	handler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func(context.Context) error {
		return errors.New("connection refused")
	}))
	srv := httptest.NewServer(newOpsMux(handler))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	a := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not stop after context cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lis.Close() })

	a := newTestApp(t)
	a.cfg.MetricsAddr = lis.Addr().String()

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen ops server")
}
