package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthyFailsOpenForUnregisteredBackend(t *testing.T) {
	h := NewHealthChecker(DefaultConfig())
	assert.True(t, h.Healthy("local:unknown"))
}

func TestRegisterNilCheckerIsAlwaysHealthy(t *testing.T) {
	h := NewHealthChecker(DefaultConfig())
	h.Register("local:trusted", nil)
	assert.True(t, h.Healthy("local:trusted"))
}

func TestSetHealthOverrideWinsUntilNextCheck(t *testing.T) {
	h := NewHealthChecker(DefaultConfig())
	h.Register("local:svc", NewFunctionChecker(func(ctx context.Context) Result {
		return Result{Healthy: true}
	}))

	h.SetHealth("local:svc", StatusUnhealthy)
	assert.False(t, h.Healthy("local:svc"))
	assert.Equal(t, StatusUnhealthy, h.Status("local:svc"))
}

func TestHTTPCheckerClassifiesStatusCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	checker := NewHTTPChecker(srv.URL)
	result := checker.Check(context.Background())
	assert.False(t, result.Healthy)
	assert.Equal(t, StatusUnhealthy, result.Status)
}

func TestHTTPCheckerDegradedOnUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	checker := NewHTTPChecker(srv.URL)
	result := checker.Check(context.Background())
	assert.Equal(t, StatusDegraded, result.Status)
}

func TestTCPCheckerDetectsUnreachable(t *testing.T) {
	checker := NewTCPChecker("127.0.0.1:1")
	checker.Timeout = 200 * time.Millisecond
	result := checker.Check(context.Background())
	assert.False(t, result.Healthy)
}

func TestFunctionCheckerRecoversPanic(t *testing.T) {
	checker := NewFunctionChecker(func(ctx context.Context) Result {
		panic("boom")
	})
	result := checker.Check(context.Background())
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Message, "panicked")
}

func TestFilterHealthyPreservesOrder(t *testing.T) {
	h := NewHealthChecker(DefaultConfig())
	h.SetHealth("local:a", StatusHealthy)
	h.SetHealth("local:b", StatusUnhealthy)
	h.SetHealth("local:c", StatusHealthy)

	backends := []BackendDescriptor{
		{Name: "a", Type: BackendLocal},
		{Name: "b", Type: BackendLocal},
		{Name: "c", Type: BackendLocal},
	}
	filtered := h.FilterHealthy(backends)
	require.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].Name)
	assert.Equal(t, "c", filtered[1].Name)
}
