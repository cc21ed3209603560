package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zapflow/zapflow-backend/internal/model"
)

func testNotifier() *Notifier {
	return NewNotifier(2*time.Second, zap.NewNop().Sugar())
}

func TestSendConnectionEventDeliversPayload(t *testing.T) {
	var got ConnectionEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := testNotifier()
	n.Now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }

	tenant := &model.Tenant{ID: "t1", Name: "Loja Aurora", WebhookURL: srv.URL}
	ok := n.SendConnectionEvent(context.Background(), tenant, "connection.disconnected", false)

	assert.True(t, ok)
	assert.Equal(t, "connection.disconnected", got.Event)
	assert.Equal(t, "t1", got.TenantID)
	assert.Equal(t, "Loja Aurora", got.TenantName)
	assert.False(t, got.Connected)
	assert.Equal(t, "2026-08-30T12:00:00Z", got.Timestamp)
}

func TestSendConnectionEventNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := testNotifier()
	ok := n.SendConnectionEvent(context.Background(), &model.Tenant{ID: "t1", WebhookURL: srv.URL}, "connection.connected", true)
	assert.False(t, ok)
}

func TestSendConnectionEventTransportErrorIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	n := testNotifier()
	ok := n.SendConnectionEvent(context.Background(), &model.Tenant{ID: "t1", WebhookURL: srv.URL}, "connection.connected", true)
	assert.False(t, ok)
}

func TestSendConnectionEventWithoutURLIsSkipped(t *testing.T) {
	n := testNotifier()
	ok := n.SendConnectionEvent(context.Background(), &model.Tenant{ID: "t1"}, "connection.connected", true)
	assert.False(t, ok)
}

func TestFirstSuccessShortCircuitsOnFirst2xx(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer good.Close()

	var afterCalls atomic.Int32
	after := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		afterCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer after.Close()

	n := testNotifier()
	winner, err := n.FirstSuccess(context.Background(), []Attempt{
		{Method: http.MethodPost, URL: bad.URL, Payload: map[string]string{"url": "x"}},
		{Method: http.MethodPost, URL: good.URL, Payload: map[string]string{"url": "x"}},
		{Method: http.MethodPost, URL: after.URL, Payload: map[string]string{"url": "x"}},
	})

	require.NoError(t, err)
	assert.Equal(t, good.URL, winner.URL)
	assert.Zero(t, afterCalls.Load(), "candidates after the winner must not be attempted")
}

func TestFirstSuccessAllFailSurfacesError(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	n := testNotifier()
	winner, err := n.FirstSuccess(context.Background(), []Attempt{
		{Method: http.MethodPost, URL: bad.URL},
		{Method: http.MethodGet, URL: bad.URL},
	})

	assert.Nil(t, winner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 candidate endpoints failed")
}

func TestFirstSuccessEmptyCandidates(t *testing.T) {
	n := testNotifier()
	winner, err := n.FirstSuccess(context.Background(), nil)
	assert.Nil(t, winner)
	assert.Error(t, err)
}
