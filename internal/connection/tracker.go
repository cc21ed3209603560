package connection

import (
	"context"

	"go.uber.org/zap"

	"github.com/zapflow/zapflow-backend/internal/metrics"
	"github.com/zapflow/zapflow-backend/internal/model"
)

// Webhook event names fired on connection transitions.
const (
	EventConnected    = "connection.connected"
	EventDisconnected = "connection.disconnected"
)

// TenantLister is the slice of the tenant repository the tracker needs.
type TenantLister interface {
	ListActive() ([]model.Tenant, error)
}

// StatusGateway reports whether a tenant's instance is currently connected.
type StatusGateway interface {
	ConnectionState(ctx context.Context, t *model.Tenant) (bool, error)
}

// Notifier delivers an edge-triggered connection event for a tenant.
type Notifier interface {
	SendConnectionEvent(ctx context.Context, t *model.Tenant, event string, connected bool) bool
}

// Tracker polls each tenant's gateway instance and fires a webhook only when
// the observed state flips. First observations establish a baseline silently.
type Tracker struct {
	Tenants  TenantLister
	Gateway  StatusGateway
	States   StateStore
	Notifier Notifier
	Logger   *zap.SugaredLogger
	Metrics  *metrics.Metrics
}

// CheckAllTenantConnections runs one polling pass. Gateway failures and
// notifier outcomes never abort the pass; each tenant is handled independently.
func (t *Tracker) CheckAllTenantConnections(ctx context.Context) {
	tenants, err := t.Tenants.ListActive()
	if err != nil {
		t.Logger.Errorw("failed to list tenants for connection check", "error", err)
		return
	}

	for i := range tenants {
		tenant := tenants[i]
		if tenant.InstanceName == "" {
			continue // no device instance configured
		}

		connected, err := t.Gateway.ConnectionState(ctx, &tenant)
		if err != nil {
			// Leave the cached state untouched so a flaky poll does not
			// produce a phantom transition on the next success.
			t.Logger.Debugw("connection state check failed, skipping tenant",
				"tenant", tenant.ID, "instance", tenant.InstanceName, "error", err)
			continue
		}

		prev, seen := t.States.Get(tenant.ID)
		if !seen {
			t.States.Set(tenant.ID, connected)
			t.Logger.Infow("connection baseline established",
				"tenant", tenant.ID, "connected", connected)
			continue
		}

		if prev != connected {
			event := EventDisconnected
			if connected {
				event = EventConnected
			}
			t.Logger.Infow("connection state changed",
				"tenant", tenant.ID, "was", prev, "now", connected)
			if t.Metrics != nil {
				t.Metrics.ConnectionEventsTotal.WithLabelValues(event).Inc()
			}
			t.notifyAsync(&tenant, event, connected)
		}

		t.States.Set(tenant.ID, connected)
	}
}

// notifyAsync fires the webhook in its own goroutine so slow or failing
// deliveries never block the polling pass.
func (t *Tracker) notifyAsync(tenant *model.Tenant, event string, connected bool) {
	go func() {
		delivered := t.Notifier.SendConnectionEvent(context.Background(), tenant, event, connected)
		if t.Metrics != nil {
			t.Metrics.WebhookDeliveriesTotal.WithLabelValues(deliveryResult(delivered)).Inc()
		}
		if !delivered {
			t.Logger.Warnw("connection webhook not delivered", "tenant", tenant.ID, "event", event)
		}
	}()
}

func deliveryResult(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
