package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appErrors "github.com/zapflow/zapflow-backend/internal/errors"
	"github.com/zapflow/zapflow-backend/internal/gateway"
	"github.com/zapflow/zapflow-backend/internal/metrics"
	"github.com/zapflow/zapflow-backend/internal/model"
)

// CampaignStore is the slice of the campaign repository the executor needs.
type CampaignStore interface {
	ListDue(now time.Time) ([]*model.Campaign, error)
	Claim(id int, startedAt time.Time) (bool, error)
	Finalize(id int, status string, completedAt time.Time, successCount, errorCount int, errorMessage string) error
	MarkFailed(id int, completedAt time.Time, errorMessage string) error
}

// ContactStore loads the recipient set of a campaign.
type ContactStore interface {
	ListByGroup(groupID int) ([]model.Contact, error)
}

// TenantStore resolves the tenant owning a campaign.
type TenantStore interface {
	GetByID(id string) (*model.Tenant, error)
}

// SenderResolver binds a tenant's credentials for a channel into a send function.
type SenderResolver interface {
	SenderFor(t *model.Tenant, channel string) (gateway.SendFunc, error)
}

// Executor claims due campaigns and sends to each recipient sequentially,
// aggregating per-recipient outcomes into the campaign's counters.
type Executor struct {
	Campaigns CampaignStore
	Contacts  ContactStore
	Tenants   TenantStore
	Gateways  SenderResolver
	Logger    *zap.SugaredLogger
	Metrics   *metrics.Metrics

	// SendDelay paces outbound sends; ~100ms acts as a crude rate limiter.
	SendDelay time.Duration
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	// mu serializes ticks against each other. The executor mutates campaign
	// rows across several round trips, so overlapping ticks inside one
	// process are not tolerated the way the tracker and sweeper tolerate them.
	mu sync.Mutex
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// CheckAndExecuteDue runs one dispatch pass: every campaign in scheduled state
// whose due time has been reached is claimed and executed. Errors never
// propagate to the timer.
func (e *Executor) CheckAndExecuteDue(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	due, err := e.Campaigns.ListDue(e.now())
	if err != nil {
		e.Logger.Errorw("failed to query due campaigns", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	e.Logger.Infow("due campaigns found", "count", len(due))

	for _, c := range due {
		claimed, err := e.Campaigns.Claim(c.ID, e.now())
		if err != nil {
			e.Logger.Errorw("failed to claim campaign", "campaign", c.ID, "error", err)
			continue
		}
		if !claimed {
			// Someone else won the conditional update; the campaign is
			// already being executed.
			e.Logger.Debugw("campaign already claimed", "campaign", c.ID)
			continue
		}
		e.execute(ctx, c)
	}
}

// execute runs a claimed campaign to a terminal state. Structural failures
// finalize the campaign as failed and are swallowed.
func (e *Executor) execute(ctx context.Context, c *model.Campaign) {
	if err := e.run(ctx, c); err != nil {
		e.Logger.Errorw("campaign failed", "campaign", c.ID, "error", err)
		if e.Metrics != nil {
			e.Metrics.CampaignsFailedTotal.Inc()
		}
		if ferr := e.Campaigns.MarkFailed(c.ID, e.now(), err.Error()); ferr != nil {
			e.Logger.Errorw("failed to mark campaign failed", "campaign", c.ID, "error", ferr)
		}
	}
}

func (e *Executor) run(ctx context.Context, c *model.Campaign) error {
	contacts, err := e.Contacts.ListByGroup(c.GroupID)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}
	if len(contacts) == 0 {
		return fmt.Errorf("%w in group %d", appErrors.ErrNoRecipients, c.GroupID)
	}

	tenant, err := e.Tenants.GetByID(c.TenantID)
	if err != nil {
		return fmt.Errorf("load tenant: %w", err)
	}

	send, err := e.Gateways.SenderFor(tenant, c.Channel)
	if err != nil {
		return err
	}

	delay := e.SendDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	var successCount, errorCount int
	var lastError string

	for _, contact := range contacts {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("dispatch interrupted: %w", err)
		}

		phone := gateway.NormalizePhone(contact.Phone)
		if phone == "" {
			errorCount++
			lastError = fmt.Sprintf("contact %d has no valid phone number", contact.ID)
			continue
		}

		if err := send(ctx, phone, c.TemplateID, c.TemplateName, c.Language, nil); err != nil {
			errorCount++
			lastError = err.Error()
			if e.Metrics != nil {
				e.Metrics.MessagesFailedTotal.Inc()
			}
			e.Logger.Debugw("send failed", "campaign", c.ID, "phone", phone, "error", err)
		} else {
			successCount++
			if e.Metrics != nil {
				e.Metrics.MessagesSentTotal.Inc()
			}
		}
	}

	if err := e.Campaigns.Finalize(c.ID, model.CampaignStatusCompleted, e.now(), successCount, errorCount, lastError); err != nil {
		return fmt.Errorf("finalize campaign: %w", err)
	}

	if e.Metrics != nil {
		e.Metrics.CampaignsCompletedTotal.Inc()
	}
	e.Logger.Infow("campaign completed",
		"campaign", c.ID, "sent", successCount, "errors", errorCount, "recipients", len(contacts))
	return nil
}
