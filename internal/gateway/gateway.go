package gateway

import (
	"context"
	"strings"

	appErrors "github.com/zapflow/zapflow-backend/internal/errors"
	"github.com/zapflow/zapflow-backend/internal/model"
)

// TemplateComponent mirrors the component objects accepted by the template
// message endpoints of both gateways.
type TemplateComponent struct {
	Type       string              `json:"type"`
	Parameters []TemplateParameter `json:"parameters,omitempty"`
}

type TemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// SendFunc sends one template message to a normalized phone number. A nil
// error means the gateway accepted the message.
type SendFunc func(ctx context.Context, phone, templateID, templateName, language string, components []TemplateComponent) error

// Credentials is the per-tenant material needed to talk to a messaging gateway.
type Credentials struct {
	Token      string // bearer token or instance apikey
	SenderID   string // phone number id or instance name
	APIVersion string // cloud API graph version, unused for the device gateway
}

// ResolveCredentials validates the tenant's configuration for the given
// channel kind.
func ResolveCredentials(t *model.Tenant, channel string) (Credentials, error) {
	switch channel {
	case model.ChannelCloudAPI:
		if t.WAToken == "" || t.WAPhoneNumberID == "" {
			return Credentials{}, appErrors.NewMissingCredentials(t.ID, channel)
		}
		version := t.WAAPIVersion
		if version == "" {
			version = "v18.0"
		}
		return Credentials{Token: t.WAToken, SenderID: t.WAPhoneNumberID, APIVersion: version}, nil
	case model.ChannelDevice:
		if t.InstanceName == "" || t.InstanceAPIKey == "" {
			return Credentials{}, appErrors.NewMissingCredentials(t.ID, channel)
		}
		return Credentials{Token: t.InstanceAPIKey, SenderID: t.InstanceName}, nil
	default:
		return Credentials{}, appErrors.NewMissingCredentials(t.ID, channel)
	}
}

// Registry resolves a (tenant, channel) pair into a bound send function.
type Registry struct {
	Cloud  *CloudAPIClient
	Device *DeviceGatewayClient
}

func (g *Registry) SenderFor(t *model.Tenant, channel string) (SendFunc, error) {
	creds, err := ResolveCredentials(t, channel)
	if err != nil {
		return nil, err
	}
	switch channel {
	case model.ChannelCloudAPI:
		return func(ctx context.Context, phone, templateID, templateName, language string, components []TemplateComponent) error {
			return g.Cloud.SendTemplateMessage(ctx, creds, phone, templateID, templateName, language, components)
		}, nil
	default:
		return func(ctx context.Context, phone, templateID, templateName, language string, components []TemplateComponent) error {
			return g.Device.SendTemplateMessage(ctx, creds, phone, templateID, templateName, language, components)
		}, nil
	}
}

// NormalizePhone strips formatting down to digits, e.g. "+55 (11) 99999-0000"
// becomes "5511999990000". An empty result means the contact is unsendable.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
