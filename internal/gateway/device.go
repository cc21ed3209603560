package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zapflow/zapflow-backend/internal/model"
)

// DeviceGatewayClient talks to the device-paired gateway that proxies a
// tenant's phone session (one named instance per tenant).
type DeviceGatewayClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewDeviceGatewayClient(baseURL string) *DeviceGatewayClient {
	return &DeviceGatewayClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type deviceTemplateRequest struct {
	Number     string              `json:"number"`
	TemplateID string              `json:"templateId,omitempty"`
	Name       string              `json:"name"`
	Language   string              `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

func (c *DeviceGatewayClient) SendTemplateMessage(ctx context.Context, creds Credentials, phone, templateID, templateName, language string, components []TemplateComponent) error {
	payload := deviceTemplateRequest{
		Number:     phone,
		TemplateID: templateID,
		Name:       templateName,
		Language:   language,
		Components: components,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/message/sendTemplate/%s", c.BaseURL, creds.SenderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", creds.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("device gateway returned %d: %s", resp.StatusCode, string(raw))
}

// ConnectionState fetches the instance's connection state for the tenant.
// A non-2xx response or transport error is returned to the caller, which is
// expected to skip the tenant for this tick.
func (c *DeviceGatewayClient) ConnectionState(ctx context.Context, t *model.Tenant) (bool, error) {
	url := fmt.Sprintf("%s/instance/connectionState/%s", c.BaseURL, t.InstanceName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("apikey", t.InstanceAPIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("connection state returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return false, err
	}
	return ParseConnected(raw), nil
}

// ParseConnected derives a connected boolean from the gateway's loosely typed
// state body. The upstream API has shipped several shapes over time, so every
// known positive signal is accepted:
//
//	{"instance":{"state":"open"}}
//	{"state":"CONNECTED"}
//	{"connected":true}
//	{"status":"open"}
func ParseConnected(raw []byte) bool {
	var body struct {
		Connected *bool  `json:"connected"`
		State     string `json:"state"`
		Status    string `json:"status"`
		Instance  struct {
			State  string `json:"state"`
			Status string `json:"status"`
		} `json:"instance"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return false
	}
	if body.Connected != nil {
		return *body.Connected
	}
	for _, s := range []string{body.State, body.Status, body.Instance.State, body.Instance.Status} {
		switch strings.ToLower(s) {
		case "open", "connected", "online":
			return true
		}
	}
	return false
}
