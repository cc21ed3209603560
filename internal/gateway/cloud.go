package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// CloudAPIClient talks to the official WhatsApp Cloud API.
type CloudAPIClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewCloudAPIClient(baseURL string) *CloudAPIClient {
	return &CloudAPIClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type cloudTemplateRequest struct {
	MessagingProduct string        `json:"messaging_product"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Template         cloudTemplate `json:"template"`
}

type cloudTemplate struct {
	Name       string              `json:"name"`
	Language   cloudLanguage       `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

type cloudLanguage struct {
	Code string `json:"code"`
}

// SendTemplateMessage posts one template message through the tenant's phone
// number. templateID is unused by the Cloud API, which addresses templates by
// name; it is kept in the signature so both gateways share SendFunc.
func (c *CloudAPIClient) SendTemplateMessage(ctx context.Context, creds Credentials, phone, templateID, templateName, language string, components []TemplateComponent) error {
	if language == "" {
		language = "pt_BR"
	}
	payload := cloudTemplateRequest{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "template",
		Template: cloudTemplate{
			Name:       templateName,
			Language:   cloudLanguage{Code: language},
			Components: components,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.BaseURL, creds.APIVersion, creds.SenderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+creds.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("cloud api returned %d: %s", resp.StatusCode, readAPIError(resp.Body))
}

// readAPIError extracts error.message from a Cloud API error body, falling
// back to the raw body.
func readAPIError(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(raw)
}
