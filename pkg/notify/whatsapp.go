package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrWhatsAppNotConfigured = errors.New("whatsapp is not configured")

type WhatsAppConfig struct {
	AccessToken  string
	PhoneID      string
	BaseURL      string
	TemplateName string
	Language     string
}

// WhatsAppClient sends template messages through the WhatsApp Cloud API.
type WhatsAppClient struct {
	cfg  WhatsAppConfig
	http *http.Client
}

func NewWhatsAppClient(cfg WhatsAppConfig) *WhatsAppClient {
	if cfg.Language == "" {
		cfg.Language = "en_US"
	}
	return &WhatsAppClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *WhatsAppClient) Configured() bool {
	return c.cfg.AccessToken != "" && c.cfg.PhoneID != ""
}

// SendTemplate sends the configured template to `to` (digits only) with the
// given body parameters in order.
func (c *WhatsAppClient) SendTemplate(ctx context.Context, to string, params ...string) error {
	if !c.Configured() {
		return ErrWhatsAppNotConfigured
	}

	parameters := make([]map[string]string, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, map[string]string{"type": "text", "text": p})
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":     c.cfg.TemplateName,
			"language": map[string]string{"code": c.cfg.Language},
			"components": []map[string]interface{}{
				{"type": "body", "parameters": parameters},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimSuffix(c.cfg.BaseURL, "/"), c.cfg.PhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp api error: status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
