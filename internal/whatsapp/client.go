package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"detectorbot/relay/internal/config"
)

// Client talks to the WhatsApp Cloud API (Graph API): sending text replies,
// resolving media references to bytes, and acknowledging deliveries.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	accessToken   string
	phoneNumberID string
}

// NewClient creates a WhatsApp Cloud API client. A nil httpClient gets a
// default with a conservative timeout; media downloads can be large.
func NewClient(cfg config.WhatsAppConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		httpClient:    httpClient,
		baseURL:       cfg.GraphBaseURL,
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

// SendText sends a text message to a phone number.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	return c.postMessages(ctx, payload)
}

// MarkRead acknowledges a message so the transport stops treating it as
// undelivered.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}
	return c.postMessages(ctx, payload)
}

// DownloadMedia resolves a media id to its bytes and the declared mime type.
// Two round trips: the media id yields a short-lived download URL, then the
// URL yields the bytes.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	// Step 1: resolve the media id to a URL.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.baseURL, mediaID), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media lookup returned status %d", resp.StatusCode)
	}

	var meta struct {
		URL      string `json:"url"`
		MimeType string `json:"mime_type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, "", err
	}
	if meta.URL == "" {
		return nil, "", fmt.Errorf("media %s has no download URL", mediaID)
	}

	// Step 2: download the actual bytes. The URL requires the same bearer.
	dlReq, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return nil, "", err
	}
	dlReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	dlResp, err := c.httpClient.Do(dlReq)
	if err != nil {
		return nil, "", err
	}
	defer dlResp.Body.Close()

	if dlResp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media download returned status %d", dlResp.StatusCode)
	}

	content, err := io.ReadAll(dlResp.Body)
	if err != nil {
		return nil, "", err
	}

	return content, meta.MimeType, nil
}

func (c *Client) postMessages(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("ERROR: WhatsApp API returned status %d: %s", resp.StatusCode, respBody)
		return fmt.Errorf("whatsapp api returned status %d", resp.StatusCode)
	}
	return nil
}
