// Package whatsapp talks to a WAHA-compatible WhatsApp HTTP gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "invoicewa/internal/errors"
	"invoicewa/pkg/whatsapp/types"
)

const defaultTimeout = 30 * time.Second

type WhatsAppClient struct {
	baseURL     string
	apiKey      string
	sessionName string
	retryCount  int
	client      *http.Client
}

func NewClient(config types.ClientConfig) types.WAClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryCount := config.RetryCount
	if retryCount <= 0 {
		retryCount = 1
	}

	return &WhatsAppClient{
		baseURL:     config.BaseURL,
		apiKey:      config.APIKey,
		sessionName: config.SessionName,
		retryCount:  retryCount,
		client:      &http.Client{Timeout: timeout},
	}
}

func (c *WhatsAppClient) GetSessionName() string {
	return c.sessionName
}

func (c *WhatsAppClient) SendText(ctx context.Context, chatID, text string) (*types.SendMessageResponse, error) {
	return c.SendTextWithSession(ctx, chatID, text, c.sessionName)
}

func (c *WhatsAppClient) SendTextWithSession(ctx context.Context, chatID, text, sessionName string) (*types.SendMessageResponse, error) {
	payload := types.SendTextRequest{
		ChatID:  chatID,
		Text:    text,
		Session: sessionName,
	}

	var resp *types.SendMessageResponse
	var lastErr error
	for attempt := 0; attempt < c.retryCount; attempt++ {
		resp, lastErr = c.sendRequest(ctx, types.APIBase+types.EndpointSendText, payload)
		if lastErr == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Client-side rejections like a bad API key never succeed on retry.
		if !apperrors.IsRetryable(lastErr) {
			break
		}
	}
	return nil, lastErr
}

// GetSessionStatus fetches the state of the client's session from the gateway.
func (c *WhatsAppClient) GetSessionStatus(ctx context.Context) (*types.Session, error) {
	url := fmt.Sprintf("%s%s%s/%s", c.baseURL, types.APIBase, types.EndpointSessions, c.sessionName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get session status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("session status request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var session types.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session status: %w", err)
	}

	return &session, nil
}

// WaitForSessionReady polls the session until it reaches WORKING or
// maxWaitTime elapses.
func (c *WhatsAppClient) WaitForSessionReady(ctx context.Context, maxWaitTime time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, maxWaitTime)
	defer cancel()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		session, err := c.GetSessionStatus(waitCtx)
		if err == nil && session.Status == types.SessionStatusWorking {
			return nil
		}

		select {
		case <-waitCtx.Done():
			if err != nil {
				return fmt.Errorf("session %q not ready: %w", c.sessionName, err)
			}
			return fmt.Errorf("session %q not ready within %s", c.sessionName, maxWaitTime)
		case <-ticker.C:
		}
	}
}

func (c *WhatsAppClient) sendRequest(ctx context.Context, endpoint string, payload interface{}) (*types.SendMessageResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NewGatewayError(endpoint, 0, err)
	}
	defer resp.Body.Close()

	var result types.SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// Truncated or garbled responses usually mean a gateway restart.
		return nil, apperrors.WrapRetryable(err, apperrors.ErrCodeGatewayAPI, "failed to decode response")
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := fmt.Errorf("request failed with status %d: %s", resp.StatusCode, result.Error)
		return &result, apperrors.NewGatewayError(endpoint, resp.StatusCode, err)
	}

	return &result, nil
}

func (c *WhatsAppClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
}
