// Package evolution is a client for the Evolution WhatsApp API.
package evolution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Brunohvg/bibpay/internal/config"
)

// ErrDisconnected is returned by Ping when the instance is not logged in
var ErrDisconnected = fmt.Errorf("evolution instance is not connected")

// Client sends messages through one Evolution instance
type Client struct {
	baseURL  string
	apiKey   string
	instance string
	client   *http.Client
	logger   *zap.Logger
}

// NewClient creates an Evolution client from config
func NewClient(cfg config.EvolutionConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		instance: cfg.Instance,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// SendText posts to /message/sendText/{instance}
func (c *Client) SendText(ctx context.Context, number, text string) error {
	body, err := json.Marshal(sendTextRequest{Number: number, Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, url.PathEscape(c.instance))
	respBody, err := c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		c.logger.Warn("Evolution: Failed to send message",
			zap.String("number", maskNumber(number)),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Evolution: Message sent",
		zap.String("number", maskNumber(number)),
		zap.Int("response_size", len(respBody)))
	return nil
}

type connectionState struct {
	Instance struct {
		State string `json:"state"`
	} `json:"instance"`
}

// Ping queries /instance/connectionState/{instance}
func (c *Client) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/instance/connectionState/%s", c.baseURL, url.PathEscape(c.instance))
	respBody, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	var state connectionState
	if err := json.Unmarshal(respBody, &state); err != nil {
		return fmt.Errorf("failed to decode connection state: %w", err)
	}
	if state.Instance.State != "open" {
		return fmt.Errorf("%w: state %q", ErrDisconnected, state.Instance.State)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("evolution request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read evolution response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// StatusError is a non-2xx answer from the API
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("evolution returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether retrying may succeed
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func maskNumber(number string) string {
	if len(number) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
