package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

// WebhookPayload is the JSON body posted for every delivery. Exactly one of
// Notification and Digest is set.
type WebhookPayload struct {
	Event        string                      `json:"event"`
	UserID       string                      `json:"userId"`
	Recipient    string                      `json:"recipient,omitempty"`
	Timestamp    time.Time                   `json:"timestamp"`
	Notification *engine.NotificationRequest `json:"notification,omitempty"`
	Digest       *engine.DigestEmail         `json:"digest,omitempty"`
}

// WebhookSender posts deliveries as JSON to an HTTP endpoint.
type WebhookSender struct {
	URL    string
	Client *http.Client

	// Now stamps the payloads. Nil uses time.Now.
	Now func() time.Time
}

// NewWebhookSender validates the endpoint and creates a sender with the
// default client timeout.
func NewWebhookSender(endpoint string) (*WebhookSender, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}
	return &WebhookSender{
		URL:    endpoint,
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}, nil
}

// Notify posts a notification event.
func (s *WebhookSender) Notify(ctx context.Context, userID string, n engine.NotificationRequest) error {
	return s.post(ctx, WebhookPayload{
		Event:        config.EventNotification,
		UserID:       userID,
		Notification: &n,
	})
}

// SendDigest posts a digest event.
func (s *WebhookSender) SendDigest(ctx context.Context, userID, recipient string, email engine.DigestEmail) error {
	return s.post(ctx, WebhookPayload{
		Event:     config.EventDigest,
		UserID:    userID,
		Recipient: recipient,
		Digest:    &email,
	})
}

func (s *WebhookSender) post(ctx context.Context, payload WebhookPayload) error {
	if s.Now != nil {
		payload.Timestamp = s.Now().UTC()
	} else {
		payload.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrDeliveryFailed, err)
	}
	req.Header.Set(config.HeaderContentType, config.MimeJSON)
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	log := slog.With(
		config.LogKeyComponent, config.CompDelivery,
		config.LogKeyEvent, payload.Event,
		config.LogKeyUser, payload.UserID,
	)

	resp, err := s.Client.Do(req)
	if err != nil {
		log.Error("Webhook request failed", config.LogKeyError, err)
		return fmt.Errorf("%s: %w", config.ErrDeliveryFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		log.Warn("Webhook returned error status", config.LogKeyStatus, resp.StatusCode)
		return fmt.Errorf("%s: %d %s", config.ErrDeliveryStatus, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	log.Debug("Webhook delivered", config.LogKeyStatus, resp.StatusCode)
	return nil
}
