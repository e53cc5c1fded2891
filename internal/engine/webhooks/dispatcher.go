package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"upiqr/internal/platform/config"
)

const EventLinkScanned = "link.scanned"

type Event struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Dispatcher posts signed events to a single merchant endpoint.
type Dispatcher struct {
	url      string
	secret   string
	client   *http.Client
	attempts int
	backoff  time.Duration
}

// NewDispatcher returns nil when no endpoint is configured.
func NewDispatcher(cfg config.WebhooksConfig) *Dispatcher {
	if cfg.URL == "" {
		return nil
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Dispatcher{
		url:      cfg.URL,
		secret:   cfg.Secret,
		client:   &http.Client{Timeout: cfg.Timeout},
		attempts: attempts,
		backoff:  time.Second,
	}
}

// Dispatch delivers the event in the background, retrying with a doubling backoff.
func (d *Dispatcher) Dispatch(eventType string, data interface{}) {
	event := &Event{
		ID:        "evt_" + uuid.New().String(),
		Event:     eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
	go d.deliverWithRetry(event)
}

func (d *Dispatcher) deliverWithRetry(event *Event) {
	wait := d.backoff
	for attempt := 1; ; attempt++ {
		err := d.Deliver(context.Background(), event)
		if err == nil {
			return
		}
		if attempt >= d.attempts {
			log.Error().Err(err).Str("event_id", event.ID).Int("attempts", attempt).Msg("webhook delivery failed")
			return
		}
		time.Sleep(wait)
		wait *= 2
	}
}

// Deliver makes one delivery attempt. Any non-2xx response is an error.
func (d *Dispatcher) Deliver(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Upiqr-Signature", Sign(d.secret, payload))
	req.Header.Set("X-Upiqr-Event", event.Event)
	req.Header.Set("X-Upiqr-Delivery", event.ID)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of payload.
func Sign(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}
