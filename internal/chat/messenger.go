package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mcoot/snapguess/internal/model"
)

// ComparisonCard is a before/after image pair shown when a round is won
type ComparisonCard struct {
	Title         string
	OriginalImage model.ImageRef
	OriginalLabel string
	FinalImage    model.ImageRef
	FinalLabel    string
}

// Messenger is the outbound chat capability this core consumes.
//
// Sends are fire-and-forget from the game's perspective: failures are logged
// by the caller and never retried here. Prompts suspend nothing; the player's
// reply arrives later as a fresh inbound event.
type Messenger interface {
	SendText(ctx context.Context, addr model.Address, text string) error
	SendComparison(ctx context.Context, addr model.Address, card ComparisonCard) error
	PromptAttachment(ctx context.Context, addr model.Address, prompt string) error
	PromptConfirm(ctx context.Context, addr model.Address, prompt string) error
}

// WebhookConfig holds settings for the webhook messenger adapter
type WebhookConfig struct {
	// OutboundURL is where outbound messages are POSTed for delivery by the
	// chat transport
	OutboundURL string
	Timeout     time.Duration
}

// DefaultWebhookConfig returns sensible defaults for the webhook messenger
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		Timeout: 10 * time.Second,
	}
}

// WebhookMessenger delivers outbound messages by POSTing them to the chat
// transport's webhook
type WebhookMessenger struct {
	cfg    WebhookConfig
	client *http.Client
}

// NewWebhookMessenger creates a messenger backed by an HTTP webhook
func NewWebhookMessenger(cfg WebhookConfig) *WebhookMessenger {
	return &WebhookMessenger{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ Messenger = (*WebhookMessenger)(nil)

// outboundMessage is the wire format for outbound deliveries
type outboundMessage struct {
	Address model.Address   `json:"address"`
	Kind    string          `json:"kind"` // text, comparison, prompt_attachment, prompt_confirm
	Text    string          `json:"text,omitempty"`
	Card    *ComparisonCard `json:"card,omitempty"`
}

func (m *WebhookMessenger) post(ctx context.Context, msg outboundMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.OutboundURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("outbound send failed with status %d", resp.StatusCode)
	}
	return nil
}

func (m *WebhookMessenger) SendText(ctx context.Context, addr model.Address, text string) error {
	return m.post(ctx, outboundMessage{Address: addr, Kind: "text", Text: text})
}

func (m *WebhookMessenger) SendComparison(ctx context.Context, addr model.Address, card ComparisonCard) error {
	return m.post(ctx, outboundMessage{Address: addr, Kind: "comparison", Card: &card})
}

func (m *WebhookMessenger) PromptAttachment(ctx context.Context, addr model.Address, prompt string) error {
	return m.post(ctx, outboundMessage{Address: addr, Kind: "prompt_attachment", Text: prompt})
}

func (m *WebhookMessenger) PromptConfirm(ctx context.Context, addr model.Address, prompt string) error {
	return m.post(ctx, outboundMessage{Address: addr, Kind: "prompt_confirm", Text: prompt})
}
