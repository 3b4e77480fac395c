package chat

import (
	"context"
	"sync"

	"github.com/mcoot/snapguess/internal/model"
)

// RecordedMessage is a single captured outbound message
type RecordedMessage struct {
	Address model.Address
	Kind    string // text, comparison, prompt_attachment, prompt_confirm
	Text    string
	Card    *ComparisonCard
}

// Recorder is a Messenger implementation for tests that captures every
// outbound message in order. Failures can be injected per address.
type Recorder struct {
	mu       sync.Mutex
	messages []RecordedMessage
	failFor  map[model.Address]error
}

// NewRecorder creates a new Recorder
func NewRecorder() *Recorder {
	return &Recorder{
		failFor: make(map[model.Address]error),
	}
}

var _ Messenger = (*Recorder)(nil)

// FailFor makes every send to addr return err
func (r *Recorder) FailFor(addr model.Address, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[addr] = err
}

// Messages returns a copy of all captured messages in send order
func (r *Recorder) Messages() []RecordedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// MessagesTo returns captured messages sent to addr, in send order
func (r *Recorder) MessagesTo(addr model.Address) []RecordedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RecordedMessage
	for _, m := range r.messages {
		if m.Address == addr {
			out = append(out, m)
		}
	}
	return out
}

// Reset clears all captured messages
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

func (r *Recorder) record(msg RecordedMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failFor[msg.Address]; ok {
		return err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *Recorder) SendText(ctx context.Context, addr model.Address, text string) error {
	return r.record(RecordedMessage{Address: addr, Kind: "text", Text: text})
}

func (r *Recorder) SendComparison(ctx context.Context, addr model.Address, card ComparisonCard) error {
	return r.record(RecordedMessage{Address: addr, Kind: "comparison", Card: &card})
}

func (r *Recorder) PromptAttachment(ctx context.Context, addr model.Address, prompt string) error {
	return r.record(RecordedMessage{Address: addr, Kind: "prompt_attachment", Text: prompt})
}

func (r *Recorder) PromptConfirm(ctx context.Context, addr model.Address, prompt string) error {
	return r.record(RecordedMessage{Address: addr, Kind: "prompt_confirm", Text: prompt})
}
