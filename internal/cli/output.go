package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case GameState:
		o.printGameState(v)
	case AcceptedResult:
		o.printAcceptedResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// AcceptedResult response type (matches API)
type AcceptedResult struct {
	Status string `json:"status"`
}

// GameState response type
type GameState struct {
	Phase        string    `json:"phase"`
	SnapperID    string    `json:"snapper_id,omitempty"`
	SenderID     string    `json:"sender_id,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	WrongGuesses int       `json:"wrong_guesses"`
	StartedAt    time.Time `json:"started_at"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAcceptedResult(a AcceptedResult) {
	fmt.Printf("Status: %s\n", a.Status)
}

func (o *Output) printGameState(g GameState) {
	fmt.Printf("Phase: %s\n", g.Phase)
	if g.SnapperID != "" {
		fmt.Printf("Photographer: %s\n", g.SnapperID)
	}
	if g.SenderID != "" {
		fmt.Printf("Sender: %s\n", g.SenderID)
	}
	if len(g.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(g.Tags, ", "))
	}
	if g.Phase == "active" {
		fmt.Printf("Wrong Guesses: %d\n", g.WrongGuesses)
		if !g.StartedAt.IsZero() {
			fmt.Printf("Started: %s\n", g.StartedAt.Format(time.RFC3339))
		}
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
