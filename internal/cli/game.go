package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// inboundMessage matches the server's webhook request body
type inboundMessage struct {
	PlayerID string `json:"player_id"`
	Address  string `json:"address"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Confirm  *bool  `json:"confirm,omitempty"`
}

func newSayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "say <text>...",
		Short: "Send a text message as the configured player",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, address, err := cfg.Identity()
			if err != nil {
				return err
			}

			msg := inboundMessage{
				PlayerID: player,
				Address:  address,
				Text:     strings.Join(args, " "),
			}

			var result AcceptedResult
			if err := client.Post("/api/v1/messages", msg, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSnapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snap <image-url>",
		Short: "Send a photo as the configured player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, address, err := cfg.Identity()
			if err != nil {
				return err
			}

			msg := inboundMessage{
				PlayerID: player,
				Address:  address,
				ImageURL: args[0],
			}

			var result AcceptedResult
			if err := client.Post("/api/v1/messages", msg, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newChooseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "choose <yes|no>",
		Short: "Answer the tag confirmation prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, address, err := cfg.Identity()
			if err != nil {
				return err
			}

			var confirm bool
			switch strings.ToLower(args[0]) {
			case "yes", "y":
				confirm = true
			case "no", "n":
				confirm = false
			default:
				return fmt.Errorf("choice must be yes or no")
			}

			msg := inboundMessage{
				PlayerID: player,
				Address:  address,
				Confirm:  &confirm,
			}

			var result AcceptedResult
			if err := client.Post("/api/v1/messages", msg, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current game state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState

			if err := client.Get("/api/v1/state", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the game session to idle",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/reset", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Game reset")
			return nil
		},
	}
}
