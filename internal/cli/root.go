package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "snapctl",
		Short: "CLI tool for the snapguess game API",
		Long: `snapctl is a development tool for driving the snapguess game server.

It simulates the chat transport: each command posts an inbound player message
(text, photo, or yes/no choice) to the server's webhook, the same way a real
chat integration would.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: SNAPCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Player, "player", cfg.Player, "Player id to send as (env: SNAPCTL_PLAYER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Address, "address", cfg.Address, "Chat address to send as; defaults to the player id (env: SNAPCTL_ADDRESS)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newSayCmd())
	rootCmd.AddCommand(newSnapCmd())
	rootCmd.AddCommand(newChooseCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
