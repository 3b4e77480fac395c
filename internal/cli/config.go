package cli

import (
	"errors"
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Player    string
	Address   string
	Output    string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("SNAPCTL_SERVER", "http://localhost:8080"),
		Player:    os.Getenv("SNAPCTL_PLAYER"),
		Address:   os.Getenv("SNAPCTL_ADDRESS"),
		Output:    "text",
	}
}

// Identity resolves the player id and address to send as
func (c *Config) Identity() (player, address string, err error) {
	if c.Player == "" {
		return "", "", errors.New("--player is required (or set SNAPCTL_PLAYER)")
	}
	address = c.Address
	if address == "" {
		address = c.Player
	}
	return c.Player, address, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
