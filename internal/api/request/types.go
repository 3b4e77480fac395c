package request

// InboundMessage is the request body for a player message delivered by the
// chat transport webhook
type InboundMessage struct {
	PlayerID string `json:"player_id"`
	Address  string `json:"address"`
	Text     string `json:"text,omitempty"`
	// ImageURL is set when the message carries a photo attachment
	ImageURL string `json:"image_url,omitempty"`
	// Confirm is set when the message is a yes/no choice reply
	Confirm *bool `json:"confirm,omitempty"`
}
