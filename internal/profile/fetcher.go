package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mcoot/snapguess/internal/model"
)

// Fetcher retrieves user profiles from the external profile service
type Fetcher interface {
	Fetch(ctx context.Context, id model.PlayerID) (*model.Profile, error)
}

// HTTPConfig holds settings for the HTTP profile fetcher
type HTTPConfig struct {
	// BaseURL is the profile service root; profiles are fetched from
	// BaseURL/<player id>
	BaseURL string
	Timeout time.Duration
}

// DefaultHTTPConfig returns sensible defaults for the HTTP fetcher
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout: 10 * time.Second,
	}
}

// HTTPFetcher fetches profiles over HTTP
type HTTPFetcher struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPFetcher creates a profile fetcher backed by a remote HTTP service
func NewHTTPFetcher(cfg HTTPConfig) *HTTPFetcher {
	return &HTTPFetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ Fetcher = (*HTTPFetcher)(nil)

type profileResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Locale    string `json:"locale"`
}

// Fetch retrieves the profile for the given player id.
// All failures wrap model.ErrProfileFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, id model.PlayerID) (*model.Profile, error) {
	endpoint := f.cfg.BaseURL + "/" + url.PathEscape(string(id))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProfileFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProfileFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", model.ErrProfileFetch, resp.StatusCode)
	}

	var parsed profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProfileFetch, err)
	}

	return &model.Profile{
		FirstName: parsed.FirstName,
		LastName:  parsed.LastName,
		Gender:    parsed.Gender,
		Locale:    parsed.Locale,
	}, nil
}
