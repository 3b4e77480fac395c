package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mcoot/snapguess/internal/model"
)

// Concept is a single label returned by the image classifier.
// Classifier results are ordered by descending confidence.
type Concept struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Classifier extracts descriptive concepts from an image
type Classifier interface {
	Classify(ctx context.Context, ref model.ImageRef) ([]Concept, error)
}

// HTTPConfig holds settings for the HTTP classifier adapter
type HTTPConfig struct {
	// Endpoint is the prediction URL of the general classification model
	Endpoint string
	// APIKey is sent as a bearer token
	APIKey string
	// Timeout bounds each classification request
	Timeout time.Duration
}

// DefaultHTTPConfig returns sensible defaults for the HTTP classifier
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout: 15 * time.Second,
	}
}

// HTTPClassifier calls a remote general-model prediction endpoint
type HTTPClassifier struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPClassifier creates a classifier backed by a remote HTTP service
func NewHTTPClassifier(cfg HTTPConfig) *HTTPClassifier {
	return &HTTPClassifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ Classifier = (*HTTPClassifier)(nil)

type predictRequest struct {
	ImageURL string `json:"image_url"`
}

type predictResponse struct {
	Concepts []Concept `json:"concepts"`
}

// Classify posts the image reference to the prediction endpoint and returns
// the ranked concept list. All failures wrap model.ErrClassification.
func (c *HTTPClassifier) Classify(ctx context.Context, ref model.ImageRef) ([]Concept, error) {
	body, err := json.Marshal(predictRequest{ImageURL: string(ref)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrClassification, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrClassification, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrClassification, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", model.ErrClassification, resp.StatusCode)
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrClassification, err)
	}

	return parsed.Concepts, nil
}
