package tags

import (
	"context"
	"strings"

	"github.com/mcoot/snapguess/internal/services/lexicon"
	"github.com/mcoot/snapguess/internal/vision"
)

// Config holds tag processing settings
type Config struct {
	// MaxCandidates is how many filtered tags are kept per photo
	MaxCandidates int
	// MaxDisplay is how many tags are shown to players
	MaxDisplay int
	// DisplayStoplist holds tags hidden from players (case-insensitive)
	DisplayStoplist []string
}

// DefaultConfig returns the default tag processing configuration
func DefaultConfig() Config {
	return Config{
		MaxCandidates:   5,
		MaxDisplay:      3,
		DisplayStoplist: []string{"no person"},
	}
}

// Service turns raw classifier output into a ranked, filtered tag set
type Service struct {
	cfg      Config
	lexicon  lexicon.ServiceInterface
	stoplist map[string]struct{}
}

// New creates a new tag processing Service
func New(cfg Config, lex lexicon.ServiceInterface) *Service {
	stoplist := make(map[string]struct{}, len(cfg.DisplayStoplist))
	for _, entry := range cfg.DisplayStoplist {
		stoplist[strings.ToLower(entry)] = struct{}{}
	}
	return &Service{
		cfg:      cfg,
		lexicon:  lex,
		stoplist: stoplist,
	}
}

// ExtractTags maps classifier concepts to tag candidates: label names in
// confidence order, nouns only, first MaxCandidates survivors. Returns an
// empty slice when nothing passes the filter.
func (s *Service) ExtractTags(ctx context.Context, concepts []vision.Concept) []string {
	tags := make([]string, 0, s.cfg.MaxCandidates)
	for _, concept := range concepts {
		if len(tags) >= s.cfg.MaxCandidates {
			break
		}
		if concept.Name == "" {
			continue
		}
		if !s.lexicon.IsNoun(concept.Name) {
			continue
		}
		tags = append(tags, concept.Name)
	}
	return tags
}

// DisplayTags renders tags for players: stoplist entries removed, first
// MaxDisplay survivors, comma-joined. Deterministic for a given input.
func (s *Service) DisplayTags(tags []string) string {
	shown := make([]string, 0, s.cfg.MaxDisplay)
	for _, tag := range tags {
		if len(shown) >= s.cfg.MaxDisplay {
			break
		}
		if _, hidden := s.stoplist[strings.ToLower(tag)]; hidden {
			continue
		}
		shown = append(shown, tag)
	}
	return strings.Join(shown, ", ")
}

// Interface for dependency injection
type ServiceInterface interface {
	ExtractTags(ctx context.Context, concepts []vision.Concept) []string
	DisplayTags(tags []string) string
}

var _ ServiceInterface = (*Service)(nil)
