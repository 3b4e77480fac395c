package match

// Outcome classifies how close a guess came to the active round's tags
type Outcome string

const (
	OutcomeFullMatch Outcome = "full_match" // round ends, guesser snaps next
	OutcomeVeryClose Outcome = "very_close"
	OutcomeClose     Outcome = "close"
	OutcomeNoMatch   Outcome = "no_match"
)

// Config holds match scoring thresholds
type Config struct {
	// FullMatchScore is the minimum score that wins the round
	FullMatchScore int
	// VeryCloseScore is the minimum score reported as "very close"
	VeryCloseScore int
	// CloseScore is the minimum score reported as "close"
	CloseScore int
	// MaxWrongGuesses is how many non-winning guesses are tolerated before
	// the round is abandoned and reassigned
	MaxWrongGuesses int
}

// DefaultConfig returns the default scoring thresholds
func DefaultConfig() Config {
	return Config{
		FullMatchScore:  3,
		VeryCloseScore:  2,
		CloseScore:      1,
		MaxWrongGuesses: 3,
	}
}

// Service compares submitted tag sets against the active round's tags
type Service struct {
	cfg Config
}

// New creates a new match Service
func New(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Score returns how many distinct candidate tags appear in roundTags.
// Duplicate candidates count once. A nil or empty roundTags scores 0;
// Score never panics.
func (s *Service) Score(roundTags, candidateTags []string) int {
	if len(roundTags) == 0 || len(candidateTags) == 0 {
		return 0
	}

	round := make(map[string]struct{}, len(roundTags))
	for _, tag := range roundTags {
		round[tag] = struct{}{}
	}

	seen := make(map[string]struct{}, len(candidateTags))
	score := 0
	for _, tag := range candidateTags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := round[tag]; ok {
			score++
		}
	}
	return score
}

// Evaluate maps a score onto an outcome using the configured thresholds
func (s *Service) Evaluate(score int) Outcome {
	switch {
	case score >= s.cfg.FullMatchScore:
		return OutcomeFullMatch
	case score >= s.cfg.VeryCloseScore:
		return OutcomeVeryClose
	case score >= s.cfg.CloseScore:
		return OutcomeClose
	default:
		return OutcomeNoMatch
	}
}

// ShouldAbandon reports whether the wrong-guess count has reached the
// configured limit
func (s *Service) ShouldAbandon(wrongGuesses int) bool {
	return wrongGuesses >= s.cfg.MaxWrongGuesses
}

// Interface for dependency injection
type ServiceInterface interface {
	Score(roundTags, candidateTags []string) int
	Evaluate(score int) Outcome
	ShouldAbandon(wrongGuesses int) bool
}

var _ ServiceInterface = (*Service)(nil)
