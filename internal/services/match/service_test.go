package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newService() *Service {
	return New(DefaultConfig())
}

func TestScoreCountsCandidatesPresentInRound(t *testing.T) {
	s := newService()

	tests := []struct {
		name       string
		roundTags  []string
		candidates []string
		want       int
	}{
		{
			name:       "full overlap",
			roundTags:  []string{"dog", "animal", "pet"},
			candidates: []string{"dog", "animal", "pet"},
			want:       3,
		},
		{
			name:       "partial overlap",
			roundTags:  []string{"dog", "animal", "pet"},
			candidates: []string{"dog", "cat"},
			want:       1,
		},
		{
			name:       "no overlap",
			roundTags:  []string{"dog", "animal"},
			candidates: []string{"car", "road"},
			want:       0,
		},
		{
			name:       "duplicate candidates count once",
			roundTags:  []string{"cat", "dog"},
			candidates: []string{"dog", "dog"},
			want:       1,
		},
		{
			name:       "order independent",
			roundTags:  []string{"pet", "dog", "animal"},
			candidates: []string{"animal", "pet", "dog"},
			want:       3,
		},
		{
			name:       "nil round tags",
			roundTags:  nil,
			candidates: []string{"dog"},
			want:       0,
		},
		{
			name:       "nil candidates",
			roundTags:  []string{"dog"},
			candidates: nil,
			want:       0,
		},
		{
			name:       "both nil",
			roundTags:  nil,
			candidates: nil,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(tt.roundTags, tt.candidates))
		})
	}
}

func TestEvaluateThresholds(t *testing.T) {
	s := newService()

	assert.Equal(t, OutcomeNoMatch, s.Evaluate(0))
	assert.Equal(t, OutcomeClose, s.Evaluate(1))
	assert.Equal(t, OutcomeVeryClose, s.Evaluate(2))
	assert.Equal(t, OutcomeFullMatch, s.Evaluate(3))
	assert.Equal(t, OutcomeFullMatch, s.Evaluate(5))
}

func TestEvaluateCustomThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FullMatchScore = 2
	s := New(cfg)

	assert.Equal(t, OutcomeFullMatch, s.Evaluate(2))
	assert.Equal(t, OutcomeClose, s.Evaluate(1))
}

func TestShouldAbandon(t *testing.T) {
	s := newService()

	assert.False(t, s.ShouldAbandon(0))
	assert.False(t, s.ShouldAbandon(2))
	assert.True(t, s.ShouldAbandon(3))
	assert.True(t, s.ShouldAbandon(4))
}
