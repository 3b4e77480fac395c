package tags

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snapguess/internal/services/lexicon"
	"github.com/mcoot/snapguess/internal/storage/memory"
	"github.com/mcoot/snapguess/internal/vision"
)

type ServiceSuite struct {
	suite.Suite
	lexicon *lexicon.Service
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.lexicon = lexicon.New(memory.New())
	s.service = New(DefaultConfig(), s.lexicon)
	s.ctx = context.Background()
}

func concepts(names ...string) []vision.Concept {
	out := make([]vision.Concept, len(names))
	for i, name := range names {
		out[i] = vision.Concept{Name: name, Confidence: 1 - float64(i)*0.01}
	}
	return out
}

// ExtractTags tests

func (s *ServiceSuite) TestExtractTagsKeepsConfidenceOrder() {
	tags := s.service.ExtractTags(s.ctx, concepts("dog", "animal", "pet"))
	s.Equal([]string{"dog", "animal", "pet"}, tags)
}

func (s *ServiceSuite) TestExtractTagsCapsAtMaxCandidates() {
	tags := s.service.ExtractTags(s.ctx, concepts("a", "b", "c", "d", "e", "f", "g"))
	s.Len(tags, 5)
	s.Equal([]string{"a", "b", "c", "d", "e"}, tags)
}

func (s *ServiceSuite) TestExtractTagsFiltersNonNouns() {
	_ = s.lexicon.LoadWords([]string{"dog", "animal", "pet"})

	tags := s.service.ExtractTags(s.ctx, concepts("dog", "animal", "pet", "outdoor", "cute"))
	s.Equal([]string{"dog", "animal", "pet"}, tags)
}

func (s *ServiceSuite) TestExtractTagsEmptyWhenNothingSurvives() {
	_ = s.lexicon.LoadWords([]string{"dog"})

	tags := s.service.ExtractTags(s.ctx, concepts("running", "jumping"))
	s.Empty(tags)
}

func (s *ServiceSuite) TestExtractTagsEmptyInput() {
	tags := s.service.ExtractTags(s.ctx, nil)
	s.Empty(tags)
}

func (s *ServiceSuite) TestExtractTagsSkipsEmptyNames() {
	tags := s.service.ExtractTags(s.ctx, []vision.Concept{
		{Name: "", Confidence: 0.99},
		{Name: "dog", Confidence: 0.98},
	})
	s.Equal([]string{"dog"}, tags)
}

// DisplayTags tests

func (s *ServiceSuite) TestDisplayTagsJoinsFirstThree() {
	display := s.service.DisplayTags([]string{"dog", "animal", "pet", "outdoor"})
	s.Equal("dog, animal, pet", display)
}

func (s *ServiceSuite) TestDisplayTagsRemovesStoplist() {
	display := s.service.DisplayTags([]string{"no person", "dog", "animal", "pet"})
	s.Equal("dog, animal, pet", display)
}

func (s *ServiceSuite) TestDisplayTagsStoplistCaseInsensitive() {
	display := s.service.DisplayTags([]string{"No Person", "dog"})
	s.Equal("dog", display)
}

func (s *ServiceSuite) TestDisplayTagsDeterministic() {
	input := []string{"dog", "animal", "pet"}
	first := s.service.DisplayTags(input)
	second := s.service.DisplayTags(input)
	s.Equal(first, second)
}

func (s *ServiceSuite) TestDisplayTagsEmpty() {
	s.Equal("", s.service.DisplayTags(nil))
}
