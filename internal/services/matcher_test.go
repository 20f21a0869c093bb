package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/models"
)

func testMatcherOptions() MatcherOptions {
	return MatcherOptions{
		SimilarityThreshold: 0.7,
		MatchThreshold:      70,
		DefaultMinimumScore: 60,
		DefaultLimit:        20,
	}
}

func TestCompositeScoreBounds(t *testing.T) {
	assert.Equal(t, 0, CompositeScore(0, 0, 0, 0))
	assert.Equal(t, 100, CompositeScore(1, 1, 1, 100))

	// Out-of-range inputs clamp instead of overflowing.
	assert.Equal(t, 100, CompositeScore(5, 3, 2, 1000))
	assert.Equal(t, 0, CompositeScore(-1, -1, -1, -50))
}

func TestCompositeScoreMonotoneInSimilarity(t *testing.T) {
	prev := -1
	for s := 0.0; s <= 1.0; s += 0.05 {
		score := CompositeScore(s, 0.5, 0.5, 50)
		assert.GreaterOrEqual(t, score, prev, "similarity %f", s)
		prev = score
	}
}

func TestCompositeScoreMonotoneInSkillOverlap(t *testing.T) {
	prev := -1
	for o := 0.0; o <= 1.0; o += 0.05 {
		score := CompositeScore(0.8, o, 0.5, 50)
		assert.GreaterOrEqual(t, score, prev, "overlap %f", o)
		prev = score
	}
}

func TestExperienceFit(t *testing.T) {
	assert.Equal(t, 1.0, ExperienceFit(models.LevelSenior, models.LevelSenior))
	assert.Equal(t, 0.5, ExperienceFit(models.LevelSenior, models.LevelMid))
	assert.Equal(t, 0.25, ExperienceFit(models.LevelEntry, models.LevelSenior))
	assert.Equal(t, 0.5, ExperienceFit("", models.LevelSenior))
	assert.Equal(t, 0.5, ExperienceFit(models.LevelSenior, ""))
}

func TestSkillOverlap(t *testing.T) {
	skills := []models.SkillProficiency{
		{Skill: "Go", Proficiency: 80},
		{Skill: "PostgreSQL", Proficiency: 70},
	}

	assert.Equal(t, 1.0, SkillOverlap(nil, skills))
	assert.Equal(t, 1.0, SkillOverlap([]string{"go", "postgres"}, skills))
	assert.Equal(t, 0.5, SkillOverlap([]string{"Go", "Kubernetes"}, skills))
	assert.Equal(t, 0.0, SkillOverlap([]string{"Rust"}, skills))
}

func TestBuildSkillBreakdown(t *testing.T) {
	results := []models.MatchResult{
		{SkillProficiencies: []models.SkillProficiency{{Skill: "Go", Proficiency: 85}}},
		{SkillProficiencies: []models.SkillProficiency{{Skill: "Go", Proficiency: 55}}},
		{SkillProficiencies: []models.SkillProficiency{{Skill: "Go", Proficiency: 75}}},
	}

	breakdown := BuildSkillBreakdown([]string{"Go", "Rust"}, results)
	require.Len(t, breakdown, 2)

	// Proficiency below 60 does not count.
	assert.Equal(t, "Go", breakdown[0].Skill)
	assert.Equal(t, 2, breakdown[0].CandidateCount)
	assert.Equal(t, 80.0, breakdown[0].AverageProficiency)

	// A skill nobody holds reports zero, never a division by zero.
	assert.Equal(t, "Rust", breakdown[1].Skill)
	assert.Equal(t, 0, breakdown[1].CandidateCount)
	assert.Equal(t, 0.0, breakdown[1].AverageProficiency)
}

func TestSearchCandidatesValidation(t *testing.T) {
	matcher := NewMatcherService(&stubGemini{}, &stubVectorIndex{}, newStubCandidateRepo(), nil, testMatcherOptions())

	_, err := matcher.SearchCandidates(context.Background(), models.MatchQuery{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = matcher.SearchCandidates(context.Background(), models.MatchQuery{JobRequirements: "Backend role"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestSearchCandidatesVectorPath(t *testing.T) {
	strong := &models.Candidate{
		ID:                 uuid.New(),
		FullName:           "Strong Match",
		ExperienceLevel:    models.LevelSenior,
		OverallScore:       85,
		CommunicationScore: 80,
		TechnicalSkills: []models.SkillProficiency{
			{Skill: "Go", Proficiency: 90},
			{Skill: "PostgreSQL", Proficiency: 75},
		},
		Recommendation: string(models.RecommendHire),
	}
	weak := &models.Candidate{
		ID:           uuid.New(),
		FullName:     "Low Interview Score",
		OverallScore: 40,
	}

	// Resume and interview signals both count; the candidate's best hit wins
	// regardless of which signal produced it.
	index := &stubVectorIndex{hits: []CandidateHit{
		{CandidateID: strong.ID.String(), Score: 0.92, Kind: SignalResume},
		{CandidateID: strong.ID.String(), Score: 0.81, Kind: SignalInterview},
		{CandidateID: weak.ID.String(), Score: 0.88, Kind: SignalInterview},
	}}

	matcher := NewMatcherService(
		&stubGemini{embedding: []float32{0.1, 0.2}},
		index,
		newStubCandidateRepo(strong, weak),
		nil,
		testMatcherOptions(),
	)

	response, err := matcher.SearchCandidates(context.Background(), models.MatchQuery{
		JobRequirements: "Senior backend engineer",
		RequiredSkills:  []string{"Go", "PostgreSQL"},
		ExperienceLevel: models.LevelSenior,
	})
	require.NoError(t, err)

	assert.Equal(t, models.SearchAIEnhanced, response.SearchMethod)
	require.Len(t, response.Candidates, 1)

	match := response.Candidates[0]
	assert.Equal(t, strong.ID.String(), match.CandidateID)
	require.NotNil(t, match.VectorSimilarity)
	// The best hit per candidate wins.
	assert.InDelta(t, 0.92, *match.VectorSimilarity, 0.001)
	assert.GreaterOrEqual(t, match.CompositeScore, 70)

	require.NotNil(t, response.Summary)
	assert.Equal(t, 1, response.Summary.TotalMatches)
}

func TestSearchCandidatesFallback(t *testing.T) {
	qualified := &models.Candidate{
		ID:           uuid.New(),
		FullName:     "Fallback Match",
		OverallScore: 75,
	}
	unqualified := &models.Candidate{
		ID:           uuid.New(),
		FullName:     "Below Minimum",
		OverallScore: 30,
	}

	matcher := NewMatcherService(
		&stubGemini{embedErr: errors.New("embedding service down")},
		&stubVectorIndex{},
		newStubCandidateRepo(qualified, unqualified),
		nil,
		testMatcherOptions(),
	)

	response, err := matcher.SearchCandidates(context.Background(), models.MatchQuery{
		JobRequirements: "Backend engineer",
		RequiredSkills:  []string{"Go"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.SearchFallback, response.SearchMethod)
	require.Len(t, response.Candidates, 1)
	assert.Equal(t, qualified.ID.String(), response.Candidates[0].CandidateID)
	assert.Nil(t, response.Candidates[0].VectorSimilarity)
}

func TestSearchCandidatesVectorIndexErrorFallsBack(t *testing.T) {
	qualified := &models.Candidate{
		ID:           uuid.New(),
		FullName:     "Fallback Match",
		OverallScore: 90,
	}

	matcher := NewMatcherService(
		&stubGemini{embedding: []float32{0.3}},
		&stubVectorIndex{searchErr: errors.New("qdrant unavailable")},
		newStubCandidateRepo(qualified),
		nil,
		testMatcherOptions(),
	)

	response, err := matcher.SearchCandidates(context.Background(), models.MatchQuery{
		JobRequirements: "Backend engineer",
		RequiredSkills:  []string{"Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SearchFallback, response.SearchMethod)
}

func TestBasicSearch(t *testing.T) {
	candidate := &models.Candidate{
		ID:           uuid.New(),
		FullName:     "Ranked",
		OverallScore: 77,
	}

	matcher := NewMatcherService(&stubGemini{}, &stubVectorIndex{}, newStubCandidateRepo(candidate), nil, testMatcherOptions())

	response, err := matcher.BasicSearch(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, models.SearchBasic, response.SearchMethod)
	require.Len(t, response.Candidates, 1)
	assert.Nil(t, response.Summary)
}

func TestSortMatchesDeterministicTiebreak(t *testing.T) {
	results := []models.MatchResult{
		{CandidateID: "bbb", CompositeScore: 80},
		{CandidateID: "aaa", CompositeScore: 80},
		{CandidateID: "ccc", CompositeScore: 95},
	}
	sortMatches(results)

	assert.Equal(t, "ccc", results[0].CandidateID)
	assert.Equal(t, "aaa", results[1].CandidateID)
	assert.Equal(t, "bbb", results[2].CandidateID)
}

func TestSearchCacheKeyStability(t *testing.T) {
	cache := NewSearchCacheService(nil, time.Minute)
	// A nil client disables the cache without breaking callers.
	_, ok := cache.Get(context.Background(), models.MatchQuery{JobRequirements: "x"})
	assert.False(t, ok)
}
