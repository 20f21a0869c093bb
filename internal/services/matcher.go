package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/models"
	"hirehub/backend/internal/repositories"
)

// MatcherService ranks candidates against a job requirement by blending
// vector similarity with rule-based features.
type MatcherService interface {
	SearchCandidates(ctx context.Context, query models.MatchQuery) (*models.SearchResponse, error)
	BasicSearch(ctx context.Context, minScore, limit int) (*models.SearchResponse, error)
}

type MatcherOptions struct {
	SimilarityThreshold float32
	MatchThreshold      int
	DefaultMinimumScore int
	DefaultLimit        int
}

type matcherService struct {
	geminiService GeminiService
	vectorIndex   VectorIndexService
	candidateRepo repositories.CandidateRepository
	cache         SearchCacheService
	opts          MatcherOptions
}

func NewMatcherService(
	geminiService GeminiService,
	vectorIndex VectorIndexService,
	candidateRepo repositories.CandidateRepository,
	cache SearchCacheService,
	opts MatcherOptions,
) MatcherService {
	return &matcherService{
		geminiService: geminiService,
		vectorIndex:   vectorIndex,
		candidateRepo: candidateRepo,
		cache:         cache,
		opts:          opts,
	}
}

// SearchCandidates implements MatcherService.
func (m *matcherService) SearchCandidates(ctx context.Context, query models.MatchQuery) (*models.SearchResponse, error) {
	if strings.TrimSpace(query.JobRequirements) == "" || len(query.RequiredSkills) == 0 {
		return nil, apperr.Validation("job requirements and required skills are required")
	}

	if query.MinimumScore <= 0 {
		query.MinimumScore = m.opts.DefaultMinimumScore
	}
	if query.Limit <= 0 {
		query.Limit = m.opts.DefaultLimit
	}

	if m.cache != nil {
		if cached, ok := m.cache.Get(ctx, query); ok {
			return cached, nil
		}
	}

	response, err := m.vectorSearch(ctx, query)
	if err != nil {
		// Vector path failure degrades to the filtered scan, never fails
		// the whole query.
		log.Printf("⚠️  Vector search failed, falling back to filtered scan: %v\n", err)
		return m.fallbackSearch(query)
	}

	if m.cache != nil {
		m.cache.Set(ctx, query, response)
	}
	return response, nil
}

func (m *matcherService) vectorSearch(ctx context.Context, query models.MatchQuery) (*models.SearchResponse, error) {
	queryText := fmt.Sprintf("%s %s %s",
		query.JobRequirements,
		strings.Join(query.RequiredSkills, " "),
		query.ExperienceLevel,
	)

	embedding, err := m.geminiService.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}

	hits, err := m.vectorIndex.SearchCandidates(ctx, embedding, m.opts.SimilarityThreshold, query.Limit*2)
	if err != nil {
		return nil, fmt.Errorf("vector index query failed: %w", err)
	}

	similarityByID := make(map[uuid.UUID]float64, len(hits))
	ids := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		id, err := uuid.Parse(hit.CandidateID)
		if err != nil {
			continue
		}
		if _, ok := similarityByID[id]; !ok {
			ids = append(ids, id)
		}
		if s := float64(hit.Score); s > similarityByID[id] {
			similarityByID[id] = s
		}
	}

	candidates, err := m.candidateRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	var results []models.MatchResult
	for _, candidate := range candidates {
		similarity := similarityByID[candidate.ID]
		result := buildMatchResult(candidate, similarity, query)

		if result.CompositeScore < m.opts.MatchThreshold {
			continue
		}
		if candidate.OverallScore < query.MinimumScore {
			continue
		}
		results = append(results, result)
	}

	sortMatches(results)
	if len(results) > query.Limit {
		results = results[:query.Limit]
	}

	return &models.SearchResponse{
		Candidates:   results,
		SearchMethod: models.SearchAIEnhanced,
		Summary:      buildSummary(results, query),
	}, nil
}

func (m *matcherService) fallbackSearch(query models.MatchQuery) (*models.SearchResponse, error) {
	candidates, err := m.candidateRepo.FindByMinimumScore(query.MinimumScore, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("fallback search failed: %w", err)
	}

	results := make([]models.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, models.MatchResult{
			CandidateID:        candidate.ID.String(),
			FullName:           candidate.FullName,
			CompositeScore:     candidate.OverallScore,
			MatchReasons:       []string{fmt.Sprintf("Interview score %d above minimum %d", candidate.OverallScore, query.MinimumScore)},
			SkillProficiencies: candidate.TechnicalSkills,
			CommunicationScore: candidate.CommunicationScore,
			OverallScore:       candidate.OverallScore,
			Recommendation:     candidate.Recommendation,
		})
	}

	return &models.SearchResponse{
		Candidates:   results,
		SearchMethod: models.SearchFallback,
		Summary:      buildSummary(results, query),
	}, nil
}

// BasicSearch implements MatcherService. Plain score-ordered listing with no
// vector ranking.
func (m *matcherService) BasicSearch(ctx context.Context, minScore, limit int) (*models.SearchResponse, error) {
	if minScore <= 0 {
		minScore = m.opts.DefaultMinimumScore
	}
	if limit <= 0 {
		limit = m.opts.DefaultLimit
	}

	candidates, err := m.candidateRepo.FindByMinimumScore(minScore, limit)
	if err != nil {
		return nil, fmt.Errorf("basic search failed: %w", err)
	}

	results := make([]models.MatchResult, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, models.MatchResult{
			CandidateID:        candidate.ID.String(),
			FullName:           candidate.FullName,
			CompositeScore:     candidate.OverallScore,
			SkillProficiencies: candidate.TechnicalSkills,
			CommunicationScore: candidate.CommunicationScore,
			OverallScore:       candidate.OverallScore,
			Recommendation:     candidate.Recommendation,
		})
	}

	return &models.SearchResponse{
		Candidates:   results,
		SearchMethod: models.SearchBasic,
	}, nil
}

func buildMatchResult(candidate models.Candidate, similarity float64, query models.MatchQuery) models.MatchResult {
	overlap := SkillOverlap(query.RequiredSkills, candidate.TechnicalSkills)
	expFit := ExperienceFit(query.ExperienceLevel, candidate.ExperienceLevel)
	composite := CompositeScore(similarity, overlap, expFit, candidate.CommunicationScore)

	matched := 0
	for _, skill := range query.RequiredSkills {
		if hasSkill(candidate.TechnicalSkills, skill) {
			matched++
		}
	}

	reasons := []string{
		fmt.Sprintf("Vector similarity %.2f", similarity),
		fmt.Sprintf("Matches %d/%d required skills", matched, len(query.RequiredSkills)),
	}
	if candidate.CommunicationScore > 0 {
		reasons = append(reasons, fmt.Sprintf("Communication score %d", candidate.CommunicationScore))
	}

	sim := similarity
	return models.MatchResult{
		CandidateID:        candidate.ID.String(),
		FullName:           candidate.FullName,
		VectorSimilarity:   &sim,
		CompositeScore:     composite,
		MatchReasons:       reasons,
		SkillProficiencies: candidate.TechnicalSkills,
		CommunicationScore: candidate.CommunicationScore,
		OverallScore:       candidate.OverallScore,
		Recommendation:     candidate.Recommendation,
	}
}

// CompositeScore blends vector similarity with rule-based features into a
// [0,100] rank. It is monotonically non-decreasing in similarity and in skill
// overlap, holding the other inputs fixed.
func CompositeScore(similarity, skillOverlap, experienceFit float64, communicationScore int) int {
	similarity = clamp01(similarity)
	skillOverlap = clamp01(skillOverlap)
	experienceFit = clamp01(experienceFit)
	comm := clamp01(float64(communicationScore) / 100.0)

	score := 45*similarity + 35*skillOverlap + 10*experienceFit + 10*comm
	return int(math.Round(score))
}

// ExperienceFit scores how close the candidate's level sits to the requested
// one. Unspecified levels score neutral.
func ExperienceFit(required, actual models.ExperienceLevel) float64 {
	if required == "" || actual == "" {
		return 0.5
	}

	ranks := map[models.ExperienceLevel]int{
		models.LevelEntry:     0,
		models.LevelMid:       1,
		models.LevelSenior:    2,
		models.LevelExecutive: 3,
	}

	reqRank, ok1 := ranks[required]
	actRank, ok2 := ranks[actual]
	if !ok1 || !ok2 {
		return 0.5
	}

	switch diff := abs(reqRank - actRank); diff {
	case 0:
		return 1
	case 1:
		return 0.5
	default:
		return 0.25
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SkillOverlap is the fraction of required skills the candidate holds, in
// [0,1]. Zero required skills count as full overlap.
func SkillOverlap(required []string, skills []models.SkillProficiency) float64 {
	if len(required) == 0 {
		return 1
	}

	matched := 0
	for _, skill := range required {
		if hasSkill(skills, skill) {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

func hasSkill(skills []models.SkillProficiency, required string) bool {
	required = strings.ToLower(required)
	for _, s := range skills {
		if strings.Contains(strings.ToLower(s.Skill), required) {
			return true
		}
	}
	return false
}

// sortMatches orders descending by composite score, ties broken by candidate
// id for determinism.
func sortMatches(results []models.MatchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].CompositeScore != results[j].CompositeScore {
			return results[i].CompositeScore > results[j].CompositeScore
		}
		return results[i].CandidateID < results[j].CandidateID
	})
}

// BuildSkillBreakdown reports, per required skill, how many candidates hold
// it at proficiency >= 60 and their average proficiency. A skill nobody holds
// reports average 0, never a division by zero.
func BuildSkillBreakdown(required []string, results []models.MatchResult) []models.SkillBreakdown {
	breakdown := make([]models.SkillBreakdown, 0, len(required))

	for _, skill := range required {
		count := 0
		total := 0
		lower := strings.ToLower(skill)

		for _, result := range results {
			for _, s := range result.SkillProficiencies {
				if strings.Contains(strings.ToLower(s.Skill), lower) && s.Proficiency >= 60 {
					count++
					total += s.Proficiency
					break
				}
			}
		}

		avg := 0.0
		if count > 0 {
			avg = float64(total) / float64(count)
		}

		breakdown = append(breakdown, models.SkillBreakdown{
			Skill:              skill,
			CandidateCount:     count,
			AverageProficiency: avg,
		})
	}

	return breakdown
}

func buildSummary(results []models.MatchResult, query models.MatchQuery) *models.SearchSummary {
	totalScore := 0
	for _, r := range results {
		totalScore += r.CompositeScore
	}

	avg := 0.0
	if len(results) > 0 {
		avg = float64(totalScore) / float64(len(results))
	}

	return &models.SearchSummary{
		TotalMatches:      len(results),
		AverageMatchScore: avg,
		SkillBreakdown:    BuildSkillBreakdown(query.RequiredSkills, results),
		SearchCriteria:    query,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
