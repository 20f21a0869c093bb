package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/models"
	"hirehub/backend/internal/repositories"
)

// ResumeService extracts, structures and scores uploaded resumes.
type ResumeService interface {
	ParseResume(ctx context.Context, data []byte, mimeType, filename string, candidateID uuid.UUID) (*models.ResumeDocument, error)
	// IndexProfile embeds the profile summary and upserts it as the
	// candidate's resume signal in the vector index.
	IndexProfile(ctx context.Context, candidateID uuid.UUID, profile *models.ParsedProfile) error
}

type resumeService struct {
	extractor     ExtractorService
	geminiService GeminiService
	vectorIndex   VectorIndexService
	resumeRepo    repositories.ResumeRepository
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewResumeService(
	extractor ExtractorService,
	geminiService GeminiService,
	vectorIndex VectorIndexService,
	resumeRepo repositories.ResumeRepository,
	maxRetries int,
) ResumeService {
	return &resumeService{
		extractor:     extractor,
		geminiService: geminiService,
		vectorIndex:   vectorIndex,
		resumeRepo:    resumeRepo,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// ParseResume implements ResumeService.
func (s *resumeService) ParseResume(ctx context.Context, data []byte, mimeType, filename string, candidateID uuid.UUID) (*models.ResumeDocument, error) {
	text, err := s.extractor.ExtractText(data, mimeType)
	if err != nil {
		return nil, err
	}

	log.Printf("📄 Text extracted successfully: %d characters\n", len(text))

	profile, err := s.structureResume(ctx, text)
	if err != nil {
		return nil, apperr.ExternalService("failed to structure resume", err)
	}

	doc := &models.ResumeDocument{
		ID:            uuid.New(),
		CandidateID:   candidateID,
		Filename:      filename,
		FileType:      mimeType,
		FileSize:      int64(len(data)),
		ExtractedText: text,
		Profile:       profile,
		ATSScore:      CalculateATSScore(profile),
	}

	if err := s.resumeRepo.Create(doc); err != nil {
		return nil, fmt.Errorf("failed to save resume document: %w", err)
	}

	// Index the resume as candidate signal for the matching read path.
	// Best effort; the parse result does not depend on it.
	if err := s.IndexProfile(ctx, candidateID, profile); err != nil {
		log.Printf("⚠️  Failed to index resume: %v\n", err)
	}

	log.Printf("✅ Resume processing completed. ATS Score: %d\n", doc.ATSScore)
	return doc, nil
}

// IndexProfile implements ResumeService.
func (s *resumeService) IndexProfile(ctx context.Context, candidateID uuid.UUID, profile *models.ParsedProfile) error {
	summary := profileSummaryText(profile)
	if summary == "" {
		return nil
	}

	embedding, err := s.geminiService.GenerateEmbedding(ctx, summary)
	if err != nil {
		return fmt.Errorf("failed to embed resume summary: %w", err)
	}

	if err := s.vectorIndex.UpsertCandidate(ctx, candidateID.String(), SignalResume, summary, embedding); err != nil {
		return fmt.Errorf("failed to index resume: %w", err)
	}

	return nil
}

func (s *resumeService) structureResume(ctx context.Context, text string) (*models.ParsedProfile, error) {
	prompt := s.promptBuilder.BuildResumeStructuringPrompt(text)

	response, err := s.geminiService.GenerateTextWithRetry(ctx, prompt, 0.1, s.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate structured profile: %w", err)
	}

	var profile models.ParsedProfile
	if err := parseJSONResponse(response, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse structuring response: %w", err)
	}

	profile.Skills = dedupeSkills(profile.Skills)
	return &profile, nil
}

// CalculateATSScore computes the deterministic completeness/quality score of
// a structured profile. Pure: no external calls, ceiling 100.
func CalculateATSScore(profile *models.ParsedProfile) int {
	if profile == nil {
		return 0
	}

	score := 0

	// Basic completeness (60 points)
	if present(profile.Name) {
		score += 10
	}
	if present(profile.Email) {
		score += 10
	}
	if present(profile.Phone) {
		score += 10
	}
	if present(profile.Experience) {
		score += 10
	}
	if present(profile.Education) {
		score += 10
	}
	if len(profile.Skills) > 0 {
		score += 10
	}

	// Skills quantity bonus (20 points, highest tier only)
	skillCount := len(profile.Skills)
	switch {
	case skillCount >= 10:
		score += 20
	case skillCount >= 5:
		score += 15
	case skillCount >= 3:
		score += 10
	case skillCount >= 1:
		score += 5
	}

	// Professional summary bonus (10 points)
	if profile.Summary != nil && len(*profile.Summary) > 50 {
		score += 10
	}

	// Job title clarity (10 points)
	if present(profile.JobTitle) {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// present treats both null and blank fields as absent.
func present(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

// dedupeSkills removes duplicates case-insensitively, preserving first-seen
// order and casing.
func dedupeSkills(skills []string) []string {
	if len(skills) == 0 {
		return skills
	}

	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		key := strings.ToLower(skill)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, skill)
	}
	return out
}

func profileSummaryText(profile *models.ParsedProfile) string {
	if profile == nil {
		return ""
	}

	var parts []string
	if profile.JobTitle != nil {
		parts = append(parts, *profile.JobTitle)
	}
	if len(profile.Skills) > 0 {
		parts = append(parts, strings.Join(profile.Skills, ", "))
	}
	if profile.Experience != nil {
		parts = append(parts, *profile.Experience)
	}
	if profile.Summary != nil {
		parts = append(parts, *profile.Summary)
	}
	return strings.Join(parts, "\n")
}

func parseJSONResponse(response string, target interface{}) error {
	// LLM output may wrap the JSON in markdown fences
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// extractJSON tries to extract JSON from text that might contain markdown or
// other formatting.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
