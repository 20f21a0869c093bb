package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hirehub/backend/internal/models"
	"hirehub/backend/internal/repositories"
)

// AnalysisService turns interview transcripts into candidate judgments.
// Scoring never blocks or fails an interview: any upstream problem degrades
// to a neutral result instead of an error.
type AnalysisService interface {
	AnalyzeAnswer(ctx context.Context, question, answer string, config models.InterviewConfig) *models.MessageAnalysis
	GenerateFinalAnalysis(ctx context.Context, session *models.InterviewSession) *models.CandidateAnalysis
	PublishCandidateSignal(ctx context.Context, session *models.InterviewSession) error
}

type analysisService struct {
	geminiService GeminiService
	vectorIndex   VectorIndexService
	candidateRepo repositories.CandidateRepository
	promptBuilder *PromptBuilder
	maxRetries    int
}

func NewAnalysisService(
	geminiService GeminiService,
	vectorIndex VectorIndexService,
	candidateRepo repositories.CandidateRepository,
	maxRetries int,
) AnalysisService {
	return &analysisService{
		geminiService: geminiService,
		vectorIndex:   vectorIndex,
		candidateRepo: candidateRepo,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
	}
}

// NeutralAnalysis is the documented fallback when final scoring cannot be
// produced from the transcript. Every score sits at the midpoint and the
// recommendation stays non-committal.
func NeutralAnalysis() *models.CandidateAnalysis {
	return &models.CandidateAnalysis{
		OverallScore:        50,
		TechnicalSkills:     []models.SkillProficiency{},
		SoftSkills:          []models.SoftSkillRating{},
		CommunicationScore:  50,
		ExperienceMatch:     50,
		CultureFit:          50,
		Strengths:           []string{},
		AreasForImprovement: []string{},
		Summary:             "Analysis could not be completed for this interview.",
		Recommendation:      models.RecommendMaybe,
	}
}

func neutralMessageAnalysis() *models.MessageAnalysis {
	return &models.MessageAnalysis{
		Sentiment:       0.5,
		Confidence:      0.5,
		KeyPoints:       []string{},
		SkillsMentioned: []string{},
	}
}

// AnalyzeAnswer implements AnalysisService. The per-answer judgment is
// advisory; a malformed or failed model response yields the neutral default.
func (a *analysisService) AnalyzeAnswer(ctx context.Context, question, answer string, config models.InterviewConfig) *models.MessageAnalysis {
	prompt := a.promptBuilder.BuildAnswerAnalysisPrompt(question, answer, config)

	response, err := a.geminiService.GenerateText(ctx, prompt, 0.3)
	if err != nil {
		log.Printf("⚠️ Answer analysis failed, using neutral default: %v", err)
		return neutralMessageAnalysis()
	}

	var analysis models.MessageAnalysis
	if err := parseJSONResponse(response, &analysis); err != nil {
		log.Printf("⚠️ Answer analysis returned malformed JSON, using neutral default: %v", err)
		return neutralMessageAnalysis()
	}

	analysis.Sentiment = clamp01(analysis.Sentiment)
	analysis.Confidence = clamp01(analysis.Confidence)
	if analysis.KeyPoints == nil {
		analysis.KeyPoints = []string{}
	}
	if analysis.SkillsMentioned == nil {
		analysis.SkillsMentioned = []string{}
	}
	return &analysis
}

// GenerateFinalAnalysis implements AnalysisService. It is called exactly once
// per session, at completion.
func (a *analysisService) GenerateFinalAnalysis(ctx context.Context, session *models.InterviewSession) *models.CandidateAnalysis {
	transcript := FormatTranscript(session.Messages)
	if strings.TrimSpace(transcript) == "" {
		log.Printf("⚠️ Session %s has an empty transcript, using neutral analysis", session.ID)
		return NeutralAnalysis()
	}

	prompt := a.promptBuilder.BuildFinalAnalysisPrompt(transcript, session.Config)
	response, err := a.geminiService.GenerateTextWithRetry(ctx, prompt, 0.2, a.maxRetries)
	if err != nil {
		log.Printf("⚠️ Final analysis failed for session %s, using neutral default: %v", session.ID, err)
		return NeutralAnalysis()
	}

	var analysis models.CandidateAnalysis
	if err := parseJSONResponse(response, &analysis); err != nil {
		log.Printf("⚠️ Final analysis returned malformed JSON for session %s, using neutral default: %v", session.ID, err)
		return NeutralAnalysis()
	}

	normalizeAnalysis(&analysis)
	return &analysis
}

// normalizeAnalysis clamps every score into [0,100] and repairs fields the
// model is allowed to get wrong without discarding the whole result.
func normalizeAnalysis(a *models.CandidateAnalysis) {
	a.OverallScore = clampScore(a.OverallScore)
	a.CommunicationScore = clampScore(a.CommunicationScore)
	a.ExperienceMatch = clampScore(a.ExperienceMatch)
	a.CultureFit = clampScore(a.CultureFit)

	for i := range a.TechnicalSkills {
		a.TechnicalSkills[i].Proficiency = clampScore(a.TechnicalSkills[i].Proficiency)
	}
	for i := range a.SoftSkills {
		a.SoftSkills[i].Rating = clampScore(a.SoftSkills[i].Rating)
	}

	if a.TechnicalSkills == nil {
		a.TechnicalSkills = []models.SkillProficiency{}
	}
	if a.SoftSkills == nil {
		a.SoftSkills = []models.SoftSkillRating{}
	}
	if a.Strengths == nil {
		a.Strengths = []string{}
	}
	if a.AreasForImprovement == nil {
		a.AreasForImprovement = []string{}
	}

	switch a.Recommendation {
	case models.RecommendStrongHire, models.RecommendHire, models.RecommendMaybe, models.RecommendNoHire:
	default:
		a.Recommendation = models.RecommendMaybe
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// PublishCandidateSignal implements AnalysisService. It pushes the finalized
// analysis into the vector index and onto the candidate record so search
// reflects the latest interview.
func (a *analysisService) PublishCandidateSignal(ctx context.Context, session *models.InterviewSession) error {
	if session.Analysis == nil {
		return fmt.Errorf("session %s has no analysis to publish", session.ID)
	}

	text := analysisSignalText(session)
	embedding, err := a.geminiService.GenerateEmbedding(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to embed analysis for session %s: %w", session.ID, err)
	}

	candidateID := session.CandidateID.String()
	if err := a.vectorIndex.UpsertCandidate(ctx, candidateID, SignalInterview, text, embedding); err != nil {
		return fmt.Errorf("failed to index analysis for session %s: %w", session.ID, err)
	}

	if err := a.candidateRepo.UpdateInterviewSignal(session.CandidateID, session.Analysis); err != nil {
		return fmt.Errorf("failed to update candidate %s: %w", candidateID, err)
	}

	log.Printf("✅ Candidate signal published for session %s", session.ID)
	return nil
}

// analysisSignalText builds the text that represents a finished interview in
// the vector index.
func analysisSignalText(session *models.InterviewSession) string {
	analysis := session.Analysis
	var parts []string

	parts = append(parts, fmt.Sprintf("Interview for %s at %s.", session.Config.JobTitle, session.Config.Company))
	if analysis.Summary != "" {
		parts = append(parts, analysis.Summary)
	}
	if len(analysis.TechnicalSkills) > 0 {
		skills := make([]string, 0, len(analysis.TechnicalSkills))
		for _, s := range analysis.TechnicalSkills {
			skills = append(skills, s.Skill)
		}
		parts = append(parts, "Technical skills: "+strings.Join(skills, ", ")+".")
	}
	if len(analysis.Strengths) > 0 {
		parts = append(parts, "Strengths: "+strings.Join(analysis.Strengths, ", ")+".")
	}

	return strings.Join(parts, " ")
}
