package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirehub/backend/internal/models"
)

func testSession(messages ...models.InterviewMessage) *models.InterviewSession {
	return &models.InterviewSession{
		ID:          uuid.New(),
		CandidateID: uuid.New(),
		Config: models.InterviewConfig{
			JobTitle:       "Backend Engineer",
			Company:        "Acme",
			RequiredSkills: []string{"Go"},
		},
		Messages: messages,
	}
}

func answeredTranscript() []models.InterviewMessage {
	return []models.InterviewMessage{
		{ID: "q1", Type: models.MessageQuestion, Content: "Tell me about yourself."},
		{ID: "a1", Type: models.MessageAnswer, Content: "I build backend systems in Go."},
	}
}

func TestGenerateFinalAnalysisNeutralOnModelFailure(t *testing.T) {
	svc := NewAnalysisService(&stubGemini{}, &stubVectorIndex{}, newStubCandidateRepo(), 1)

	analysis := svc.GenerateFinalAnalysis(context.Background(), testSession(answeredTranscript()...))
	assert.Equal(t, NeutralAnalysis(), analysis)
}

func TestGenerateFinalAnalysisNeutralOnMalformedJSON(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		return "sorry, I cannot help with that", nil
	}}
	svc := NewAnalysisService(gemini, &stubVectorIndex{}, newStubCandidateRepo(), 1)

	analysis := svc.GenerateFinalAnalysis(context.Background(), testSession(answeredTranscript()...))
	assert.Equal(t, 50, analysis.OverallScore)
	assert.Equal(t, models.RecommendMaybe, analysis.Recommendation)
	assert.Empty(t, analysis.TechnicalSkills)
}

func TestGenerateFinalAnalysisNeutralOnEmptyTranscript(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		t.Fatal("model must not be called for an empty transcript")
		return "", nil
	}}
	svc := NewAnalysisService(gemini, &stubVectorIndex{}, newStubCandidateRepo(), 1)

	analysis := svc.GenerateFinalAnalysis(context.Background(), testSession())
	assert.Equal(t, NeutralAnalysis(), analysis)
}

func TestGenerateFinalAnalysisNormalizesScores(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		return `{
			"overall_score": 140,
			"technical_skills": [{"skill": "Go", "proficiency": 120}],
			"communication_score": -10,
			"experience_match": 80,
			"culture_fit": 70,
			"summary": "Solid candidate",
			"recommendation": "definitely_hire"
		}`, nil
	}}
	svc := NewAnalysisService(gemini, &stubVectorIndex{}, newStubCandidateRepo(), 1)

	analysis := svc.GenerateFinalAnalysis(context.Background(), testSession(answeredTranscript()...))
	assert.Equal(t, 100, analysis.OverallScore)
	assert.Equal(t, 0, analysis.CommunicationScore)
	assert.Equal(t, 100, analysis.TechnicalSkills[0].Proficiency)
	// Unknown recommendation values degrade to maybe.
	assert.Equal(t, models.RecommendMaybe, analysis.Recommendation)
	assert.NotNil(t, analysis.Strengths)
	assert.NotNil(t, analysis.SoftSkills)
}

func TestAnalyzeAnswerNeutralDefault(t *testing.T) {
	svc := NewAnalysisService(&stubGemini{}, &stubVectorIndex{}, newStubCandidateRepo(), 1)

	analysis := svc.AnalyzeAnswer(context.Background(), "Q?", "A.", models.InterviewConfig{})
	assert.Equal(t, 0.5, analysis.Sentiment)
	assert.Equal(t, 0.5, analysis.Confidence)
	assert.Empty(t, analysis.KeyPoints)
}

func TestAnalyzeAnswerClampsScores(t *testing.T) {
	gemini := &stubGemini{textFn: func(string) (string, error) {
		return `{"sentiment": 1.7, "confidence": -0.2, "keyPoints": ["clear"], "skills_mentioned": ["Go"]}`, nil
	}}
	svc := NewAnalysisService(gemini, &stubVectorIndex{}, newStubCandidateRepo(), 1)

	analysis := svc.AnalyzeAnswer(context.Background(), "Q?", "A.", models.InterviewConfig{})
	assert.Equal(t, 1.0, analysis.Sentiment)
	assert.Equal(t, 0.0, analysis.Confidence)
	assert.Equal(t, []string{"clear"}, analysis.KeyPoints)
}

func TestPublishCandidateSignal(t *testing.T) {
	candidate := &models.Candidate{ID: uuid.New()}
	repo := newStubCandidateRepo(candidate)
	index := &stubVectorIndex{}
	gemini := &stubGemini{embedding: []float32{0.5, 0.5}}
	svc := NewAnalysisService(gemini, index, repo, 1)

	session := testSession(answeredTranscript()...)
	session.CandidateID = candidate.ID
	session.Analysis = &models.CandidateAnalysis{
		OverallScore:   82,
		Summary:        "Strong backend depth",
		Recommendation: models.RecommendHire,
		TechnicalSkills: []models.SkillProficiency{
			{Skill: "Go", Proficiency: 85},
		},
	}

	require.NoError(t, svc.PublishCandidateSignal(context.Background(), session))

	require.Len(t, index.upserts, 1)
	assert.Equal(t, candidate.ID.String(), index.upserts[0].candidateID)
	assert.Equal(t, SignalInterview, index.upserts[0].kind)
	assert.Contains(t, index.upserts[0].text, "Strong backend depth")

	require.Contains(t, repo.signals, candidate.ID)
	assert.Equal(t, 82, repo.signals[candidate.ID].OverallScore)
}

func TestPublishCandidateSignalRequiresAnalysis(t *testing.T) {
	svc := NewAnalysisService(&stubGemini{}, &stubVectorIndex{}, newStubCandidateRepo(), 1)
	assert.Error(t, svc.PublishCandidateSignal(context.Background(), testSession()))
}
