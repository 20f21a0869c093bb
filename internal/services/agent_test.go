package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirehub/backend/internal/models"
)

func TestGenerateQuestionsDeterministic(t *testing.T) {
	config := models.InterviewConfig{
		JobTitle:       "Backend Engineer",
		Company:        "Acme",
		RequiredSkills: []string{"Go", "PostgreSQL"},
	}
	skills := []string{"PostgreSQL", "Docker"}

	first := GenerateQuestions(config, skills)
	second := GenerateQuestions(config, skills)
	assert.Equal(t, first, second)
}

func TestGenerateQuestionsScript(t *testing.T) {
	config := models.InterviewConfig{
		JobTitle:       "Backend Engineer",
		Company:        "Acme",
		RequiredSkills: []string{"Go"},
	}

	questions := GenerateQuestions(config, []string{"go"})
	require.Len(t, questions, 6)

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
		assert.NotEmpty(t, q.Question)
		assert.Positive(t, q.ExpectedDuration)
	}
	assert.Equal(t, []string{"intro", "technical", "experience", "problem_solving", "teamwork", "goals"}, ids)

	assert.Contains(t, questions[0].Question, "Backend Engineer")
	assert.Contains(t, questions[0].Question, "Acme")
	assert.Contains(t, questions[1].Question, "Go")
}

func TestPrimarySkill(t *testing.T) {
	// Overlap wins, keeping the required skill's casing.
	assert.Equal(t, "React", primarySkill([]string{"React", "Go"}, []string{"go", "react"}))

	// No overlap falls back to the candidate's first skill.
	assert.Equal(t, "Rust", primarySkill([]string{"Go"}, []string{"Rust", "C"}))

	// No skills at all falls back to a generic phrase.
	assert.Equal(t, "your technical skills", primarySkill(nil, nil))
}

func TestGenerateQuestionsEmptyConfigFallbacks(t *testing.T) {
	questions := GenerateQuestions(models.InterviewConfig{}, nil)
	require.Len(t, questions, 6)
	assert.Contains(t, questions[0].Question, "this position")
	assert.Contains(t, questions[0].Question, "our company")
}
