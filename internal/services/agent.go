package services

import (
	"fmt"
	"strings"

	"hirehub/backend/internal/models"
)

// GenerateQuestions builds the interview script for a session. The script is
// a pure function of the interview config and the candidate's known skills:
// regenerating it for the same inputs yields the same questions in the same
// order.
func GenerateQuestions(config models.InterviewConfig, candidateSkills []string) []models.Question {
	jobTitle := config.JobTitle
	if jobTitle == "" {
		jobTitle = "this position"
	}
	company := config.Company
	if company == "" {
		company = "our company"
	}
	primary := primarySkill(config.RequiredSkills, candidateSkills)

	return []models.Question{
		{
			ID:               "intro",
			Question:         fmt.Sprintf("Hello! Welcome to your interview for the %s position at %s. To start, could you please introduce yourself and tell me why you're interested in this role?", jobTitle, company),
			Category:         "introduction",
			ExpectedDuration: 60,
		},
		{
			ID:               "technical",
			Question:         fmt.Sprintf("I see you have experience with %s. Can you walk me through a specific project where you used %s and describe the challenges you faced?", primary, primary),
			Category:         "technical",
			ExpectedDuration: 90,
		},
		{
			ID:               "experience",
			Question:         fmt.Sprintf("How do you think your background and experience align with what we're looking for in this %s role?", jobTitle),
			Category:         "experience",
			ExpectedDuration: 75,
		},
		{
			ID:               "problem_solving",
			Question:         "Describe a time when you had to solve a difficult technical problem. What was your approach and what did you learn from it?",
			Category:         "problem_solving",
			ExpectedDuration: 90,
		},
		{
			ID:               "teamwork",
			Question:         fmt.Sprintf("At %s, collaboration is important. Can you tell me about a time when you worked effectively with a team to achieve a goal?", company),
			Category:         "behavioral",
			ExpectedDuration: 75,
		},
		{
			ID:               "goals",
			Question:         "Where do you see your career heading in the next few years, and how does this position fit into those goals?",
			Category:         "career_goals",
			ExpectedDuration: 60,
		},
	}
}

// primarySkill picks the skill the technical question targets: the first
// required skill the candidate also lists, then the candidate's first skill,
// then a generic fallback. Required-skill order keeps the choice stable.
func primarySkill(requiredSkills, candidateSkills []string) string {
	candidateSet := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		candidateSet[strings.ToLower(strings.TrimSpace(s))] = true
	}
	for _, s := range requiredSkills {
		if candidateSet[strings.ToLower(strings.TrimSpace(s))] {
			return s
		}
	}
	if len(candidateSkills) > 0 {
		return candidateSkills[0]
	}
	return "your technical skills"
}
