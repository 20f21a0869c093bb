package services

import (
	"fmt"
	"strings"

	"hirehub/backend/internal/models"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeStructuringPrompt asks the model for the fixed structuring
// schema. Missing fields must come back as null so the parsed profile keeps
// every key.
func (pb *PromptBuilder) BuildResumeStructuringPrompt(resumeText string) string {
	// Limit text to avoid token limits
	if len(resumeText) > 4000 {
		resumeText = resumeText[:4000]
	}

	return fmt.Sprintf(`You are a resume parsing expert. Extract structured information from the resume text and return a JSON object with these exact fields:
{
  "name": "Full name",
  "email": "Email address",
  "phone": "Phone number",
  "skills": ["skill1", "skill2", "skill3"],
  "experience": "Brief summary of work experience",
  "education": "Education background",
  "jobTitle": "Current or most recent job title",
  "location": "Location/address",
  "summary": "Professional summary"
}

If any field is not found, use null. Extract all technical skills you can find. For experience, provide a concise summary. Return only valid JSON, no additional text.

Parse this resume:

%s`, resumeText)
}

// BuildAnswerAnalysisPrompt asks for the lightweight per-answer judgment.
func (pb *PromptBuilder) BuildAnswerAnalysisPrompt(question, answer string, config models.InterviewConfig) string {
	return fmt.Sprintf(`Analyze this interview response for a %s position:

Question: %s
Answer: %s

Required Skills: %s

Provide analysis in JSON format:
{
  "sentiment": 0.0-1.0,
  "confidence": 0.0-1.0,
  "keyPoints": ["point1", "point2"],
  "skills_mentioned": ["skill1", "skill2"]
}

Respond only with valid JSON.`,
		config.JobTitle, question, answer, strings.Join(config.RequiredSkills, ", "))
}

// BuildFinalAnalysisPrompt asks for the aggregate candidate judgment over the
// full transcript.
func (pb *PromptBuilder) BuildFinalAnalysisPrompt(transcript string, config models.InterviewConfig) string {
	return fmt.Sprintf(`Analyze this complete interview transcript for a %s position:

%s

Job Requirements:
- Skills: %s
- Experience Level: %s
- Company: %s

Provide comprehensive analysis in JSON format:
{
  "overall_score": 0-100,
  "technical_skills": [{"skill": "JavaScript", "proficiency": 0-100}],
  "soft_skills": [{"skill": "Communication", "rating": 0-100}],
  "communication_score": 0-100,
  "experience_match": 0-100,
  "culture_fit": 0-100,
  "strengths": ["strength1", "strength2"],
  "areas_for_improvement": ["area1", "area2"],
  "summary": "Overall assessment summary",
  "recommendation": "strong_hire|hire|maybe|no_hire"
}

You are an expert talent assessment AI. Provide detailed, objective analysis in valid JSON format.`,
		config.JobTitle, transcript,
		strings.Join(config.RequiredSkills, ", "),
		config.ExperienceLevel, config.Company)
}

// FormatTranscript serializes the ordered transcript for the scoring service.
func FormatTranscript(messages []models.InterviewMessage) string {
	var parts []string
	for _, m := range messages {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToUpper(string(m.Type)), m.Content))
	}
	return strings.Join(parts, "\n\n")
}
