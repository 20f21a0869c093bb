package models

// SearchMethod tags how a result set was produced.
type SearchMethod string

const (
	SearchAIEnhanced SearchMethod = "ai_enhanced"
	SearchFallback   SearchMethod = "fallback"
	SearchBasic      SearchMethod = "basic"
)

type MatchQuery struct {
	JobRequirements string          `json:"jobRequirements"`
	RequiredSkills  []string        `json:"requiredSkills"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel,omitempty"`
	MinimumScore    int             `json:"minimumScore,omitempty"`
	Location        string          `json:"location,omitempty"`
	Limit           int             `json:"limit,omitempty"`
}

// MatchResult is a query output, not a persisted entity.
type MatchResult struct {
	CandidateID        string             `json:"candidateId"`
	FullName           string             `json:"fullName"`
	VectorSimilarity   *float64           `json:"vectorSimilarity,omitempty"`
	CompositeScore     int                `json:"compositeScore"`
	MatchReasons       []string           `json:"matchReasons"`
	SkillProficiencies []SkillProficiency `json:"skillProficiencies"`
	CommunicationScore int                `json:"communicationScore"`
	OverallScore       int                `json:"overallScore"`
	Recommendation     string             `json:"recommendation"`
}

type SkillBreakdown struct {
	Skill              string  `json:"skill"`
	CandidateCount     int     `json:"candidateCount"`
	AverageProficiency float64 `json:"averageProficiency"`
}

type SearchSummary struct {
	TotalMatches      int              `json:"totalMatches"`
	AverageMatchScore float64          `json:"averageMatchScore"`
	SkillBreakdown    []SkillBreakdown `json:"skillBreakdown"`
	SearchCriteria    MatchQuery       `json:"searchCriteria"`
}

type SearchResponse struct {
	Candidates   []MatchResult  `json:"candidates"`
	SearchMethod SearchMethod   `json:"searchMethod"`
	Summary      *SearchSummary `json:"summary,omitempty"`
}
