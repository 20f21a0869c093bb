package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"
	SessionConnecting SessionStatus = "connecting"
	SessionConnected  SessionStatus = "connected"
	SessionActive     SessionStatus = "active"
	SessionCompleted  SessionStatus = "completed"
	SessionAborted    SessionStatus = "aborted"
)

// Terminal reports whether no further mutation of the session is permitted.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAborted
}

type MessageType string

const (
	MessageQuestion MessageType = "question"
	MessageAnswer   MessageType = "answer"
)

// MessageAnalysis is the lightweight per-answer judgment. Sentiment and
// confidence are in [0,1].
type MessageAnalysis struct {
	Sentiment       float64  `json:"sentiment"`
	Confidence      float64  `json:"confidence"`
	KeyPoints       []string `json:"keyPoints"`
	SkillsMentioned []string `json:"skills_mentioned"`
}

// InterviewMessage is append-only; it is never mutated once added to the
// transcript.
type InterviewMessage struct {
	ID        string           `json:"id"`
	Type      MessageType      `json:"type"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Analysis  *MessageAnalysis `json:"analysis,omitempty"`
}

type InterviewConfig struct {
	JobTitle        string          `json:"jobTitle"`
	JobDescription  string          `json:"jobDescription"`
	RequiredSkills  []string        `json:"requiredSkills"`
	ExperienceLevel ExperienceLevel `json:"experienceLevel"`
	Company         string          `json:"company"`
	Duration        int             `json:"duration"` // minutes
	// CandidateSkills is captured from the candidate's resume when the
	// session is created, so the question script stays stable even if the
	// resume changes mid-interview.
	CandidateSkills []string `json:"candidateSkills,omitempty"`
}

type SkillProficiency struct {
	Skill       string `json:"skill"`
	Proficiency int    `json:"proficiency"`
}

type SoftSkillRating struct {
	Skill  string `json:"skill"`
	Rating int    `json:"rating"`
}

type Recommendation string

const (
	RecommendStrongHire Recommendation = "strong_hire"
	RecommendHire       Recommendation = "hire"
	RecommendMaybe      Recommendation = "maybe"
	RecommendNoHire     Recommendation = "no_hire"
)

// CandidateAnalysis is produced exactly once per completed session and is
// immutable thereafter. All scores are in [0,100].
type CandidateAnalysis struct {
	OverallScore        int                `json:"overall_score"`
	TechnicalSkills     []SkillProficiency `json:"technical_skills"`
	SoftSkills          []SoftSkillRating  `json:"soft_skills"`
	CommunicationScore  int                `json:"communication_score"`
	ExperienceMatch     int                `json:"experience_match"`
	CultureFit          int                `json:"culture_fit"`
	Strengths           []string           `json:"strengths"`
	AreasForImprovement []string           `json:"areas_for_improvement"`
	Summary             string             `json:"summary"`
	Recommendation      Recommendation     `json:"recommendation"`
}

type Progress struct {
	CurrentQuestion    int     `json:"current_question"`
	TotalQuestions     int     `json:"total_questions"`
	ProgressPercentage float64 `json:"progress_percentage"`
	Completed          bool    `json:"completed"`
}

type Question struct {
	ID               string `json:"id"`
	Question         string `json:"question"`
	Category         string `json:"category"`
	ExpectedDuration int    `json:"expected_duration"`
}

type InterviewSession struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	JobID            uuid.UUID          `gorm:"type:uuid;not null;index" json:"job_id"`
	CandidateID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"candidate_id"`
	RoomName         string             `gorm:"type:text;uniqueIndex" json:"room_name"`
	ParticipantToken string             `gorm:"type:text" json:"-"`
	AgentToken       string             `gorm:"type:text" json:"-"`
	Config           InterviewConfig    `gorm:"type:jsonb;serializer:json" json:"config"`
	Status           SessionStatus      `gorm:"type:text;not null;default:'created'" json:"status"`
	Messages         []InterviewMessage `gorm:"type:jsonb;serializer:json" json:"messages"`
	QuestionIndex    int                `json:"question_index"`
	TotalQuestions   int                `json:"total_questions"`
	DemoMode         bool               `json:"demo_mode"`
	Analysis         *CandidateAnalysis `gorm:"type:jsonb;serializer:json" json:"analysis,omitempty"`
	SignalAt         *time.Time         `gorm:"type:timestamp" json:"-"`
	CreatedAt        time.Time          `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// CreateSessionResponse is what the session-creation endpoint hands to the
// client so it can join the media channel.
type CreateSessionResponse struct {
	SessionID        string          `json:"sessionId"`
	RoomName         string          `json:"roomName"`
	ParticipantToken string          `json:"participantToken"`
	AgentToken       string          `json:"agentToken"`
	WsURL            string          `json:"wsUrl"`
	Config           InterviewConfig `json:"config"`
}
