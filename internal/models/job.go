package models

import (
	"time"

	"github.com/google/uuid"
)

type ExperienceLevel string

const (
	LevelEntry     ExperienceLevel = "Entry"
	LevelMid       ExperienceLevel = "Mid"
	LevelSenior    ExperienceLevel = "Senior"
	LevelExecutive ExperienceLevel = "Executive"
)

type Job struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title           string          `gorm:"type:text;not null" json:"title"`
	Company         string          `gorm:"type:text" json:"company"`
	Description     string          `gorm:"type:text" json:"description"`
	Requirements    string          `gorm:"type:text" json:"requirements"`
	RequiredSkills  []string        `gorm:"type:jsonb;serializer:json" json:"required_skills"`
	PreferredSkills []string        `gorm:"type:jsonb;serializer:json" json:"preferred_skills"`
	ExperienceLevel ExperienceLevel `gorm:"type:text;default:'Mid'" json:"experience_level"`
	Location        string          `gorm:"type:text" json:"location"`
	CreatedAt       time.Time       `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (Job) TableName() string {
	return "jobs"
}

type Candidate struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FullName        string          `gorm:"type:text" json:"full_name"`
	Email           string          `gorm:"type:text" json:"email"`
	Location        string          `gorm:"type:text" json:"location"`
	ExperienceLevel ExperienceLevel `gorm:"type:text" json:"experience_level"`

	// Interview-derived signal, refreshed when a session finalizes.
	OverallScore       int                `json:"overall_score"`
	CommunicationScore int                `json:"communication_score"`
	TechnicalSkills    []SkillProficiency `gorm:"type:jsonb;serializer:json" json:"technical_skills"`
	Recommendation     string             `gorm:"type:text" json:"recommendation"`
	LastInterviewAt    *time.Time         `json:"last_interview_at,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}
