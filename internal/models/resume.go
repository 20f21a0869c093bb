package models

import (
	"time"

	"github.com/google/uuid"
)

// ParsedProfile is the fixed structuring schema requested from the language
// model. Absent fields stay null instead of being omitted so callers can
// distinguish "not found" from "empty".
type ParsedProfile struct {
	Name       *string  `json:"name"`
	Email      *string  `json:"email"`
	Phone      *string  `json:"phone"`
	Skills     []string `json:"skills"`
	Experience *string  `json:"experience"`
	Education  *string  `json:"education"`
	JobTitle   *string  `json:"jobTitle"`
	Location   *string  `json:"location"`
	Summary    *string  `json:"summary"`
}

type ResumeDocument struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CandidateID   uuid.UUID      `gorm:"type:uuid;index" json:"candidate_id"`
	Filename      string         `gorm:"type:text" json:"filename"`
	FileType      string         `gorm:"type:text" json:"file_type"`
	FileSize      int64          `json:"file_size"`
	ExtractedText string         `gorm:"type:text" json:"-"`
	Profile       *ParsedProfile `gorm:"type:jsonb;serializer:json" json:"profile,omitempty"`
	ATSScore      int            `json:"ats_score"`
	CreatedAt     time.Time      `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (ResumeDocument) TableName() string {
	return "resume_documents"
}

type ParseResumeResponse struct {
	ParsedData *ParsedProfile `json:"parsedData"`
	ATSScore   int            `json:"atsScore"`
	Filename   string         `json:"filename"`
	FileSize   int64          `json:"fileSize"`
	FileType   string         `json:"fileType"`
}
