package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/models"
)

type ResumeRepository interface {
	Create(doc *models.ResumeDocument) error
	FindByID(id uuid.UUID) (*models.ResumeDocument, error)
	FindLatestByCandidate(candidateID uuid.UUID) (*models.ResumeDocument, error)
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Create implements ResumeRepository.
func (r *resumeRepository) Create(doc *models.ResumeDocument) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create resume document: %w", err)
	}
	return nil
}

// FindByID implements ResumeRepository.
func (r *resumeRepository) FindByID(id uuid.UUID) (*models.ResumeDocument, error) {
	var doc models.ResumeDocument
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("resume %s not found", id)
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &doc, nil
}

// FindLatestByCandidate implements ResumeRepository.
func (r *resumeRepository) FindLatestByCandidate(candidateID uuid.UUID) (*models.ResumeDocument, error) {
	var doc models.ResumeDocument
	err := r.db.
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no resume for candidate %s", candidateID)
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}
	return &doc, nil
}
