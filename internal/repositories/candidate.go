package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/models"
)

type CandidateRepository interface {
	Create(candidate *models.Candidate) error
	Update(candidate *models.Candidate) error
	FindByID(id uuid.UUID) (*models.Candidate, error)
	FindByIDs(ids []uuid.UUID) ([]models.Candidate, error)
	// FindByMinimumScore lists candidates whose interview overall score is at
	// least min, highest first. Used by the fallback and basic search paths.
	FindByMinimumScore(min, limit int) ([]models.Candidate, error)
	// UpdateInterviewSignal refreshes the interview-derived fields after a
	// session finalizes.
	UpdateInterviewSignal(id uuid.UUID, analysis *models.CandidateAnalysis) error
}

type candidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &candidateRepository{db: db}
}

// Create implements CandidateRepository.
func (r *candidateRepository) Create(candidate *models.Candidate) error {
	if err := r.db.Create(candidate).Error; err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

// Update implements CandidateRepository.
func (r *candidateRepository) Update(candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now()
	if err := r.db.Save(candidate).Error; err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	return nil
}

// FindByID implements CandidateRepository.
func (r *candidateRepository) FindByID(id uuid.UUID) (*models.Candidate, error) {
	var candidate models.Candidate
	if err := r.db.Where("id = ?", id).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("candidate %s not found", id)
		}
		return nil, fmt.Errorf("failed to find candidate: %w", err)
	}
	return &candidate, nil
}

// FindByIDs implements CandidateRepository.
func (r *candidateRepository) FindByIDs(ids []uuid.UUID) ([]models.Candidate, error) {
	var candidates []models.Candidate
	if err := r.db.Where("id IN ?", ids).Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}
	return candidates, nil
}

// FindByMinimumScore implements CandidateRepository.
func (r *candidateRepository) FindByMinimumScore(min, limit int) ([]models.Candidate, error) {
	var candidates []models.Candidate
	err := r.db.
		Where("overall_score >= ?", min).
		Order("overall_score DESC").
		Limit(limit).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates by score: %w", err)
	}
	return candidates, nil
}

// UpdateInterviewSignal implements CandidateRepository.
func (r *candidateRepository) UpdateInterviewSignal(id uuid.UUID, analysis *models.CandidateAnalysis) error {
	now := time.Now()
	updates := models.Candidate{
		OverallScore:       analysis.OverallScore,
		CommunicationScore: analysis.CommunicationScore,
		TechnicalSkills:    analysis.TechnicalSkills,
		Recommendation:     string(analysis.Recommendation),
		LastInterviewAt:    &now,
		UpdatedAt:          now,
	}
	result := r.db.Model(&models.Candidate{}).
		Where("id = ?", id).
		Select("overall_score", "communication_score", "technical_skills",
			"recommendation", "last_interview_at", "updated_at").
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update interview signal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("candidate %s not found", id)
	}
	return nil
}
