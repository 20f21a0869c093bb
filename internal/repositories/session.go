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

// SessionRepository persists interview sessions. Sessions are never deleted;
// terminal states are retained for audit.
type SessionRepository interface {
	Create(session *models.InterviewSession) error
	FindByID(id uuid.UUID) (*models.InterviewSession, error)
	FindByRoom(roomName string) (*models.InterviewSession, error)
	Save(session *models.InterviewSession) error
	// FindPendingSignals lists completed sessions whose candidate signal has
	// not been published yet.
	FindPendingSignals(limit int) ([]models.InterviewSession, error)
	MarkSignalPublished(id uuid.UUID) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

// Create implements SessionRepository.
func (r *sessionRepository) Create(session *models.InterviewSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID implements SessionRepository.
func (r *sessionRepository) FindByID(id uuid.UUID) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("session %s not found", id)
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

// FindByRoom implements SessionRepository.
func (r *sessionRepository) FindByRoom(roomName string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.db.Where("room_name = ?", roomName).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("session for room %s not found", roomName)
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &session, nil
}

// Save implements SessionRepository.
func (r *sessionRepository) Save(session *models.InterviewSession) error {
	session.UpdatedAt = time.Now()
	if err := r.db.Save(session).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// FindPendingSignals implements SessionRepository.
func (r *sessionRepository) FindPendingSignals(limit int) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.db.
		Where("status = ? AND analysis IS NOT NULL AND signal_at IS NULL", models.SessionCompleted).
		Order("updated_at ASC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending signals: %w", err)
	}
	return sessions, nil
}

// MarkSignalPublished implements SessionRepository.
func (r *sessionRepository) MarkSignalPublished(id uuid.UUID) error {
	now := time.Now()
	err := r.db.Model(&models.InterviewSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"signal_at": now, "updated_at": now}).Error
	if err != nil {
		return fmt.Errorf("failed to mark signal published: %w", err)
	}
	return nil
}
