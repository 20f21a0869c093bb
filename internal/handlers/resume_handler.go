package handlers

import (
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/models"
	"hirehub/backend/internal/repositories"
	"hirehub/backend/internal/services"
)

type ResumeHandler struct {
	resumeService  services.ResumeService
	storageService services.StorageService
	candidateRepo  repositories.CandidateRepository
	maxFileSize    int64
}

func NewResumeHandler(
	resumeService services.ResumeService,
	storageService services.StorageService,
	candidateRepo repositories.CandidateRepository,
	maxFileSize int64,
) *ResumeHandler {
	return &ResumeHandler{
		resumeService:  resumeService,
		storageService: storageService,
		candidateRepo:  candidateRepo,
		maxFileSize:    maxFileSize,
	}
}

// HandleParse accepts a multipart "resume" file, runs extraction and
// structuring, and returns the parsed profile with its ATS score. When no
// candidate_id is supplied a candidate record is created from the profile.
func (h *ResumeHandler) HandleParse(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return apperr.Validation("resume file is required")
	}

	if fileHeader.Size > h.maxFileSize {
		return apperr.Validation("resume file too large, max size: %d bytes", h.maxFileSize)
	}

	data, err := readMultipartFile(fileHeader)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read resume file")
	}

	candidateID, err := h.resolveCandidate(c.FormValue("candidate_id"))
	if err != nil {
		return err
	}

	mimeType := resolveMimeType(fileHeader)
	doc, err := h.resumeService.ParseResume(c.Context(), data, mimeType, fileHeader.Filename, candidateID)
	if err != nil {
		return err
	}

	h.backfillCandidate(candidateID, doc.Profile)

	// Archive the original upload; the parse result does not depend on it.
	if _, _, err := h.storageService.SaveResume(data, fileHeader.Filename); err != nil {
		log.Printf("⚠️ Failed to archive resume %s: %v", fileHeader.Filename, err)
	}

	return c.Status(fiber.StatusOK).JSON(models.ParseResumeResponse{
		ParsedData: doc.Profile,
		ATSScore:   doc.ATSScore,
		Filename:   doc.Filename,
		FileSize:   doc.FileSize,
		FileType:   doc.FileType,
	})
}

func (h *ResumeHandler) resolveCandidate(raw string) (uuid.UUID, error) {
	if raw == "" {
		candidate := models.Candidate{ID: uuid.New()}
		if err := h.candidateRepo.Create(&candidate); err != nil {
			return uuid.Nil, err
		}
		return candidate.ID, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid candidate_id: %s", raw)
	}
	if _, err := h.candidateRepo.FindByID(id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// backfillCandidate copies contact fields from a freshly parsed profile onto
// the candidate record. Best effort; parse responses do not depend on it.
func (h *ResumeHandler) backfillCandidate(candidateID uuid.UUID, profile *models.ParsedProfile) {
	if profile == nil {
		return
	}
	candidate, err := h.candidateRepo.FindByID(candidateID)
	if err != nil {
		return
	}
	changed := false
	if candidate.FullName == "" && profile.Name != nil {
		candidate.FullName = *profile.Name
		changed = true
	}
	if candidate.Email == "" && profile.Email != nil {
		candidate.Email = *profile.Email
		changed = true
	}
	if candidate.Location == "" && profile.Location != nil {
		candidate.Location = *profile.Location
		changed = true
	}
	if changed {
		h.candidateRepo.Update(candidate)
	}
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// resolveMimeType prefers the declared content type and falls back to the
// file extension, since browsers are inconsistent about docx types.
func resolveMimeType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".pdf":
		return services.MimePDF
	case ".docx":
		return services.MimeDocx
	case ".doc":
		return services.MimeDoc
	case ".txt":
		return services.MimePlain
	default:
		return fh.Header.Get("Content-Type")
	}
}
