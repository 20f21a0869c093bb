package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/services"
)

type InterviewHandler struct {
	interviewService services.InterviewService
}

func NewInterviewHandler(interviewService services.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService}
}

type createSessionRequest struct {
	JobID       string `json:"jobId"`
	CandidateID string `json:"candidateId"`
	Duration    int    `json:"duration,omitempty"`
}

// HandleCreateSession provisions an interview session and returns the join
// credentials for the media channel.
func (h *InterviewHandler) HandleCreateSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("malformed session request: %v", err)
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return apperr.Validation("invalid jobId: %s", req.JobID)
	}
	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		return apperr.Validation("invalid candidateId: %s", req.CandidateID)
	}

	response, err := h.interviewService.CreateSession(c.Context(), jobID, candidateID, req.Duration)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// HandleComplete ends a session server-side. Completing an already completed
// session returns the same result.
func (h *InterviewHandler) HandleComplete(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	result, err := h.interviewService.EndInterview(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// HandleGetSession returns the session including its transcript and, once
// completed, the final analysis.
func (h *InterviewHandler) HandleGetSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}
	session, err := h.interviewService.GetSession(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Params("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid session id: %s", raw)
	}
	return id, nil
}
