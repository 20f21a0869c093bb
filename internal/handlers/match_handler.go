package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/models"
	"hirehub/backend/internal/services"
)

type MatchHandler struct {
	matcherService services.MatcherService
}

func NewMatchHandler(matcherService services.MatcherService) *MatchHandler {
	return &MatchHandler{matcherService: matcherService}
}

// HandleSearch runs the full matching pipeline for a JSON match query.
func (h *MatchHandler) HandleSearch(c *fiber.Ctx) error {
	var query models.MatchQuery
	if err := c.BodyParser(&query); err != nil {
		return apperr.Validation("malformed search request: %v", err)
	}

	response, err := h.matcherService.SearchCandidates(c.Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// HandleBasicSearch lists interviewed candidates by score without the
// vector pipeline. Used by dashboards that only need a ranked list.
func (h *MatchHandler) HandleBasicSearch(c *fiber.Ctx) error {
	minScore, err := queryInt(c, "min_score", 0)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}

	response, err := h.matcherService.BasicSearch(c.Context(), minScore, limit)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("invalid %s: %s", name, raw)
	}
	return v, nil
}
