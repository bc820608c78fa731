package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travelconnec/backend/internal/http/dto"
	"github.com/travelconnec/backend/internal/models"
)

// PolicyHandler serves the static cancellation policy catalog so clients can
// render refund terms without hardcoding them.
type PolicyHandler struct{}

func NewPolicyHandler() *PolicyHandler {
	return &PolicyHandler{}
}

func (h *PolicyHandler) ListPolicies(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: models.CancellationPolicies})
}

func (h *PolicyHandler) GetPolicy(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, ok := models.CancellationPolicies[id]; !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "unknown cancellation policy"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: models.GetCancellationPolicy(id)})
}
