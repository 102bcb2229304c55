package controller

import (
	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/pkg/serverutils"
	"pos-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProvisioningController interface {
	RegisterRoutes(r fiber.Router)
	CreateLead(ctx *fiber.Ctx) error
	ProvisionLead(ctx *fiber.Ctx) error
	ProvisionAll(ctx *fiber.Ctx) error
}

type provisioningController struct {
	service service.IProvisioningService
}

func NewProvisioningController(service service.IProvisioningService) IProvisioningController {
	return &provisioningController{service: service}
}

func (c *provisioningController) RegisterRoutes(r fiber.Router) {
	// Lead intake comes from the public marketing site.
	r.Post("/leads", c.CreateLead)

	h := r.Group("/leads", serverutils.JwtMiddleware)
	h.Post("/:id/provision", c.ProvisionLead)
	h.Post("/provision-all", c.ProvisionAll)
}

func (c *provisioningController) CreateLead(ctx *fiber.Ctx) error {
	var req dto.CreateLeadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	lead, err := c.service.CreateLead(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Signup received", fiber.Map{
		"lead_id": lead.Id,
	}))
}

func (c *provisioningController) ProvisionLead(ctx *fiber.Ctx) error {
	leadId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid lead id"))
	}

	res, err := c.service.ProvisionLead(ctx.Context(), leadId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Provisioning result", res))
}

func (c *provisioningController) ProvisionAll(ctx *fiber.Ctx) error {
	results, err := c.service.ProvisionAllNewLeads(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Provisioning results", results))
}
