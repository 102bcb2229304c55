package controller

import (
	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/pkg/serverutils"
	"pos-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISubscriptionController interface {
	RegisterRoutes(r fiber.Router)
	GetPlans(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Upgrade(ctx *fiber.Ctx) error
	Downgrade(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	GetStatus(ctx *fiber.Ctx) error
}

type subscriptionController struct {
	planService         service.IPlanService
	subscriptionService service.ISubscriptionService
}

func NewSubscriptionController(planService service.IPlanService, subscriptionService service.ISubscriptionService) ISubscriptionController {
	return &subscriptionController{
		planService:         planService,
		subscriptionService: subscriptionService,
	}
}

func (c *subscriptionController) RegisterRoutes(r fiber.Router) {
	r.Get("/plans", c.GetPlans)

	h := r.Group("/subscriptions", serverutils.JwtMiddleware)
	h.Post("/", c.Create)
	h.Post("/upgrade", c.Upgrade)
	h.Post("/downgrade", c.Downgrade)
	h.Post("/cancel", c.Cancel)
	h.Get("/status", c.GetStatus)
}

func (c *subscriptionController) GetPlans(ctx *fiber.Ctx) error {
	res, err := c.planService.GetPlans(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Available plans", res))
}

func (c *subscriptionController) Create(ctx *fiber.Ctx) error {
	storeId, err := storeIdFromCtx(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var req dto.CreateSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.subscriptionService.CreateSubscription(ctx.Context(), storeId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Subscription created", res))
}

func (c *subscriptionController) Upgrade(ctx *fiber.Ctx) error {
	storeId, err := storeIdFromCtx(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var req dto.ChangePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.subscriptionService.UpgradeSubscription(ctx.Context(), storeId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan upgraded", res))
}

func (c *subscriptionController) Downgrade(ctx *fiber.Ctx) error {
	storeId, err := storeIdFromCtx(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var req dto.ChangePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.subscriptionService.DowngradeSubscription(ctx.Context(), storeId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Downgrade scheduled for period end", res))
}

func (c *subscriptionController) Cancel(ctx *fiber.Ctx) error {
	storeId, err := storeIdFromCtx(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var req dto.CancelSubscriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := c.subscriptionService.CancelSubscription(ctx.Context(), storeId, &req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Subscription cancelled", nil))
}

func (c *subscriptionController) GetStatus(ctx *fiber.Ctx) error {
	storeId, err := storeIdFromCtx(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	res, err := c.subscriptionService.GetSubscriptionStatus(ctx.Context(), storeId)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription status", res))
}
