package controller

import (
	"pos-billing-be/internal/dto"
	"pos-billing-be/internal/pkg/serverutils"
	"pos-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IBillingController interface {
	RegisterRoutes(r fiber.Router)
	CheckAction(ctx *fiber.Ctx) error
	GetUsage(ctx *fiber.Ctx) error
	OrderCompleted(ctx *fiber.Ctx) error
}

type billingController struct {
	limitService service.ILimitService
	orderEvents  service.IOrderEventService
}

func NewBillingController(limitService service.ILimitService, orderEvents service.IOrderEventService) IBillingController {
	return &billingController{
		limitService: limitService,
		orderEvents:  orderEvents,
	}
}

func (c *billingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/billing", serverutils.JwtMiddleware)
	h.Get("/gate/:feature", c.CheckAction)
	h.Get("/usage", c.GetUsage)

	e := r.Group("/events", serverutils.JwtMiddleware)
	e.Post("/order-completed", c.OrderCompleted)
}

// CheckAction is the hot path: the POS core calls it before every gated
// action. The answer is always 200; allowed/denied lives in the body.
func (c *billingController) CheckAction(ctx *fiber.Ctx) error {
	storeId, err := storeIdFromCtx(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	increment := int64(ctx.QueryInt("increment", 1))
	res, err := c.limitService.CanPerformAction(ctx.Context(), storeId, ctx.Params("feature"), increment)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	if res.Warning {
		ctx.Set("X-Usage-Warning", "true")
	}
	return ctx.JSON(serverutils.SuccessResponse("Gate check", res))
}

func (c *billingController) GetUsage(ctx *fiber.Ctx) error {
	storeId, err := storeIdFromCtx(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	res, err := c.limitService.GetUsageStatus(ctx.Context(), storeId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Usage status", res))
}

func (c *billingController) OrderCompleted(ctx *fiber.Ctx) error {
	storeId, err := storeIdFromCtx(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}

	var req dto.OrderCompletedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	req.StoreId = storeId
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.orderEvents.PublishOrderCompleted(ctx.Context(), &req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse[any]("Order event accepted", nil))
}
