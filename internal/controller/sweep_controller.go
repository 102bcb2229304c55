package controller

import (
	"time"

	"pos-billing-be/internal/pkg/serverutils"
	"pos-billing-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ISweepController exposes the reconciliation jobs over HTTP so operators
// can run them on demand between scheduled sweeps.
type ISweepController interface {
	RegisterRoutes(r fiber.Router)
	Reconcile(ctx *fiber.Ctx) error
	RetryFailedPayments(ctx *fiber.Ctx) error
	Cleanup(ctx *fiber.Ctx) error
	RenewalInvoices(ctx *fiber.Ctx) error
	Summary(ctx *fiber.Ctx) error
}

type sweepController struct {
	reconciliationService service.IReconciliationService
	invoiceService        service.IInvoiceService
}

func NewSweepController(reconciliationService service.IReconciliationService, invoiceService service.IInvoiceService) ISweepController {
	return &sweepController{
		reconciliationService: reconciliationService,
		invoiceService:        invoiceService,
	}
}

func (c *sweepController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/billing", serverutils.JwtMiddleware)
	h.Post("/reconcile", c.Reconcile)
	h.Post("/retry-failed", c.RetryFailedPayments)
	h.Post("/cleanup", c.Cleanup)
	h.Post("/renewal-invoices", c.RenewalInvoices)
	h.Get("/summary", c.Summary)
}

func (c *sweepController) Reconcile(ctx *fiber.Ctx) error {
	res, err := c.reconciliationService.ReconcileAllPendingPayments(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Reconciliation finished", res))
}

func (c *sweepController) RetryFailedPayments(ctx *fiber.Ctx) error {
	res, err := c.reconciliationService.ProcessFailedPayments(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Retry sweep finished", res))
}

func (c *sweepController) Cleanup(ctx *fiber.Ctx) error {
	days := ctx.QueryInt("days", 0)
	removed, err := c.reconciliationService.CleanupOldPayments(ctx.Context(), days)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Cleanup finished", fiber.Map{"removed": removed}))
}

func (c *sweepController) RenewalInvoices(ctx *fiber.Ctx) error {
	created, err := c.invoiceService.GenerateRenewalInvoices(ctx.Context(), 7*24*time.Hour)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Renewal invoices generated", fiber.Map{"created": created}))
}

func (c *sweepController) Summary(ctx *fiber.Ctx) error {
	res, err := c.reconciliationService.GetReconciliationSummary(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Reconciliation summary", res))
}
