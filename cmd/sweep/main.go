package main

import (
	"context"
	"flag"
	"log"
	"time"

	"pos-billing-be/internal/bootstrap"
	"pos-billing-be/internal/config"
	"pos-billing-be/pkg/database"
)

// The sweep binary runs the periodic billing jobs: gateway reconciliation,
// retry invoices for failed payments, renewal invoice generation, lazy
// expiry, annual usage rollover and old payment cleanup. Run with -once for
// a single pass from cron, or without flags as a long-running loop.
func main() {
	once := flag.Bool("once", false, "run a single sweep pass and exit")
	flag.Parse()

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	if *once {
		runPass(context.Background(), container)
		return
	}

	log.Printf("Sweep loop started, interval %s", cfg.Billing.ReconcileInterval)
	ticker := time.NewTicker(cfg.Billing.ReconcileInterval)
	defer ticker.Stop()

	runPass(context.Background(), container)
	for range ticker.C {
		runPass(context.Background(), container)
	}
}

func runPass(ctx context.Context, c *bootstrap.Container) {
	if flipped, err := c.SubscriptionService.SweepExpiredSubscriptions(ctx); err != nil {
		log.Printf("[ERROR] Expiry sweep: %v", err)
	} else if flipped > 0 {
		log.Printf("Expiry sweep: %d subscriptions flipped to expired", flipped)
	}

	if created, err := c.InvoiceService.GenerateRenewalInvoices(ctx, 7*24*time.Hour); err != nil {
		log.Printf("[ERROR] Renewal invoice sweep: %v", err)
	} else if created > 0 {
		log.Printf("Renewal invoice sweep: %d invoices created", created)
	}

	if res, err := c.ReconciliationService.ReconcileAllPendingPayments(ctx); err != nil {
		log.Printf("[ERROR] Reconciliation: %v", err)
	} else {
		log.Printf("Reconciliation: %d processed, %d updated, %d errors", res.Processed, res.Updated, len(res.Errors))
	}

	if res, err := c.ReconciliationService.ProcessFailedPayments(ctx); err != nil {
		log.Printf("[ERROR] Failed payment sweep: %v", err)
	} else {
		log.Printf("Failed payment sweep: %d processed, %d retries created", res.Processed, res.RetriesCreated)
	}

	if _, err := c.UsageService.RolloverAnnualUsage(ctx); err != nil {
		log.Printf("[ERROR] Usage rollover: %v", err)
	}

	if removed, err := c.ReconciliationService.CleanupOldPayments(ctx, 0); err != nil {
		log.Printf("[ERROR] Payment cleanup: %v", err)
	} else if removed > 0 {
		log.Printf("Payment cleanup: %d rows removed", removed)
	}
}
