package bootstrap

import (
	"log"

	"pos-billing-be/internal/config"
	"pos-billing-be/internal/controller"
	"pos-billing-be/internal/pkg/logger"
	"pos-billing-be/internal/pkg/mailer"
	"pos-billing-be/internal/repository/unitofwork"
	"pos-billing-be/internal/service"
	"pos-billing-be/pkg/billing/invoice"
	"pos-billing-be/pkg/gateway/midtrans"
	pktNats "pos-billing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	BillingController      controller.IBillingController
	SubscriptionController controller.ISubscriptionController
	PaymentController      controller.IPaymentController
	ProvisioningController controller.IProvisioningController
	SweepController        controller.ISweepController

	// Background services (exposed for main.go to run)
	ConsumerService       service.IConsumerService
	SubscriptionService   service.ISubscriptionService
	UsageService          service.IUsageService
	InvoiceService        service.IInvoiceService
	ReconciliationService service.IReconciliationService
	ProvisioningService   service.IProvisioningService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.App.ClientURL,
	)

	// Event buses
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// Redis backs the invoice number sequence.
	redisOpts, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Fatalf("[FATAL] Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	sequencer := invoice.NewRedisSequencer(redisClient)

	// Payment gateway
	gateway := midtrans.NewClient(cfg.Midtrans.ServerKey, cfg.Midtrans.Production, cfg.Midtrans.Timeout)

	// Services
	planService := service.NewPlanService(uowFactory)
	invoiceService := service.NewInvoiceService(uowFactory, sequencer, natsPub, emailService, cfg.Billing.InvoiceDueDays, cfg.Billing.MaxRetryInvoices)
	subscriptionService := service.NewSubscriptionService(uowFactory, planService, invoiceService, natsPub, cfg.Billing.TrialDays)
	usageService := service.NewUsageService(uowFactory, natsPub)
	limitService := service.NewLimitService(uowFactory, planService, cfg.Billing.UsageWarnThreshold)
	paymentService := service.NewPaymentService(uowFactory, invoiceService, gateway, cfg.App.ClientURL+"/billing?payment=success")
	provisioningService := service.NewProvisioningService(uowFactory, planService, emailService, natsPub, cfg.Billing.TrialDays)
	reconciliationService := service.NewReconciliationService(
		uowFactory,
		invoiceService,
		gateway,
		sysLogger,
		cfg.Billing.FailedPaymentDays,
		cfg.Billing.CleanupRetainDays,
	)
	orderEventService := service.NewOrderEventService(pubSub)
	consumerService := service.NewConsumerService(pubSub, service.OrderCompletedTopic, usageService)

	return &Container{
		BillingController:      controller.NewBillingController(limitService, orderEventService),
		SubscriptionController: controller.NewSubscriptionController(planService, subscriptionService),
		PaymentController:      controller.NewPaymentController(paymentService, invoiceService),
		ProvisioningController: controller.NewProvisioningController(provisioningService),
		SweepController:        controller.NewSweepController(reconciliationService, invoiceService),

		ConsumerService:       consumerService,
		SubscriptionService:   subscriptionService,
		UsageService:          usageService,
		InvoiceService:        invoiceService,
		ReconciliationService: reconciliationService,
		ProvisioningService:   provisioningService,

		Logger: sysLogger,
	}
}
