package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jumlamart.com/app/internal/config"
	"jumlamart.com/app/internal/http/handlers"
	"jumlamart.com/app/internal/http/middleware"
	"jumlamart.com/app/internal/mailer"
	emailmod "jumlamart.com/app/internal/modules/email"
	"jumlamart.com/app/internal/modules/orders"
	"jumlamart.com/app/internal/modules/payments"
)

func NewRouter(logger *slog.Logger, db *gorm.DB, cfg config.Config) *gin.Engine {
	repo := orders.NewRepo(db)
	gateway := payments.NewClient(cfg.Paystack)

	receipts := emailmod.NewReceipts(
		mailer.NewSMTPMailer(cfg.SMTP),
		cfg.SMTP.FromAddr,
		cfg.SMTP.FromName,
		cfg.BaseURL,
	)

	paySvc := payments.NewService(db, repo, gateway, receipts)
	paySvc.SetLogger(logger)
	webhookSvc := payments.NewWebhookService(db, paySvc)
	webhookSvc.SetLogger(logger)

	verifyH := handlers.NewVerifyPaymentHandler(logger, paySvc)
	successH := handlers.NewPaymentSuccessHandler(logger, paySvc)
	checkoutH := handlers.NewCheckoutHandler(logger, paySvc, cfg.BaseURL)
	webhookH := handlers.NewWebhookHandler(logger, gateway, webhookSvc)
	ordersH := handlers.NewOrdersHandler(logger, repo)
	adminH := handlers.NewAdminOverviewHandler(logger, repo)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.ErrorHandler(logger),
	)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.GET("/api/verify-payment", verifyH.Get)
	r.GET("/api/orders/:id", ordersH.Detail)
	r.GET("/api/admin/overview", adminH.Get)

	r.POST("/checkout/:id/pay", checkoutH.Pay)
	r.GET("/checkout/:id/payment-success", successH.Get)

	r.POST("/webhooks/paystack", webhookH.Handle)

	return r
}
