package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/investpro/ledger/internal/api/handler"
	"github.com/investpro/ledger/internal/api/middleware"
	"github.com/investpro/ledger/internal/auth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	tokens *auth.Service,
	walletHandler *handler.WalletHandler,
	transactionHandler *handler.TransactionHandler,
	moderationHandler *handler.ModerationHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Authenticate(tokens))
	{
		// Wallet operations act on the caller's own wallet
		wallet := v1.Group("/wallet")
		{
			wallet.POST("", walletHandler.Create)
			wallet.GET("", walletHandler.Get)
			wallet.GET("/summary", walletHandler.Summary)
			wallet.GET("/dashboard", walletHandler.Dashboard)
			wallet.GET("/holdings", walletHandler.Holdings)
			wallet.GET("/transactions", transactionHandler.History)
		}

		// Money movements
		v1.POST("/deposits", transactionHandler.Deposit)
		v1.POST("/withdrawals", transactionHandler.Withdraw)
		v1.POST("/investments", transactionHandler.Invest)
		v1.GET("/transactions/:id", transactionHandler.GetByID)

		// Moderation surface
		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/deposits/pending", moderationHandler.PendingDeposits)
			admin.GET("/withdrawals/pending", moderationHandler.PendingWithdrawals)
			admin.POST("/deposits/:id/decision", moderationHandler.DecideDeposit)
			admin.POST("/withdrawals/:id/decision", moderationHandler.DecideWithdrawal)
			admin.GET("/overview", moderationHandler.Overview)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
