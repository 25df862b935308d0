// File: asap/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asap/config"
	"asap/cron"
	"asap/handlers"
	"asap/middleware"
	"asap/platform"
	"asap/routes"
	"asap/services/booking"
	"asap/services/payment"
	"asap/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitCheckoutCache()
	utils.InitLedgerCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Remote platform API client.
	platformClient := platform.NewHTTPClient(
		config.AppConfig.PlatformBaseURL,
		config.AppConfig.PlatformAPIKey,
		config.AppConfig.PlatformTimeout,
	)

	// Hosted payment gateway: one process-wide handle, fresh checkout per saga.
	gatewayHandle := payment.NewHandle(payment.HandleConfig{
		KeyID:       config.AppConfig.GatewayKeyID,
		KeySecret:   config.AppConfig.GatewayKeySecret,
		CheckoutURL: config.AppConfig.GatewayCheckoutURL,
	})
	gateway := &payment.HostedGateway{Handle: gatewayHandle, Logger: logger}
	checkoutRegistry := payment.NewRegistry()

	// Reconciliation-gap queue.
	cron.InitReconcileWorker()
	gapEnqueuer := cron.NewEnqueuer()

	checkoutService := &booking.DefaultCheckoutService{
		Platform:  platformClient,
		Gateway:   gateway,
		Checkouts: checkoutRegistry,
		Ledger: &booking.RedisProofLedger{
			Client: utils.GetLedgerCacheClient(),
			TTL:    24 * time.Hour,
		},
		Results: &booking.RedisResultStore{
			Client: utils.GetCheckoutCacheClient(),
			TTL:    30 * time.Minute,
		},
		Gaps:           gapEnqueuer,
		Logger:         logger,
		PaymentTimeout: config.AppConfig.PaymentTimeout,
		Currency:       config.AppConfig.Currency,
	}

	lifecycleManager := booking.NewLifecycleManager(
		platformClient,
		&booking.RedisListCache{Client: utils.GetCheckoutCacheClient()},
		5*time.Minute,
		logger,
	)

	// Detached checkout sagas outlive their requests; sagaCtx ties them to the
	// process so shutdown can drain them.
	sagaCtx, stopSagas := context.WithCancel(context.Background())
	defer stopSagas()

	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, checkoutRegistry, checkoutService.Results, logger)
	checkoutHandler.Base = sagaCtx

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Checkout: checkoutHandler,
		Operator: handlers.NewOperatorHandler(lifecycleManager, logger),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	// Resolve checkouts still awaiting their gateway callback, then wait for
	// every detached saga to store its terminal state.
	stopSagas()
	handlerBundle.Checkout.Drain()

	logger.Sugar().Info("main: server stopped gracefully")
}
