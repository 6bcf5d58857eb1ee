package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"freightflow/auth"
	"freightflow/config"
	"freightflow/db"
	"freightflow/delivery"
	"freightflow/httpapi"
	"freightflow/labour"
	"freightflow/logging"
	"freightflow/masterdata"
	"freightflow/returns"
	"freightflow/shipment"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("bootstrap config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("bootstrap logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalw("bootstrap database pool", "error", err)
	}
	defer pool.Close()

	authService := auth.NewService(auth.NewRepository(pool), cfg.JWTSecret)
	masterdataService := masterdata.NewService(masterdata.NewRepository(pool))
	shipmentRepo := shipment.NewRepository(pool)
	shipmentService := shipment.NewService(shipmentRepo)
	deliveryService := delivery.NewService(delivery.NewRepository(pool))
	returnsService := returns.NewService(returns.NewRepository(pool))

	assignments := labour.NewCRUDService(pool)
	engine := labour.NewEngine(pool, nil, shipmentRepo, nil, nil)

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Logger:      logger,
		Verifier:    authService,
		Auth:        httpapi.NewAuthHandler(authService),
		Assignments: httpapi.NewAssignmentHandler(engine, assignments),
		Shipments:   httpapi.NewShipmentHandler(shipmentService),
		Masterdata:  httpapi.NewMasterdataHandler(masterdataService),
		Deliveries:  httpapi.NewDeliveryHandler(deliveryService, returnsService),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infow("http server listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("http server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("shutdown", "error", err)
	}
}
