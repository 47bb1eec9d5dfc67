package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jhoicas/tours-api/docs"
	"github.com/jhoicas/tours-api/internal/application/resources"
	"github.com/jhoicas/tours-api/internal/application/usecase"
	"github.com/jhoicas/tours-api/internal/infrastructure/memory"
	"github.com/jhoicas/tours-api/internal/infrastructure/mongodb"
	httpRouter "github.com/jhoicas/tours-api/internal/interfaces/http"
	"github.com/jhoicas/tours-api/pkg/config"
	"github.com/jhoicas/tours-api/pkg/logger"
)

// @title        Tours API
// @version      1.0
// @description  API REST de tours, usuarios y reseñas sobre MongoDB.
// @BasePath     /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	client, err := mongodb.NewClient(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a MongoDB")
	}
	db := client.Database(cfg.Mongo.Database)
	log.Info().Str("database", cfg.Mongo.Database).Msg("conexión a MongoDB establecida")

	reg, err := resources.New()
	if err != nil {
		log.Fatal().Err(err).Msg("esquemas de recursos")
	}
	if err := mongodb.EnsureIndexes(ctx, db, reg.All()...); err != nil {
		log.Fatal().Err(err).Msg("creación de índices")
	}

	tourStore := mongodb.NewStore(db, reg.Tours)
	userStore := mongodb.NewStore(db, reg.Users)
	reviewStore := mongodb.NewStore(db, reg.Reviews)
	ratings := usecase.NewRatingsCalculator(mongodb.NewReviewRepository(db, reg.Reviews), tourStore)

	limiterStorage := memory.NewStorage()
	app := httpRouter.NewApp(cfg, log, httpRouter.RouterDeps{
		Tours:       usecase.NewResourceUseCase(tourStore, usecase.ResourceHooks{}),
		Users:       usecase.NewResourceUseCase(userStore, usecase.ResourceHooks{}),
		Reviews:     usecase.NewResourceUseCase(reviewStore, ratings.Hooks()),
		TourOps:     usecase.NewTourUseCase(mongodb.NewTourRepository(db, reg.Tours), reg.Tours),
		TourReviews: reg.TourReviews,
	}, httpRouter.AppOptions{LimiterStorage: limiterStorage})

	// limpieza periódica de contadores vencidos del rate limiter
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n := limiterStorage.Sweep(); n > 0 {
					log.Debug().Int("removed", n).Msg("rate limiter: entradas vencidas eliminadas")
				}
			}
		}
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desconexión de MongoDB")
	}

	log.Info().Msg("aplicación detenida")
}
