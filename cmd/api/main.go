package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/distribucion-api/internal/application/distribution"
	infrakafka "github.com/jhoicas/distribucion-api/internal/infrastructure/kafka"
	"github.com/jhoicas/distribucion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/distribucion-api/internal/interfaces/http"
	"github.com/jhoicas/distribucion-api/pkg/config"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("warehouse_tenant", cfg.Warehouse.TenantID).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	distRepo := postgres.NewDistributionRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Sink de auditoría opcional: solo si hay brokers configurados. La entrada
	// en audit_logs se escribe siempre.
	var auditSink distribution.AuditSink
	if cfg.Kafka.Enabled() {
		publisher, err := infrakafka.NewAuditPublisher(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, log.Component("kafka-audit"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Kafka")
		}
		defer func() { _ = publisher.Close() }()
		auditSink = publisher
	}

	auditEmitter := distribution.NewAuditEmitter(auditRepo, auditSink, log.Component("audit"))
	reconcileUC := distribution.NewReconcileUseCase(txRunner, distRepo, auditEmitter, cfg.Warehouse.TenantID, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Distribution: httpRouter.NewDistributionHandler(reconcileUC),
		JWTSecret:    cfg.JWT.Secret,
	})

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

	log.Info().Msg("aplicación detenida")
}
