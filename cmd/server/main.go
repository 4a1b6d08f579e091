package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/glossa-labs/glossa-backend/internal/chain"
	"github.com/glossa-labs/glossa-backend/internal/config"
	"github.com/glossa-labs/glossa-backend/internal/db"
	"github.com/glossa-labs/glossa-backend/internal/evidence"
	httpHandlers "github.com/glossa-labs/glossa-backend/internal/http/handlers"
	httpRouter "github.com/glossa-labs/glossa-backend/internal/http/router"
	"github.com/glossa-labs/glossa-backend/internal/logger"
	"github.com/glossa-labs/glossa-backend/internal/repository"
	"github.com/glossa-labs/glossa-backend/internal/service"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Кэш документов в Postgres опционален: без него метаданные
	// каждый раз забираются из evidence-шлюза.
	var dbConn *sqlx.DB
	var documentCache evidence.DocumentCache
	if cfg.DatabaseURL != "" {
		dbConn, err = db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("main: ошибка подключения к базе: %v", err)
		}
		defer safeClose(dbConn)

		if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
			log.Fatalf("main: ошибка миграций: %v", err)
		}
		documentCache = repository.NewDocumentRepository(dbConn)
	}

	gateway := chain.NewGateway(cfg.ChainGatewayURL)
	evidenceStore := evidence.NewStore(cfg.EvidenceAPIURL, cfg.EvidenceGatewayURL, documentCache)
	cache := service.NewCacheService()

	// Сервис на каждый деплоймент пары контрактов.
	services := make([]*service.TaskService, 0, len(cfg.Deployments))
	for _, dep := range cfg.Deployments {
		svc := service.NewTaskService(
			dep.Key,
			dep.Native,
			gateway.Contract(dep.TaskContract),
			gateway.Contract(dep.ArbitratorContract),
			evidenceStore,
			cache,
			cfg.DepositHorizon,
		)
		services = append(services, svc)
	}

	facade, err := service.NewFacade(services)
	if err != nil {
		log.Fatalf("main: ошибка сборки фасада: %v", err)
	}

	// HTTP хэндлеры.
	taskHandler := httpHandlers.NewTaskHandler(facade)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, taskHandler, healthHandler)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
