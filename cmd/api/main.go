package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ibuc/dracmas-service/internal/auth"
	"github.com/ibuc/dracmas-service/internal/cache"
	"github.com/ibuc/dracmas-service/internal/config"
	"github.com/ibuc/dracmas-service/internal/handlers"
	"github.com/ibuc/dracmas-service/internal/repository"
	"github.com/ibuc/dracmas-service/internal/services"
	xhttp "github.com/ibuc/dracmas-service/pkg/http"
	"github.com/ibuc/dracmas-service/pkg/logger"
	"github.com/ibuc/dracmas-service/pkg/pg"
	"github.com/ibuc/dracmas-service/pkg/prom"
	"github.com/ibuc/dracmas-service/pkg/redis"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Use(auth.CapabilityMiddleware(config.Get().AuthRoleHeader))
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	if dir := config.Get().MigrationsDir; dir != "" {
		if err := pg.Migrate(writeConf, dir); err != nil {
			logger.Error("failed running migrations", "error", err)
			return
		}
	}

	if err := prom.Create(hostname(), config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Warn("failed registering metrics", "error", err)
	}
	if addr := config.Get().AppDebugMetricsAddr; addr != "" {
		go prom.ListenAndServer(addr, config.Get().AppDebugMetricsURI)
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	criteriaCache := cache.NewCriteriaCache(redisAdap, config.Get().CriteriaCacheTTL)
	classLock := cache.NewClassLock(redisAdap, config.Get().RedeemLockTTL)

	transactionRepo := repository.NewTransactionRepository(db)
	redemptionRepo := repository.NewRedemptionRepository(db)
	criterionRepo := repository.NewCriterionRepository(db)

	// services
	ledgerService := services.NewLedgerService(transactionRepo, criterionRepo)
	redemptionService := services.NewRedemptionService(transactionRepo, redemptionRepo, classLock)
	criterionService := services.NewCriterionService(criterionRepo, criteriaCache)
	healthService := services.NewHealthService(db)

	// v1 handlers
	dracmasHandler := handlers.NewDracmasHandler(ledgerService, redemptionService)
	criteriaHandler := handlers.NewCriteriaHandler(criterionService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterDracmasRoutes(g, dracmasHandler)
	handlers.RegisterCriteriaRoutes(g, criteriaHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
