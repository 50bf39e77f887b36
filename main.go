package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"trxflow/config"
	"trxflow/database"
	"trxflow/logger"
	"trxflow/routers"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	appLog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync() //nolint:errcheck

	db := database.ConnectDb(cfg)

	app := routers.NewApp(cfg, db, appLog, routers.Options{
		AccessLog: true,
		HashCost:  cfg.SaltRound,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		appLog.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			appLog.Error("shutdown failed", zap.Error(err))
		}
	}()

	appLog.Info("server is running", zap.String("port", cfg.Port), zap.String("db_driver", cfg.DBDriver))
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Fatal("server stopped", zap.Error(err))
	}
}
