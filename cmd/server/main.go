package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/krakosik/reputation/internal/client"
	"github.com/krakosik/reputation/internal/controller"
	"github.com/krakosik/reputation/internal/dto"
	"github.com/krakosik/reputation/internal/repository"
	"github.com/krakosik/reputation/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	config, err := dto.LoadConfig()
	if err != nil {
		logrus.Panic(err)
	}
	setupLogging(config)

	db, err := gorm.Open(postgres.Open(config.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Panic(err)
	}

	repositories := repository.NewRepositories(db)
	clients := client.NewClients(config)
	services := service.NewServices(repositories, config, clients)
	controllers := controller.NewControllers(services)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Recover())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","method":"${method}","uri":"${uri}","status":${status},"latency":"${latency_human}"}` + "\n",
	}))
	controllers.Route(e)

	go func() {
		logrus.Infof("Listening on :%s", config.Port)
		if err := e.Start(":" + config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logrus.Errorf("Error shutting down HTTP server: %v", err)
	}
	if err := services.Close(); err != nil {
		logrus.Errorf("Error closing services: %v", err)
	}
	clients.Close()
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.Errorf("Error closing database: %v", err)
		}
	}
}

func setupLogging(config dto.Config) {
	if config.Env != "local" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown LOG_LEVEL %q, using info", config.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
