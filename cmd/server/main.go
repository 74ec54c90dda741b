package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/paulforce18/auth-service/internal/config"
	"github.com/paulforce18/auth-service/internal/event"
	"github.com/paulforce18/auth-service/internal/httpserver"
	"github.com/paulforce18/auth-service/internal/logging"
	"github.com/paulforce18/auth-service/internal/mail"
	"github.com/paulforce18/auth-service/internal/middleware"
	"github.com/paulforce18/auth-service/internal/repo"
	"github.com/paulforce18/auth-service/internal/service"
	"github.com/paulforce18/auth-service/internal/token"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(middleware.RequestLogger(logger))

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.InitDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFrom)
	if err != nil {
		log.Fatalf("mailer init error: %v", err)
	}

	producer := event.NewProducer(cfg.KafkaBrokers)
	defer producer.Close()

	userRepo := &repo.GormRepo{DB: db}
	tokens := &token.Service{Secret: cfg.JWTSecret, TTL: cfg.JWTExpiresIn}

	authHTTP := &httpserver.AuthHTTP{
		Svc: &service.AuthService{
			Repo:   userRepo,
			Tokens: tokens,
			Mailer: mailer,
			Events: producer,
		},
		BaseURL: cfg.PublicBaseURL,
	}

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: authHTTP,
		AuthMw:      middleware.NewAuth(tokens, userRepo),
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
