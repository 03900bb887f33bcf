package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rahulvm-dev/messagely/internal/api"
	"github.com/rahulvm-dev/messagely/internal/api/handlers"
	"github.com/rahulvm-dev/messagely/internal/auth"
	"github.com/rahulvm-dev/messagely/internal/config"
	"github.com/rahulvm-dev/messagely/internal/repositories"
)

func main() {
	cfg := config.Load()

	db, err := repositories.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	log.Println("Successfully connected to database")

	users := repositories.NewGormUserRepository(db)
	messages := repositories.NewGormMessageRepository(db)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	router := api.SetupRouter(
		cfg,
		tokens,
		handlers.NewAuthHandler(users, hasher, tokens),
		handlers.NewUserHandler(users, messages),
		handlers.NewMessageHandler(users, messages),
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting Messagely server on port: %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
