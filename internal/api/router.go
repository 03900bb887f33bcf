package api

import (
	"fmt"
	"log"
	"net/http"

	_ "github.com/rahulvm-dev/messagely/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rahulvm-dev/messagely/internal/api/handlers"
	"github.com/rahulvm-dev/messagely/internal/api/middleware"
	"github.com/rahulvm-dev/messagely/internal/auth"
	"github.com/rahulvm-dev/messagely/internal/config"
	"github.com/rs/cors"
)

// SetupRouter wires the route tree: public auth routes, then the
// protected API behind the token gate. Guard order is fixed per route:
// authenticate, require a principal, then resource-level policy inside
// the handler.
func SetupRouter(
	cfg config.Config,
	tokens *auth.TokenService,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	messageHandler *handlers.MessageHandler,
) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(cfg.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	authMux := http.NewServeMux()
	authMux.HandleFunc("/register", authHandler.Register)
	authMux.HandleFunc("/login", authHandler.Login)

	mainMux.Handle("/api/v1/auth/",
		http.StripPrefix("/api/v1/auth", authMux),
	)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	userMux := http.NewServeMux()
	userMux.HandleFunc("/{$}", userHandler.ListUsers)
	userMux.HandleFunc("/{username}", userHandler.GetUser)
	userMux.HandleFunc("/{username}/to", userHandler.MessagesToUser)
	userMux.HandleFunc("/{username}/from", userHandler.MessagesFromUser)

	messageMux := http.NewServeMux()
	messageMux.HandleFunc("/{$}", messageHandler.CreateMessage)
	messageMux.HandleFunc("/{id}", messageHandler.GetMessage)
	messageMux.HandleFunc("/{id}/read", messageHandler.MarkMessageRead)

	protectedMux.HandleFunc("/users", userHandler.ListUsers)
	protectedMux.Handle("/users/",
		http.StripPrefix("/users", userMux),
	)
	protectedMux.HandleFunc("/messages", messageHandler.CreateMessage)
	protectedMux.Handle("/messages/",
		http.StripPrefix("/messages", messageMux),
	)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.RequireAuth(protectedMux),
		),
	)

	log.Println("Router initialized")
	handler := middleware.Authenticate(tokens)(c.Handler(mainMux))
	handler = middleware.Logger(handler)
	return handler
}
