package http

import (
	"log/slog"
	"os"

	"github.com/gfinemax/worklog-mcr-sub000/internal/handler/http/middleware"
	"github.com/gfinemax/worklog-mcr-sub000/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	jwtService jwt.Service,
	authHandler AuthHandler,
	sessionHandler SessionHandler,
	worklogHandler WorklogHandler,
	shiftHandler ShiftHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "worklog-mcr"),
		slog.String("version", "v1.0.0"),
		slog.String("env", "development"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService))

			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/auth/confirm-pin", authHandler.ConfirmPIN)

			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionHandler.State)
				r.Post("/next", sessionHandler.StageNext)
				r.Post("/handover", sessionHandler.CompleteHandover)
				r.Delete("/next", sessionHandler.CancelHandover)
			})

			r.Route("/worklogs", func(r chi.Router) {
				r.Get("/", worklogHandler.List)
				r.Post("/", worklogHandler.Ensure)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", worklogHandler.Get)
					r.Put("/workers", worklogHandler.SaveWorkers)
					r.Put("/channel-logs", worklogHandler.SaveChannelLogs)
					r.Post("/autosave", worklogHandler.Autosave)
					r.Post("/signatures", worklogHandler.Sign)
					r.Delete("/signatures/{role}", worklogHandler.RemoveSignature)
				})
			})

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/today", shiftHandler.Today)
				r.Get("/range", shiftHandler.Range)
				r.Get("/members", shiftHandler.Members)

				r.Route("/configs", func(r chi.Router) {
					r.Get("/", shiftHandler.ListConfigs)
					r.Post("/", shiftHandler.CreateConfig)
				})
			})
		})
	})
	return r
}
