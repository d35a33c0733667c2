package api

import (
	"context"
	"net/http"
	"time"

	"github.com/St1cky1/taskboard/internal/api/handlers"
	"github.com/St1cky1/taskboard/internal/board"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps - все, что нужно роутеру
type Deps struct {
	Tasks          handlers.TaskService
	Auth           handlers.AuthService
	Users          handlers.UserService
	Tokens         TokenValidator
	Sessions       *board.Sessions
	TasksFor       handlers.TaskAPIFactory
	Health         HealthChecker
	Cookie         handlers.CookieConfig
	LoginPerMinute int
	// доверять X-Forwarded-For / X-Real-IP; включать только за своим прокси
	TrustProxyHeaders bool
	Logger            log.FieldLogger
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if d.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(Authenticate(d.Tokens, d.Cookie.Name))

	taskHandler := handlers.NewTaskHandler(d.Tasks, d.Logger)
	authHandler := handlers.NewAuthHandler(d.Auth, d.Users, d.Cookie, d.Logger)
	boardHandler := handlers.NewBoardHandler(d.Sessions, d.TasksFor, d.Logger)
	pageHandler := handlers.NewPageHandler(d.Tasks, d.Logger)

	r.Get("/healthz", healthz(d.Health))

	r.Group(func(r chi.Router) {
		r.Use(RouteGuard)
		r.Get("/dashboard", pageHandler.Dashboard)
		r.Get("/login", pageHandler.Login)
		r.Get("/signup", pageHandler.Signup)
		r.Get("/auth-error", pageHandler.AuthError)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(RateLimit(d.LoginPerMinute))
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})
			r.Post("/refresh", authHandler.Refresh)
			r.With(RequireAuth).Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)

			r.Get("/me", authHandler.Me)
			r.Patch("/me", authHandler.UpdateMe)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Get("/board", taskHandler.ListBoardTasks)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTask)
					r.Patch("/", taskHandler.UpdateTask)
					r.Put("/", taskHandler.UpdateTask)
					r.Delete("/", taskHandler.DeleteTask)
					r.Get("/history", taskHandler.TaskHistory)
				})
			})

			r.Route("/board/sessions", func(r chi.Router) {
				r.Post("/", boardHandler.Open)
				r.Route("/{sid}", func(r chi.Router) {
					r.Get("/", boardHandler.Get)
					r.Delete("/", boardHandler.Close)
					r.Post("/drag", boardHandler.Drag)
					r.Post("/tasks", boardHandler.CreateTask)
					r.Patch("/tasks/{id}", boardHandler.EditTask)
					r.Delete("/tasks/{id}", boardHandler.DeleteTask)
				})
			})
		})
	})

	return r
}

func healthz(hc HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hc != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := hc.HealthCheck(ctx); err != nil {
				respondError(w, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
