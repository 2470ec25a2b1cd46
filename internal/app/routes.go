package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// Routes builds the HTTP handler.
func (a *App) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(a.Logger))
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(a.Config.MaxRequestsPerMin, time.Minute))

	r.NotFound(a.NotFound)
	r.Get("/healthz", a.Healthz)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(a.Static))))

	r.Group(func(r chi.Router) {
		r.Use(a.Auth.RequireAuth, a.withSession)

		r.Get("/", a.Index)
		r.Get("/export", a.Export)
		a.widgetRoutes(r)
	})

	// Sessions ride on a cookie, so cross-origin credentials are only
	// allowed for an explicit origin list. With "*" the API is same-origin.
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   a.Config.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: a.Config.CredentialedOrigins(),
			MaxAge:           300,
		}))
		r.Use(a.Auth.RequireAuth, a.withSession)

		r.Get("/view", a.APIView)
		r.Get("/export", a.Export)
		a.widgetRoutes(r)
	})

	return r
}

func (a *App) widgetRoutes(r chi.Router) {
	r.Post("/month/prev", a.PrevMonth)
	r.Post("/month/next", a.NextMonth)
	r.Post("/dates/select", a.SelectDate)
	r.Post("/slots/{slot}/toggle", a.ToggleSlot)
	r.Post("/selections/remove", a.RemoveSelection)
}
