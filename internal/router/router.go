package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/sahil06012005/OdooHackathon/internal/config"
	"github.com/sahil06012005/OdooHackathon/internal/handlers"
	"github.com/sahil06012005/OdooHackathon/internal/middleware"
	"github.com/sahil06012005/OdooHackathon/internal/models"
	"github.com/sahil06012005/OdooHackathon/internal/repository/postgres"
	"github.com/sahil06012005/OdooHackathon/internal/service"
	"github.com/sahil06012005/OdooHackathon/internal/storage"
)

func New(log zerolog.Logger, db *pgxpool.Pool, store storage.BlobStore, cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))
	r.Use(middleware.WithAuth(cfg))

	// Health
	r.Get("/healthz", handlers.Health())

	// Repos + services + handlers
	ticketRepo := postgres.NewTicketRepo(db)
	userRepo := postgres.NewUserRepo(db)
	draftRepo := postgres.NewDraftRepo(db)

	authSvc := service.NewAuthService(userRepo, cfg.SessionSecret)
	ticketSvc := service.NewTicketService(ticketRepo, draftRepo)

	ah := handlers.NewAuthHTTP(authSvc, userRepo)
	th := handlers.NewTicketHTTP(ticketRepo, userRepo, ticketSvc, log)
	sh := handlers.NewStatsHTTP(ticketRepo)
	uh := handlers.NewUserHTTP(userRepo, ticketRepo, authSvc)
	dh := handlers.NewDraftHTTP(draftRepo)
	fh := handlers.NewUploadHTTP(store)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", ah.Register())
		r.Post("/login", ah.Login())
		r.Post("/logout", ah.Logout())
		r.Get("/me", ah.Me())
	})

	// Everything below requires a session; a 401 sends the client to the
	// sign-in flow.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Route("/api/tickets", func(r chi.Router) {
			r.Get("/", th.List())
			r.Post("/", th.Create())
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", th.Get())
				r.With(middleware.RequireRoles(models.RoleAgent, models.RoleAdmin)).
					Patch("/", th.Update())
				r.Post("/comments", th.AddComment())
				r.Post("/upvote", th.ToggleUpvote())
			})
		})

		r.Get("/api/stats", sh.Summary())

		r.Route("/api/users/me", func(r chi.Router) {
			r.Get("/", ah.Me())
			r.Put("/", uh.UpdateProfile())
			r.Put("/preferences", uh.UpdatePreferences())
			r.Put("/password", uh.ChangePassword())
			r.Get("/tickets", uh.MyTickets())
		})

		r.Route("/api/drafts/me", func(r chi.Router) {
			r.Get("/", dh.Get())
			r.Put("/", dh.Save())
			r.Delete("/", dh.Delete())
		})

		r.Route("/api/uploads", func(r chi.Router) {
			r.Post("/", fh.Upload())
			r.Delete("/", fh.Delete())
		})
	})

	// Public attachment files.
	r.Handle("/files/*", http.StripPrefix("/files/",
		http.FileServer(http.Dir(cfg.UploadDir))))

	return r
}
