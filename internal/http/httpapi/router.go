package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"photostudio/internal/http/handlers"
	"photostudio/internal/infra"
	"photostudio/internal/middleware"
)

func NewRouter(app *handlers.App, cfg *infra.Config, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.I18N(cfg.DefaultLocale),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", app.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", app.GetSession)
			r.Post("/image", app.UploadImage)
			r.Post("/camera/open", app.OpenCamera)
			r.Post("/camera/frame", app.PushFrame)
			r.Post("/camera/snap", app.SnapPhoto)
			r.Post("/camera/cancel", app.CancelCamera)
			r.Post("/camera/error", app.ReportCameraError)
			r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).
				Post("/edit", app.SubmitEdit)
			r.Get("/download", app.DownloadArchive)
			r.Get("/download/{which}", app.DownloadImage)
		})
	})

	r.Get("/", app.Index)
	r.Handle("/static/*", app.Static())

	return r
}
