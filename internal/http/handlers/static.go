package handlers

import (
	"io/fs"
	"net/http"

	"photostudio/web"
)

// Index serves the single-page editor UI.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	raw, err := fs.ReadFile(web.StaticFS, "static/index.html")
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: embedded index missing")
		http.Error(w, "frontend unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(raw)
}

// Static serves the embedded frontend assets.
func (a *App) Static() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: embedded assets missing")
		return http.NotFoundHandler()
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
