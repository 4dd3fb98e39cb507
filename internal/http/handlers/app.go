package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"photostudio/internal/domain"
	"photostudio/internal/infra"
	"photostudio/internal/middleware"
	"photostudio/internal/studio"
)

// App is the handler container: configuration, logger and the session store.
type App struct {
	Config   *infra.Config
	Logger   infra.Logger
	Sessions *studio.Store
}

func NewApp(cfg *infra.Config, logger infra.Logger, sessions *studio.Store) *App {
	return &App{Config: cfg, Logger: logger, Sessions: sessions}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message, locale string) {
	a.json(w, status, map[string]errorBody{"error": {
		Code:    code,
		Message: message,
		Hint:    userHint(code, locale),
	}})
}

// fail maps a domain error onto an HTTP status and stable error code.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrUnsupportedFile):
		status, code = http.StatusBadRequest, "unsupported_file"
	case errors.Is(err, domain.ErrUnreadableFile):
		status, code = http.StatusBadRequest, "unreadable_file"
	case errors.Is(err, domain.ErrMissingImage):
		status, code = http.StatusUnprocessableEntity, "missing_image"
	case errors.Is(err, domain.ErrEmptyPrompt):
		status, code = http.StatusUnprocessableEntity, "empty_prompt"
	case errors.Is(err, domain.ErrEditInFlight):
		status, code = http.StatusConflict, "edit_in_flight"
	case errors.Is(err, domain.ErrCameraClosed):
		status, code = http.StatusConflict, "camera_closed"
	case errors.Is(err, domain.ErrCameraAccess):
		status, code = http.StatusServiceUnavailable, "camera_unavailable"
	case errors.Is(err, domain.ErrNoImageReturned):
		status, code = http.StatusBadGateway, "no_result"
	case errors.Is(err, domain.ErrProviderFailure):
		status, code = http.StatusBadGateway, "provider_failure"
	}
	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("code", code).Msg("handlers: request failed")
	}
	a.error(w, status, code, err.Error(), locale)
}
