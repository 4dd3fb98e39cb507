package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"

	"photostudio/internal/encode"
	"photostudio/internal/middleware"
	"photostudio/internal/studio"
	"photostudio/pkg/zip"
)

// CreateSession starts a fresh editing session.
func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	session := a.Sessions.Create()
	a.json(w, http.StatusCreated, session.Snapshot())
}

// GetSession returns the current state snapshot.
func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, session.Snapshot())
}

// UploadImage runs the select-file transition: encode the uploaded file and
// install it as the original. A rejected file surfaces an error but leaves a
// previously loaded original untouched.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(a.Config.MaxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload", middleware.LocaleFromContext(r.Context()))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file is required", middleware.LocaleFromContext(r.Context()))
		return
	}
	defer file.Close()

	img, err := encode.FromReader(header.Filename, header.Header.Get("Content-Type"), file, a.Config.MaxUploadBytes)
	if err != nil {
		session.RecordError(err)
		a.fail(w, r, err)
		return
	}

	session.SelectImage(img)
	a.json(w, http.StatusOK, session.Snapshot())
}

// OpenCamera acquires the session's camera stream.
func (a *App) OpenCamera(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := session.OpenCamera(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, session.Snapshot())
}

// PushFrame accepts a live preview frame from the browser while the camera
// is open.
func (a *App) PushFrame(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	frame, err := imaging.Decode(r.Body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_frame", fmt.Sprintf("decode frame: %v", err), middleware.LocaleFromContext(r.Context()))
		return
	}
	if err := session.PushFrame(frame); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SnapPhoto captures the current frame as the new original and closes the
// camera.
func (a *App) SnapPhoto(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}
	if _, err := session.SnapPhoto(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, session.Snapshot())
}

// CancelCamera closes the camera without capturing.
func (a *App) CancelCamera(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}
	session.CancelCamera()
	a.json(w, http.StatusOK, session.Snapshot())
}

// ReportCameraError propagates a browser-side device failure, e.g. a denied
// getUserMedia permission.
func (a *App) ReportCameraError(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload", middleware.LocaleFromContext(r.Context()))
		return
	}
	session.ReportCameraFailure(body.Reason)
	a.json(w, http.StatusOK, session.Snapshot())
}

type editRequest struct {
	Prompt string `json:"prompt"`
}

// SubmitEdit runs one remote edit against the session's original image.
func (a *App) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload", middleware.LocaleFromContext(r.Context()))
		return
	}

	// A submitted edit runs to completion or failure even if the browser
	// disconnects mid-flight.
	ctx := context.WithoutCancel(r.Context())
	requestID := middleware.RequestIDFromContext(ctx)
	if _, err := session.SubmitEdit(ctx, req.Prompt, requestID); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, session.Snapshot())
}

// DownloadImage streams the original or edited payload as a file attachment.
func (a *App) DownloadImage(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}
	img, err := session.Image(chi.URLParam(r, "which"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	raw, err := img.Bytes()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", img.DisplayName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

// DownloadArchive bundles every image the session holds into one zip.
func (a *App) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	session, ok := a.session(w, r)
	if !ok {
		return
	}
	images := session.Images()
	if len(images) == 0 {
		a.error(w, http.StatusNotFound, "missing_image", "nothing to download", middleware.LocaleFromContext(r.Context()))
		return
	}
	raw, err := zip.ArchiveImages(images)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "photostudio-"+session.ID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (a *App) session(w http.ResponseWriter, r *http.Request) (*studio.Session, bool) {
	id := chi.URLParam(r, "id")
	session, err := a.Sessions.Get(id)
	if err != nil {
		a.fail(w, r, err)
		return nil, false
	}
	return session, true
}
