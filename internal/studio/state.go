package studio

import "photostudio/internal/domain"

// State is the single record behind the editing surface. It is owned by a
// Session and mutated only through the named transitions; callers get copies.
type State struct {
	Original   *domain.EncodedImage
	Edited     *domain.EncodedImage
	Prompt     string
	Loading    bool
	Err        string
	CameraOpen bool
}

// ImageView is the wire representation of an image held in state.
type ImageView struct {
	DisplayName string `json:"display_name"`
	MimeType    string `json:"mime_type"`
	DataURL     string `json:"data_url"`
}

// Snapshot is the wire representation of a State copy.
type Snapshot struct {
	SessionID  string     `json:"session_id"`
	Original   *ImageView `json:"original,omitempty"`
	Edited     *ImageView `json:"edited,omitempty"`
	Prompt     string     `json:"prompt"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
	CameraOpen bool       `json:"camera_open"`
}

func imageView(img *domain.EncodedImage) *ImageView {
	if img == nil || img.IsZero() {
		return nil
	}
	return &ImageView{
		DisplayName: img.DisplayName,
		MimeType:    img.MimeType,
		DataURL:     img.DataURL(),
	}
}
