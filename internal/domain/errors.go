package domain

import "errors"

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrUnreadableFile  = errors.New("file could not be read")
	ErrCameraAccess    = errors.New("camera access failed")
	ErrCameraClosed    = errors.New("camera is not open")
	ErrNoImageReturned = errors.New("the model did not return an image; try rephrasing the prompt")
	ErrProviderFailure = errors.New("provider failure")
	ErrMissingImage    = errors.New("no source image selected")
	ErrEmptyPrompt     = errors.New("prompt is empty")
	ErrEditInFlight    = errors.New("an edit is already in progress")
	ErrSessionNotFound = errors.New("session not found")
)
