package encode

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"strings"

	"photostudio/internal/domain"
)

// MaxDefaultBytes caps reads when the caller does not supply a limit.
const MaxDefaultBytes = 12 << 20

// FromReader turns a user-selected file into an EncodedImage. The declared
// content type must belong to the image category; the payload is read fully
// and carried as a base64 body with no data-URL prefix.
func FromReader(name, declaredType string, r io.Reader, maxBytes int64) (domain.EncodedImage, error) {
	mimeType, err := normalizeMIME(declaredType)
	if err != nil {
		return domain.EncodedImage{}, err
	}

	if maxBytes <= 0 {
		maxBytes = MaxDefaultBytes
	}
	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
	}
	if len(raw) == 0 {
		return domain.EncodedImage{}, fmt.Errorf("%w: empty file", domain.ErrUnreadableFile)
	}
	if int64(len(raw)) > maxBytes {
		return domain.EncodedImage{}, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrUnsupportedFile, maxBytes)
	}

	return domain.EncodedImage{
		Data:        base64.StdEncoding.EncodeToString(raw),
		MimeType:    mimeType,
		DisplayName: name,
	}, nil
}

// FromBytes encodes in-memory image bytes, used by the camera capture path.
func FromBytes(name, declaredType string, raw []byte) (domain.EncodedImage, error) {
	mimeType, err := normalizeMIME(declaredType)
	if err != nil {
		return domain.EncodedImage{}, err
	}
	if len(raw) == 0 {
		return domain.EncodedImage{}, fmt.Errorf("%w: empty payload", domain.ErrUnreadableFile)
	}
	return domain.EncodedImage{
		Data:        base64.StdEncoding.EncodeToString(raw),
		MimeType:    mimeType,
		DisplayName: name,
	}, nil
}

func normalizeMIME(declaredType string) (string, error) {
	mimeType := strings.TrimSpace(declaredType)
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	mimeType = strings.ToLower(mimeType)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%w: %q is not an image", domain.ErrUnsupportedFile, declaredType)
	}
	return mimeType, nil
}
