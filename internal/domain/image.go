package domain

import (
	"encoding/base64"
	"fmt"
)

// EncodedImage is an image payload carried through the editing flow: base64
// body (no data-URL scheme prefix), the declared MIME type, and a name used
// for display and downloads. Values are replaced wholesale, never mutated.
type EncodedImage struct {
	Data        string `json:"data"`
	MimeType    string `json:"mime_type"`
	DisplayName string `json:"display_name"`
}

// IsZero reports whether no image payload is present.
func (e EncodedImage) IsZero() bool {
	return e.Data == ""
}

// DataURL renders the payload as a browser-displayable data URL.
func (e EncodedImage) DataURL() string {
	if e.IsZero() {
		return ""
	}
	return fmt.Sprintf("data:%s;base64,%s", e.MimeType, e.Data)
}

// Bytes decodes the base64 body back into raw image bytes.
func (e EncodedImage) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(e.Data)
	if err != nil {
		return nil, fmt.Errorf("decode image payload: %w", err)
	}
	return raw, nil
}
