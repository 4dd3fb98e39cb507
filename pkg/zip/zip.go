package zip

import (
	"archive/zip"
	"bytes"
	"fmt"

	"photostudio/internal/domain"
)

// ArchiveImages bundles the given images into a zip for a single download.
// Duplicate display names are disambiguated with a numeric suffix.
func ArchiveImages(images []domain.EncodedImage) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int)
	for _, img := range images {
		base := img.DisplayName
		if base == "" {
			base = "image"
		}
		name := base
		if n := seen[base]; n > 0 {
			name = fmt.Sprintf("%d-%s", n, base)
		}
		seen[base]++

		raw, err := img.Bytes()
		if err != nil {
			return nil, fmt.Errorf("archive %s: %w", name, err)
		}
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("archive %s: %w", name, err)
		}
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("archive %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
