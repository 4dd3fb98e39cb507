package editor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"photostudio/internal/domain"
)

// Stub renders a deterministic synthetic PNG instead of calling the remote
// service. It keeps the whole editing flow usable in local and CI
// environments where no API key is configured.
type Stub struct{}

func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) Edit(ctx context.Context, req Request) (domain.EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.EncodedImage{}, err
	}
	if req.Image.IsZero() {
		return domain.EncodedImage{}, domain.ErrMissingImage
	}

	seed := deterministicSeed(req.Image.Data, req.Instructions)
	raw := renderSyntheticImage(512, 512, seed)
	if len(raw) == 0 {
		return domain.EncodedImage{}, fmt.Errorf("%w: synthetic render failed", domain.ErrProviderFailure)
	}

	return domain.EncodedImage{
		Data:        base64.StdEncoding.EncodeToString(raw),
		MimeType:    "image/png",
		DisplayName: editedName(req.Image.DisplayName, "image/png"),
	}, nil
}

func deterministicSeed(parts ...string) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(part))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

func renderSyntheticImage(width, height int, seed string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := height / 12
	if stripeHeight < 16 {
		stripeHeight = 16
	}
	for y := 0; y < height; y += stripeHeight * 2 {
		bottom := y + stripeHeight
		if bottom > height {
			bottom = height
		}
		stripe := image.Rect(0, y, width, bottom)
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "4a90d9"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{
		R: parseHexByte(segment[0:2]),
		G: parseHexByte(segment[2:4]),
		B: parseHexByte(segment[4:6]),
		A: 255,
	}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

var _ Editor = (*Stub)(nil)
