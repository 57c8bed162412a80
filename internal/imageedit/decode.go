package imageedit

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const dataURIPNGPrefix = "data:image/png;base64,"

// DefaultMaxPixels bounds width*height of a decoded source (5000x5000).
const DefaultMaxPixels = 25_000_000

// Decode reads a raster image from raw bytes or from a base64 data URI,
// refusing images larger than DefaultMaxPixels.
func Decode(data []byte) (*image.RGBA, error) {
	return DecodeLimit(data, DefaultMaxPixels)
}

// DecodeLimit is Decode with an explicit pixel budget. The header is read
// first, so oversized images fail before any raster is allocated. The
// returned image is always an *image.RGBA anchored at the origin.
func DecodeLimit(data []byte, maxPixels int) (*image.RGBA, error) {
	raw, err := stripDataURI(data)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds the limit of %d pixels",
			ErrDecodeFailure, cfg.Width, cfg.Height, maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrDecodeFailure)
	}
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba, nil
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}

func stripDataURI(data []byte) ([]byte, error) {
	s := string(bytes.TrimSpace(data))
	if !strings.HasPrefix(s, "data:") {
		return data, nil
	}
	comma := strings.IndexByte(s, ',')
	if comma < 0 || !strings.HasSuffix(s[:comma], ";base64") {
		return nil, fmt.Errorf("%w: unsupported data URI", ErrDecodeFailure)
	}
	raw, err := base64.StdEncoding.DecodeString(s[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	return raw, nil
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DataURI wraps PNG bytes in a data URI.
func DataURI(pngData []byte) string {
	return dataURIPNGPrefix + base64.StdEncoding.EncodeToString(pngData)
}
