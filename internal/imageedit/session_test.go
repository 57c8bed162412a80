package imageedit_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crinf-backoffice/internal/imageedit"
)

func encode(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solid(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return encode(t, img)
}

func gradient(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 11), B: uint8((x + y) * 3), A: 255})
		}
	}
	return encode(t, img)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type fakeRemover struct {
	out []byte
	err error
}

func (f fakeRemover) RemoveBackground(ctx context.Context, pngData []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func TestRender_NeutralParamsKeepPixels(t *testing.T) {
	src := gradient(t, 8, 6)
	session, err := imageedit.Open(src)
	require.NoError(t, err)

	out, err := session.Render()
	require.NoError(t, err)

	want, err := imageedit.Decode(src)
	require.NoError(t, err)
	assert.Equal(t, want.Bounds(), out.Bounds())
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			r, g, b, a := want.At(x, y).RGBA()
			got := out.NRGBAAt(x, y)
			assert.Equal(t, color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}, got, "pixel %d,%d", x, y)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	src := gradient(t, 30, 20)
	params := []imageedit.Params{
		imageedit.DefaultParams(),
		{Brightness: 0, Contrast: 200, Saturation: 0, Scale: 10},
		{Brightness: 200, Contrast: 0, Saturation: 200, Scale: 150, Clip: imageedit.ClipCircle},
		{Brightness: 73, Contrast: 141, Saturation: 55, Scale: 67},
	}

	for _, p := range params {
		a, err := imageedit.Open(src, imageedit.WithParams(p))
		require.NoError(t, err)
		b, err := imageedit.Open(src, imageedit.WithParams(p))
		require.NoError(t, err)

		first, err := a.Render()
		require.NoError(t, err)
		again, err := a.Render()
		require.NoError(t, err)
		other, err := b.Render()
		require.NoError(t, err)

		assert.Equal(t, first.Pix, again.Pix)
		assert.Equal(t, first.Pix, other.Pix)
	}
}

func TestSave_OutputDimensions(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		scale        float64
		wantW, wantH int
	}{
		{"neutral", 200, 100, 100, 200, 100},
		{"half", 200, 100, 50, 100, 50},
		{"enlarged", 40, 30, 150, 60, 45},
		{"rounded", 33, 21, 50, 17, 11},
		{"clamped below minimum", 200, 100, 1, 20, 10},
		{"clamped above maximum", 20, 10, 400, 30, 15},
		{"never below one pixel", 3, 3, 10, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := imageedit.Open(solid(t, tt.w, tt.h, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))
			require.NoError(t, err)
			require.NoError(t, session.SetParameter(imageedit.ParamScale, formatFloat(tt.scale)))

			artifact, err := session.Save()
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, artifact.Width)
			assert.Equal(t, tt.wantH, artifact.Height)

			decoded, err := png.Decode(bytes.NewReader(artifact.PNG))
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, decoded.Bounds().Dx())
			assert.Equal(t, tt.wantH, decoded.Bounds().Dy())
		})
	}
}

func TestRender_CircleClip(t *testing.T) {
	session, err := imageedit.Open(solid(t, 60, 40, color.NRGBA{R: 0, G: 128, B: 255, A: 255}))
	require.NoError(t, err)
	require.NoError(t, session.SetParameter("clipShape", "circle"))

	out, err := session.Render()
	require.NoError(t, err)

	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	cx, cy := float64(w)/2, float64(h)/2
	radius := float64(min(w, h)) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			a := out.NRGBAAt(x, y).A
			if dx*dx+dy*dy > radius*radius {
				assert.Equal(t, uint8(0), a, "pixel %d,%d outside the circle", x, y)
			} else {
				assert.Equal(t, uint8(255), a, "pixel %d,%d inside the circle", x, y)
			}
		}
	}
	assert.Equal(t, color.NRGBA{R: 0, G: 128, B: 255, A: 255}, out.NRGBAAt(w/2, h/2))
}

func TestRender_BrightenedRedSquare(t *testing.T) {
	session, err := imageedit.Open(solid(t, 200, 200, color.NRGBA{R: 160, A: 255}))
	require.NoError(t, err)
	require.NoError(t, session.SetParams(imageedit.Params{
		Brightness: 150,
		Contrast:   100,
		Saturation: 100,
		Scale:      50,
		Clip:       imageedit.ClipRectangle,
	}))

	artifact, err := session.Save()
	require.NoError(t, err)
	assert.Equal(t, 100, artifact.Width)
	assert.Equal(t, 100, artifact.Height)

	decoded, err := png.Decode(bytes.NewReader(artifact.PNG))
	require.NoError(t, err)
	b := decoded.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(decoded.At(x, y)).(color.NRGBA)
			require.Equal(t, uint8(255), c.A)
			require.InDelta(t, 240, int(c.R), 1)
			require.Equal(t, uint8(0), c.G)
			require.Equal(t, uint8(0), c.B)
		}
	}
}

func TestRender_FiltersMoveChannels(t *testing.T) {
	src := solid(t, 4, 4, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	dark, err := imageedit.Open(src, imageedit.WithParams(imageedit.Params{Brightness: 0, Contrast: 100, Saturation: 100, Scale: 100}))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{A: 255}, dark.Preview().NRGBAAt(1, 1))

	gray, err := imageedit.Open(src, imageedit.WithParams(imageedit.Params{Brightness: 100, Contrast: 100, Saturation: 0, Scale: 100}))
	require.NoError(t, err)
	c := gray.Preview().NRGBAAt(1, 1)
	assert.Equal(t, c.R, c.G)
	assert.Equal(t, c.G, c.B)

	flat, err := imageedit.Open(src, imageedit.WithParams(imageedit.Params{Brightness: 100, Contrast: 0, Saturation: 100, Scale: 100}))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 128, G: 128, B: 128, A: 255}, flat.Preview().NRGBAAt(1, 1))
}

func TestSetParameter(t *testing.T) {
	session, err := imageedit.Open(solid(t, 10, 10, color.NRGBA{R: 1, A: 255}))
	require.NoError(t, err)

	require.NoError(t, session.SetParameter("brightness", "500"))
	assert.Equal(t, imageedit.MaxFilter, session.Params().Brightness)

	require.NoError(t, session.SetParameter("Saturation", "-20"))
	assert.Equal(t, imageedit.MinFilter, session.Params().Saturation)

	require.NoError(t, session.SetParameter("scale", "5"))
	assert.Equal(t, imageedit.MinScale, session.Params().Scale)

	require.NoError(t, session.SetParameter("clip_shape", "CIRCLE"))
	assert.Equal(t, imageedit.ClipCircle, session.Params().Clip)

	err = session.SetParameter("hue", "10")
	assert.True(t, errors.Is(err, imageedit.ErrUnknownParameter))

	err = session.SetParameter("contrast", "lots")
	assert.True(t, errors.Is(err, imageedit.ErrInvalidValue))

	err = session.SetParameter("clipShape", "triangle")
	assert.True(t, errors.Is(err, imageedit.ErrInvalidValue))

	// Failed updates leave the parameters alone.
	assert.Equal(t, imageedit.NeutralValue, session.Params().Contrast)
	assert.Equal(t, imageedit.ClipCircle, session.Params().Clip)
}

func TestLoad_DecodeFailureKeepsPreviousImage(t *testing.T) {
	session, err := imageedit.Open(solid(t, 12, 8, color.NRGBA{G: 90, A: 255}))
	require.NoError(t, err)
	before := session.Preview()
	require.NotNil(t, before)

	err = session.Load([]byte("definitely not an image"))
	assert.True(t, errors.Is(err, imageedit.ErrDecodeFailure))
	assert.Same(t, before, session.Preview())

	err = session.Load([]byte("data:image/png;base64,@@@"))
	assert.True(t, errors.Is(err, imageedit.ErrDecodeFailure))
	assert.Same(t, before, session.Preview())

	out, err := session.Render()
	require.NoError(t, err)
	assert.Equal(t, 12, out.Bounds().Dx())
}

func TestOpen_DataURI(t *testing.T) {
	raw := solid(t, 5, 7, color.NRGBA{B: 200, A: 255})
	session, err := imageedit.Open([]byte(imageedit.DataURI(raw)))
	require.NoError(t, err)

	artifact, err := session.Save()
	require.NoError(t, err)
	assert.Equal(t, 5, artifact.Width)
	assert.Equal(t, 7, artifact.Height)
	assert.True(t, strings.HasPrefix(artifact.DataURI(), "data:image/png;base64,"))
}

func TestRender_WithoutSource(t *testing.T) {
	session := imageedit.NewSession()
	_, err := session.Render()
	assert.True(t, errors.Is(err, imageedit.ErrNoSource))

	_, err = session.Save()
	assert.True(t, errors.Is(err, imageedit.ErrNoSource))
}

func TestSave_ClosesSession(t *testing.T) {
	session, err := imageedit.Open(solid(t, 4, 4, color.NRGBA{R: 9, A: 255}))
	require.NoError(t, err)

	_, err = session.Save()
	require.NoError(t, err)
	assert.True(t, session.Closed())

	_, err = session.Save()
	assert.True(t, errors.Is(err, imageedit.ErrSessionClosed))
	assert.True(t, errors.Is(session.SetParameter("brightness", "120"), imageedit.ErrSessionClosed))
	assert.True(t, errors.Is(session.Cancel(), imageedit.ErrSessionClosed))
}

func TestCancel(t *testing.T) {
	session, err := imageedit.Open(solid(t, 4, 4, color.NRGBA{R: 9, A: 255}))
	require.NoError(t, err)

	require.NoError(t, session.Cancel())
	assert.True(t, session.Closed())
	assert.Nil(t, session.Preview())

	_, err = session.Save()
	assert.True(t, errors.Is(err, imageedit.ErrSessionClosed))
}

func TestRemoveBackground_Unavailable(t *testing.T) {
	session, err := imageedit.Open(solid(t, 4, 4, color.NRGBA{R: 9, A: 255}))
	require.NoError(t, err)

	err = session.RemoveBackground(context.Background())
	assert.True(t, errors.Is(err, imageedit.ErrBackgroundRemovalUnavailable))
	assert.False(t, session.Closed())
}

func TestRemoveBackground_ReplacesSource(t *testing.T) {
	transparent := solid(t, 4, 4, color.NRGBA{})
	session, err := imageedit.Open(solid(t, 4, 4, color.NRGBA{R: 9, A: 255}),
		imageedit.WithBackgroundRemover(fakeRemover{out: transparent}))
	require.NoError(t, err)

	require.NoError(t, session.RemoveBackground(context.Background()))
	assert.Equal(t, uint8(0), session.Preview().NRGBAAt(2, 2).A)
}

func TestRemoveBackground_FailureKeepsSource(t *testing.T) {
	session, err := imageedit.Open(solid(t, 4, 4, color.NRGBA{R: 9, A: 255}),
		imageedit.WithBackgroundRemover(fakeRemover{err: errors.New("service down")}))
	require.NoError(t, err)
	before := session.Preview()

	err = session.RemoveBackground(context.Background())
	require.Error(t, err)
	assert.Same(t, before, session.Preview())
	assert.Equal(t, uint8(255), session.Preview().NRGBAAt(2, 2).A)
}

func TestRemoveBackground_CancelledContext(t *testing.T) {
	transparent := solid(t, 4, 4, color.NRGBA{})
	session, err := imageedit.Open(solid(t, 4, 4, color.NRGBA{R: 9, A: 255}),
		imageedit.WithBackgroundRemover(fakeRemover{out: transparent}))
	require.NoError(t, err)
	before := session.Preview()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = session.RemoveBackground(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Same(t, before, session.Preview())
}

type removerFunc func(ctx context.Context, pngData []byte) ([]byte, error)

func (f removerFunc) RemoveBackground(ctx context.Context, pngData []byte) ([]byte, error) {
	return f(ctx, pngData)
}

func TestRemoveBackground_DiscardsResultWhenSourceChanged(t *testing.T) {
	var session *imageedit.Session
	replacement := solid(t, 6, 3, color.NRGBA{B: 200, A: 255})
	remover := removerFunc(func(ctx context.Context, pngData []byte) ([]byte, error) {
		require.NoError(t, session.Load(replacement))
		return solid(t, 4, 4, color.NRGBA{}), nil
	})

	session, err := imageedit.Open(solid(t, 4, 4, color.NRGBA{R: 9, A: 255}), imageedit.WithBackgroundRemover(remover))
	require.NoError(t, err)

	err = session.RemoveBackground(context.Background())
	assert.True(t, errors.Is(err, imageedit.ErrSourceChanged))

	preview := session.Preview()
	assert.Equal(t, image.Rect(0, 0, 6, 3), preview.Bounds())
	assert.Equal(t, color.NRGBA{B: 200, A: 255}, preview.NRGBAAt(1, 1))
}

func TestRemoveBackground_OversizedResultKeepsSource(t *testing.T) {
	session, err := imageedit.Open(solid(t, 4, 4, color.NRGBA{R: 9, A: 255}),
		imageedit.WithMaxPixels(20),
		imageedit.WithBackgroundRemover(fakeRemover{out: solid(t, 5, 5, color.NRGBA{})}))
	require.NoError(t, err)
	before := session.Preview()

	err = session.RemoveBackground(context.Background())
	assert.True(t, errors.Is(err, imageedit.ErrDecodeFailure))
	assert.Same(t, before, session.Preview())
}

// pngHeader returns a PNG holding only a signature and an IHDR chunk that
// claims w×h pixels.
func pngHeader(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(ihdr)))
	buf.Write(length[:])
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	var crc [4]byte
	binary.BigEndian.PutUint32(crc[:], crc32.ChecksumIEEE(chunk))
	buf.Write(crc[:])
	return buf.Bytes()
}

func TestDecode_RejectsOversizedImage(t *testing.T) {
	_, err := imageedit.Decode(pngHeader(t, 100000, 100000))
	require.Error(t, err)
	assert.True(t, errors.Is(err, imageedit.ErrDecodeFailure))
	assert.Contains(t, err.Error(), "exceeds")

	_, err = imageedit.Open([]byte(imageedit.DataURI(pngHeader(t, 8000, 8000))))
	assert.True(t, errors.Is(err, imageedit.ErrDecodeFailure))
}

func TestLoad_MaxPixels(t *testing.T) {
	session, err := imageedit.Open(solid(t, 5, 5, color.NRGBA{G: 1, A: 255}), imageedit.WithMaxPixels(50))
	require.NoError(t, err)
	before := session.Preview()

	err = session.Load(solid(t, 10, 10, color.NRGBA{A: 255}))
	assert.True(t, errors.Is(err, imageedit.ErrDecodeFailure))
	assert.Same(t, before, session.Preview())

	assert.NoError(t, session.Load(solid(t, 10, 5, color.NRGBA{A: 255})))
}

func TestUpdate_AppliesUnderLock(t *testing.T) {
	session, err := imageedit.Open(gradient(t, 8, 8))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, session.Update(func(p *imageedit.Params) error {
				p.Brightness = 140
				return nil
			}))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, session.Update(func(p *imageedit.Params) error {
				p.Saturation = 30
				return nil
			}))
		}()
	}
	wg.Wait()

	p := session.Params()
	assert.Equal(t, 140.0, p.Brightness)
	assert.Equal(t, 30.0, p.Saturation)
}

func TestUpdate_ErrorAndClamp(t *testing.T) {
	session, err := imageedit.Open(gradient(t, 8, 8))
	require.NoError(t, err)
	before := session.Preview()

	err = session.Update(func(p *imageedit.Params) error {
		p.Brightness = 10
		return imageedit.ErrInvalidValue
	})
	assert.True(t, errors.Is(err, imageedit.ErrInvalidValue))
	assert.Equal(t, imageedit.NeutralValue, session.Params().Brightness)
	assert.Same(t, before, session.Preview())

	require.NoError(t, session.Update(func(p *imageedit.Params) error {
		p.Scale = 500
		return nil
	}))
	assert.Equal(t, imageedit.MaxScale, session.Params().Scale)

	require.NoError(t, session.Cancel())
	assert.True(t, errors.Is(session.Update(func(*imageedit.Params) error { return nil }), imageedit.ErrSessionClosed))
}
