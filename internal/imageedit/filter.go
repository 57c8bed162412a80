package imageedit

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Luminance weights of the CSS saturate() color matrix.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// render produces the output raster for src under p. It never mutates src.
func render(src *image.RGBA, p Params) *image.NRGBA {
	p = p.Clamped()
	sb := src.Bounds()
	w, h := p.OutputSize(sb.Dx(), sb.Dy())

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == sb.Dx() && h == sb.Dy() {
		draw.Copy(scaled, image.Point{}, src, sb, draw.Src, nil)
	} else {
		draw.BiLinear.Scale(scaled, scaled.Bounds(), src, sb, draw.Src, nil)
	}

	out := image.NewNRGBA(scaled.Bounds())
	lut := toneTable(p.Brightness/100, p.Contrast/100)
	sat := saturationMatrix(p.Saturation / 100)

	circle := p.Clip == ClipCircle
	cx, cy := float64(w)/2, float64(h)/2
	radius := float64(min(w, h)) / 2
	r2 := radius * radius

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := scaled.PixOffset(x, y)
			di := out.PixOffset(x, y)

			if circle {
				dx := float64(x) + 0.5 - cx
				dy := float64(y) + 0.5 - cy
				if dx*dx+dy*dy > r2 {
					continue // NewNRGBA is zeroed: fully transparent
				}
			}

			a := scaled.Pix[si+3]
			if a == 0 {
				continue
			}
			r, g, b := unpremultiply(scaled.Pix[si], a), unpremultiply(scaled.Pix[si+1], a), unpremultiply(scaled.Pix[si+2], a)
			fr, fg, fb := sat.apply(lut[r], lut[g], lut[b])

			out.Pix[di+0] = fr
			out.Pix[di+1] = fg
			out.Pix[di+2] = fb
			out.Pix[di+3] = a
		}
	}
	return out
}

// toneTable folds brightness then contrast into one per-channel lookup.
// Each stage clamps to [0,255] like a chain of separate filter primitives.
func toneTable(brightness, contrast float64) [256]float64 {
	var t [256]float64
	for v := 0; v < 256; v++ {
		c := clamp255(float64(v) * brightness)
		c = clamp255((c-128)*contrast + 128)
		t[v] = c
	}
	return t
}

type colorMatrix [3][3]float64

// saturationMatrix is the CSS saturate(s) matrix.
func saturationMatrix(s float64) colorMatrix {
	return colorMatrix{
		{lumR + (1-lumR)*s, lumG - lumG*s, lumB - lumB*s},
		{lumR - lumR*s, lumG + (1-lumG)*s, lumB - lumB*s},
		{lumR - lumR*s, lumG - lumG*s, lumB + (1-lumB)*s},
	}
}

func (m colorMatrix) apply(r, g, b float64) (uint8, uint8, uint8) {
	nr := m[0][0]*r + m[0][1]*g + m[0][2]*b
	ng := m[1][0]*r + m[1][1]*g + m[1][2]*b
	nb := m[2][0]*r + m[2][1]*g + m[2][2]*b
	return to8(nr), to8(ng), to8(nb)
}

func unpremultiply(c, a uint8) uint8 {
	if a == 0xff {
		return c
	}
	return uint8((uint32(c)*0xff + uint32(a)/2) / uint32(a))
}

func clamp255(v float64) float64 {
	return math.Min(math.Max(v, 0), 255)
}

func to8(v float64) uint8 {
	return uint8(math.Round(clamp255(v)))
}
