// Package imageedit implements the image adjustment pipeline used by the
// content editors: brightness, contrast and saturation filters, output
// scaling and an optional circular clip, rendered to a PNG artifact.
package imageedit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ClipShape is the mask applied to the output raster.
type ClipShape int

const (
	ClipRectangle ClipShape = iota
	ClipCircle
)

func (s ClipShape) String() string {
	if s == ClipCircle {
		return "circle"
	}
	return "rectangle"
}

// ParseClipShape accepts "rectangle"/"rect" and "circle" in any case.
func ParseClipShape(v string) (ClipShape, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "rectangle", "rect":
		return ClipRectangle, nil
	case "circle":
		return ClipCircle, nil
	}
	return ClipRectangle, fmt.Errorf("%w: clip shape %q", ErrInvalidValue, v)
}

// Parameter names accepted by Session.SetParameter.
const (
	ParamBrightness = "brightness"
	ParamContrast   = "contrast"
	ParamSaturation = "saturation"
	ParamScale      = "scale"
	ParamClipShape  = "clipShape"
)

const (
	MinFilter    = 0.0
	MaxFilter    = 200.0
	MinScale     = 10.0
	MaxScale     = 150.0
	NeutralValue = 100.0
)

// Params is the full parameter set of an edit session. All filter values are
// percentages where 100 is neutral.
type Params struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Scale      float64
	Clip       ClipShape
}

// DefaultParams returns the neutral parameter set.
func DefaultParams() Params {
	return Params{
		Brightness: NeutralValue,
		Contrast:   NeutralValue,
		Saturation: NeutralValue,
		Scale:      NeutralValue,
		Clip:       ClipRectangle,
	}
}

// Clamped returns p with every numeric value forced into its range.
// NaN falls back to the neutral value.
func (p Params) Clamped() Params {
	p.Brightness = clamp(p.Brightness, MinFilter, MaxFilter)
	p.Contrast = clamp(p.Contrast, MinFilter, MaxFilter)
	p.Saturation = clamp(p.Saturation, MinFilter, MaxFilter)
	p.Scale = clamp(p.Scale, MinScale, MaxScale)
	return p
}

// OutputSize computes the raster dimensions for a source of w×h.
func (p Params) OutputSize(w, h int) (int, int) {
	f := p.Scale / 100
	ow := int(math.Round(float64(w) * f))
	oh := int(math.Round(float64(h) * f))
	return max(ow, 1), max(oh, 1)
}

// set applies one named parameter. Numeric values are parsed from value.
func (p *Params) set(name, value string) error {
	if strings.EqualFold(name, ParamClipShape) || strings.EqualFold(name, "clip_shape") {
		shape, err := ParseClipShape(value)
		if err != nil {
			return err
		}
		p.Clip = shape
		return nil
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, value)
	}

	switch strings.ToLower(name) {
	case ParamBrightness:
		p.Brightness = clamp(v, MinFilter, MaxFilter)
	case ParamContrast:
		p.Contrast = clamp(v, MinFilter, MaxFilter)
	case ParamSaturation:
		p.Saturation = clamp(v, MinFilter, MaxFilter)
	case ParamScale:
		p.Scale = clamp(v, MinScale, MaxScale)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParameter, name)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return NeutralValue
	}
	return math.Min(math.Max(v, lo), hi)
}
