// Package colorspace converts between the HSV colours used by voice
// assistants and the 0-100 RGB channel levels understood by the LED
// controller.
//
// The conversion lives in its own package so that the behaviour of the first
// deployment (Legacy) can be selected, compared and tested independently of
// the gateway that applies it.
package colorspace

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// levelScale is the full-scale value of a controller channel.
const levelScale = 100.0

// HSV is a colour as voice assistants express it.
// Hue is in degrees [0, 360); Saturation and Brightness are in [0, 1].
type HSV struct {
	Hue        float64 `json:"hue"`
	Saturation float64 `json:"saturation"`
	Brightness float64 `json:"brightness"`
}

// Levels are controller channel values, each 0-100.
type Levels struct {
	Red   int
	Green int
	Blue  int
}

// Mode selects the HSV to levels conversion.
type Mode int

const (
	// Standard normalises hue to [0, 1) and keeps channels in R, G, B order.
	Standard Mode = iota

	// Legacy feeds hue in degrees straight into the conversion and swaps the
	// red and blue channels of the result. Hue does not survive a round trip
	// through this mode.
	Legacy
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Legacy:
		return "legacy"
	default:
		return "standard"
	}
}

// Converter translates colours in one Mode. The zero value is a Standard
// converter.
type Converter struct {
	Mode Mode
}

// ToLevels converts an HSV colour to controller levels. Channel values are
// truncated, not rounded.
func (c Converter) ToLevels(hsv HSV) Levels {
	if c.Mode == Legacy {
		// Degrees are read as a fraction of a turn, so only the fractional
		// part of the hue survives; red and blue come out swapped.
		col := colorful.Hsv(normaliseHue(fraction(hsv.Hue)*360.0), hsv.Saturation, hsv.Brightness)
		return Levels{
			Red:   scale(col.B),
			Green: scale(col.G),
			Blue:  scale(col.R),
		}
	}

	col := colorful.Hsv(normaliseHue(hsv.Hue), hsv.Saturation, hsv.Brightness)
	return Levels{
		Red:   scale(col.R),
		Green: scale(col.G),
		Blue:  scale(col.B),
	}
}

// FromLevels converts controller levels back to HSV. It is the same in both
// modes.
func (c Converter) FromLevels(l Levels) HSV {
	col := colorful.Color{
		R: float64(l.Red) / levelScale,
		G: float64(l.Green) / levelScale,
		B: float64(l.Blue) / levelScale,
	}
	h, s, v := col.Hsv()
	return HSV{
		Hue:        h,
		Saturation: s,
		Brightness: v,
	}
}

func scale(x float64) int {
	return int(x * levelScale)
}

// normaliseHue maps any angle into [0, 360). colorful.Hsv drops the hue for
// angles outside that range.
func normaliseHue(deg float64) float64 {
	h := math.Mod(deg, 360.0)
	if h < 0 {
		h += 360.0
	}
	if h >= 360.0 {
		h = 0
	}
	return h
}

// fraction returns x - floor(x), always in [0, 1).
func fraction(x float64) float64 {
	return x - math.Floor(x)
}
