package colorscale

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB is an 8-bit-per-channel color.
type RGB struct {
	R, G, B uint8
}

// Hex formats the color as a lower-case "#rrggbb" string.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText encodes the color as its hex string.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// ParseHex parses "#rrggbb" (the leading '#' is optional).
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("invalid hex color %q", s)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return RGB{uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
}

// MustHex is ParseHex for package-level constants.
func MustHex(s string) RGB {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ColorStop is a control point of a piecewise-linear color scale.
type ColorStop struct {
	Threshold float64
	RGB       RGB
}

// Missing is the color used when a reading is absent.
var Missing = RGB{0x88, 0x88, 0x88}

// Scale maps a scalar reading to a color by interpolating between
// consecutive stops. Stops must be sorted by ascending threshold.
type Scale struct {
	Name  string
	Stops []ColorStop
}

// Color returns the color for v. A nil or NaN reading yields Missing.
func (s Scale) Color(v *float64) RGB {
	if v == nil || math.IsNaN(*v) || len(s.Stops) == 0 {
		return Missing
	}
	val := *v

	first, last := s.Stops[0], s.Stops[len(s.Stops)-1]
	if val <= first.Threshold {
		return first.RGB
	}
	if val >= last.Threshold {
		return last.RGB
	}

	lower, upper := first, last
	for i := 0; i < len(s.Stops)-1; i++ {
		if val >= s.Stops[i].Threshold && val <= s.Stops[i+1].Threshold {
			lower, upper = s.Stops[i], s.Stops[i+1]
			break
		}
	}

	span := upper.Threshold - lower.Threshold
	factor := 0.0
	if span != 0 {
		factor = (val - lower.Threshold) / span
	}
	return Lerp(lower.RGB, upper.RGB, factor)
}

// Hex is shorthand for s.Color(v).Hex().
func (s Scale) Hex(v *float64) string {
	return s.Color(v).Hex()
}

// Lerp blends each channel linearly; factor 0 yields from and 1 yields to.
func Lerp(from, to RGB, factor float64) RGB {
	return RGB{
		R: channel(from.R, to.R, factor),
		G: channel(from.G, to.G, factor),
		B: channel(from.B, to.B, factor),
	}
}

func channel(from, to uint8, factor float64) uint8 {
	v := math.Floor(float64(from) + factor*(float64(to)-float64(from)) + 0.5)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
