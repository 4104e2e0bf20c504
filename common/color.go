package common

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Color is used to represent the color and color temperature of a light.
// The color is represented as an HSB (Hue, Saturation, Brightness) value.
// The color temperature is represented in K (Kelvin) and is used to adjust
// the warmness / coolness of a white light, which is most obvious when
// saturation is close to zero.
type Color struct {
	Hue        uint16 `struc:"little"` // range 0 to 65535, scale of 360 degrees
	Saturation uint16 `struc:"little"` // range 0 to 65535, scale of 100%
	Brightness uint16 `struc:"little"` // range 0 to 65535, scale of 100%
	Kelvin     uint16 `struc:"little"` // range 1500 (warm) to 9000 (cool)
}

// DefaultKelvin is the neutral color temperature applied when a caller does
// not specify one.
const DefaultKelvin = 3500

// namedColors maps color names to (hue degrees, saturation, brightness).
// warm_white and cool_white additionally override the kelvin value in
// ParseColor.
var namedColors = map[string][3]float64{
	`red`:        {0, 1.0, 1.0},
	`orange`:     {30, 1.0, 1.0},
	`yellow`:     {60, 1.0, 1.0},
	`lime`:       {90, 1.0, 1.0},
	`green`:      {120, 1.0, 1.0},
	`teal`:       {150, 1.0, 1.0},
	`cyan`:       {180, 1.0, 1.0},
	`sky`:        {210, 1.0, 1.0},
	`blue`:       {240, 1.0, 1.0},
	`purple`:     {270, 1.0, 1.0},
	`magenta`:    {300, 1.0, 1.0},
	`pink`:       {330, 1.0, 1.0},
	`white`:      {0, 0.0, 1.0},
	`warm_white`: {0, 0.0, 1.0},
	`cool_white`: {0, 0.0, 1.0},
}

// ColorFromDegrees builds a Color from human-readable values.  Hue is in
// degrees (0-360), saturation and brightness are fractions (0-1).  Hue is
// quantized onto 65536 discrete steps, so a round trip through ToDegrees may
// differ by up to ~0.0055 degrees.
func ColorFromDegrees(hue, saturation, brightness float64, kelvin uint16) Color {
	return Color{
		Hue:        HueFromDegrees(hue),
		Saturation: uint16(math.Round(65535 * saturation)),
		Brightness: uint16(math.Round(65535 * brightness)),
		Kelvin:     kelvin,
	}
}

// HueFromDegrees quantizes a hue in degrees onto the wire scale.
func HueFromDegrees(hue float64) uint16 {
	return uint16(int(math.Round(65536*hue/360)) % 65536)
}

// ColorFromRGB builds a Color from 8-bit RGB components via a standard
// RGB to HSV conversion.
func ColorFromRGB(r, g, b uint8, kelvin uint16) Color {
	h, s, v := rgbToHSV(float64(r)/255, float64(g)/255, float64(b)/255)
	return ColorFromDegrees(h*360, s, v, kelvin)
}

// ColorFromHex builds a Color from an RRGGBB hex string, with or without a
// leading #.  Returns ErrInvalidColorFormat for anything else.
func ColorFromHex(hex string, kelvin uint16) (Color, error) {
	hex = strings.TrimPrefix(hex, `#`)
	if len(hex) != 6 {
		return Color{}, ErrInvalidColorFormat
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, ErrInvalidColorFormat
	}
	return ColorFromRGB(uint8(v>>16), uint8(v>>8), uint8(v), kelvin), nil
}

// ToDegrees returns the hue in degrees and saturation/brightness as
// fractions.
func (c Color) ToDegrees() (hue, saturation, brightness float64) {
	return float64(c.Hue) * 360 / 65536,
		float64(c.Saturation) / 65535,
		float64(c.Brightness) / 65535
}

func (c Color) String() string {
	h, s, b := c.ToDegrees()
	return fmt.Sprintf("H:%.0f° S:%.0f%% B:%.0f%% K:%d", h, s*100, b*100, c.Kelvin)
}

var (
	hexColorRegexp  = regexp.MustCompile(`^[0-9a-f]{6}$`)
	rgbColorRegexp  = regexp.MustCompile(`^rgb\s*\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*\)$`)
	hsbColorRegexp  = regexp.MustCompile(`^hsb\s*\(\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)\s*\)$`)
	hsbkColorRegexp = regexp.MustCompile(`^hsbk\s*\(\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*([\d.]+)\s*,\s*(\d+)\s*\)$`)
)

// ParseColor parses a color string into a Color.  Supported forms:
//
//	named:  red, green, blue, white, warm_white, ...
//	hex:    #FF0000 or FF0000
//	rgb:    rgb(255, 0, 0)
//	hsb:    hsb(0, 100, 100)        (hue degrees, sat/bright percent)
//	hsbk:   hsbk(0, 100, 100, 3500)
//
// Returns ErrInvalidColorFormat when the string matches none of these.
func ParseColor(s string, kelvin uint16) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if hsb, ok := namedColors[s]; ok {
		switch s {
		case `warm_white`:
			kelvin = 2700
		case `cool_white`:
			kelvin = 6500
		}
		return ColorFromDegrees(hsb[0], hsb[1], hsb[2], kelvin), nil
	}

	if strings.HasPrefix(s, `#`) || hexColorRegexp.MatchString(s) {
		return ColorFromHex(s, kelvin)
	}

	if m := rgbColorRegexp.FindStringSubmatch(s); m != nil {
		r, errR := strconv.ParseUint(m[1], 10, 16)
		g, errG := strconv.ParseUint(m[2], 10, 16)
		b, errB := strconv.ParseUint(m[3], 10, 16)
		if errR != nil || errG != nil || errB != nil || r > 255 || g > 255 || b > 255 {
			return Color{}, ErrInvalidColorFormat
		}
		return ColorFromRGB(uint8(r), uint8(g), uint8(b), kelvin), nil
	}

	if m := hsbColorRegexp.FindStringSubmatch(s); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		sat, _ := strconv.ParseFloat(m[2], 64)
		bright, _ := strconv.ParseFloat(m[3], 64)
		return ColorFromDegrees(h, sat/100, bright/100, kelvin), nil
	}

	if m := hsbkColorRegexp.FindStringSubmatch(s); m != nil {
		h, _ := strconv.ParseFloat(m[1], 64)
		sat, _ := strconv.ParseFloat(m[2], 64)
		bright, _ := strconv.ParseFloat(m[3], 64)
		k, _ := strconv.ParseUint(m[4], 10, 16)
		return ColorFromDegrees(h, sat/100, bright/100, uint16(k)), nil
	}

	return Color{}, ErrInvalidColorFormat
}

// rgbToHSV converts RGB fractions (0-1) to hue/saturation/value fractions,
// hue also 0-1.
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max
	if max == 0 {
		return 0, 0, 0
	}
	delta := max - min
	s = delta / max
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = (g - b) / delta
	case g:
		h = 2 + (b-r)/delta
	default:
		h = 4 + (r-g)/delta
	}
	h /= 6
	if h < 0 {
		h++
	}
	return h, s, v
}
