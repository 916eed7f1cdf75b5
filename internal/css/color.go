package css

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Color is an RGBA color with 8 bits per channel.
type Color struct {
	R, G, B, A uint8
}

// ParseColor decodes a hex color of the form rrggbb or rrggbbaa, with or
// without leading '#'. The six digit form is fully opaque.
func ParseColor(s string) (Color, error) {
	digits := strings.TrimLeft(s, "#")
	if len(digits) != 6 && len(digits) != 8 {
		return Color{}, fmt.Errorf("color %q must have 6 or 8 hex digits", s)
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	c := Color{R: b[0], G: b[1], B: b[2], A: 255}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

// String formats the color as #rrggbb, or #rrggbbaa when not opaque.
func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
