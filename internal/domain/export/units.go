package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CSS pixels render at 96 per inch, document points at 72 per inch.
const pxToPtScale = 72.0 / 96.0

// PxToPt converts a CSS pixel measure to points.
func PxToPt(px float64) float64 {
	return px * pxToPtScale
}

// PtToPx is the inverse of PxToPt.
func PtToPx(pt float64) float64 {
	return pt / pxToPtScale
}

// ClampOpacity forces an opacity into [0, 1].
func ClampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampNonNegative floors negative radii, blur and width values at zero.
func ClampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

var rgbPattern = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*[\d.]+\s*)?\)$`)

// NormalizeHex renders a CSS color as uppercase #RRGGBB. Accepts #RGB, #RRGGBB,
// rgb() and rgba() forms; the alpha channel is dropped (opacity is modeled
// separately). Unparseable input yields the empty string.
func NormalizeHex(color string) string {
	c := strings.TrimSpace(strings.ToLower(color))
	if c == "" || c == "none" || c == "transparent" {
		return ""
	}

	if strings.HasPrefix(c, "#") {
		hex := c[1:]
		switch len(hex) {
		case 3:
			return strings.ToUpper(fmt.Sprintf("#%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]))
		case 6:
			if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
				return ""
			}
			return "#" + strings.ToUpper(hex)
		case 8: // #RRGGBBAA
			if _, err := strconv.ParseUint(hex, 16, 64); err != nil {
				return ""
			}
			return "#" + strings.ToUpper(hex[:6])
		}
		return ""
	}

	if m := rgbPattern.FindStringSubmatch(c); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		if r > 255 || g > 255 || b > 255 {
			return ""
		}
		return fmt.Sprintf("#%02X%02X%02X", r, g, b)
	}

	return ""
}
