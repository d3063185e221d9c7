package qrgen

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var ErrInvalidColor = errors.New("invalid color")

// ParseColor accepts SVG color names, "transparent", #rgb, #rgba, #rrggbb,
// #rrggbbaa and rgb(r, g, b).
func ParseColor(spec string) (color.Color, error) {
	s := strings.ToLower(strings.TrimSpace(spec))

	switch {
	case s == "transparent":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseRGB(s)
	}

	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidColor, spec)
}

func parseHex(s string) (color.Color, error) {
	// colorful.Hex stops at the first non-hex rune without complaint.
	if _, err := strconv.ParseUint(s[1:], 16, 32); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	alpha := uint8(0xff)

	switch len(s) {
	case 4, 7:
	case 5:
		a, _ := strconv.ParseUint(s[4:], 16, 8)
		alpha = uint8(a * 0x11)
		s = s[:4]
	case 9:
		a, _ := strconv.ParseUint(s[7:], 16, 8)
		alpha = uint8(a)
		s = s[:7]
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	r, g, b := c.RGB255()

	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

func parseRGB(s string) (color.Color, error) {
	parts := strings.Split(s[len("rgb("):len(s)-1], ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	var v [3]uint8

	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}

		v[i] = uint8(n)
	}

	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: 0xff}, nil
}
