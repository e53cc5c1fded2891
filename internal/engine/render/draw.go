package render

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"upiqr/internal/engine/links"
)

const (
	quietZone   = 2
	moduleScale = 8
)

func symbolSize(matrix [][]bool) int {
	return (len(matrix) + 2*quietZone) * moduleScale
}

// drawMatrix paints the symbol with its quiet zone at moduleScale px per module.
func drawMatrix(matrix [][]bool, dark, light color.NRGBA) *image.NRGBA {
	side := symbolSize(matrix)
	img := image.NewNRGBA(image.Rect(0, 0, side, side))

	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = light.R, light.G, light.B, light.A
	}

	for my, row := range matrix {
		for mx, on := range row {
			if !on {
				continue
			}
			x0 := (mx + quietZone) * moduleScale
			y0 := (my + quietZone) * moduleScale
			for y := y0; y < y0+moduleScale; y++ {
				for x := x0; x < x0+moduleScale; x++ {
					img.SetNRGBA(x, y, dark)
				}
			}
		}
	}
	return img
}

// drawSVG emits the symbol as one background rect and one path of dark runs,
// in module units scaled by the outer width and height.
func drawSVG(matrix [][]bool, dark, light color.NRGBA) []byte {
	n := len(matrix) + 2*quietZone
	px := n * moduleScale

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, px, px, n, n)
	fmt.Fprintf(&b, `<path fill="%s"%s d="M0 0h%dv%dH0z"/>`, svgHex(light), svgOpacity("fill", light), n, n)

	b.WriteString(`<path fill="` + svgHex(dark) + `"` + svgOpacity("fill", dark) + ` d="`)
	for y, row := range matrix {
		for x := 0; x < len(row); x++ {
			if !row[x] {
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			fmt.Fprintf(&b, "M%d %dh%dv1h-%dz", start+quietZone, y+quietZone, x-start, x-start)
		}
	}
	b.WriteString(`"/></svg>`)
	return []byte(b.String())
}

func svgHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func svgOpacity(attr string, c color.NRGBA) string {
	if c.A == 0xff {
		return ""
	}
	return fmt.Sprintf(` %s-opacity="%s"`, attr, strconv.FormatFloat(float64(c.A)/255, 'f', 2, 64))
}

// parseHexColor accepts #RGB, #RGBA, #RRGGBB and #RRGGBBAA, with or without the hash.
func parseHexColor(field, s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3, 4:
		var sb strings.Builder
		for _, r := range hex {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		hex = sb.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, links.NewValidationError(field, "invalid hex colour %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, links.NewValidationError(field, "invalid hex colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
