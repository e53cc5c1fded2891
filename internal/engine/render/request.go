package render

import (
	"encoding/base64"
	"strings"

	"upiqr/internal/engine/links"
)

type Format string

const (
	FormatDataURL Format = "dataurl"
	FormatPNG     Format = "png"
	FormatSVG     Format = "svg"
)

const (
	DefaultDark  = "#000000"
	DefaultLight = "#ffffff"
)

// ParseFormat maps user input to a Format. Empty input selects FormatDataURL.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatDataURL:
		return FormatDataURL, nil
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", links.NewValidationError("format", "unsupported format %q", s)
}

// Request describes one QR render. Zero values select the defaults.
type Request struct {
	Intent   links.PaymentIntent `json:"intent"`
	Dark     string              `json:"dark,omitempty"`
	Light    string              `json:"light,omitempty"`
	Logo     string              `json:"logo,omitempty"`
	LogoSize float64             `json:"logo_size,omitempty"`
	Format   Format              `json:"format,omitempty"`
}

type RenderedImage struct {
	Format Format
	Data   []byte
	Link   string
	// LogoFallback is set when a logo was requested but could not be composited.
	LogoFallback bool
}

func (r *RenderedImage) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// String returns SVG markup for svg renders and a PNG data URI otherwise.
func (r *RenderedImage) String() string {
	if r.Format == FormatSVG {
		return string(r.Data)
	}
	return r.DataURL()
}

func (r *RenderedImage) ContentType() string {
	if r.Format == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}
