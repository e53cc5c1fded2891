// Package upiqr builds UPI payment deep links and renders them as QR codes.
package upiqr

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"upiqr/internal/engine/links"
	"upiqr/internal/engine/render"
)

type (
	PaymentIntent   = links.PaymentIntent
	GSTBreakdown    = links.GSTBreakdown
	ValidationError = links.ValidationError
	Format          = render.Format
	RenderedImage   = render.RenderedImage

	// LinkOptions is the input of UPILink.
	LinkOptions = links.PaymentIntent
	// QROptions is the input of UPIQR and Render.
	QROptions = render.Request
)

const (
	FormatDataURL = render.FormatDataURL
	FormatPNG     = render.FormatPNG
	FormatSVG     = render.FormatSVG
)

// Dropped logos are reported on stderr.
var composer = render.NewComposer(render.WithLogger(zerolog.New(os.Stderr).With().Timestamp().Logger()))

// UPILink returns the upi://pay URI for opts or a *ValidationError.
func UPILink(opts LinkOptions) (string, error) {
	return links.BuildLink(&opts)
}

// UPIQR renders opts as a PNG data URI, or as SVG markup for FormatSVG.
// A logo that cannot be drawn is dropped and the plain QR is returned.
func UPIQR(ctx context.Context, opts QROptions) (string, error) {
	img, err := Render(ctx, opts)
	if err != nil || img == nil {
		return "", err
	}
	return img.String(), nil
}

// Render is UPIQR for callers that want the encoded bytes.
func Render(ctx context.Context, opts QROptions) (*RenderedImage, error) {
	return composer.Render(ctx, &opts)
}
