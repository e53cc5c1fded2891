package render

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"upiqr/internal/engine/links"
	"upiqr/internal/platform/config"
)

const minLogoSize = 5

// CompositeFailure wraps anything that went wrong while placing a logo.
// Render never returns it; the logo is dropped instead.
type CompositeFailure struct {
	Stage string
	Err   error
}

func (e *CompositeFailure) Error() string {
	return fmt.Sprintf("logo %s: %v", e.Stage, e.Err)
}

func (e *CompositeFailure) Unwrap() error {
	return e.Err
}

type compositeResult struct {
	png     []byte
	failure *CompositeFailure
}

func failed(stage string, err error) compositeResult {
	return compositeResult{failure: &CompositeFailure{Stage: stage, Err: err}}
}

// Composer turns payment intents into QR images, optionally with a logo in
// the centre. It is safe for concurrent use once built.
type Composer struct {
	builder *links.Builder
	encoder Encoder
	backend Backend
	loader  *LogoLoader
	logger  zerolog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithBuilder sets the link builder used to turn intents into UPI links.
func WithBuilder(b *links.Builder) Option {
	return func(c *Composer) { c.builder = b }
}

// WithEncoder selects the QR matrix encoder.
func WithEncoder(e Encoder) Option {
	return func(c *Composer) { c.encoder = e }
}

// WithBackend selects the raster backend used for PNG output and logos.
func WithBackend(b Backend) Option {
	return func(c *Composer) { c.backend = b }
}

// WithLoader sets where logos may be loaded from. See NewRestrictedLogoLoader.
func WithLoader(l *LogoLoader) Option {
	return func(c *Composer) { c.loader = l }
}

// WithLogger sets the logger that receives logo fallback warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

// NewComposer returns a Composer using the skip2 encoder, the svg backend and
// a permissive logo loader, and no logging, with opts applied on top. Servers should use
// FromConfig instead.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		builder: links.NewBuilder(),
		encoder: defaultEncoder,
		backend: svgBackend{},
		loader:  NewLogoLoader(0, DefaultMaxLogoBytes),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Composer) Backend() string { return c.backend.Name() }

// Render builds the UPI link for req.Intent and draws it as a QR code.
// Validation problems are returned as *links.ValidationError. A logo that cannot
// be loaded or drawn is logged and the plain QR is returned with LogoFallback set.
func (c *Composer) Render(ctx context.Context, req *Request) (*RenderedImage, error) {
	if req == nil {
		return nil, links.NewValidationError("intent", "render request is required")
	}

	link, err := c.builder.Build(&req.Intent)
	if err != nil {
		return nil, err
	}
	if link == "" {
		return nil, nil
	}

	format, err := ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}
	dark, err := parseHexColor("dark", orDefault(req.Dark, DefaultDark))
	if err != nil {
		return nil, err
	}
	light, err := parseHexColor("light", orDefault(req.Light, DefaultLight))
	if err != nil {
		return nil, err
	}

	matrix, err := c.encoder.Matrix(link)
	if err != nil {
		return nil, err
	}

	if format == FormatSVG {
		return &RenderedImage{Format: format, Data: drawSVG(matrix, dark, light), Link: link}, nil
	}

	qrPNG, err := c.backend.EncodePNG(drawMatrix(matrix, dark, light))
	if err != nil {
		return nil, err
	}
	out := &RenderedImage{Format: format, Data: qrPNG, Link: link}
	if req.Logo == "" {
		return out, nil
	}

	if req.LogoSize != 0 && (!(req.LogoSize > minLogoSize) || math.IsInf(req.LogoSize, 0)) {
		return nil, links.NewValidationError("logo_size", "logo size must be greater than %d px, got %v", minLogoSize, req.LogoSize)
	}

	res := c.composite(ctx, qrPNG, req.Logo, req.LogoSize)
	if res.failure != nil {
		c.logger.Warn().
			Err(res.failure).
			Str("stage", res.failure.Stage).
			Str("backend", c.backend.Name()).
			Str("logo", logoLabel(req.Logo)).
			Msg("logo composite failed, returning plain QR")
		out.LogoFallback = true
		return out, nil
	}

	out.Data = res.png
	return out, nil
}

func (c *Composer) composite(ctx context.Context, qrPNG []byte, logoSrc string, size float64) (res compositeResult) {
	defer func() {
		if r := recover(); r != nil {
			res = failed("composite", fmt.Errorf("panic: %v", r))
		}
	}()

	qr, err := c.backend.Decode(qrPNG)
	if err != nil {
		return failed("decode qr", err)
	}

	data, err := c.loader.Load(ctx, logoSrc)
	if err != nil {
		return failed("load", err)
	}
	logo, err := c.backend.Decode(data)
	if err != nil {
		return failed("decode", err)
	}

	surface := c.backend.NewSurface(qr)
	b := surface.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	side := size
	if side == 0 {
		side = w / 6
	}
	// never larger than the QR itself
	side = math.Min(side, math.Min(w, h))
	x := (w - side) / 2
	y := (h - side) / 2

	if err := c.backend.CompositeAt(surface, logo, x, y, side); err != nil {
		return failed("composite", err)
	}

	out, err := c.backend.EncodePNG(surface)
	if err != nil {
		return failed("encode", err)
	}
	return compositeResult{png: out}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// logoLabel keeps data URIs out of the logs.
func logoLabel(src string) string {
	if len(src) > 5 && src[:5] == "data:" {
		return "data-uri"
	}
	return src
}

// FromConfig builds a Composer for serving untrusted requests: the configured
// backend and encoder, and a restricted logo loader that accepts data URIs and
// https logos on cfg.LogoHosts. Pass WithLoader to widen it.
func FromConfig(cfg config.RenderConfig, opts ...Option) (*Composer, error) {
	backend, err := NewBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	encoder, err := NewEncoder(cfg.Encoder)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithBackend(backend),
		WithEncoder(encoder),
		WithLoader(NewRestrictedLogoLoader(cfg.LogoFetchTimeout, cfg.MaxLogoBytes, cfg.LogoHosts)),
	}
	return NewComposer(append(base, opts...)...), nil
}
