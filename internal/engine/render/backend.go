package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"sort"
	"sync"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/webp"
)

// Backend is the raster toolkit the composer draws with.
type Backend interface {
	Name() string
	// Decode reads PNG, JPEG, GIF, BMP or WebP data. Backends may accept more.
	Decode(data []byte) (image.Image, error)
	// NewSurface returns a drawable copy of base.
	NewSurface(base image.Image) draw.Image
	// CompositeAt scales src to side x side and draws it over dst with its
	// top-left corner at (x, y). Coordinates may be fractional.
	CompositeAt(dst draw.Image, src image.Image, x, y, side float64) error
	EncodePNG(img image.Image) ([]byte, error)
}

const DefaultBackend = "svg"

// Limits on decoded images. The largest QR drawn is well under maxImageSide.
const (
	maxImageSide   = 4096
	maxImagePixels = 2048 * 2048
)

var ErrImageTooLarge = errors.New("image too large")

var (
	backendsMu sync.RWMutex
	backends   = map[string]func() Backend{}
)

// RegisterBackend makes a backend available by name. It panics on duplicates.
func RegisterBackend(name string, factory func() Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if _, dup := backends[name]; dup {
		panic("render: backend registered twice: " + name)
	}
	backends[name] = factory
}

// NewBackend returns the named backend; an empty name selects DefaultBackend.
func NewBackend(name string) (Backend, error) {
	if name == "" {
		name = DefaultBackend
	}

	backendsMu.RLock()
	factory, ok := backends[name]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown render backend %q (have %v)", name, Backends())
	}
	return factory(), nil
}

func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterBackend("raster", func() Backend { return rasterBackend{} })
}

type rasterBackend struct{}

func (rasterBackend) Name() string { return "raster" }

func (rasterBackend) Decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if err := checkImageSize(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func checkImageSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("decode image: empty %dx%d image", w, h)
	}
	if w > maxImageSide || h > maxImageSide || w*h > maxImagePixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, w, h)
	}
	return nil
}

func (rasterBackend) NewSurface(base image.Image) draw.Image {
	b := base.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), base, b.Min, draw.Src)
	return dst
}

func (rasterBackend) CompositeAt(dst draw.Image, src image.Image, x, y, side float64) error {
	sb := src.Bounds()
	if sb.Empty() {
		return fmt.Errorf("logo has no pixels")
	}
	if !(side > 0) || math.IsInf(side, 0) {
		return fmt.Errorf("invalid logo side %v", side)
	}

	sx := side / float64(sb.Dx())
	sy := side / float64(sb.Dy())
	s2d := f64.Aff3{
		sx, 0, x - sx*float64(sb.Min.X),
		0, sy, y - sy*float64(sb.Min.Y),
	}
	draw.BiLinear.Transform(dst, s2d, src, sb, draw.Over, nil)
	return nil
}

func (rasterBackend) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
