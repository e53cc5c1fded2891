package render

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

func init() {
	RegisterBackend("svg", func() Backend { return svgBackend{rasterBackend{}} })
}

// svgBackend is the raster backend plus SVG logos. Vector logos are kept as
// parsed icons and rasterised at the final logo side.
type svgBackend struct {
	rasterBackend
}

// maxPreviewSide bounds the preview raster whatever the viewBox claims.
const maxPreviewSide = 512

// vectorImage previews the icon at its intrinsic size, capped at
// maxPreviewSide, so it still satisfies image.Image for callers that never
// composite it.
type vectorImage struct {
	image.Image
	icon *oksvg.SvgIcon
}

func (svgBackend) Name() string { return "svg" }

func (b svgBackend) Decode(data []byte) (image.Image, error) {
	if !looksLikeSVG(data) {
		return b.rasterBackend.Decode(data)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	vb := math.Max(icon.ViewBox.W, icon.ViewBox.H)
	if !(vb > 0) || math.IsInf(vb, 0) {
		return nil, fmt.Errorf("svg has an empty viewBox")
	}
	side := int(math.Ceil(math.Min(vb, maxPreviewSide)))
	return &vectorImage{Image: rasterizeIcon(icon, side), icon: icon}, nil
}

func (b svgBackend) CompositeAt(dst draw.Image, src image.Image, x, y, side float64) error {
	if v, ok := src.(*vectorImage); ok && side > 0 && !math.IsInf(side, 0) {
		b := dst.Bounds()
		px := math.Min(math.Ceil(side), float64(max(b.Dx(), b.Dy())))
		src = rasterizeIcon(v.icon, max(int(px), 1))
	}
	return b.rasterBackend.CompositeAt(dst, src, x, y, side)
}

func rasterizeIcon(icon *oksvg.SvgIcon, side int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	icon.SetTarget(0, 0, float64(side), float64(side))

	scanner := rasterx.NewScannerGV(side, side, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(side, side, scanner), 1)
	return img
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.TrimSpace(head)
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}
