package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"strings"
	"testing"
)

// withDimensions rewrites the IHDR width and height of a PNG and fixes its CRC.
func withDimensions(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	if string(data[12:16]) != "IHDR" {
		t.Fatalf("first chunk is %q", data[12:16])
	}
	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecode_RejectsHugeImages(t *testing.T) {
	small := solidPNG(t, 4, red)

	tests := []struct {
		name string
		w, h uint32
	}{
		{"wide", 20000, 1},
		{"huge", 40000, 40000},
		{"too many pixels", 3000, 3000},
	}

	for _, name := range Backends() {
		backend, _ := NewBackend(name)
		for _, tt := range tests {
			_, err := backend.Decode(withDimensions(t, small, tt.w, tt.h))
			if !errors.Is(err, ErrImageTooLarge) {
				t.Errorf("%s/%s: error = %v, want ErrImageTooLarge", name, tt.name, err)
			}
		}

		img, err := backend.Decode(small)
		if err != nil || img.Bounds().Dx() != 4 {
			t.Errorf("%s: small image: %v", name, err)
		}
	}
}

const bigSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 6000 6000"><rect width="6000" height="6000" fill="#ff0000"/></svg>`

func TestSVGDecode_CapsPreview(t *testing.T) {
	img, err := svgBackend{}.Decode([]byte(bigSVG))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() > maxPreviewSide || b.Dy() > maxPreviewSide {
		t.Errorf("preview is %v", b)
	}
	if _, ok := img.(*vectorImage); !ok {
		t.Errorf("got %T, want *vectorImage", img)
	}

	empty := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 0 0"></svg>`
	if _, err := (svgBackend{}).Decode([]byte(empty)); err == nil {
		t.Error("expected error for empty viewBox")
	}
}

func TestSVGCompositeAt_ClampsToSurface(t *testing.T) {
	logo, err := svgBackend{}.Decode([]byte(bigSVG))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	dst := image.NewNRGBA(image.Rect(0, 0, 64, 64))

	if err := (svgBackend{}).CompositeAt(dst, logo, -1e6, -1e6, 1e7); err != nil {
		t.Fatalf("CompositeAt: %v", err)
	}
	if !isRed(dst.At(32, 32)) {
		t.Errorf("centre = %v", dst.At(32, 32))
	}
}

func TestRender_OversizedLogos(t *testing.T) {
	c, logs := testComposer()

	plain, err := c.Render(context.Background(), &Request{Intent: testIntent, Format: FormatPNG})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := decodePNG(t, plain.Data).Bounds()

	svgURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(bigSVG))
	out, err := c.Render(context.Background(), &Request{Intent: testIntent, Logo: svgURI, LogoSize: 1e6, Format: FormatPNG})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.LogoFallback {
		t.Errorf("oversized logo_size should be clamped, logs: %s", logs.String())
	}
	img := decodePNG(t, out.Data)
	if img.Bounds() != want {
		t.Errorf("bounds = %v, want %v", img.Bounds(), want)
	}
	if !isRed(centre(img)) {
		t.Error("logo not drawn")
	}

	logs.Reset()
	bomb := withDimensions(t, solidPNG(t, 4, red), 30000, 30000)
	pngURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(bomb)
	out, err = c.Render(context.Background(), &Request{Intent: testIntent, Logo: pngURI, Format: FormatPNG})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !out.LogoFallback || !bytes.Equal(out.Data, plain.Data) {
		t.Error("expected the plain QR back")
	}
	if !strings.Contains(logs.String(), `"stage":"decode"`) {
		t.Errorf("logs = %s", logs.String())
	}
}
