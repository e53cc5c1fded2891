package render

import (
	"fmt"

	"github.com/skip2/go-qrcode"
	"rsc.io/qr"
)

// Encoder turns a payload into a square module matrix without quiet zone.
// matrix[y][x] is true for a dark module.
type Encoder interface {
	Name() string
	Matrix(content string) ([][]bool, error)
}

var defaultEncoder Encoder = Skip2Encoder{Level: qrcode.Medium}

type Skip2Encoder struct {
	Level qrcode.RecoveryLevel
}

func (Skip2Encoder) Name() string { return "skip2" }

func (e Skip2Encoder) Matrix(content string) ([][]bool, error) {
	q, err := qrcode.New(content, e.Level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	return q.Bitmap(), nil
}

type RSCEncoder struct {
	Level qr.Level
}

func (RSCEncoder) Name() string { return "rsc" }

func (e RSCEncoder) Matrix(content string) ([][]bool, error) {
	code, err := qr.Encode(content, e.Level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	m := make([][]bool, code.Size)
	for y := range m {
		m[y] = make([]bool, code.Size)
		for x := range m[y] {
			m[y][x] = code.Black(x, y)
		}
	}
	return m, nil
}

// NewEncoder returns the named encoder at medium error correction.
func NewEncoder(name string) (Encoder, error) {
	switch name {
	case "", "skip2":
		return defaultEncoder, nil
	case "rsc":
		return RSCEncoder{Level: qr.M}, nil
	}
	return nil, fmt.Errorf("unknown qr encoder %q", name)
}
