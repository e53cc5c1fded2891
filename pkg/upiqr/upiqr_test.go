package upiqr

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestUPILink(t *testing.T) {
	got, err := UPILink(LinkOptions{PayeeUPI: "a@bank", PayeeName: "A", Amount: 10})
	if err != nil {
		t.Fatalf("UPILink: %v", err)
	}
	if got != "upi://pay?pa=a%40bank&pn=A&am=10&cu=INR" {
		t.Errorf("UPILink() = %s", got)
	}

	_, err = UPILink(LinkOptions{PayeeUPI: "a@bank", PayeeName: "A", Amount: 10, GST: &GSTBreakdown{}})
	if err != nil {
		t.Errorf("empty GST record should be accepted, got %v", err)
	}

	neg := -1.0
	_, err = UPILink(LinkOptions{PayeeUPI: "a@bank", PayeeName: "A", Amount: 10, GST: &GSTBreakdown{CGST: &neg}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestUPILink_NoteRoundTrip(t *testing.T) {
	note := "Dinner for 2 @ Café; tip=10%"
	got, err := UPILink(LinkOptions{PayeeUPI: "a@bank", PayeeName: "A", Amount: 1, TransactionNote: note})
	if err != nil {
		t.Fatalf("UPILink: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	if u.Query().Get("tn") != note {
		t.Errorf("tn decoded to %q", u.Query().Get("tn"))
	}
}

func TestUPIQR(t *testing.T) {
	ctx := context.Background()
	intent := PaymentIntent{PayeeUPI: "a@bank", PayeeName: "A", Amount: 10}

	dataURL, err := UPIQR(ctx, QROptions{Intent: intent})
	if err != nil || !strings.HasPrefix(dataURL, "data:image/png;base64,") {
		t.Errorf("UPIQR(dataurl) = %.40s, %v", dataURL, err)
	}

	fallback, err := UPIQR(ctx, QROptions{Intent: intent, Logo: "/no/such/logo.png"})
	if err != nil {
		t.Fatalf("UPIQR with broken logo: %v", err)
	}
	if fallback != dataURL {
		t.Error("broken logo should yield the logo-less data URI")
	}

	svg, err := UPIQR(ctx, QROptions{Intent: intent, Format: FormatSVG})
	if err != nil || !strings.HasPrefix(svg, "<svg") {
		t.Errorf("UPIQR(svg) = %.40s, %v", svg, err)
	}

	img, err := Render(ctx, QROptions{Intent: intent, Format: FormatPNG})
	if err != nil || img.ContentType() != "image/png" || len(img.Data) == 0 {
		t.Errorf("Render(png) = %v, %v", img, err)
	}

	out, err := UPIQR(ctx, QROptions{Intent: PaymentIntent{PayeeName: "A", Amount: 1}})
	var verr *ValidationError
	if out != "" || !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %q, %v", out, err)
	}
}
