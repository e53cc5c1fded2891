package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestIntentFlags(t *testing.T) {
	f := &intentFlags{}
	cmd := &cobra.Command{Use: "link"}
	f.bind(cmd)

	if err := cmd.ParseFlags([]string{"--pa", "shop@upi", "--pn", "Shop", "--am", "12.5", "--cgst", "1.1"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	p := f.intent(cmd)
	if p.PayeeUPI != "shop@upi" || p.PayeeName != "Shop" || p.Amount != 12.5 {
		t.Errorf("unexpected intent: %+v", p)
	}
	if p.GST == nil || p.GST.CGST == nil || *p.GST.CGST != 1.1 {
		t.Fatalf("Expected CGST 1.1, got %+v", p.GST)
	}
	if p.GST.Total != nil || p.GST.SGST != nil || p.GST.IGST != nil {
		t.Error("unset GST fields should stay nil")
	}
}

func TestIntentFlags_NoGST(t *testing.T) {
	f := &intentFlags{}
	cmd := &cobra.Command{Use: "link"}
	f.bind(cmd)

	if err := cmd.ParseFlags([]string{"--pa", "a@b", "--pn", "A"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if p := f.intent(cmd); p.GST != nil {
		t.Errorf("Expected no GST breakdown, got %+v", p.GST)
	}
}
