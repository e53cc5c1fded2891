package main

import (
	"github.com/spf13/cobra"

	"upiqr/internal/engine/links"
)

// intentFlags maps command line flags onto a PaymentIntent.
type intentFlags struct {
	p                          links.PaymentIntent
	gstTotal, cgst, sgst, igst float64
}

func (f *intentFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.p.PayeeUPI, "pa", "", "Payee UPI id")
	fs.StringVar(&f.p.PayeeName, "pn", "", "Payee name")
	fs.Float64Var(&f.p.Amount, "am", 0, "Amount in INR")
	fs.StringVar(&f.p.TransactionNote, "tn", "", "Transaction note")
	fs.StringVar(&f.p.MerchantCode, "mc", "", "Merchant category code")
	fs.StringVar(&f.p.TransactionRef, "tr", "", "Transaction reference")
	fs.StringVar(&f.p.TransactionID, "tid", "", "Transaction id")
	fs.StringVar(&f.p.InvoiceNo, "invoice-no", "", "Invoice number")
	fs.BoolVar(&f.p.InvoiceDate, "invoice-date", false, "Stamp the invoice date")
	fs.StringVar(&f.p.GSTNo, "gst-no", "", "Payee GSTIN")
	fs.IntVar(&f.p.QRExpireDays, "expire-days", 0, "Days until the QR expires")
	fs.BoolVar(&f.p.QRTimestamp, "timestamp", false, "Stamp the QR creation time")
	fs.Float64Var(&f.gstTotal, "gst-total", 0, "GST total")
	fs.Float64Var(&f.cgst, "cgst", 0, "CGST amount")
	fs.Float64Var(&f.sgst, "sgst", 0, "SGST amount")
	fs.Float64Var(&f.igst, "igst", 0, "IGST amount")
	cmd.MarkFlagRequired("pa")
	cmd.MarkFlagRequired("pn")
}

// intent returns the bound intent. The GST breakdown is attached only when
// one of its flags was given; the others render as undefined.
func (f *intentFlags) intent(cmd *cobra.Command) *links.PaymentIntent {
	p := f.p
	var gst links.GSTBreakdown
	set := false
	for name, dst := range map[string]**float64{"gst-total": &gst.Total, "cgst": &gst.CGST, "sgst": &gst.SGST, "igst": &gst.IGST} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, _ := cmd.Flags().GetFloat64(name)
		*dst = &v
		set = true
	}
	if set {
		p.GST = &gst
	}
	return &p
}
