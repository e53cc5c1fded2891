package links

import (
	"fmt"
	"math"
)

// ValidationError reports a PaymentIntent (or render option) that cannot be
// turned into a UPI link.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError builds a ValidationError for callers outside the package.
func NewValidationError(field, format string, args ...interface{}) error {
	return invalid(field, format, args...)
}

// ValidateIntent checks the fields a UPI link cannot be built without.
func ValidateIntent(intent *PaymentIntent) error {
	if intent == nil {
		return invalid("intent", "payment intent is required")
	}

	if intent.PayeeUPI == "" || intent.PayeeName == "" || intent.Amount == 0 {
		field := "amount"
		switch {
		case intent.PayeeUPI == "":
			field = "payee_upi"
		case intent.PayeeName == "":
			field = "payee_name"
		}
		return invalid(field,
			`"payee_upi", "payee_name", "amount > 0" are required. Received payee_upi: %q | payee_name: %q | amount: %v`,
			intent.PayeeUPI, intent.PayeeName, intent.Amount)
	}

	if !isNumber(intent.Amount) || intent.Amount <= 0 {
		return invalid("amount", `"amount" must be a number > 0. Received: %v`, intent.Amount)
	}

	if gst := intent.GST; gst != nil {
		for _, f := range []struct {
			name string
			val  *float64
		}{
			{"gst.total", gst.Total},
			{"gst.cgst", gst.CGST},
			{"gst.sgst", gst.SGST},
			{"gst.igst", gst.IGST},
		} {
			if f.val == nil {
				continue
			}
			if !isNumber(*f.val) || *f.val < 0 {
				return invalid(f.name, `"total/cgst/sgst/igst" must be a number >= 0. Received %s: %v`, f.name, *f.val)
			}
		}
	}

	if intent.QRExpireDays < 0 {
		return invalid("qr_expire_days", `"qr_expire_days" must be > 0 for a future expiry. Received: %d`, intent.QRExpireDays)
	}

	return nil
}

func isNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
