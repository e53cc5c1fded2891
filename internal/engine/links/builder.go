package links

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// Currency is the only currency UPI deep links carry.
	Currency = "INR"

	upiPrefix = "upi://pay?"
	day       = 24 * time.Hour

	// isoOffsetLayout renders local time with a numeric offset, never "Z".
	isoOffsetLayout = "2006-01-02T15:04:05-07:00"
)

// Builder assembles UPI deep links from validated payment intents.
type Builder struct {
	now func() time.Time
}

type BuilderOption func(*Builder)

// WithClock replaces the wall clock used for invoiceDate, QRts and QRexpire.
// The returned time's location decides the rendered offset.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var defaultBuilder = NewBuilder()

// BuildLink builds a UPI deep link using the process clock.
func BuildLink(intent *PaymentIntent) (string, error) {
	return defaultBuilder.Build(intent)
}

// Build validates the intent and returns the upi://pay URI. Nothing is returned
// unless every check passes.
func (b *Builder) Build(intent *PaymentIntent) (string, error) {
	if err := ValidateIntent(intent); err != nil {
		return "", err
	}

	now := b.now()

	var sb strings.Builder
	sb.WriteString(upiPrefix)
	sb.WriteString("pa=" + EncodeComponent(intent.PayeeUPI))
	sb.WriteString("&pn=" + EncodeComponent(intent.PayeeName))
	sb.WriteString("&am=" + EncodeComponent(FormatNumber(intent.Amount)))
	sb.WriteString("&cu=" + Currency)

	param := func(key, value string) {
		sb.WriteString("&" + key + "=" + EncodeComponent(value))
	}

	if intent.TransactionNote != "" {
		param("tn", intent.TransactionNote)
	}
	if intent.MerchantCode != "" {
		param("mc", intent.MerchantCode)
	}
	if intent.TransactionRef != "" {
		param("tr", intent.TransactionRef)
	}
	if intent.TransactionID != "" {
		param("tid", intent.TransactionID)
	}
	if intent.InvoiceNo != "" {
		param("invoiceNo", intent.InvoiceNo)
	}
	if gst := intent.GST; gst != nil {
		// Emitted whenever the record exists; missing parts stay "undefined".
		param("gstBrkUp", "GST:"+formatOptional(gst.Total)+
			"|CGST:"+formatOptional(gst.CGST)+
			"|SGST:"+formatOptional(gst.SGST)+
			"|IGST:"+formatOptional(gst.IGST))
	}
	if intent.InvoiceDate {
		param("invoiceDate", FormatTimestamp(now))
	}
	if intent.QRTimestamp {
		param("QRts", FormatTimestamp(now))
	}
	if intent.QRExpireDays > 0 {
		param("QRexpire", FormatTimestamp(ExpiryTime(now, intent.QRExpireDays)))
	}
	if intent.GSTNo != "" {
		param("gstIn", intent.GSTNo)
	}

	return sb.String(), nil
}

// ExpiryTime is now plus the given number of whole days.
func ExpiryTime(now time.Time, days int) time.Time {
	return now.Add(time.Duration(days) * day)
}

// FormatTimestamp renders t in its own location as YYYY-MM-DDTHH:mm:ss±HH:MM.
func FormatTimestamp(t time.Time) string {
	return t.Format(isoOffsetLayout)
}

// FormatNumber renders v in its shortest round-trip decimal form (10, 10.5).
// Exponent notation is never used, so 1e21 prints all of its digits.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return FormatNumber(*v)
}

// componentUnescaper restores the marks encodeURIComponent leaves alone but
// url.QueryEscape escapes.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes a single query value the way
// encodeURIComponent does: A-Z a-z 0-9 - _ . ! ~ * ' ( ) stay literal and
// spaces become %20.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
