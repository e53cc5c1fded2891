package links

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// PaymentIntent is the input to the UPI link builder. Empty strings, false flags
// and zero numbers mean "not supplied".
type PaymentIntent struct {
	PayeeUPI        string        `json:"payee_upi"`
	PayeeName       string        `json:"payee_name"`
	Amount          float64       `json:"amount"`
	TransactionNote string        `json:"transaction_note,omitempty"`
	MerchantCode    string        `json:"merchant_code,omitempty"`
	TransactionRef  string        `json:"transaction_ref,omitempty"`
	TransactionID   string        `json:"transaction_id,omitempty"`
	GST             *GSTBreakdown `json:"gst,omitempty"`
	InvoiceNo       string        `json:"invoice_no,omitempty"`
	InvoiceDate     bool          `json:"invoice_date,omitempty"`
	QRExpireDays    int           `json:"qr_expire_days,omitempty"`
	QRTimestamp     bool          `json:"qr_timestamp,omitempty"`
	GSTNo           string        `json:"gst_no,omitempty"`
}

// GSTBreakdown carries the tax split rendered into the gstBrkUp parameter.
// A nil field is rendered as "undefined".
type GSTBreakdown struct {
	Total *float64 `json:"total,omitempty"`
	CGST  *float64 `json:"cgst,omitempty"`
	SGST  *float64 `json:"sgst,omitempty"`
	IGST  *float64 `json:"igst,omitempty"`
}

// Value implements the driver.Valuer interface for PaymentIntent
func (p PaymentIntent) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements the sql.Scanner interface for PaymentIntent
func (p *PaymentIntent) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, p)
}

const (
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusExpired  = "expired"
	StatusArchived = "archived"
)

// PaymentLink is a saved PaymentIntent reachable through a short code.
type PaymentLink struct {
	ID           string        `json:"id"`
	ShortCode    string        `json:"short_code"`
	Title        string        `json:"title"`
	CreatedBy    string        `json:"created_by"`
	Intent       PaymentIntent `json:"intent"`
	Status       string        `json:"status"` // active, paused, expired, archived
	ExpiresAt    *int64        `json:"expires_at,omitempty"`
	PasswordHash string        `json:"-"`
	ScanCount    int           `json:"scan_count"`
	LastScanAt   *int64        `json:"last_scan_at,omitempty"`
	CreatedAt    int64         `json:"created_at"`
	UpdatedAt    int64         `json:"updated_at"`
}

// Protected reports whether scanning the link requires a password.
func (l *PaymentLink) Protected() bool {
	return l.PasswordHash != ""
}

// Expired reports whether the link is past its expiry at unix time now.
func (l *PaymentLink) Expired(now int64) bool {
	return l.ExpiresAt != nil && *l.ExpiresAt <= now
}
