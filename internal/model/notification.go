package model

import "time"

// Severity is the importance level attached to a notification by the server.
type Severity string

const (
	SeveritySuccess Severity = "SUCCESS"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Severities lists the known severity levels in display order.
var Severities = []Severity{
	SeveritySuccess,
	SeverityInfo,
	SeverityWarning,
	SeverityError,
}

// Known notification types emitted by the shop services. The type set is
// open: the server may send any tag and the client keeps it as-is.
const (
	TypeOrderCreated     = "ORDER_CREATED"
	TypeOrderCancelled   = "ORDER_CANCELLED"
	TypeLowStock         = "LOW_STOCK"
	TypePaymentConfirmed = "PAYMENT_CONFIRMED"
	TypeDirect           = "DIRECT"
	TypeTest             = "TEST"
)

// Notification represents one entry of the server-held notification list.
type Notification struct {
	// ID is the opaque, stable identifier assigned by the server.
	ID string `json:"id"`

	// Type is the category tag (e.g. ORDER_CREATED).
	Type string `json:"type"`

	// Severity is one of SUCCESS, INFO, WARNING or ERROR.
	Severity Severity `json:"severity"`

	// Title is the short headline.
	Title string `json:"title"`

	// Message is the human-readable body.
	Message string `json:"message"`

	// Timestamp is when the notification was created server-side.
	Timestamp time.Time `json:"timestamp"`

	// Read indicates whether the notification has been acknowledged.
	Read bool `json:"read"`
}

// Stats holds the aggregate counters reported by the stats endpoint. They
// are fetched independently of the notification list and may briefly
// disagree with it.
type Stats struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	ByType     map[string]int `json:"byType"`
	BySeverity map[string]int `json:"bySeverity,omitempty"`
	LastUpdate time.Time      `json:"lastUpdate,omitempty"`
}

// TestNotification is the payload for creating a debug notification.
type TestNotification struct {
	Type     string
	Title    string
	Message  string
	Severity Severity
}
