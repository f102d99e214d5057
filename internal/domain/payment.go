package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusExpired   PaymentStatus = "expired"
)

// Payment tracks the gateway transaction settling a booking. At most one
// payment row exists per booking; the reference identifies the current
// attempt to the gateway and stays stable while the attempt is pending.
type Payment struct {
	ID                 int64          `json:"id"`
	BookingID          int64          `json:"booking_id"`
	Reference          string         `json:"reference"`
	ChapaTransactionID string         `json:"chapa_transaction_id"`
	Amount             float64        `json:"amount"`
	Currency           string         `json:"currency"`
	Status             PaymentStatus  `json:"status"`
	CheckoutURL        string         `json:"checkout_url"`
	RawResponse        map[string]any `json:"raw_response,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Settled reports whether the payment reached its terminal success state.
// A settled payment is immutable; no further gateway calls may mutate it.
func (p *Payment) Settled() bool {
	return p.Status == PaymentStatusCompleted
}
