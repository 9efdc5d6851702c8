package entities

import "time"

// PartnerPayment is the commission obligation created alongside an
// attributed order. At most one row exists per order.
type PartnerPayment struct {
	ID          int64      `json:"id"`
	PartnerID   int64      `json:"partner_id"`
	OrderID     int64      `json:"order_id"`
	Amount      float64    `json:"amount"`
	Percent     float64    `json:"percent"`
	Paid        bool       `json:"paid"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
