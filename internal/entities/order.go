package entities

import "time"

type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusInProgress OrderStatus = "in_progress"
	StatusCompleted  OrderStatus = "completed"
	StatusPaid       OrderStatus = "paid"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted, StatusPaid:
		return true
	default:
		return false
	}
}

type Order struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"user_id"`
	PartnerID      *int64      `json:"partner_id,omitempty"`
	BotType        string      `json:"bot_type"`
	Functionality  string      `json:"functionality"`
	TargetAudience string      `json:"target_audience"`
	Preferences    string      `json:"preferences"`
	Status         OrderStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	PartnerPaid    bool        `json:"partner_paid"`
	PartnerPercent float64     `json:"partner_percent"` // snapshotted at creation, never recomputed
	Amount         float64     `json:"amount"`
}

// Commission returns the partner's share of the order budget.
func (o *Order) Commission() float64 {
	return o.Amount * o.PartnerPercent / 100
}
