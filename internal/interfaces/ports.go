package interfaces

import (
	"context"

	"orderbot/internal/entities"
)

// UserStore is the persistence surface for users and the referral relation.
type UserStore interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error)
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	MarkPartner(ctx context.Context, id int64) error
	CountReferrals(ctx context.Context, referrerID int64) (int, error)
	ListPartners(ctx context.Context) ([]entities.User, error)
	CountPartners(ctx context.Context) (int, error)
}

// OrderFilter narrows order listings. Zero values mean "no filter".
type OrderFilter struct {
	Status    entities.OrderStatus
	PartnerID int64
}

type OrderStore interface {
	// CreateWithPayment persists the order and, when payment is non-nil, its
	// commission row in a single transaction.
	CreateWithPayment(ctx context.Context, order *entities.Order, payment *entities.PartnerPayment) error
	GetByID(ctx context.Context, id int64) (*entities.Order, error)
	// List returns orders newest-first.
	List(ctx context.Context, filter OrderFilter) ([]entities.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]entities.Order, error)
	ListByPartner(ctx context.Context, partnerID int64) ([]entities.Order, error)
	UpdateStatus(ctx context.Context, id int64, status entities.OrderStatus) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status entities.OrderStatus) (int, error)
}

type PaymentStore interface {
	GetByID(ctx context.Context, id int64) (*entities.PartnerPayment, error)
	// MarkPaid flips the payment and synchronizes the owning order's
	// partner_paid flag in the same transaction.
	MarkPaid(ctx context.Context, id int64) (bool, error)
	SumByPartner(ctx context.Context, partnerID int64, paid bool) (float64, error)
	SumPending(ctx context.Context) (float64, error)
}

// Sender delivers a plain text message to a chat.
type Sender interface {
	SendMessage(chatID int64, content string) error
}
