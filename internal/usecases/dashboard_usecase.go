package usecases

import (
	"context"
	"errors"
	"fmt"

	"orderbot/internal/entities"
	"orderbot/internal/interfaces"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

// DashboardUsecase serves the admin panel: order listings, partner stats and
// the manual status/payment transitions.
type DashboardUsecase struct {
	users    interfaces.UserStore
	orders   interfaces.OrderStore
	payments interfaces.PaymentStore
}

func NewDashboardUsecase(users interfaces.UserStore, orders interfaces.OrderStore, payments interfaces.PaymentStore) *DashboardUsecase {
	return &DashboardUsecase{
		users:    users,
		orders:   orders,
		payments: payments,
	}
}

// UserInfo is the display slice of a user embedded in order views.
type UserInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type OrderView struct {
	Order   entities.Order `json:"order"`
	User    *UserInfo      `json:"user,omitempty"`
	Partner *UserInfo      `json:"partner,omitempty"`
}

type DashboardStats struct {
	TotalOrders     int     `json:"total_orders"`
	NewOrders       int     `json:"new_orders"`
	TotalPartners   int     `json:"total_partners"`
	PendingPayments float64 `json:"pending_payments"`
}

type PartnerStat struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Username        string  `json:"username"`
	Referrals       int     `json:"referrals"`
	CompletedOrders int     `json:"completed_orders"`
	PendingAmount   float64 `json:"pending_amount"`
	PaidAmount      float64 `json:"paid_amount"`
}

// Stats returns the overview numbers for the dashboard landing view.
func (u *DashboardUsecase) Stats(ctx context.Context) (*DashboardStats, error) {
	total, err := u.orders.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	fresh, err := u.orders.CountByStatus(ctx, entities.StatusNew)
	if err != nil {
		return nil, fmt.Errorf("count new orders: %w", err)
	}
	partners, err := u.users.CountPartners(ctx)
	if err != nil {
		return nil, fmt.Errorf("count partners: %w", err)
	}
	pending, err := u.payments.SumPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum pending payments: %w", err)
	}
	return &DashboardStats{
		TotalOrders:     total,
		NewOrders:       fresh,
		TotalPartners:   partners,
		PendingPayments: pending,
	}, nil
}

// ListOrders returns orders newest-first, optionally filtered by status
// and/or partner, with client and partner display info resolved.
func (u *DashboardUsecase) ListOrders(ctx context.Context, filter interfaces.OrderFilter) ([]OrderView, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	orders, err := u.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	views := make([]OrderView, 0, len(orders))
	cache := make(map[int64]*UserInfo)
	for _, order := range orders {
		view := OrderView{Order: order}
		view.User, err = u.userInfo(ctx, cache, order.UserID)
		if err != nil {
			return nil, err
		}
		if order.PartnerID != nil {
			view.Partner, err = u.userInfo(ctx, cache, *order.PartnerID)
			if err != nil {
				return nil, err
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (u *DashboardUsecase) userInfo(ctx context.Context, cache map[int64]*UserInfo, id int64) (*UserInfo, error) {
	if info, ok := cache[id]; ok {
		return info, nil
	}
	user, err := u.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user %d: %w", id, err)
	}
	if user == nil {
		cache[id] = nil
		return nil, nil
	}
	info := &UserInfo{ID: user.ID, Name: user.DisplayName(), Username: user.Username}
	cache[id] = info
	return info, nil
}

// ListUserOrders returns the ordering user's own orders, newest first.
func (u *DashboardUsecase) ListUserOrders(ctx context.Context, userID int64) ([]entities.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// PartnerStats aggregates per-partner referral and commission figures.
func (u *DashboardUsecase) PartnerStats(ctx context.Context) ([]PartnerStat, error) {
	partners, err := u.users.ListPartners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}

	stats := make([]PartnerStat, 0, len(partners))
	for i := range partners {
		stat, err := u.PartnerSummary(ctx, &partners[i])
		if err != nil {
			return nil, err
		}
		stats = append(stats, *stat)
	}
	return stats, nil
}

// PartnerSummary computes one partner's stats; also used by the bot's
// partner-program screen.
func (u *DashboardUsecase) PartnerSummary(ctx context.Context, partner *entities.User) (*PartnerStat, error) {
	referrals, err := u.users.CountReferrals(ctx, partner.ID)
	if err != nil {
		return nil, fmt.Errorf("count referrals: %w", err)
	}
	orders, err := u.orders.ListByPartner(ctx, partner.ID)
	if err != nil {
		return nil, fmt.Errorf("list partner orders: %w", err)
	}
	completed := 0
	for _, o := range orders {
		if o.Status == entities.StatusCompleted {
			completed++
		}
	}
	pending, err := u.payments.SumByPartner(ctx, partner.ID, false)
	if err != nil {
		return nil, fmt.Errorf("sum pending: %w", err)
	}
	paid, err := u.payments.SumByPartner(ctx, partner.ID, true)
	if err != nil {
		return nil, fmt.Errorf("sum paid: %w", err)
	}

	return &PartnerStat{
		ID:              partner.ID,
		Name:            partner.DisplayName(),
		Username:        partner.Username,
		Referrals:       referrals,
		CompletedOrders: completed,
		PendingAmount:   pending,
		PaidAmount:      paid,
	}, nil
}

// UpdateOrderStatus moves an order to one of the known statuses.
func (u *DashboardUsecase) UpdateOrderStatus(ctx context.Context, orderID int64, status entities.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	found, err := u.orders.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// DeleteOrder removes an order administratively.
func (u *DashboardUsecase) DeleteOrder(ctx context.Context, orderID int64) error {
	found, err := u.orders.Delete(ctx, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}

// MarkPaymentPaid settles a commission; the store keeps the payment row and
// the order's partner_paid flag in sync transactionally.
func (u *DashboardUsecase) MarkPaymentPaid(ctx context.Context, paymentID int64) error {
	found, err := u.payments.MarkPaid(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	return nil
}
