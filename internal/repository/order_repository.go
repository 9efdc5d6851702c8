package repository

import (
	"context"
	"errors"
	"fmt"

	"orderbot/internal/entities"
	"orderbot/internal/interfaces"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, user_id, partner_id, bot_type, functionality, target_audience,
	preferences, status, created_at, partner_paid, partner_percent, amount`

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	err := row.Scan(&o.ID, &o.UserID, &o.PartnerID, &o.BotType, &o.Functionality,
		&o.TargetAudience, &o.Preferences, &o.Status, &o.CreatedAt,
		&o.PartnerPaid, &o.PartnerPercent, &o.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateWithPayment inserts the order and its commission row in one
// transaction. Either both rows land or neither does.
func (r *OrderRepository) CreateWithPayment(ctx context.Context, order *entities.Order, payment *entities.PartnerPayment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, partner_id, bot_type, functionality, target_audience,
			preferences, status, partner_percent, amount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		order.UserID, order.PartnerID, order.BotType, order.Functionality,
		order.TargetAudience, order.Preferences, order.Status,
		order.PartnerPercent, order.Amount,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	if payment != nil {
		payment.OrderID = order.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO partner_payments (partner_id, order_id, amount, percent)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			payment.PartnerID, payment.OrderID, payment.Amount, payment.Percent,
		).Scan(&payment.ID, &payment.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert partner payment: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*entities.Order, error) {
	return scanOrder(r.db.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
}

func (r *OrderRepository) List(ctx context.Context, filter interfaces.OrderFilter) ([]entities.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders"
	var args []interface{}
	var where []string

	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PartnerID != 0 {
		args = append(args, filter.PartnerID)
		where = append(where, fmt.Sprintf("partner_id = $%d", len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]entities.Order, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *OrderRepository) ListByPartner(ctx context.Context, partnerID int64) ([]entities.Order, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE partner_id = $1 ORDER BY created_at DESC", partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]entities.Order, error) {
	var orders []entities.Order
	for rows.Next() {
		var o entities.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.PartnerID, &o.BotType, &o.Functionality,
			&o.TargetAudience, &o.Preferences, &o.Status, &o.CreatedAt,
			&o.PartnerPaid, &o.PartnerPercent, &o.Amount); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status entities.OrderStatus) (bool, error) {
	tag, err := r.db.Exec(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2", status, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	return count, err
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status entities.OrderStatus) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM orders WHERE status = $1", status).Scan(&count)
	return count, err
}
