package repository

import (
	"context"
	"errors"
	"fmt"

	"orderbot/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*entities.PartnerPayment, error) {
	var p entities.PartnerPayment
	err := r.db.QueryRow(ctx,
		`SELECT id, partner_id, order_id, amount, percent, paid, payment_date, created_at
		 FROM partner_payments WHERE id = $1`, id,
	).Scan(&p.ID, &p.PartnerID, &p.OrderID, &p.Amount, &p.Percent, &p.Paid, &p.PaymentDate, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkPaid flips the commission row and the owning order's partner_paid flag
// in the same transaction so the two never drift apart.
func (r *PaymentRepository) MarkPaid(ctx context.Context, id int64) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin payment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderID int64
	err = tx.QueryRow(ctx,
		`UPDATE partner_payments SET paid = TRUE, payment_date = CURRENT_TIMESTAMP
		 WHERE id = $1 RETURNING order_id`, id,
	).Scan(&orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mark payment paid: %w", err)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE orders SET partner_paid = TRUE WHERE id = $1", orderID); err != nil {
		return false, fmt.Errorf("sync order partner_paid: %w", err)
	}

	return true, tx.Commit(ctx)
}

func (r *PaymentRepository) SumByPartner(ctx context.Context, partnerID int64, paid bool) (float64, error) {
	var sum float64
	err := r.db.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM partner_payments WHERE partner_id = $1 AND paid = $2",
		partnerID, paid).Scan(&sum)
	return sum, err
}

func (r *PaymentRepository) SumPending(ctx context.Context) (float64, error) {
	var sum float64
	err := r.db.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM partner_payments WHERE paid = FALSE").Scan(&sum)
	return sum, err
}
