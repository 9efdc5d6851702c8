package repository

import (
	"context"
	"errors"

	"orderbot/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, telegram_id, username, first_name, last_name, referral_id, join_date, is_partner"

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(&user.ID, &user.TelegramID, &user.Username, &user.FirstName,
		&user.LastName, &user.ReferralID, &user.JoinDate, &user.IsPartner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO users (telegram_id, username, first_name, last_name, referral_id, is_partner)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, join_date`,
		user.TelegramID, user.Username, user.FirstName, user.LastName,
		user.ReferralID, user.IsPartner,
	).Scan(&user.ID, &user.JoinDate)
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE telegram_id = $1", telegramID))
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (r *UserRepository) MarkPartner(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "UPDATE users SET is_partner = TRUE WHERE id = $1", id)
	return err
}

func (r *UserRepository) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM users WHERE referral_id = $1", referrerID).Scan(&count)
	return count, err
}

func (r *UserRepository) ListPartners(ctx context.Context) ([]entities.User, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_partner = TRUE ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []entities.User
	for rows.Next() {
		var user entities.User
		if err := rows.Scan(&user.ID, &user.TelegramID, &user.Username, &user.FirstName,
			&user.LastName, &user.ReferralID, &user.JoinDate, &user.IsPartner); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) CountPartners(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM users WHERE is_partner = TRUE").Scan(&count)
	return count, err
}
