package usecases

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"orderbot/internal/entities"
	"orderbot/internal/interfaces"
)

// UserService handles lazy user creation on first contact, including the
// one-time referral linkage carried in the /start payload.
type UserService struct {
	users interfaces.UserStore
}

func NewUserService(users interfaces.UserStore) *UserService {
	return &UserService{users: users}
}

// GetOrCreate returns the stored user for telegramID, creating one on first
// contact. referralCode is the raw /start payload; when it names an existing
// user, the new user is linked to that referrer and both sides become
// partners. An existing user's referral linkage is never reassigned.
func (s *UserService) GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName, referralCode string) (*entities.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &entities.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
	}

	referrer := s.resolveReferrer(ctx, referralCode, telegramID)
	if referrer != nil {
		user.ReferralID = &referrer.ID
		user.IsPartner = true
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if referrer != nil && !referrer.IsPartner {
		if err := s.users.MarkPartner(ctx, referrer.ID); err != nil {
			log.Printf("[bot] failed to mark referrer %d as partner: %v", referrer.ID, err)
		}
	}

	return user, nil
}

// resolveReferrer parses the /start payload into a referrer. Bad codes and
// self-referrals are silently dropped: the user is still registered.
func (s *UserService) resolveReferrer(ctx context.Context, code string, newUserTelegramID int64) *entities.User {
	if code == "" {
		return nil
	}
	id, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return nil
	}
	referrer, err := s.users.GetByID(ctx, id)
	if err != nil {
		log.Printf("[bot] referrer lookup failed for code %q: %v", code, err)
		return nil
	}
	if referrer == nil || referrer.TelegramID == newUserTelegramID {
		return nil
	}
	return referrer
}
