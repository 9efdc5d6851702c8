package usecases

import (
	"context"

	"orderbot/internal/entities"
	"orderbot/internal/interfaces"
)

// ReferralRates is the commission configuration of the partner program.
type ReferralRates struct {
	Standard         float64
	Premium          float64
	PremiumThreshold int // referrals needed for the premium rate
}

// Attribution decides the partner and commission rate for an order placed by
// a user with the given stored referrer and the referrer's current referral
// count. The returned percent is a snapshot: it is stored on the order and
// never recomputed, so a referrer crossing the threshold later does not
// change earlier orders.
func (r ReferralRates) Attribution(referralID *int64, referralCount int) (*int64, float64) {
	if referralID == nil {
		return nil, 0
	}
	if referralCount >= r.PremiumThreshold {
		return referralID, r.Premium
	}
	return referralID, r.Standard
}

// ReferralService resolves attribution against the user store.
type ReferralService struct {
	users interfaces.UserStore
	rates ReferralRates
}

func NewReferralService(users interfaces.UserStore, rates ReferralRates) *ReferralService {
	return &ReferralService{users: users, rates: rates}
}

func (s *ReferralService) Rates() ReferralRates {
	return s.rates
}

// Attribute computes partner linkage for an order being committed by user.
// The referral count is taken at this moment, per the snapshot rule.
func (s *ReferralService) Attribute(ctx context.Context, user *entities.User) (*int64, float64, error) {
	if user.ReferralID == nil {
		return nil, 0, nil
	}
	count, err := s.users.CountReferrals(ctx, *user.ReferralID)
	if err != nil {
		return nil, 0, err
	}
	partnerID, percent := s.rates.Attribution(user.ReferralID, count)
	return partnerID, percent, nil
}
