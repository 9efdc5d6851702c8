package usecases

import (
	"context"
	"strconv"
	"testing"

	"orderbot/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateFirstContact(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewUserService(store)

	user, err := service.GetOrCreate(ctx, 100, "anna", "Anna", "K", "")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Nil(t, user.ReferralID)
	assert.False(t, user.IsPartner)

	// Second contact returns the stored record.
	again, err := service.GetOrCreate(ctx, 100, "anna", "Anna", "K", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestGetOrCreateWithReferral(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewUserService(store)

	referrer, err := service.GetOrCreate(ctx, 100, "anna", "Anna", "", "")
	require.NoError(t, err)

	referred, err := service.GetOrCreate(ctx, 200, "boris", "Boris", "", strconv.FormatInt(referrer.ID, 10))
	require.NoError(t, err)

	require.NotNil(t, referred.ReferralID)
	assert.Equal(t, referrer.ID, *referred.ReferralID)
	assert.True(t, referred.IsPartner, "referred user becomes a partner")

	stored, err := store.GetByID(ctx, referrer.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPartner, "referrer becomes a partner")
}

func TestReferralNeverReassigned(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewUserService(store)

	first, _ := service.GetOrCreate(ctx, 100, "anna", "Anna", "", "")
	second, _ := service.GetOrCreate(ctx, 101, "carol", "Carol", "", "")

	referred, err := service.GetOrCreate(ctx, 200, "boris", "Boris", "", strconv.FormatInt(first.ID, 10))
	require.NoError(t, err)

	// Re-entering through a different referral link changes nothing.
	again, err := service.GetOrCreate(ctx, 200, "boris", "Boris", "", strconv.FormatInt(second.ID, 10))
	require.NoError(t, err)
	require.NotNil(t, again.ReferralID)
	assert.Equal(t, *referred.ReferralID, *again.ReferralID)
}

func TestBadReferralCodesIgnored(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewUserService(store)

	tests := []struct {
		name string
		code string
		tgID int64
	}{
		{"non-numeric", "friend", 201},
		{"unknown id", "9999", 202},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := service.GetOrCreate(ctx, tt.tgID, "u", "U", "", tt.code)
			require.NoError(t, err)
			assert.Nil(t, user.ReferralID)
			assert.False(t, user.IsPartner)
		})
	}
}

func TestSelfReferralRejected(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	service := NewUserService(store)

	// A user whose telegram id matches a link they crafted for themselves.
	existing := &entities.User{TelegramID: 300, FirstName: "Eve"}
	require.NoError(t, store.Create(ctx, existing))

	// Another person with the same link target is fine, but the owner's own
	// telegram account must not link to itself.
	user, err := service.GetOrCreate(ctx, 300, "eve", "Eve", "", strconv.FormatInt(existing.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID, "existing user is returned untouched")
	assert.Nil(t, user.ReferralID)
}
