package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{StatusNew, StatusInProgress, StatusCompleted, StatusPaid} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestCommission(t *testing.T) {
	order := &Order{Amount: 100000, PartnerPercent: 10}
	assert.Equal(t, 10000.0, order.Commission())

	order.PartnerPercent = 20
	assert.Equal(t, 20000.0, order.Commission())

	noPartner := &Order{Amount: 100000}
	assert.Zero(t, noPartner.Commission())
}

func TestUserDisplayNameAndHandle(t *testing.T) {
	u := &User{FirstName: "Anna", LastName: "K", Username: "anna"}
	assert.Equal(t, "Anna K", u.DisplayName())
	assert.Equal(t, "@anna", u.Handle())

	onlyUsername := &User{Username: "ghost"}
	assert.Equal(t, "ghost", onlyUsername.DisplayName())

	nameless := &User{FirstName: "Boris"}
	assert.Equal(t, "Boris", nameless.DisplayName())
	assert.Equal(t, "no username", nameless.Handle())
}
