package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"orderbot/internal/entities"
	"orderbot/internal/interfaces"
)

// memStore is an in-memory stand-in for the pgx repositories. It implements
// UserStore, OrderStore and PaymentStore so flow tests run without a
// database.
type memStore struct {
	mu          sync.Mutex
	users       map[int64]*entities.User
	orders      map[int64]*entities.Order
	payments    map[int64]*entities.PartnerPayment
	nextUser    int64
	nextOrder   int64
	nextPayment int64
	failCommit  bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[int64]*entities.User),
		orders:   make(map[int64]*entities.Order),
		payments: make(map[int64]*entities.PartnerPayment),
	}
}

// GetByID differs per store interface, so the order and payment views wrap
// memStore and shadow it.
type memOrderStore struct{ *memStore }
type memPaymentStore struct{ *memStore }

var _ interfaces.UserStore = (*memStore)(nil)
var _ interfaces.OrderStore = memOrderStore{}
var _ interfaces.PaymentStore = memPaymentStore{}

func (m memOrderStore) GetByID(_ context.Context, id int64) (*entities.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (m memPaymentStore) GetByID(_ context.Context, id int64) (*entities.PartnerPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

// -- UserStore --

func (m *memStore) Create(_ context.Context, user *entities.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUser++
	user.ID = m.nextUser
	user.JoinDate = time.Now()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetByTelegramID(_ context.Context, telegramID int64) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.TelegramID == telegramID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) MarkPartner(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return fmt.Errorf("user %d not found", id)
	}
	user.IsPartner = true
	return nil
}

func (m *memStore) CountReferrals(_ context.Context, referrerID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, user := range m.users {
		if user.ReferralID != nil && *user.ReferralID == referrerID {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ListPartners(_ context.Context) ([]entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var partners []entities.User
	for id := int64(1); id <= m.nextUser; id++ {
		if user, ok := m.users[id]; ok && user.IsPartner {
			partners = append(partners, *user)
		}
	}
	return partners, nil
}

func (m *memStore) CountPartners(_ context.Context) (int, error) {
	partners, _ := m.ListPartners(context.Background())
	return len(partners), nil
}

// -- OrderStore --

func (m *memStore) CreateWithPayment(_ context.Context, order *entities.Order, payment *entities.PartnerPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCommit {
		return errors.New("store unavailable")
	}
	m.nextOrder++
	order.ID = m.nextOrder
	order.CreatedAt = time.Now()
	copied := *order
	m.orders[order.ID] = &copied

	if payment != nil {
		m.nextPayment++
		payment.ID = m.nextPayment
		payment.OrderID = order.ID
		payment.CreatedAt = order.CreatedAt
		copiedPayment := *payment
		m.payments[payment.ID] = &copiedPayment
	}
	return nil
}

// orderByID and paymentByID are direct test accessors.
func (m *memStore) orderByID(id int64) *entities.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id]
}

func (m *memStore) paymentByID(id int64) *entities.PartnerPayment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[id]
}

func (m *memStore) List(_ context.Context, filter interfaces.OrderFilter) ([]entities.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.Order
	// Newest first: ids are assigned in creation order.
	for id := m.nextOrder; id >= 1; id-- {
		order, ok := m.orders[id]
		if !ok {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.PartnerID != 0 && (order.PartnerID == nil || *order.PartnerID != filter.PartnerID) {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (m *memStore) ListByUser(ctx context.Context, userID int64) ([]entities.Order, error) {
	all, _ := m.List(ctx, interfaces.OrderFilter{})
	var out []entities.Order
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) ListByPartner(ctx context.Context, partnerID int64) ([]entities.Order, error) {
	return m.List(ctx, interfaces.OrderFilter{PartnerID: partnerID})
}

func (m *memStore) UpdateStatus(_ context.Context, id int64, status entities.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return false, nil
	}
	order.Status = status
	return true, nil
}

func (m *memStore) Delete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return false, nil
	}
	delete(m.orders, id)
	return true, nil
}

func (m *memStore) CountAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders), nil
}

func (m *memStore) CountByStatus(_ context.Context, status entities.OrderStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, order := range m.orders {
		if order.Status == status {
			count++
		}
	}
	return count, nil
}

// -- PaymentStore --

func (m *memStore) MarkPaid(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	if !ok {
		return false, nil
	}
	now := time.Now()
	payment.Paid = true
	payment.PaymentDate = &now
	if order, ok := m.orders[payment.OrderID]; ok {
		order.PartnerPaid = true
	}
	return true, nil
}

func (m *memStore) SumByPartner(_ context.Context, partnerID int64, paid bool) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, payment := range m.payments {
		if payment.PartnerID == partnerID && payment.Paid == paid {
			sum += payment.Amount
		}
	}
	return sum, nil
}

func (m *memStore) SumPending(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, payment := range m.payments {
		if !payment.Paid {
			sum += payment.Amount
		}
	}
	return sum, nil
}

// recordingSender captures notification fan-out, optionally failing for
// selected recipients.
type recordingSender struct {
	mu      sync.Mutex
	sent    map[int64][]string
	failFor map[int64]bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{
		sent:    make(map[int64][]string),
		failFor: make(map[int64]bool),
	}
}

func (s *recordingSender) SendMessage(chatID int64, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[chatID] {
		return errors.New("delivery failed")
	}
	s.sent[chatID] = append(s.sent[chatID], content)
	return nil
}

func (s *recordingSender) messages(chatID int64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[chatID]
}
