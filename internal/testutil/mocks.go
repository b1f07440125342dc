package testutil

import (
	"context"
	"sync"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/notification"
	"github.com/cassiomorais/booking/internal/domain/outbox"
	"github.com/cassiomorais/booking/internal/domain/payment"
	"github.com/cassiomorais/booking/internal/domain/reservation"
	"github.com/cassiomorais/booking/internal/domain/user"
	"github.com/cassiomorais/booking/internal/kafka"
	"github.com/google/uuid"
)

// --- Transaction Manager Mock ---

// MockTransactionManager runs the callback directly. Optionally fails the
// whole transaction when BeginErr is set.
type MockTransactionManager struct {
	BeginErr error
	Calls    int
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.BeginErr != nil {
		return m.BeginErr
	}
	return fn(ctx)
}

// --- Outbox Repository Mock ---

// MockOutboxRepository is a mock implementation of outbox.Repository.
type MockOutboxRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]*outbox.Record
	order   []uuid.UUID

	InsertFunc     func(ctx context.Context, rec *outbox.Record) error
	ListNewFunc    func(ctx context.Context, limit int) ([]*outbox.Record, error)
	MarkSentFunc   func(ctx context.Context, id uuid.UUID) error
	MarkFailedFunc func(ctx context.Context, id uuid.UUID) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{records: make(map[uuid.UUID]*outbox.Record)}
}

func (m *MockOutboxRepository) Insert(ctx context.Context, rec *outbox.Record) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return nil
}

func (m *MockOutboxRepository) ListNew(ctx context.Context, limit int) ([]*outbox.Record, error) {
	if m.ListNewFunc != nil {
		return m.ListNewFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*outbox.Record, 0, limit)
	for _, id := range m.order {
		rec := m.records[id]
		if rec.Status != outbox.StatusNew {
			continue
		}
		result = append(result, rec)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *MockOutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if m.MarkSentFunc != nil {
		return m.MarkSentFunc(ctx, id)
	}
	return m.flip(id, outbox.StatusSent)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id)
	}
	return m.flip(id, outbox.StatusFailed)
}

func (m *MockOutboxRepository) flip(id uuid.UUID, status outbox.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.Status != outbox.StatusNew {
		return nil
	}
	rec.Status = status
	return nil
}

// Records returns a snapshot of all stored records in insertion order.
func (m *MockOutboxRepository) Records() []*outbox.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*outbox.Record, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.records[id])
	}
	return result
}

// --- Reservation Repository Mock ---

// MockReservationRepository is a mock implementation of reservation.Repository.
type MockReservationRepository struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*reservation.Reservation

	CreateFunc       func(ctx context.Context, r *reservation.Reservation) error
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	UpdateStatusFunc func(ctx context.Context, r *reservation.Reservation) error
	ListByUserFunc   func(ctx context.Context, userID uuid.UUID) ([]*reservation.Reservation, error)
	ListFunc         func(ctx context.Context) ([]*reservation.Reservation, error)
}

func NewMockReservationRepository() *MockReservationRepository {
	return &MockReservationRepository{reservations: make(map[uuid.UUID]*reservation.Reservation)}
}

func (m *MockReservationRepository) Create(ctx context.Context, r *reservation.Reservation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[r.ID] = r
	return nil
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, domainErrors.ErrReservationNotFound
	}
	return r, nil
}

func (m *MockReservationRepository) UpdateStatus(ctx context.Context, r *reservation.Reservation) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[r.ID] = r
	return nil
}

func (m *MockReservationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*reservation.Reservation, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*reservation.Reservation, 0)
	for _, r := range m.reservations {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MockReservationRepository) List(ctx context.Context) ([]*reservation.Reservation, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*reservation.Reservation, 0, len(m.reservations))
	for _, r := range m.reservations {
		result = append(result, r)
	}
	return result, nil
}

// --- Payment Repository Mock ---

// MockPaymentRepository is a mock implementation of payment.Repository.
type MockPaymentRepository struct {
	mu            sync.Mutex
	payments      map[uuid.UUID]*payment.Payment
	byReservation map[uuid.UUID]*payment.Payment

	CreateFunc                func(ctx context.Context, p *payment.Payment) error
	GetByIDFunc               func(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	ExistsByReservationIDFunc func(ctx context.Context, reservationID uuid.UUID) (bool, error)
	ListByReservationIDFunc   func(ctx context.Context, reservationID uuid.UUID) ([]*payment.Payment, error)
	UpdateStatusFunc          func(ctx context.Context, p *payment.Payment) error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments:      make(map[uuid.UUID]*payment.Payment),
		byReservation: make(map[uuid.UUID]*payment.Payment),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byReservation[p.ReservationID]; ok {
		return domainErrors.ErrPaymentAlreadyExists
	}
	m.payments[p.ID] = p
	m.byReservation[p.ReservationID] = p
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return p, nil
}

func (m *MockPaymentRepository) ExistsByReservationID(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	if m.ExistsByReservationIDFunc != nil {
		return m.ExistsByReservationIDFunc(ctx, reservationID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byReservation[reservationID]
	return ok, nil
}

func (m *MockPaymentRepository) ListByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*payment.Payment, error) {
	if m.ListByReservationIDFunc != nil {
		return m.ListByReservationIDFunc(ctx, reservationID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*payment.Payment, 0)
	if p, ok := m.byReservation[reservationID]; ok {
		result = append(result, p)
	}
	return result, nil
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, p *payment.Payment) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

// --- Notification Repository Mock ---

type ledgerKey struct {
	paymentID uuid.UUID
	eventType string
}

// MockNotificationRepository is a mock implementation of
// notification.Repository backed by an in-memory unique constraint.
type MockNotificationRepository struct {
	mu   sync.Mutex
	logs map[ledgerKey]*notification.Log

	InsertFunc func(ctx context.Context, l *notification.Log) error
	ExistsFunc func(ctx context.Context, paymentID uuid.UUID, eventType string) (bool, error)
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{logs: make(map[ledgerKey]*notification.Log)}
}

func (m *MockNotificationRepository) Insert(ctx context.Context, l *notification.Log) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, l)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ledgerKey{paymentID: l.PaymentID, eventType: l.EventType}
	if _, ok := m.logs[key]; ok {
		return domainErrors.ErrAlreadyProcessed
	}
	m.logs[key] = l
	return nil
}

func (m *MockNotificationRepository) Exists(ctx context.Context, paymentID uuid.UUID, eventType string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, paymentID, eventType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.logs[ledgerKey{paymentID: paymentID, eventType: eventType}]
	return ok, nil
}

// Count returns the number of ledger entries.
func (m *MockNotificationRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.logs)
}

// --- User Repository Mock ---

// MockUserRepository is a mock implementation of user.Repository.
type MockUserRepository struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*user.User
	byEmail map[string]*user.User

	CreateFunc        func(ctx context.Context, u *user.User) error
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*user.User, error)
	ExistsByEmailFunc func(ctx context.Context, email string) (bool, error)
	ListFunc          func(ctx context.Context) ([]*user.User, error)
	DeleteFunc        func(ctx context.Context, id uuid.UUID) error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:   make(map[uuid.UUID]*user.User),
		byEmail: make(map[string]*user.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[u.Email]; ok {
		return domainErrors.ErrEmailTaken
	}
	m.users[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*user.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	delete(m.byEmail, u.Email)
	delete(m.users, id)
	return nil
}

// --- Publisher Mock ---

// PublishedMessage records one call to MockPublisher.Publish.
type PublishedMessage struct {
	Topic string
	Key   string
	Value []byte
}

// MockPublisher records published messages.
type MockPublisher struct {
	mu        sync.Mutex
	published []PublishedMessage

	PublishFunc func(ctx context.Context, topic, key string, value []byte) error
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	if m.PublishFunc != nil {
		if err := m.PublishFunc(ctx, topic, key, value); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, PublishedMessage{Topic: topic, Key: key, Value: value})
	return nil
}

// Published returns a snapshot of recorded messages.
func (m *MockPublisher) Published() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]PublishedMessage, len(m.published))
	copy(result, m.published)
	return result
}

// --- Fetcher Mock ---

// MockFetcher feeds a fixed queue of messages, then blocks until ctx is
// cancelled. Committed offsets are recorded.
type MockFetcher struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
}

func NewMockFetcher(msgs ...kafka.Message) *MockFetcher {
	return &MockFetcher{queue: msgs}
}

func (m *MockFetcher) Fetch(ctx context.Context) (kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		msg := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return msg, nil
	}
	m.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (m *MockFetcher) Commit(ctx context.Context, msg kafka.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, msg)
	return nil
}

// Committed returns a snapshot of committed messages.
func (m *MockFetcher) Committed() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]kafka.Message, len(m.committed))
	copy(result, m.committed)
	return result
}

// --- Dead Letterer Mock ---

// DeadLetteredMessage records one call to MockDeadLetterer.Publish.
type DeadLetteredMessage struct {
	Group    string
	Message  kafka.Message
	Attempts int
	LastErr  error
}

// MockDeadLetterer records dead-lettered deliveries.
type MockDeadLetterer struct {
	mu     sync.Mutex
	calls  []DeadLetteredMessage
	ErrOut error
}

func (m *MockDeadLetterer) Publish(ctx context.Context, group string, msg kafka.Message, attempts int, lastErr error) error {
	if m.ErrOut != nil {
		return m.ErrOut
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, DeadLetteredMessage{Group: group, Message: msg, Attempts: attempts, LastErr: lastErr})
	return nil
}

// Calls returns a snapshot of the recorded dead-letter publishes.
func (m *MockDeadLetterer) Calls() []DeadLetteredMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]DeadLetteredMessage, len(m.calls))
	copy(result, m.calls)
	return result
}
