package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	pending  []PendingEmail
	sent     []int
	attempts map[int]int
	lastErr  map[int]string
}

func newMockStore(pending ...PendingEmail) *mockStore {
	return &mockStore{
		pending:  pending,
		attempts: map[int]int{},
		lastErr:  map[int]string{},
	}
}

func (m *mockStore) GetPending(_ context.Context, limit int) ([]PendingEmail, error) {
	if len(m.pending) > limit {
		return m.pending[:limit], nil
	}
	return m.pending, nil
}

func (m *mockStore) MarkSent(_ context.Context, id int) error {
	m.sent = append(m.sent, id)
	return nil
}

func (m *mockStore) MarkAttempt(_ context.Context, id int, attempts int, lastError string) error {
	m.attempts[id] = attempts
	m.lastErr[id] = lastError
	return nil
}

type mockSender struct {
	failures int
	calls    int
}

func (m *mockSender) Send(recipient, subject, body string) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func TestWorkerSendsPendingEmail(t *testing.T) {
	store := newMockStore(PendingEmail{ID: 1, Recipient: "a@b.c", Subject: "s", Body: "b"})
	sender := &mockSender{}
	w := NewWorker(store, sender)

	w.processPending(context.Background())

	assert.Equal(t, []int{1}, store.sent)
	assert.Empty(t, store.attempts)
	assert.Equal(t, 1, sender.calls)
}

func TestWorkerRetriesTransientFailure(t *testing.T) {
	store := newMockStore(PendingEmail{ID: 7, Recipient: "a@b.c"})
	sender := &mockSender{failures: 1}
	w := NewWorker(store, sender)

	w.processPending(context.Background())

	assert.Equal(t, []int{7}, store.sent)
	assert.Equal(t, 2, sender.calls)
}

func TestWorkerRecordsFailedAttempt(t *testing.T) {
	store := newMockStore(PendingEmail{ID: 3, Recipient: "a@b.c", Attempts: 1})
	sender := &mockSender{failures: 100}
	w := NewWorker(store, sender)

	w.processPending(context.Background())

	assert.Empty(t, store.sent)
	assert.Equal(t, 2, store.attempts[3])
	assert.Contains(t, store.lastErr[3], "smtp unavailable")
}

func TestWorkerRespectsBatchLimit(t *testing.T) {
	var pending []PendingEmail
	for i := 1; i <= 60; i++ {
		pending = append(pending, PendingEmail{ID: i, Recipient: "a@b.c"})
	}
	store := newMockStore(pending...)
	w := NewWorker(store, &mockSender{})

	w.processPending(context.Background())

	assert.Len(t, store.sent, 50)
}

func TestOrderConfirmationMessage(t *testing.T) {
	msg := OrderConfirmation("shopper@example.com", "Linh", "ORD-20260815-AB12CD34", 230000)

	require.Equal(t, "shopper@example.com", msg.Recipient)
	assert.Equal(t, "Order ORD-20260815-AB12CD34 confirmed", msg.Subject)
	assert.Contains(t, msg.Body, "Linh")
	assert.Contains(t, msg.Body, "230000")
}

func TestOrderStatusUpdateMessage(t *testing.T) {
	msg := OrderStatusUpdate("shopper@example.com", "Linh", "ORD-20260815-AB12CD34", "shipped")

	assert.Equal(t, "Order ORD-20260815-AB12CD34 update", msg.Subject)
	assert.Contains(t, msg.Body, "now shipped")
}
