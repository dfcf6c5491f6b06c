package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"pending cannot skip to shipped", StatusPending, StatusShipped, false},
		{"confirmed to processing", StatusConfirmed, StatusProcessing, true},
		{"processing to shipped", StatusProcessing, StatusShipped, true},
		{"processing to cancelled", StatusProcessing, StatusCancelled, true},
		{"shipped to delivered", StatusShipped, StatusDelivered, true},
		{"shipped cannot be cancelled", StatusShipped, StatusCancelled, false},
		{"delivered to returned", StatusDelivered, StatusReturned, true},
		{"delivered cannot go back to pending", StatusDelivered, StatusPending, false},
		{"cancelled to refunded", StatusCancelled, StatusRefunded, true},
		{"returned to refunded", StatusReturned, StatusRefunded, true},
		{"refunded is final", StatusRefunded, StatusPending, false},
		{"unknown source never transitions", "bogus", StatusConfirmed, false},
		{"unknown target is rejected", StatusPending, "bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{
		StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned, StatusRefunded,
	} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("paid"))
	assert.False(t, IsValidStatus(""))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusRefunded))
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusDelivered))
}

func TestShippingPolicyFeeFor(t *testing.T) {
	policy := ShippingPolicy{Fee: 30000, FreeThreshold: 500000}

	assert.Equal(t, int64(30000), policy.FeeFor(200000))
	assert.Equal(t, int64(0), policy.FeeFor(500000))
	assert.Equal(t, int64(0), policy.FeeFor(750000))

	noFree := ShippingPolicy{Fee: 30000}
	assert.Equal(t, int64(30000), noFree.FeeFor(1000000))
}

func TestTransitionStamp(t *testing.T) {
	assert.Equal(t, ", shipped_at = NOW()", transitionStamp(StatusShipped))
	assert.Equal(t, ", delivered_at = NOW()", transitionStamp(StatusDelivered))
	assert.Equal(t, ", cancelled_at = NOW()", transitionStamp(StatusCancelled))
	assert.Equal(t, ", payment_status = 'refunded'", transitionStamp(StatusRefunded))
	assert.Empty(t, transitionStamp(StatusConfirmed))
	assert.Empty(t, transitionStamp(StatusProcessing))
}

func TestNewOrderNumberFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := newOrderNumber()
		assert.Regexp(t, `^ORD-\d{8}-[A-Z0-9]{8}$`, n)
		assert.False(t, seen[n], "order numbers should not repeat")
		seen[n] = true
	}
}
