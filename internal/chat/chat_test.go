package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondIntentsWithoutStore(t *testing.T) {
	// Intents below answer from canned text before touching any store.
	a := &Assistant{}

	tests := []struct {
		name    string
		message string
		intent  string
	}{
		{"greeting", "Hello there", "greeting"},
		{"shipping question", "how long does delivery take?", "shipping"},
		{"return question", "I want to return my racket bag", "returns"},
		{"order status without number", "where is my order?", "order_status"},
		{"gibberish falls back", "qwertyuiop", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := a.Respond(context.Background(), tt.message)
			require.NoError(t, err)
			assert.Equal(t, tt.intent, reply.Intent)
			assert.NotEmpty(t, reply.Message)
		})
	}
}

func TestOrderNumberPattern(t *testing.T) {
	assert.Equal(t, "ORD-20260815-AB12CD34",
		orderNumberPattern.FindString("track ORD-20260815-AB12CD34 please"))
	assert.Equal(t, "ORD-20260815-AB12CD34",
		orderNumberPattern.FindString("ord-20260815-ab12cd34"))
	assert.Empty(t, orderNumberPattern.FindString("ORD-123-XYZ"))
}

func TestExtractSearchTerm(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"I am looking for a racket", "racket"},
		{"how much do shuttlecocks cost?", "shuttlecocks"},
		{"recommend some shoes please", "shoes"},
		{"price of a grip", "grip"},
		{"???", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractSearchTerm(tt.message), tt.message)
	}
}
