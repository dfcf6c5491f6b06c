package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerValid(t *testing.T) {
	assert.True(t, Owner{UserID: "u1"}.Valid())
	assert.True(t, Owner{SessionID: "s1"}.Valid())
	assert.False(t, Owner{}.Valid())
	assert.False(t, Owner{UserID: "u1", SessionID: "s1"}.Valid())
}

func TestOwnerClause(t *testing.T) {
	assert.Equal(t, "user_id = $1", ownerClause(Owner{UserID: "u1"}, "", 1))
	assert.Equal(t, "session_id = $3", ownerClause(Owner{SessionID: "s1"}, "", 3))
	assert.Equal(t, "ci.user_id = $2", ownerClause(Owner{UserID: "u1"}, "ci", 2))
}

func TestOwnerArg(t *testing.T) {
	assert.Equal(t, "u1", ownerArg(Owner{UserID: "u1"}))
	assert.Equal(t, "s1", ownerArg(Owner{SessionID: "s1"}))
}

func TestMergedQuantity(t *testing.T) {
	tests := []struct {
		name                     string
		userQty, guestQty, stock int
		want                     int
	}{
		{"sum within stock", 2, 3, 10, 5},
		{"sum clamped to stock", 4, 4, 6, 6},
		{"guest qty alone exceeds stock", 0, 9, 5, 5},
		{"stock already below user line", 5, 2, 3, 5},
		{"exact fit", 3, 2, 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergedQuantity(tt.userQty, tt.guestQty, tt.stock))
		})
	}
}

func TestMarshalAttrs(t *testing.T) {
	v, err := marshalAttrs(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = marshalAttrs(map[string]string{"color": "red"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"color":"red"}`, string(v.([]byte)))
}
