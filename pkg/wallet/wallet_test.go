package wallet

import (
	"testing"

	"github.com/jwebster45206/dungeon-hunt/pkg/dice"
	"github.com/stretchr/testify/assert"
)

func TestNewAddress(t *testing.T) {
	addr := NewAddress(dice.NewSource())
	assert.True(t, Valid(addr), "address %q should be valid", addr)

	// Same key bytes, same address.
	a := NewAddress(dice.NewSequence(1, 2, 3))
	b := NewAddress(dice.NewSequence(1, 2, 3))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, NewAddress(dice.NewSequence(4, 5, 6)))
}

func TestAddressFromKey_KnownVector(t *testing.T) {
	// keccak256 of an empty input ends in ...7bfad8045d85a470.
	assert.Equal(t, "0xdcc703c0e500b653ca82273b7bfad8045d85a470", AddressFromKey(nil))
}

func TestValid(t *testing.T) {
	tests := []struct {
		addr  string
		valid bool
	}{
		{"0xdcc703c0e500b653ca82273b7bfad8045d85a470", true},
		{"dcc703c0e500b653ca82273b7bfad8045d85a470", false},
		{"0x1234", false},
		{"0xzzc703c0e500b653ca82273b7bfad8045d85a470", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, Valid(tt.addr), tt.addr)
	}
}

func TestShort(t *testing.T) {
	assert.Equal(t, "0xdcc7...a470", Short("0xdcc703c0e500b653ca82273b7bfad8045d85a470"))
	assert.Equal(t, "0xabc", Short("0xabc"))
}
