package wallet

import (
	"encoding/hex"
	"strings"

	"github.com/jwebster45206/dungeon-hunt/pkg/dice"
	"golang.org/x/crypto/sha3"
)

// NewAddress derives a simulated Ethereum-style address: the last 20 bytes of
// keccak-256 over a random 64-byte public key.
func NewAddress(src dice.Source) string {
	pub := make([]byte, 64)
	for i := range pub {
		pub[i] = byte(src.IntN(256))
	}
	return AddressFromKey(pub)
}

// AddressFromKey derives the address for a public key.
func AddressFromKey(pub []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(pub)
	sum := h.Sum(nil)
	return "0x" + hex.EncodeToString(sum[len(sum)-20:])
}

// Valid reports whether addr looks like a 0x-prefixed 20-byte hex address.
func Valid(addr string) bool {
	if !strings.HasPrefix(addr, "0x") || len(addr) != 42 {
		return false
	}
	_, err := hex.DecodeString(addr[2:])
	return err == nil
}

// Short renders an address as 0x1234...abcd.
func Short(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
