package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// Keccak256 returns the Ethereum keccak-256 digest of data. This is
// deliberately NOT FIPS SHA3-256 — the two diverge, and only the Ethereum
// variant interoperates with the EVM leg of the swap.
func Keccak256(data []byte) [32]byte {
	var out [32]byte
	copy(out[:], crypto.Keccak256(data))
	return out
}

// SecretMatchesHashlock reports whether keccak256(secret) equals hashlock,
// per spec.md §4.7. Comparison is over raw bytes, which is equivalent to
// case-insensitive hex comparison of the wire form.
func SecretMatchesHashlock(secret, hashlock [32]byte) bool {
	return Keccak256(secret[:]) == hashlock
}

// HexEncode renders b as a 0x-prefixed, lower-case hex string.
func HexEncode(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// HexDecode32 parses a 0x-prefixed (optional) hex string into exactly 32
// bytes, rejecting any other width.
func HexDecode32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexDecode(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("codec: expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func hexDecode(s string) ([]byte, error) {
	if len(s) >= 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		s = s[2:]
	}
	return hex.DecodeString(s)
}
