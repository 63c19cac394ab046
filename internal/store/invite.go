package store

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// InviteAlphabet excludes the look-alike characters 0, O, 1, I and L.
const InviteAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// InviteCodeLength is the number of characters of an invitation code.
const InviteCodeLength = 6

// GenerateInviteCode draws a random invitation code.
func GenerateInviteCode() (string, error) {
	size := big.NewInt(int64(len(InviteAlphabet)))
	var b strings.Builder
	b.Grow(InviteCodeLength)
	for i := 0; i < InviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		b.WriteByte(InviteAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidInviteCode reports whether code has the right length and alphabet.
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(InviteAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
