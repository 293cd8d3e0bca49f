package ledger

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
)

const resetAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewVerificationCode returns a 4-digit decimal code in [1000, 9999].
// The range guarantees four digits without zero-padding.
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+1000, 10), nil
}

// NewResetCode returns a 6-character uppercase alphanumeric code.
func NewResetCode() (string, error) {
	var b strings.Builder
	b.Grow(6)
	max := big.NewInt(int64(len(resetAlphabet)))
	for i := 0; i < 6; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(resetAlphabet[n.Int64()])
	}
	return b.String(), nil
}
