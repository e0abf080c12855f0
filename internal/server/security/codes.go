package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RecoveryCodeLength is the fixed number of digits in a password-recovery
// code. Codes are short because users type them by hand.
const RecoveryCodeLength = 6

// GenerateNumericCode returns a random numeric code of the given length,
// zero-padded, from crypto/rand.
func GenerateNumericCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("error generating code: %v", err)
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
