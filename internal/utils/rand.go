package utils

import (
	"crypto/rand"
	"math/big"
)

// GenerateRandomCode returns a random numeric code of n digits,
// used for email verification and password reset.
func GenerateRandomCode(n int) string {
	const digits = "0123456789"
	code := make([]byte, n)
	for i := range code {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			// crypto/rand only fails if the system source is broken
			panic(err)
		}
		code[i] = digits[idx.Int64()]
	}
	return string(code)
}
