package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

func NewID() string { return uuid.NewString() }

// NumericCode returns a crypto-random code of exactly n digits with no leading zero.
func NumericCode(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("invalid code length %d", n)
	}
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(low, big.NewInt(10)), low)
	if n == 1 {
		low, span = big.NewInt(0), big.NewInt(10)
	}
	v, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return v.Add(v, low).String(), nil
}

func RandomToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
