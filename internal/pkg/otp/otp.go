package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"io"
	"math/big"
	"strconv"
)

const (
	// MinCode is the smallest six digit code.
	MinCode int64 = 100000
	// MaxCode is the largest six digit code.
	MaxCode int64 = 999999
)

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// Numeric generates codes in [MinCode, MaxCode].
type Numeric struct {
	reader io.Reader
}

// NewNumeric returns a Numeric generator backed by crypto/rand.Reader.
func NewNumeric() *Numeric {
	return &Numeric{reader: rand.Reader}
}

// NewNumericFromReader lets tests supply a deterministic entropy source.
func NewNumericFromReader(r io.Reader) *Numeric {
	return &Numeric{reader: r}
}

// Generate returns a six digit decimal string.
func (n *Numeric) Generate() (string, error) {
	span := big.NewInt(MaxCode - MinCode + 1)

	v, err := rand.Int(n.reader, span)
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(v.Int64()+MinCode, 10), nil
}

// Equal compares two codes in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
