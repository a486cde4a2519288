package utils

import (
	"crypto/rand"
	"math/big"
)

// Crockford-style alphabet: no 0/O, 1/I/L ambiguity on printed vouchers.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// RandomCode returns n characters drawn from crypto/rand. Used for the
// unguessable part of voucher codes.
func RandomCode(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[idx.Int64()]
	}
	return string(out), nil
}
