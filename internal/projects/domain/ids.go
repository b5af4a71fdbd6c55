package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewProjectID generates ids of the form "proj_1718000000000_k3j9x0a2b".
func NewProjectID(now time.Time) (string, error) {
	suffix, err := randomBase36(9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("proj_%d_%s", now.UnixMilli(), suffix), nil
}

func randomBase36(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = idAlphabet[v.Int64()]
	}
	return string(b), nil
}
