package domain

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// ClientIDLength is the length of generated query client ids.
const ClientIDLength = 10

const clientIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_-"

// NewID generates a UUIDv7 string for application-owned entities.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewResultsKey generates an opaque, non-sequential key for a cached result set.
func NewResultsKey() string {
	return uuid.NewString()
}

// NewClientID generates a short random correlation id for a query.
func NewClientID() string {
	buf := make([]byte, ClientIDLength)
	max := big.NewInt(int64(len(clientIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		buf[i] = clientIDAlphabet[n.Int64()]
	}
	return string(buf)
}
