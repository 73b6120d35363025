package order

import (
	"context"
	"math/rand/v2"

	"github.com/go-faster/errors"
)

const (
	numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	numberLength   = 5
	// numberAttempts bounds collision retries. The space is 36^5 (~60M), so
	// exhausting the budget means something is badly wrong with the data.
	numberAttempts = 20
)

// NumberChecker answers whether an order number is already taken. The check
// must run inside the same transaction that will create the order; the
// database's unique constraint is the final backstop against any residual
// race.
type NumberChecker interface {
	NumberExists(ctx context.Context, number string) (bool, error)
}

// GenerateNumber draws random 5-character alphanumeric codes until one is
// unused, bounded by the attempt budget. Exhausting the budget returns
// ErrOrderNumberExhausted, aborting the enclosing transaction.
func GenerateNumber(ctx context.Context, checker NumberChecker) (string, error) {
	for range numberAttempts {
		candidate := randomNumber()
		exists, err := checker.NumberExists(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(err, "check order number")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrOrderNumberExhausted
}

func randomNumber() string {
	b := make([]byte, numberLength)
	for i := range b {
		b[i] = numberAlphabet[rand.IntN(len(numberAlphabet))]
	}
	return string(b)
}
