package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNumberChecker struct {
	existing map[string]bool
	rejectN  int // report the first rejectN candidates as taken
	err      error
	checked  []string
}

func (m *mockNumberChecker) NumberExists(_ context.Context, number string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.checked = append(m.checked, number)
	if len(m.checked) <= m.rejectN {
		return true, nil
	}
	return m.existing[number], nil
}

func TestGenerateNumber_Format(t *testing.T) {
	checker := &mockNumberChecker{}

	for range 1000 {
		n, err := GenerateNumber(context.Background(), checker)
		require.NoError(t, err)
		require.Len(t, n, 5)
		for i := range len(n) {
			assert.Contains(t, numberAlphabet, string(n[i]))
		}
	}
}

func TestGenerateNumber_RetriesOnCollision(t *testing.T) {
	checker := &mockNumberChecker{rejectN: 19}

	n, err := GenerateNumber(context.Background(), checker)
	require.NoError(t, err)
	assert.NotEmpty(t, n)
	assert.Len(t, checker.checked, 20)
}

func TestGenerateNumber_ExhaustsAttemptBudget(t *testing.T) {
	checker := &mockNumberChecker{rejectN: 20}

	_, err := GenerateNumber(context.Background(), checker)
	require.ErrorIs(t, err, ErrOrderNumberExhausted)
	assert.Len(t, checker.checked, 20)
}

func TestGenerateNumber_CheckerError(t *testing.T) {
	checker := &mockNumberChecker{err: errors.New("db down")}

	_, err := GenerateNumber(context.Background(), checker)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrOrderNumberExhausted)
}

func TestGenerateNumber_AvoidsExistingNumbers(t *testing.T) {
	// 1k taken numbers out of a 36^5 (~60M) space: 10k draws must never
	// return a taken number and never exhaust the attempt budget.
	existing := make(map[string]bool, 1000)
	for range 1000 {
		existing[randomNumber()] = true
	}
	checker := &mockNumberChecker{existing: existing}

	for range 10_000 {
		n, err := GenerateNumber(context.Background(), checker)
		require.NoError(t, err)
		assert.False(t, existing[n])
	}
}
