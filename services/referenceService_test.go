package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceServiceNextWithoutHistory(t *testing.T) {
	store := newTestStore(t)
	refs := NewReferenceService(store.transactions)

	next, err := refs.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TRX-001", next)

	last, err := refs.Peek(context.Background())
	require.NoError(t, err)
	assert.Empty(t, last)
}

func TestReferenceServiceNextAfterNine(t *testing.T) {
	store := newTestStore(t)
	refs := NewReferenceService(store.transactions)
	clock := stepClock()

	for i := 1; i <= 9; i++ {
		seedTransaction(t, store.transactions, fmt.Sprintf("TRX-%03d", i), clock())
	}

	next, err := refs.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TRX-010", next)

	last, err := refs.Peek(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TRX-009", last)
}

func TestReferenceServiceUsesLatestByCreationTime(t *testing.T) {
	store := newTestStore(t)
	refs := NewReferenceService(store.transactions)
	clock := stepClock()

	seedTransaction(t, store.transactions, "TRX-050", clock())
	seedTransaction(t, store.transactions, "TRX-007", clock())
	seedTransaction(t, store.transactions, "PAY-999", clock())

	next, err := refs.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TRX-008", next)
}

func TestReferenceServiceMalformedLatestFallsBackToCount(t *testing.T) {
	store := newTestStore(t)
	refs := NewReferenceService(store.transactions)
	clock := stepClock()

	seedTransaction(t, store.transactions, "TRX-001", clock())
	seedTransaction(t, store.transactions, "TRX-002", clock())
	seedTransaction(t, store.transactions, "TRX-MANUAL", clock())
	seedTransaction(t, store.transactions, "PAY-001", clock())

	next, err := refs.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TRX-004", next)
}

func TestReferenceServiceGrowsPastPadding(t *testing.T) {
	store := newTestStore(t)
	refs := NewReferenceService(store.transactions)

	seedTransaction(t, store.transactions, "TRX-999", time.Now().UTC())

	next, err := refs.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TRX-1000", next)
}

func TestReferenceServiceRepositoryFailure(t *testing.T) {
	repo := new(mockTransactionRepository)
	repo.On("LatestByReferencePrefix", context.Background(), "TRX-").Return(nil, assert.AnError)

	_, err := NewReferenceService(repo).Next(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestValidateReferenceFormat(t *testing.T) {
	cases := map[string]bool{
		"TRX-001":  true,
		"TRX-999":  true,
		"TRX-1000": false,
		"TRX-01":   false,
		"trx-001":  false,
		"INVALID":  false,
		"XTRX-001": false,
	}
	for reference, want := range cases {
		assert.Equal(t, want, ValidateReferenceFormat(reference), reference)
	}
}
