package store

import (
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidityos/escrow-coordinator/domain"
)

func newEscrow() *domain.Escrow {
	return &domain.Escrow{
		ID:            domain.NewID(),
		Amount:        uint256.NewInt(100),
		SafetyDeposit: uint256.NewInt(10),
		Status:        domain.StatusCreated,
		FundingTxIDs:  make(map[string]struct{}),
	}
}

func TestCreateAndGet(t *testing.T) {
	s := New()
	e := newEscrow()
	require.NoError(t, s.Create(e))

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	s := New()
	e := newEscrow()
	e.FundingTxIDs["tx1"] = struct{}{}
	require.NoError(t, s.Create(e))

	got, err := s.Get(e.ID)
	require.NoError(t, err)

	got.FundingTxIDs["tx2"] = struct{}{}
	got.SettlementTxs = append(got.SettlementTxs, "mutated")

	live, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Len(t, live.FundingTxIDs, 1, "mutating a Get result must not affect the stored record")
	assert.Empty(t, live.SettlementTxs)
}

func TestGetDoesNotRaceWithConcurrentWithLock(t *testing.T) {
	s := New()
	e := newEscrow()
	require.NoError(t, s.Create(e))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithLock(e.ID, func(es *domain.Escrow) error {
				es.FundingTxIDs["x"] = struct{}{}
				es.SettlementTxs = append(es.SettlementTxs, "x")
				return nil
			})
		}()
	}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Get(e.ID)
			require.NoError(t, err)
			for range got.FundingTxIDs {
			}
			_ = len(got.SettlementTxs)
		}()
	}
	wg.Wait()
}

func TestCreateTwiceFails(t *testing.T) {
	s := New()
	e := newEscrow()
	require.NoError(t, s.Create(e))
	assert.Error(t, s.Create(e))
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s := New()
	_, err := s.Get(domain.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithLockSerializesConcurrentTransitions(t *testing.T) {
	s := New()
	e := newEscrow()
	require.NoError(t, s.Create(e))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.WithLock(e.ID, func(es *domain.Escrow) error {
				es.SettlementTxs = append(es.SettlementTxs, "x")
				return nil
			})
		}()
	}
	wg.Wait()

	got, err := s.Get(e.ID)
	require.NoError(t, err)
	assert.Len(t, got.SettlementTxs, 50)
}

func TestCountActiveExcludesTerminal(t *testing.T) {
	s := New()
	e1 := newEscrow()
	e2 := newEscrow()
	e2.Status = domain.StatusWithdrawn
	require.NoError(t, s.Create(e1))
	require.NoError(t, s.Create(e2))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.CountActive())
}
