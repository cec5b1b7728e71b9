package wallet

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidityos/escrow-coordinator/domain"
	"github.com/liquidityos/escrow-coordinator/ledger/mock"
)

func TestGenerateThenSignAndSubmit(t *testing.T) {
	client := mock.New(zerolog.Nop())
	m := New(client, zerolog.Nop())
	ctx := context.Background()

	id := domain.NewID()
	address, err := m.Generate(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, address)

	client.SimulateDeposit("tx1", address, uint256.NewInt(1000))

	txID, err := m.SignAndSubmit(ctx, id, address, "dest", "", uint256.NewInt(400))
	require.NoError(t, err)
	assert.NotEmpty(t, txID)
}

func TestSignAndSubmitWithoutGenerateFails(t *testing.T) {
	client := mock.New(zerolog.Nop())
	m := New(client, zerolog.Nop())

	_, err := m.SignAndSubmit(context.Background(), domain.NewID(), "a", "b", "", uint256.NewInt(1))
	assert.Error(t, err)
}

func TestForgetDeletesSecret(t *testing.T) {
	client := mock.New(zerolog.Nop())
	m := New(client, zerolog.Nop())
	ctx := context.Background()

	id := domain.NewID()
	address, err := m.Generate(ctx, id)
	require.NoError(t, err)
	client.SimulateDeposit("tx1", address, uint256.NewInt(1000))

	m.Forget(id)

	_, err = m.SignAndSubmit(ctx, id, address, "dest", "", uint256.NewInt(400))
	assert.Error(t, err)
}

func TestGenerateTwiceForSameIDFails(t *testing.T) {
	client := mock.New(zerolog.Nop())
	m := New(client, zerolog.Nop())
	id := domain.NewID()
	ctx := context.Background()

	_, err := m.Generate(ctx, id)
	require.NoError(t, err)
	_, err = m.Generate(ctx, id)
	assert.Error(t, err)
}
