package mock

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liquidityos/escrow-coordinator/ledger"
)

func newTestClient() *Client {
	return New(zerolog.Nop())
}

func TestGenerateWalletIsUnique(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	a1, s1, err := c.GenerateWallet(ctx)
	require.NoError(t, err)
	a2, s2, err := c.GenerateWallet(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, a1, a2)
	assert.NotEqual(t, s1, s2)
}

func TestSimulateDepositResolvesAsValidated(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	c.SimulateDeposit("tx1", "addr1", uint256.NewInt(500))

	info, err := c.ResolveTx(ctx, "tx1")
	require.NoError(t, err)
	assert.True(t, info.Validated)
	assert.Equal(t, "addr1", info.Destination)
	assert.Equal(t, ledger.NativeTransferType, info.Type)
	assert.Equal(t, uint256.NewInt(500), info.DeliveredAmount)
}

func TestResolveTxNotFound(t *testing.T) {
	c := newTestClient()
	_, err := c.ResolveTx(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSubmitTransferMovesBalance(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()
	c.SimulateDeposit("tx1", "from", uint256.NewInt(1000))

	txID, err := c.SubmitTransfer(ctx, []byte("secret"), "from", "to", ledger.NativeAsset, uint256.NewInt(400))
	require.NoError(t, err)
	assert.NotEmpty(t, txID)

	fromBal, _ := c.ReadBalance(ctx, "from", ledger.NativeAsset)
	toBal, _ := c.ReadBalance(ctx, "to", ledger.NativeAsset)
	assert.Equal(t, uint256.NewInt(600), fromBal)
	assert.Equal(t, uint256.NewInt(400), toBal)
}

func TestSubmitTransferRejectsInsufficientBalance(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()

	_, err := c.SubmitTransfer(ctx, []byte("secret"), "from", "to", ledger.NativeAsset, uint256.NewInt(1))
	assert.ErrorIs(t, err, ledger.ErrRejected)
}

func TestSetUnavailableFailsSubmitAndPing(t *testing.T) {
	c := newTestClient()
	ctx := context.Background()
	c.SimulateDeposit("tx1", "from", uint256.NewInt(1000))
	c.SetUnavailable(true)

	assert.Error(t, c.Ping(ctx))
	_, err := c.SubmitTransfer(ctx, []byte("secret"), "from", "to", ledger.NativeAsset, uint256.NewInt(1))
	assert.ErrorIs(t, err, ledger.ErrRejected)
}
