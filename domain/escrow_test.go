package domain

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestCloneIsIndependentOfSource(t *testing.T) {
	secret := [32]byte{1, 2, 3}
	e := &Escrow{
		ID:            NewID(),
		Amount:        uint256.NewInt(100),
		SafetyDeposit: uint256.NewInt(10),
		Status:        StatusFunded,
		FundingTxIDs:  map[string]struct{}{"tx1": {}},
		SettlementTxs: []string{"tx0"},
		Secret:        &secret,
	}

	clone := e.Clone()
	assert.Equal(t, e.ID, clone.ID)
	assert.Equal(t, e.FundingTxIDs, clone.FundingTxIDs)
	assert.Equal(t, e.SettlementTxs, clone.SettlementTxs)

	e.FundingTxIDs["tx2"] = struct{}{}
	e.SettlementTxs = append(e.SettlementTxs, "tx1")

	assert.Len(t, clone.FundingTxIDs, 1, "clone's map must not observe later mutation of the source")
	assert.Len(t, clone.SettlementTxs, 1, "clone's slice must not observe later mutation of the source")
}
