// Package ledger defines the capability interface the escrow state machine
// depends on to talk to the external chain. It is the integration seam of
// spec.md §4.2: the core is written against Client only, and ledger/mock and
// ledger/xrpl are its two concrete satisfiers.
package ledger

import (
	"context"

	"github.com/holiman/uint256"
)

// NativeAsset is the asset selector for a chain's native currency, mirroring
// domain.NativeToken so this package has no import-cycle dependency on
// package domain.
const NativeAsset = ""

// NativeTransferType is the ledger-native "success" transaction type a
// resolve_tx result must carry for a plain value transfer, per spec.md
// §4.6's funding policy.
const NativeTransferType = "payment"

// TxInfo is the resolved shape of a ledger transaction, per spec.md §4.2's
// resolve_tx capability.
type TxInfo struct {
	Type            string
	Destination     string
	DeliveredAmount *uint256.Int
	Validated       bool
}

// Client is the capability set an escrow state machine needs from an
// external ledger, independent of which chain backs it.
type Client interface {
	// GenerateWallet creates a fresh keypair with cryptographically secure
	// entropy and returns its public address and opaque signing material.
	GenerateWallet(ctx context.Context) (address string, secret []byte, err error)

	// EnsureFunded tops up address to at least min native balance. Testnet
	// faucet path only; production callers gate this behind configuration
	// per spec.md §9's Open Questions.
	EnsureFunded(ctx context.Context, address string, min *uint256.Int) error

	// ResolveTx looks up a transaction by id.
	ResolveTx(ctx context.Context, txID string) (TxInfo, error)

	// ReadBalance returns the confirmed balance of address in asset (the
	// native sentinel or a chain-native asset identifier).
	ReadBalance(ctx context.Context, address, asset string) (*uint256.Int, error)

	// SubmitTransfer signs and submits a value transfer using secret,
	// blocking until validated inclusion, and returns the resulting tx id.
	SubmitTransfer(ctx context.Context, secret []byte, from, to, asset string, amount *uint256.Int) (txID string, err error)

	// Ping reports whether the adapter can currently reach the ledger. Not
	// named in spec.md §4.2's table; added to back the Health command's
	// connected field (SPEC_FULL.md supplemented feature 4).
	Ping(ctx context.Context) error
}
