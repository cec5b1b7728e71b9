// Package mock implements ledger.Client entirely in memory, for tests and
// demos. It is modeled on the teacher's own adapters/mock package: a
// mutex-guarded map plus a Simulate* helper that injects an external event
// a real chain would otherwise produce.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/liquidityos/escrow-coordinator/ledger"
)

type incomingTx struct {
	txType      string
	destination string
	amount      *uint256.Int
	validated   bool
}

// Client is a fully in-memory ledger.Client. Each generated wallet's secret
// is derived from its address ("secret-for-<address>") since no real
// signing ever happens.
type Client struct {
	mu         sync.RWMutex
	log        zerolog.Logger
	txs        map[string]incomingTx
	balances   map[string]map[string]*uint256.Int // address -> asset -> balance
	walletN    int
	fail       bool
	resolveErr error
}

func New(log zerolog.Logger) *Client {
	return &Client{
		log:      log,
		txs:      make(map[string]incomingTx),
		balances: make(map[string]map[string]*uint256.Int),
	}
}

func (c *Client) GenerateWallet(_ context.Context) (string, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.walletN++
	address := fmt.Sprintf("mockaddr_%d_%s", c.walletN, uuid.NewString()[:8])
	secret := []byte("secret-for-" + address)
	c.log.Debug().Str("address", address).Msg("mock ledger: generated wallet")
	return address, secret, nil
}

func (c *Client) EnsureFunded(_ context.Context, address string, min *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	bal := c.balanceLocked(address, ledger.NativeAsset)
	if bal.Cmp(min) >= 0 {
		return nil
	}
	c.creditLocked(address, ledger.NativeAsset, new(uint256.Int).Sub(min, bal))
	c.log.Debug().Str("address", address).Str("min", min.String()).Msg("mock ledger: faucet top-up")
	return nil
}

func (c *Client) ResolveTx(_ context.Context, txID string) (ledger.TxInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.resolveErr != nil {
		return ledger.TxInfo{}, c.resolveErr
	}
	tx, ok := c.txs[txID]
	if !ok {
		return ledger.TxInfo{}, ledger.ErrNotFound
	}
	return ledger.TxInfo{
		Type:            tx.txType,
		Destination:     tx.destination,
		DeliveredAmount: tx.amount,
		Validated:       tx.validated,
	}, nil
}

func (c *Client) ReadBalance(_ context.Context, address, asset string) (*uint256.Int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balanceLocked(address, asset), nil
}

func (c *Client) SubmitTransfer(_ context.Context, secret []byte, from, to, asset string, amount *uint256.Int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return "", ledger.ErrRejected
	}
	if len(secret) == 0 {
		return "", ledger.ErrSigningFailed
	}
	bal := c.balanceLocked(from, asset)
	if bal.Cmp(amount) < 0 {
		return "", ledger.ErrRejected
	}
	c.debitLocked(from, asset, amount)
	c.creditLocked(to, asset, amount)

	txID := "mocktx_" + uuid.NewString()
	c.txs[txID] = incomingTx{
		txType:      ledger.NativeTransferType,
		destination: to,
		amount:      amount,
		validated:   true,
	}
	c.log.Info().Str("tx_id", txID).Str("from", from).Str("to", to).Str("amount", amount.String()).Msg("mock ledger: transfer settled")
	return txID, nil
}

func (c *Client) Ping(context.Context) error {
	if c.fail {
		return ledger.ErrUnavailable
	}
	return nil
}

// SetUnavailable flips the adapter into a failure mode, for tests exercising
// LedgerUnavailable/SettlementFailed paths.
func (c *Client) SetUnavailable(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = fail
}

// SetResolveTxError makes every subsequent ResolveTx call return err, for
// tests exercising resolve_tx's network-failure paths (ledger.ErrTimeout,
// ledger.ErrUnavailable) as distinct from a genuinely bad transaction id.
func (c *Client) SetResolveTxError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolveErr = err
}

// SimulateDeposit injects a validated incoming transfer as if a depositor
// had sent funds to address out-of-band, the way a real chain would surface
// it through resolve_tx.
func (c *Client) SimulateDeposit(txID, destination string, amount *uint256.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[txID] = incomingTx{
		txType:      ledger.NativeTransferType,
		destination: destination,
		amount:      amount,
		validated:   true,
	}
	c.creditLocked(destination, ledger.NativeAsset, amount)
}

// SimulateUnvalidatedDeposit injects a transaction resolve_tx can see but
// that has not yet reached validated inclusion.
func (c *Client) SimulateUnvalidatedDeposit(txID, destination string, amount *uint256.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs[txID] = incomingTx{
		txType:      ledger.NativeTransferType,
		destination: destination,
		amount:      amount,
		validated:   false,
	}
}

func (c *Client) balanceLocked(address, asset string) *uint256.Int {
	byAsset, ok := c.balances[address]
	if !ok {
		return uint256.NewInt(0)
	}
	bal, ok := byAsset[asset]
	if !ok {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(bal)
}

func (c *Client) creditLocked(address, asset string, amount *uint256.Int) {
	byAsset, ok := c.balances[address]
	if !ok {
		byAsset = make(map[string]*uint256.Int)
		c.balances[address] = byAsset
	}
	cur, ok := byAsset[asset]
	if !ok {
		cur = uint256.NewInt(0)
	}
	byAsset[asset] = new(uint256.Int).Add(cur, amount)
}

func (c *Client) debitLocked(address, asset string, amount *uint256.Int) {
	byAsset := c.balances[address]
	cur := byAsset[asset]
	byAsset[asset] = new(uint256.Int).Sub(cur, amount)
}
