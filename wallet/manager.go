// Package wallet is the custodial wallet manager of spec.md §4.3: it
// generates a fresh keypair per escrow, keeps the private material in a
// store isolated from the escrow record, and is the only path through
// which an escrow's funds can be moved.
package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/liquidityos/escrow-coordinator/domain"
	"github.com/liquidityos/escrow-coordinator/ledger"
)

// Manager owns the secret store. Nothing outside this package ever reads a
// WalletSecret's PrivateMaterial.
type Manager struct {
	mu      sync.RWMutex
	ledger  ledger.Client
	log     zerolog.Logger
	secrets map[domain.ID]domain.WalletSecret
}

func New(client ledger.Client, log zerolog.Logger) *Manager {
	return &Manager{
		ledger:  client,
		log:     log,
		secrets: make(map[domain.ID]domain.WalletSecret),
	}
}

// Generate creates a fresh wallet for id and retains its secret. It must be
// called at most once per escrow id.
func (m *Manager) Generate(ctx context.Context, id domain.ID) (address string, err error) {
	address, secret, err := m.ledger.GenerateWallet(ctx)
	if err != nil {
		return "", fmt.Errorf("wallet: generate: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.secrets[id]; exists {
		return "", fmt.Errorf("wallet: secret already exists for escrow %s", id)
	}
	m.secrets[id] = domain.WalletSecret{ID: id, PrivateMaterial: secret}
	m.log.Debug().Str("escrow_id", id.String()).Str("address", address).Msg("wallet generated")
	return address, nil
}

// SignAndSubmit looks up the secret for id and delegates to the ledger
// adapter, per spec.md §4.3. The public query path (package store, package
// escrow's GetEscrow support) has no access to this method's secret lookup.
func (m *Manager) SignAndSubmit(ctx context.Context, id domain.ID, from, to, asset string, amount *uint256.Int) (string, error) {
	m.mu.RLock()
	secret, ok := m.secrets[id]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("wallet: no secret for escrow %s", id)
	}

	txID, err := m.ledger.SubmitTransfer(ctx, secret.PrivateMaterial, from, to, asset, amount)
	if err != nil {
		m.log.Warn().Str("escrow_id", id.String()).Str("to", to).Err(err).Msg("transfer failed")
		return "", err
	}
	m.log.Info().Str("escrow_id", id.String()).Str("tx_id", txID).Str("to", to).Str("amount", amount.String()).Msg("transfer settled")
	return txID, nil
}

// Forget deletes an escrow's secret. escrow.Machine calls it once Withdraw,
// Cancel or Rescue has committed a terminal status, whether or not the
// escrow wallet still holds a balance; nothing calls it on process
// shutdown. Not required by spec.md (no durability guarantees), but keeps
// long-lived processes from accumulating dead secrets.
func (m *Manager) Forget(id domain.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, id)
}
