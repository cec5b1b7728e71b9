// Package escrow is the escrow state machine of spec.md §4.5–§4.9. Machine
// orchestrates store.EscrowStore, wallet.Manager, ledger.Client and
// phase.ValidateWindow the way the teacher's SettlementDriver composes a
// ChainWatcher and a LightningClient: callers never reach past Machine into
// any of those collaborators directly.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/liquidityos/escrow-coordinator/codec"
	"github.com/liquidityos/escrow-coordinator/domain"
	"github.com/liquidityos/escrow-coordinator/ledger"
	"github.com/liquidityos/escrow-coordinator/phase"
	"github.com/liquidityos/escrow-coordinator/pkg/apperror"
	"github.com/liquidityos/escrow-coordinator/pkg/metrics"
	"github.com/liquidityos/escrow-coordinator/store"
	"github.com/liquidityos/escrow-coordinator/wallet"
)

// Machine is the transport-agnostic core the dispatcher package calls into.
type Machine struct {
	store   *store.EscrowStore
	wallet  *wallet.Manager
	ledger  ledger.Client
	metrics *metrics.Registry
	log     zerolog.Logger

	// now returns the current Unix timestamp; overridden by tests so the
	// seed scenarios of spec.md §8 can "advance the wall clock" exactly.
	now func() int64

	rescueDelaySeconds int64
	phaseSlackSeconds  int64

	ensureFundedEnabled    bool
	ensureFundedMinReserve *uint256.Int
}

// Config carries the process-scoped values of spec.md §6 that the state
// machine itself needs (as opposed to the ledger adapter's own config).
type Config struct {
	RescueDelaySeconds int64
	PhaseSlackSeconds  int64

	// EnsureFundedEnabled gates the testnet-only ensure_funded/faucet path of
	// spec.md §4.2 and §9's Open Questions; production builds leave it unset.
	EnsureFundedEnabled    bool
	EnsureFundedMinReserve *uint256.Int
}

func New(st *store.EscrowStore, wm *wallet.Manager, lc ledger.Client, mr *metrics.Registry, log zerolog.Logger, cfg Config) *Machine {
	return &Machine{
		store:                  st,
		wallet:                 wm,
		ledger:                 lc,
		metrics:                mr,
		log:                    log,
		now:                    func() int64 { return domain.RealClock().Unix() },
		rescueDelaySeconds:     cfg.RescueDelaySeconds,
		phaseSlackSeconds:      cfg.PhaseSlackSeconds,
		ensureFundedEnabled:    cfg.EnsureFundedEnabled,
		ensureFundedMinReserve: cfg.EnsureFundedMinReserve,
	}
}

// SetClock overrides the wall clock; used by tests only.
func (m *Machine) SetClock(now func() int64) { m.now = now }

// withLock wraps store.EscrowStore.WithLock, translating its sentinel
// store.ErrNotFound into the apperror.NotFound kind of spec.md §7 so that
// every mutating operation (not just Get) surfaces "escrow id does not
// exist" as a machine-readable NotFound instead of falling through to the
// transport shim's generic Internal response.
func (m *Machine) withLock(id domain.ID, fn func(*domain.Escrow) error) error {
	err := m.store.WithLock(id, fn)
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound(fmt.Sprintf("escrow %s not found", id))
	}
	return err
}

// recordLedgerCall feeds the prometheus counter of pkg/metrics with an
// outcome label ("ok"/"error") for every capability call package escrow or
// package wallet makes against ledger.Client.
func (m *Machine) recordLedgerCall(capability string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.metrics.IncLedgerCall(capability, outcome)
}

// settle delegates to wallet.Manager.SignAndSubmit and records the outcome
// under the "submit_transfer" capability label.
func (m *Machine) settle(ctx context.Context, e *domain.Escrow, to, asset string, amount *uint256.Int) (string, error) {
	tx, err := m.wallet.SignAndSubmit(ctx, e.ID, e.WalletAddress, to, asset, amount)
	m.recordLedgerCall("submit_transfer", err)
	return tx, err
}

// RequiredDeposit mirrors domain.Escrow.RequiredDeposit's return shape at
// the command boundary.
type RequiredDeposit struct {
	Native *uint256.Int
	Token  *uint256.Int
}

// CreateParams are the inputs to spec.md §4.5.
type CreateParams struct {
	OrderHash       [32]byte
	Hashlock        [32]byte
	Maker           string
	Taker           string
	Token           string
	Amount          *uint256.Int
	SafetyDeposit   *uint256.Int
	PackedTimelocks *uint256.Int
	Side            domain.Side
}

type CreateResult struct {
	EscrowID        domain.ID
	WalletAddress   string
	RequiredDeposit RequiredDeposit
	Timelocks       [codec.PhaseCount]int64
}

func (m *Machine) Create(ctx context.Context, p CreateParams) (*CreateResult, error) {
	if p.Amount == nil || p.SafetyDeposit == nil || p.PackedTimelocks == nil {
		return nil, apperror.InvalidParameters("amount, safety_deposit and timelocks are required")
	}
	if p.Maker == "" || p.Taker == "" {
		return nil, apperror.InvalidParameters("maker and taker are required")
	}

	offsets, _ := codec.UnpackTimelocks(p.PackedTimelocks)
	if err := codec.ValidateOffsets(offsets); err != nil {
		return nil, apperror.InvalidParameters(err.Error())
	}

	id := domain.NewID()
	address, err := m.wallet.Generate(ctx, id)
	m.recordLedgerCall("generate_wallet", err)
	if err != nil {
		return nil, apperror.LedgerUnavailable(err)
	}

	// A freshly generated wallet holds no balance of its own and, on a
	// reserve-based ledger like XRPL, cannot even be activated without one.
	// Per spec.md §4.2's failure-mode column ("faucet/top-up failure
	// (non-fatal for mainnet)"), a top-up failure here is logged, not fatal
	// to Create — the escrow is still usable once a real deposit lands.
	if m.ensureFundedEnabled {
		fundErr := m.ledger.EnsureFunded(ctx, address, m.ensureFundedMinReserve)
		m.recordLedgerCall("ensure_funded", fundErr)
		if fundErr != nil {
			m.log.Warn().Str("escrow_id", id.String()).Str("address", address).Err(fundErr).Msg("ensure_funded top-up failed for new escrow wallet")
		}
	}

	deployedAt := m.now()
	timelocks := codec.AbsoluteTimelocks(offsets, deployedAt)

	e := &domain.Escrow{
		ID:            id,
		OrderHash:     p.OrderHash,
		Hashlock:      p.Hashlock,
		Maker:         p.Maker,
		Taker:         p.Taker,
		Token:         p.Token,
		Amount:        p.Amount,
		SafetyDeposit: p.SafetyDeposit,
		Timelocks:     timelocks,
		DeployedAt:    deployedAt,
		WalletAddress: address,
		Status:        domain.StatusCreated,
		FundingTxIDs:  make(map[string]struct{}),
		Side:          p.Side,
	}
	if err := m.store.Create(e); err != nil {
		return nil, fmt.Errorf("escrow: %w", err)
	}
	m.metrics.IncTransition("created")

	native, token := e.RequiredDeposit()
	return &CreateResult{
		EscrowID:        id,
		WalletAddress:   address,
		RequiredDeposit: RequiredDeposit{Native: native, Token: token},
		Timelocks:       timelocks,
	}, nil
}

// FundParams are the inputs to spec.md §4.6.
type FundParams struct {
	EscrowID    domain.ID
	FromAddress string
	TxIDs       []string
}

type FundResult struct {
	TotalReceived *uint256.Int
	VerifiedTxs   []string
}

func (m *Machine) Fund(ctx context.Context, p FundParams) (*FundResult, error) {
	if len(p.TxIDs) == 0 {
		return nil, apperror.InvalidParameters("at least one tx_id is required")
	}

	var result *FundResult
	err := m.withLock(p.EscrowID, func(e *domain.Escrow) error {
		if e.Status != domain.StatusCreated && e.Status != domain.StatusFunded {
			return apperror.InvalidState(fmt.Sprintf("cannot fund escrow in status %s", e.Status))
		}

		union := make(map[string]struct{}, len(e.FundingTxIDs)+len(p.TxIDs))
		for id := range e.FundingTxIDs {
			union[id] = struct{}{}
		}
		for _, id := range p.TxIDs {
			union[id] = struct{}{}
		}

		total := uint256.NewInt(0)
		verified := make([]string, 0, len(union))
		for txID := range union {
			info, err := m.ledger.ResolveTx(ctx, txID)
			m.recordLedgerCall("resolve_tx", err)
			if err != nil {
				switch {
				case errors.Is(err, ledger.ErrTimeout):
					return apperror.LedgerTimeout(err)
				case errors.Is(err, ledger.ErrUnavailable):
					return apperror.LedgerUnavailable(err)
				default:
					return apperror.Wrap(apperror.KindInvalidTransaction, fmt.Sprintf("could not resolve tx %s", txID), err)
				}
			}
			if !info.Validated || info.Destination != e.WalletAddress || info.Type != ledger.NativeTransferType {
				return apperror.InvalidTransaction(fmt.Sprintf("tx %s is not a validated deposit to %s", txID, e.WalletAddress))
			}
			total = new(uint256.Int).Add(total, info.DeliveredAmount)
			verified = append(verified, txID)
		}
		sort.Strings(verified)

		required, _ := e.RequiredDeposit()
		if total.Cmp(required) < 0 {
			return apperror.InsufficientFunding(fmt.Sprintf("received %s, require %s", total.String(), required.String()))
		}

		for _, txID := range verified {
			e.FundingTxIDs[txID] = struct{}{}
		}
		e.Status = domain.StatusFunded
		result = &FundResult{TotalReceived: total, VerifiedTxs: verified}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.metrics.IncTransition("funded")
	return result, nil
}

// WithdrawParams are the inputs to spec.md §4.7.
type WithdrawParams struct {
	EscrowID      domain.ID
	Secret        [32]byte
	CallerAddress string
	IsPublic      bool
}

type WithdrawResult struct {
	TxHash string
	Secret [32]byte
	Amount *uint256.Int
}

func (m *Machine) Withdraw(ctx context.Context, p WithdrawParams) (*WithdrawResult, error) {
	var result *WithdrawResult
	err := m.withLock(p.EscrowID, func(e *domain.Escrow) error {
		if e.Status != domain.StatusFunded {
			return apperror.InvalidState(fmt.Sprintf("cannot withdraw escrow in status %s", e.Status))
		}
		if !codec.SecretMatchesHashlock(p.Secret, e.Hashlock) {
			return apperror.InvalidSecret("secret does not match hashlock")
		}

		if p.IsPublic {
			if err := phase.ValidateWindow(e, m.now(), domain.PhaseDstPublicWithdrawal, domain.PhaseDstCancellation, m.phaseSlackSeconds); err != nil {
				return windowErr(err)
			}
		} else {
			if p.CallerAddress != e.Taker {
				return apperror.Unauthorized("only the taker may withdraw during the private window")
			}
			if err := phase.ValidateWindow(e, m.now(), domain.PhaseDstWithdrawal, domain.PhaseDstCancellation, m.phaseSlackSeconds); err != nil {
				return windowErr(err)
			}
		}

		principalTx, err := m.settle(ctx, e, e.Maker, e.Token, e.Amount)
		if err != nil {
			return apperror.SettlementFailed("principal transfer to maker failed", err)
		}

		e.SettlementTxs = append(e.SettlementTxs, principalTx)

		if e.SafetyDeposit.Sign() > 0 {
			safetyTx, err := m.settle(ctx, e, p.CallerAddress, ledger.NativeAsset, e.SafetyDeposit)
			if err != nil {
				// Principal already reached the maker; per spec.md §4.7 this
				// leaves status Withdrawn with a reconciliation warning
				// instead of failing the whole command.
				m.log.Warn().
					Str("escrow_id", e.ID.String()).
					Str("principal_tx", principalTx).
					Err(err).
					Msg("safety deposit payout failed after principal settled; needs manual reconciliation")
			} else {
				e.SettlementTxs = append(e.SettlementTxs, safetyTx)
			}
		}

		secret := p.Secret
		e.Secret = &secret
		e.Status = domain.StatusWithdrawn
		result = &WithdrawResult{TxHash: principalTx, Secret: p.Secret, Amount: e.Amount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.wallet.Forget(p.EscrowID)
	m.metrics.IncTransition("withdrawn")
	return result, nil
}

// CancelParams are the inputs to spec.md §4.8.
type CancelParams struct {
	EscrowID      domain.ID
	CallerAddress string
}

type CancelResult struct {
	CancelTxIDs   []string
	TotalRefunded *uint256.Int
}

func (m *Machine) Cancel(ctx context.Context, p CancelParams) (*CancelResult, error) {
	var result *CancelResult
	err := m.withLock(p.EscrowID, func(e *domain.Escrow) error {
		if e.Status != domain.StatusFunded {
			return apperror.InvalidState(fmt.Sprintf("cannot cancel escrow in status %s", e.Status))
		}
		if p.CallerAddress != e.Taker {
			return apperror.Unauthorized("only the taker may cancel")
		}
		if err := phase.ValidateWindow(e, m.now(), domain.PhaseDstCancellation, phase.NoEndPhase, m.phaseSlackSeconds); err != nil {
			return windowErr(err)
		}

		var txIDs []string
		var total *uint256.Int

		switch e.Side {
		case domain.SideSource:
			makerTx, err := m.settle(ctx, e, e.Maker, e.Token, e.Amount)
			if err != nil {
				return apperror.SettlementFailed("refund to maker failed", err)
			}
			takerTx, err := m.settle(ctx, e, p.CallerAddress, ledger.NativeAsset, e.SafetyDeposit)
			if err != nil {
				m.log.Warn().Str("escrow_id", e.ID.String()).Str("maker_tx", makerTx).Err(err).Msg("safety deposit refund failed after principal refund settled")
				txIDs = []string{makerTx}
				total = new(uint256.Int).Set(e.Amount)
			} else {
				txIDs = []string{makerTx, takerTx}
				total = new(uint256.Int).Add(e.Amount, e.SafetyDeposit)
			}
		default: // domain.SideDestination
			if e.IsNative() {
				refundTotal := new(uint256.Int).Add(e.Amount, e.SafetyDeposit)
				tx, err := m.settle(ctx, e, p.CallerAddress, ledger.NativeAsset, refundTotal)
				if err != nil {
					return apperror.SettlementFailed("refund to taker failed", err)
				}
				txIDs = []string{tx}
				total = refundTotal
			} else {
				principalTx, err := m.settle(ctx, e, p.CallerAddress, e.Token, e.Amount)
				if err != nil {
					return apperror.SettlementFailed("refund to taker failed", err)
				}
				safetyTx, err := m.settle(ctx, e, p.CallerAddress, ledger.NativeAsset, e.SafetyDeposit)
				if err != nil {
					m.log.Warn().Str("escrow_id", e.ID.String()).Str("principal_tx", principalTx).Err(err).Msg("safety deposit refund failed after principal refund settled")
					txIDs = []string{principalTx}
					total = new(uint256.Int).Set(e.Amount)
				} else {
					txIDs = []string{principalTx, safetyTx}
					total = new(uint256.Int).Add(e.Amount, e.SafetyDeposit)
				}
			}
		}

		e.SettlementTxs = append(e.SettlementTxs, txIDs...)
		e.Status = domain.StatusCancelled
		result = &CancelResult{CancelTxIDs: txIDs, TotalRefunded: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.wallet.Forget(p.EscrowID)
	m.metrics.IncTransition("cancelled")
	return result, nil
}

// RescueParams are the inputs to spec.md §4.9.
type RescueParams struct {
	EscrowID      domain.ID
	CallerAddress string
	Amount        *uint256.Int
}

type RescueResult struct {
	TxHash string
	Amount *uint256.Int
}

func (m *Machine) Rescue(ctx context.Context, p RescueParams) (*RescueResult, error) {
	var result *RescueResult
	err := m.withLock(p.EscrowID, func(e *domain.Escrow) error {
		if e.Terminal() {
			return apperror.InvalidState(fmt.Sprintf("cannot rescue escrow in terminal status %s", e.Status))
		}
		if p.CallerAddress != e.Taker {
			return apperror.Unauthorized("only the taker may rescue")
		}
		availableAt := e.DeployedAt + m.rescueDelaySeconds
		if m.now() < availableAt {
			return apperror.InvalidState(fmt.Sprintf("rescue not available until %s", isoTime(availableAt)))
		}

		tx, err := m.settle(ctx, e, p.CallerAddress, ledger.NativeAsset, p.Amount)
		if err != nil {
			return apperror.SettlementFailed("rescue transfer failed", err)
		}

		e.SettlementTxs = append(e.SettlementTxs, tx)
		e.Status = domain.StatusRescued
		result = &RescueResult{TxHash: tx, Amount: p.Amount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.wallet.Forget(p.EscrowID)
	m.metrics.IncTransition("rescued")
	return result, nil
}

// View is the public projection of an Escrow: everything GetEscrow may
// return, and nothing else. It structurally cannot carry wallet secret
// material because domain.WalletSecret is never referenced here.
type View struct {
	ID            domain.ID
	OrderHash     [32]byte
	Hashlock      [32]byte
	Maker         string
	Taker         string
	Token         string
	Amount        *uint256.Int
	SafetyDeposit *uint256.Int
	Timelocks     [codec.PhaseCount]int64
	DeployedAt    int64
	WalletAddress string
	Status        domain.Status
	FundingTxIDs  []string
	Secret        *[32]byte
	SettlementTxs []string
	Side          domain.Side
}

func (m *Machine) Get(id domain.ID) (*View, error) {
	e, err := m.store.Get(id)
	if err != nil {
		return nil, apperror.NotFound(fmt.Sprintf("escrow %s not found", id))
	}
	return toView(e), nil
}

func toView(e *domain.Escrow) *View {
	funding := make([]string, 0, len(e.FundingTxIDs))
	for id := range e.FundingTxIDs {
		funding = append(funding, id)
	}
	sort.Strings(funding)

	var timelocks [codec.PhaseCount]int64
	copy(timelocks[:], e.Timelocks[:])

	return &View{
		ID:            e.ID,
		OrderHash:     e.OrderHash,
		Hashlock:      e.Hashlock,
		Maker:         e.Maker,
		Taker:         e.Taker,
		Token:         e.Token,
		Amount:        e.Amount,
		SafetyDeposit: e.SafetyDeposit,
		Timelocks:     timelocks,
		DeployedAt:    e.DeployedAt,
		WalletAddress: e.WalletAddress,
		Status:        e.Status,
		FundingTxIDs:  funding,
		Secret:        e.Secret,
		SettlementTxs: e.SettlementTxs,
		Side:          e.Side,
	}
}

// HealthStatus backs the Health command of spec.md §6.
type HealthStatus struct {
	Healthy       bool
	Connected     bool
	ActiveEscrows int
}

func (m *Machine) Health(ctx context.Context) HealthStatus {
	pingErr := m.ledger.Ping(ctx)
	m.recordLedgerCall("ping", pingErr)
	connected := pingErr == nil
	active := m.store.CountActive()
	m.metrics.SetActiveEscrows(active)
	return HealthStatus{Healthy: true, Connected: connected, ActiveEscrows: active}
}

func windowErr(err error) *apperror.Error {
	switch err.(type) {
	case *phase.ErrNotYetOpen:
		return apperror.NotYetOpen(err.Error())
	case *phase.ErrWindowClosed:
		return apperror.WindowClosed(err.Error())
	default:
		return apperror.InvalidParameters(err.Error())
	}
}

func isoTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}
