package dispatcher

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/liquidityos/escrow-coordinator/codec"
	"github.com/liquidityos/escrow-coordinator/domain"
	"github.com/liquidityos/escrow-coordinator/escrow"
	"github.com/liquidityos/escrow-coordinator/pkg/apperror"
)

// Dispatcher routes typed commands to escrow.Machine operations and maps
// results back to wire-shaped result structs, per spec.md §6.
type Dispatcher struct {
	machine *escrow.Machine
}

func New(machine *escrow.Machine) *Dispatcher {
	return &Dispatcher{machine: machine}
}

// RequiredDeposit mirrors spec.md §6's required_deposit{native, token}.
type RequiredDeposit struct {
	Native decimal.Decimal
	Token  decimal.Decimal
}

type CreateDstResult struct {
	EscrowID      string
	WalletAddress string
	Required      RequiredDeposit
	Timelocks     [codec.PhaseCount]int64
}

func (d *Dispatcher) CreateDst(ctx context.Context, cmd CreateDstCommand) (*CreateDstResult, error) {
	orderHash, err := codec.HexDecode32(cmd.OrderHash)
	if err != nil {
		return nil, apperror.InvalidParameters("order_hash: " + err.Error())
	}
	hashlock, err := codec.HexDecode32(cmd.Hashlock)
	if err != nil {
		return nil, apperror.InvalidParameters("hashlock: " + err.Error())
	}
	amount, err := decimalToUint256(cmd.Amount)
	if err != nil {
		return nil, apperror.InvalidParameters("amount: " + err.Error())
	}
	safety, err := decimalToUint256(cmd.SafetyDeposit)
	if err != nil {
		return nil, apperror.InvalidParameters("safety_deposit: " + err.Error())
	}
	packed, err := parsePackedTimelock(cmd.PackedTimelock)
	if err != nil {
		return nil, apperror.InvalidParameters("timelocks: " + err.Error())
	}

	side := cmd.Side
	if side == "" {
		side = domain.SideDestination
	}

	res, err := d.machine.Create(ctx, escrow.CreateParams{
		OrderHash:       orderHash,
		Hashlock:        hashlock,
		Maker:           cmd.Maker,
		Taker:           cmd.Taker,
		Token:           cmd.Token,
		Amount:          amount,
		SafetyDeposit:   safety,
		PackedTimelocks: packed,
		Side:            side,
	})
	if err != nil {
		return nil, err
	}

	return &CreateDstResult{
		EscrowID:      res.EscrowID.String(),
		WalletAddress: res.WalletAddress,
		Required: RequiredDeposit{
			Native: uint256ToDecimal(res.RequiredDeposit.Native),
			Token:  uint256ToDecimal(res.RequiredDeposit.Token),
		},
		Timelocks: res.Timelocks,
	}, nil
}

type FundResult struct {
	TotalReceived decimal.Decimal
	VerifiedTxs   []string
}

func (d *Dispatcher) Fund(ctx context.Context, cmd FundCommand) (*FundResult, error) {
	id, err := domain.ParseID(cmd.EscrowID)
	if err != nil {
		return nil, apperror.InvalidParameters("escrow_id: " + err.Error())
	}

	res, err := d.machine.Fund(ctx, escrow.FundParams{
		EscrowID:    id,
		FromAddress: cmd.FromAddress,
		TxIDs:       cmd.TxIDs,
	})
	if err != nil {
		return nil, err
	}
	return &FundResult{
		TotalReceived: uint256ToDecimal(res.TotalReceived),
		VerifiedTxs:   res.VerifiedTxs,
	}, nil
}

type WithdrawResult struct {
	TxHash string
	Secret string
	Amount decimal.Decimal
}

func (d *Dispatcher) Withdraw(ctx context.Context, cmd WithdrawCommand) (*WithdrawResult, error) {
	id, err := domain.ParseID(cmd.EscrowID)
	if err != nil {
		return nil, apperror.InvalidParameters("escrow_id: " + err.Error())
	}
	secret, err := codec.HexDecode32(cmd.Secret)
	if err != nil {
		return nil, apperror.InvalidParameters("secret: " + err.Error())
	}

	res, err := d.machine.Withdraw(ctx, escrow.WithdrawParams{
		EscrowID:      id,
		Secret:        secret,
		CallerAddress: cmd.CallerAddress,
		IsPublic:      cmd.IsPublic,
	})
	if err != nil {
		return nil, err
	}
	return &WithdrawResult{
		TxHash: res.TxHash,
		Secret: codec.HexEncode(res.Secret[:]),
		Amount: uint256ToDecimal(res.Amount),
	}, nil
}

type CancelResult struct {
	CancelTxIDs   []string
	TotalRefunded decimal.Decimal
}

func (d *Dispatcher) Cancel(ctx context.Context, cmd CancelCommand) (*CancelResult, error) {
	id, err := domain.ParseID(cmd.EscrowID)
	if err != nil {
		return nil, apperror.InvalidParameters("escrow_id: " + err.Error())
	}

	res, err := d.machine.Cancel(ctx, escrow.CancelParams{
		EscrowID:      id,
		CallerAddress: cmd.CallerAddress,
	})
	if err != nil {
		return nil, err
	}
	return &CancelResult{
		CancelTxIDs:   res.CancelTxIDs,
		TotalRefunded: uint256ToDecimal(res.TotalRefunded),
	}, nil
}

type RescueResult struct {
	TxHash string
	Amount decimal.Decimal
}

func (d *Dispatcher) Rescue(ctx context.Context, cmd RescueCommand) (*RescueResult, error) {
	id, err := domain.ParseID(cmd.EscrowID)
	if err != nil {
		return nil, apperror.InvalidParameters("escrow_id: " + err.Error())
	}
	amount, err := decimalToUint256(cmd.Amount)
	if err != nil {
		return nil, apperror.InvalidParameters("amount: " + err.Error())
	}

	res, err := d.machine.Rescue(ctx, escrow.RescueParams{
		EscrowID:      id,
		CallerAddress: cmd.CallerAddress,
		Amount:        amount,
	})
	if err != nil {
		return nil, err
	}
	return &RescueResult{TxHash: res.TxHash, Amount: uint256ToDecimal(res.Amount)}, nil
}

// EscrowView is the wire-shaped public view of an escrow: the GetEscrow
// result of spec.md §6, with no wallet private material reachable from it.
type EscrowView struct {
	EscrowID      string
	OrderHash     string
	Hashlock      string
	Maker         string
	Taker         string
	Token         string
	Amount        decimal.Decimal
	SafetyDeposit decimal.Decimal
	Timelocks     [codec.PhaseCount]int64
	DeployedAt    int64
	WalletAddress string
	Status        string
	FundingTxIDs  []string
	Secret        *string
	SettlementTxs []string
	Side          string
}

func (d *Dispatcher) GetEscrow(_ context.Context, cmd GetEscrowCommand) (*EscrowView, error) {
	id, err := domain.ParseID(cmd.EscrowID)
	if err != nil {
		return nil, apperror.InvalidParameters("escrow_id: " + err.Error())
	}
	view, err := d.machine.Get(id)
	if err != nil {
		return nil, err
	}

	var secret *string
	if view.Secret != nil {
		s := codec.HexEncode(view.Secret[:])
		secret = &s
	}

	return &EscrowView{
		EscrowID:      view.ID.String(),
		OrderHash:     codec.HexEncode(view.OrderHash[:]),
		Hashlock:      codec.HexEncode(view.Hashlock[:]),
		Maker:         view.Maker,
		Taker:         view.Taker,
		Token:         view.Token,
		Amount:        uint256ToDecimal(view.Amount),
		SafetyDeposit: uint256ToDecimal(view.SafetyDeposit),
		Timelocks:     view.Timelocks,
		DeployedAt:    view.DeployedAt,
		WalletAddress: view.WalletAddress,
		Status:        string(view.Status),
		FundingTxIDs:  view.FundingTxIDs,
		Secret:        secret,
		SettlementTxs: view.SettlementTxs,
		Side:          string(view.Side),
	}, nil
}

type HealthResult struct {
	Healthy       bool
	Connected     bool
	ActiveEscrows int
}

func (d *Dispatcher) Health(ctx context.Context) HealthResult {
	h := d.machine.Health(ctx)
	return HealthResult{Healthy: h.Healthy, Connected: h.Connected, ActiveEscrows: h.ActiveEscrows}
}
