// Package dispatcher receives typed commands from the transport boundary
// and routes them to escrow.Machine operations, per spec.md §6 and §9's
// redesign note ("dynamic JSON command envelopes -> tagged command variant
// validated once on entry"). Nothing downstream of this package ever sees
// an untyped map or a raw wire payload.
package dispatcher

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/liquidityos/escrow-coordinator/domain"
)

// CreateDstCommand is the wire-decoded form of spec.md §6's CreateDst.
// Amounts arrive as decimal strings in the smallest native unit; hex
// fields are 0x-prefixed lower-case.
type CreateDstCommand struct {
	OrderHash      string
	Hashlock       string
	Maker          string
	Taker          string
	Token          string
	Amount         decimal.Decimal
	SafetyDeposit  decimal.Decimal
	PackedTimelock string
	Side           domain.Side
}

type FundCommand struct {
	EscrowID    string
	FromAddress string
	TxIDs       []string
}

type WithdrawCommand struct {
	EscrowID      string
	Secret        string
	CallerAddress string
	IsPublic      bool
}

type CancelCommand struct {
	EscrowID      string
	CallerAddress string
}

type RescueCommand struct {
	EscrowID      string
	CallerAddress string
	Amount        decimal.Decimal
}

type GetEscrowCommand struct {
	EscrowID string
}

// decimalToUint256 converts a wire decimal-string amount into the internal
// 256-bit representation, rejecting negative or fractional values per
// spec.md §7's InvalidParameters kind.
func decimalToUint256(d decimal.Decimal) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, errNegativeAmount
	}
	if !d.Equal(d.Truncate(0)) {
		return nil, errFractionalAmount
	}
	v, err := uint256.FromDecimal(d.Truncate(0).String())
	if err != nil {
		return nil, errAmountOverflow
	}
	return v, nil
}

func uint256ToDecimal(v *uint256.Int) decimal.Decimal {
	d, _ := decimal.NewFromString(v.String())
	return d
}

func parsePackedTimelock(s string) (*uint256.Int, error) {
	v, err := uint256.FromHex(s)
	if err != nil {
		return nil, errInvalidHex
	}
	return v, nil
}
