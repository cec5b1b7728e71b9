// Package domain holds the record types shared by every package in this
// module. It carries no behavior beyond small invariant helpers; the state
// machine that mutates these records lives in package escrow.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
)

// Status is a node in the escrow lifecycle DAG: Created -> Funded ->
// {Withdrawn, Cancelled}, with Rescued reachable from Created or Funded
// after the rescue delay.
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusFunded    Status = "FUNDED"
	StatusWithdrawn Status = "WITHDRAWN"
	StatusCancelled Status = "CANCELLED"
	StatusRescued   Status = "RESCUED"
)

// Side selects the refund policy applied on cancellation.
type Side string

const (
	SideSource      Side = "SOURCE"
	SideDestination Side = "DESTINATION"
)

// Phase indexes the seven windows packed into a timelock word.
type Phase int

const (
	PhaseSrcWithdrawal Phase = iota
	PhaseSrcPublicWithdrawal
	PhaseSrcCancellation
	PhaseSrcPublicCancellation
	PhaseDstWithdrawal
	PhaseDstPublicWithdrawal
	PhaseDstCancellation
	phaseCount
)

// NativeToken is the sentinel asset selector meaning "the chain's native
// currency" rather than an issued token/asset identifier.
const NativeToken = ""

// ID is an opaque, process-wide-unique escrow identifier.
type ID uuid.UUID

func NewID() ID { return ID(uuid.New()) }

func (id ID) String() string { return uuid.UUID(id).String() }

// ParseID parses the wire form produced by String.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(u), nil
}

// Escrow is the durable (for the lifetime of the process) record for one
// side of one swap. Fields are mutated only through the transition methods
// on escrow.Machine; nothing outside package escrow writes to an Escrow
// after Create.
type Escrow struct {
	ID            ID
	OrderHash     [32]byte
	Hashlock      [32]byte
	Maker         string
	Taker         string
	Token         string
	Amount        *uint256.Int
	SafetyDeposit *uint256.Int
	Timelocks     [int(phaseCount)]int64
	DeployedAt    int64
	WalletAddress string
	Status        Status
	FundingTxIDs  map[string]struct{}
	Secret        *[32]byte
	SettlementTxs []string
	Side          Side
}

// IsNative reports whether the principal asset is the chain's native
// currency rather than an issued token.
func (e *Escrow) IsNative() bool { return e.Token == NativeToken }

// RequiredDeposit returns the native/token amounts a fund command must
// cover before the escrow may transition to Funded, per spec.md §4.5.
func (e *Escrow) RequiredDeposit() (native, token *uint256.Int) {
	if e.IsNative() {
		return new(uint256.Int).Add(e.Amount, e.SafetyDeposit), uint256.NewInt(0)
	}
	return e.SafetyDeposit, e.Amount
}

// PhaseTime returns the absolute Unix timestamp at which phase p opens.
func (e *Escrow) PhaseTime(p Phase) int64 { return e.Timelocks[int(p)] }

// Terminal reports whether no further transition is admissible.
func (e *Escrow) Terminal() bool {
	switch e.Status {
	case StatusWithdrawn, StatusCancelled, StatusRescued:
		return true
	default:
		return false
	}
}

// Clone returns a deep copy safe to hand to a reader once the per-escrow
// lock guarding e is released. Callers MUST take it while still holding
// that lock — FundingTxIDs and SettlementTxs are reference types that the
// state machine mutates in place, so a shallow copy would still race.
func (e *Escrow) Clone() *Escrow {
	clone := *e

	clone.FundingTxIDs = make(map[string]struct{}, len(e.FundingTxIDs))
	for id := range e.FundingTxIDs {
		clone.FundingTxIDs[id] = struct{}{}
	}

	clone.SettlementTxs = append([]string(nil), e.SettlementTxs...)

	return &clone
}

// WalletSecret is the 1:1 counterpart to an Escrow, held in a store isolated
// from the escrow store per spec.md §3/§5. It is never reachable from any
// public query path.
type WalletSecret struct {
	ID              ID
	PrivateMaterial []byte
}

// Clock abstracts wall-clock time so the phase validator and state machine
// are deterministic in tests.
type Clock func() time.Time

// RealClock is the production Clock.
func RealClock() time.Time { return time.Now() }
