package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/liquidityos/escrow-coordinator/domain"
)

func testEscrow() *domain.Escrow {
	e := &domain.Escrow{}
	e.Timelocks[domain.PhaseDstWithdrawal] = 1010
	e.Timelocks[domain.PhaseDstPublicWithdrawal] = 1100
	e.Timelocks[domain.PhaseDstCancellation] = 1101
	return e
}

func TestNotYetOpen(t *testing.T) {
	e := testEscrow()
	err := ValidateWindow(e, 1005, domain.PhaseDstWithdrawal, domain.PhaseDstCancellation, 0)
	assert.IsType(t, &ErrNotYetOpen{}, err)
}

func TestOpensExactlyAtBoundary(t *testing.T) {
	e := testEscrow()
	err := ValidateWindow(e, 1010, domain.PhaseDstWithdrawal, domain.PhaseDstCancellation, 0)
	assert.NoError(t, err)
}

func TestWindowClosed(t *testing.T) {
	e := testEscrow()
	err := ValidateWindow(e, 1101, domain.PhaseDstWithdrawal, domain.PhaseDstCancellation, 0)
	assert.IsType(t, &ErrWindowClosed{}, err)
}

func TestSlackExtendsWindow(t *testing.T) {
	e := testEscrow()
	err := ValidateWindow(e, 1000, domain.PhaseDstWithdrawal, domain.PhaseDstCancellation, 11)
	assert.NoError(t, err)
}

func TestNoEndPhaseNeverCloses(t *testing.T) {
	e := testEscrow()
	err := ValidateWindow(e, 10_000_000, domain.PhaseDstCancellation, NoEndPhase, 0)
	assert.NoError(t, err)
}
