package codec

import (
	"fmt"

	"github.com/holiman/uint256"
)

// PhaseCount is the number of named timelock phases packed into one word.
const PhaseCount = 7

var mask32 = uint256.NewInt(0xffffffff)

// PackTimelocks encodes seven 32-bit phase offsets and a 32-bit deploy
// timestamp into a single 256-bit word, bit-compatible with the EVM
// contract's layout (spec.md §4.1): phase i occupies bits [32*i, 32*i+32),
// and the deploy timestamp occupies the top 32 bits.
func PackTimelocks(offsets [PhaseCount]uint32, deployedAt uint32) *uint256.Int {
	word := new(uint256.Int)
	for i, off := range offsets {
		part := new(uint256.Int).SetUint64(uint64(off))
		part.Lsh(part, uint(32*i))
		word.Or(word, part)
	}
	top := new(uint256.Int).SetUint64(uint64(deployedAt))
	top.Lsh(top, 224)
	word.Or(word, top)
	return word
}

// UnpackTimelocks splits a packed word back into its seven phase offsets
// and the timestamp embedded in its top 32 bits. This coordinator ignores
// the returned embeddedDeployedAt for Create (it always uses a freshly
// captured deployed_at per spec.md §4.5); the value is still returned here
// so callers decoding a foreign word for wire-compatibility checks can use
// it (see DESIGN.md's note on spec.md §9's redesign flag).
func UnpackTimelocks(word *uint256.Int) (offsets [PhaseCount]uint32, embeddedDeployedAt uint32) {
	for i := 0; i < PhaseCount; i++ {
		part := new(uint256.Int).Rsh(word, uint(32*i))
		part.And(part, mask32)
		offsets[i] = uint32(part.Uint64())
	}
	top := new(uint256.Int).Rsh(word, 224)
	top.And(top, mask32)
	embeddedDeployedAt = uint32(top.Uint64())
	return offsets, embeddedDeployedAt
}

// AbsoluteTimelocks derives the seven absolute Unix timestamps from a set of
// offsets and a deployment epoch: timelocks[p] = deployedAt + offset[p].
func AbsoluteTimelocks(offsets [PhaseCount]uint32, deployedAt int64) [PhaseCount]int64 {
	var out [PhaseCount]int64
	for i, off := range offsets {
		out[i] = deployedAt + int64(off)
	}
	return out
}

// ValidateOffsets enforces that offsets are non-decreasing in phase index,
// the invariant spec.md §3 places on every well-formed timelock word.
// Phases 0–3 (the source-side group) and 4–6 (the destination-side group)
// run on independent timelines seeded from the same deployed_at, so
// monotonicity is checked within each group rather than across the
// source/destination boundary — spec.md §8's own seed scenario packs
// offsets {10,120,121,122,10,100,101}, where phase 4 (10) is deliberately
// less than phase 3 (122).
func ValidateOffsets(offsets [PhaseCount]uint32) error {
	for i := 1; i < 4; i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("codec: phase %d offset %d precedes phase %d offset %d", i, offsets[i], i-1, offsets[i-1])
		}
	}
	for i := 5; i < PhaseCount; i++ {
		if offsets[i] < offsets[i-1] {
			return fmt.Errorf("codec: phase %d offset %d precedes phase %d offset %d", i, offsets[i], i-1, offsets[i-1])
		}
	}
	return nil
}
