package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	offsets := [PhaseCount]uint32{10, 120, 121, 122, 10, 100, 101}
	word := PackTimelocks(offsets, 1_700_000_000)

	got, embedded := UnpackTimelocks(word)
	assert.Equal(t, offsets, got)
	assert.Equal(t, uint32(1_700_000_000), embedded)
}

func TestPackUnpackIgnoresUpperBitsBelowEpoch(t *testing.T) {
	// pack(unpack(x, t), t)'s lower 224 bits must equal the lower 224 bits
	// of x for any valid offset sequence, per spec.md §8's quantified
	// invariant — independent of what epoch is written into the top 32 bits.
	offsets := [PhaseCount]uint32{1, 2, 3, 4, 5, 6, 7}
	x := PackTimelocks(offsets, 42)

	roundOffsets, _ := UnpackTimelocks(x)
	y := PackTimelocks(roundOffsets, 999)

	xOffsets, _ := UnpackTimelocks(x)
	yOffsets, _ := UnpackTimelocks(y)
	assert.Equal(t, xOffsets, yOffsets)
}

func TestAbsoluteTimelocks(t *testing.T) {
	offsets := [PhaseCount]uint32{0, 10, 20, 30, 40, 50, 60}
	abs := AbsoluteTimelocks(offsets, 1_000)
	assert.Equal(t, [PhaseCount]int64{1000, 1010, 1020, 1030, 1040, 1050, 1060}, abs)
}

func TestValidateOffsetsRejectsDecreasingWithinSourceGroup(t *testing.T) {
	offsets := [PhaseCount]uint32{10, 5, 20, 30, 40, 50, 60}
	assert.Error(t, ValidateOffsets(offsets))
}

func TestValidateOffsetsRejectsDecreasingWithinDestinationGroup(t *testing.T) {
	offsets := [PhaseCount]uint32{10, 20, 30, 40, 50, 10, 60}
	assert.Error(t, ValidateOffsets(offsets))
}

func TestValidateOffsetsAcceptsNonDecreasing(t *testing.T) {
	offsets := [PhaseCount]uint32{10, 10, 20, 30, 40, 50, 60}
	assert.NoError(t, ValidateOffsets(offsets))
}

func TestValidateOffsetsAcceptsDestinationResettingBelowSource(t *testing.T) {
	// spec.md §8 scenario 1's own seed data: destination-group offsets may
	// be smaller than the source-group's, since the two run on independent
	// timelines.
	offsets := [PhaseCount]uint32{10, 120, 121, 122, 10, 100, 101}
	assert.NoError(t, ValidateOffsets(offsets))
}
