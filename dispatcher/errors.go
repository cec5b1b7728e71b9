package dispatcher

import "errors"

var (
	errNegativeAmount   = errors.New("dispatcher: amount must be non-negative")
	errFractionalAmount = errors.New("dispatcher: amount must be an integer in the smallest native unit")
	errAmountOverflow   = errors.New("dispatcher: amount does not fit in 256 bits")
	errInvalidHex       = errors.New("dispatcher: malformed hex field")
)
