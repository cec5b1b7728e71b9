package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindSettlementFailed, "step 1 failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "step 1 failed")
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("x").HTTPStatus())
	assert.Equal(t, http.StatusConflict, InvalidState("x").HTTPStatus())
	assert.Equal(t, http.StatusForbidden, Unauthorized("x").HTTPStatus())
}
