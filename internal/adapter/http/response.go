package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/liquidityos/escrow-coordinator/pkg/apperror"
)

// SuccessEnvelope is the standard success response shape.
type SuccessEnvelope struct {
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// ErrorEnvelope is the standard error response shape, keyed by the kind
// taxonomy of spec.md §7 rather than a free-form error code.
type ErrorEnvelope struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessEnvelope{Data: data, Timestamp: now()})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, SuccessEnvelope{Data: data, Timestamp: now()})
}

func fail(c *gin.Context, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), ErrorEnvelope{
			Kind:      string(appErr.Kind),
			Message:   appErr.Message,
			Timestamp: now(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorEnvelope{
		Kind:      "Internal",
		Message:   "internal server error",
		Timestamp: now(),
	})
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
