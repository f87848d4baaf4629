package protocol

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rizesql/cas/internal/assert"
)

func TestCodeOf(t *testing.T) {
	code, message := CodeOf(InvalidRequest("ticket is required"))
	assert.Equal(t, code, CodeInvalidRequest)
	assert.Equal(t, message, "ticket is required")

	code, _ = CodeOf(InvalidService("wrong service"))
	assert.Equal(t, code, CodeInvalidService)

	code, message = CodeOf(InvalidTicket("ticket has expired", errors.New("cause")))
	assert.Equal(t, code, CodeInvalidTicket)
	assert.Equal(t, message, "ticket has expired")
}

func TestCodeOf_HidesInternals(t *testing.T) {
	code, message := CodeOf(Internal("store exploded", errors.New("disk full")))
	assert.Equal(t, code, CodeInternalError)
	assert.Equal(t, message, "internal error")

	code, message = CodeOf(errors.New("some stray error"))
	assert.Equal(t, code, CodeInternalError)
	assert.Equal(t, message, "internal error")
}

func TestCodeOf_Wrapped(t *testing.T) {
	cause := errors.New("cause")
	err := fmt.Errorf("handling request: %w", InvalidTicket("bad ticket", cause))

	code, _ := CodeOf(err)
	assert.Equal(t, code, CodeInvalidTicket)
	assert.Err(t, err, cause)
}
