package workflow

import (
	"errors"

	"github.com/GriffinCanCode/modxel/internal/connector"
)

var (
	// ErrNotBound is returned for element commands on an unbound buffer
	ErrNotBound = errors.New("buffer is not bound to an element")
	// ErrNoReference is returned when no element tag surrounds the offset
	ErrNoReference = errors.New("no element reference at offset")
)

// Describe maps err to the message shown to the user. known is false for
// errors outside the taxonomy, which deserve a log entry.
func Describe(err error) (msg string, known bool) {
	if apiErr, ok := connector.IsAPIError(err); ok {
		return "Modx: " + apiErr.Message, true
	}
	switch {
	case errors.Is(err, connector.ErrNoServerConfigured):
		return "Modx: server is not set.", true
	case errors.Is(err, connector.ErrUnauthorized):
		return "Modx: server is not authorized.", true
	case errors.Is(err, ErrNotBound):
		return "Modx: buffer is not bound to an element.", true
	case errors.Is(err, ErrNoReference):
		return "Modx: no element reference here.", true
	default:
		return "Modx: unknown error (please, report a bug!)", false
	}
}
