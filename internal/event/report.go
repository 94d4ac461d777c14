package event

import (
	"context"
	"errors"

	"github.com/nikbrunner/bmr/internal/apperr"
)

// Reporter turns operation outcomes into bus events. Auth failures become
// an AuthRequired redirect instead of an error toast.
type Reporter struct {
	bus      *Bus
	noAccess string
}

// NewReporter creates a Reporter redirecting auth failures to noAccess.
func NewReporter(bus *Bus, noAccess string) *Reporter {
	return &Reporter{bus: bus, noAccess: noAccess}
}

// Fail publishes err and reports whether it was an auth failure. Cancelled
// operations are silent.
func (r *Reporter) Fail(err error) (auth bool) {
	if r == nil || err == nil {
		return apperr.IsAuth(err)
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if apperr.IsAuth(err) {
		r.bus.Publish(AuthRequiredEvent{Redirect: r.noAccess, Err: err})
		return true
	}
	r.bus.Notify(Error, apperr.UserMessage(err))
	return false
}

// Succeed publishes a success toast when text is not empty.
func (r *Reporter) Succeed(text string) {
	if r == nil || text == "" {
		return
	}
	r.bus.Notify(Success, text)
}

// Bus returns the underlying bus.
func (r *Reporter) Bus() *Bus {
	if r == nil {
		return nil
	}
	return r.bus
}
