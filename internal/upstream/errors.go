package upstream

import (
	"fmt"
	"net/http"
)

// Kind classifies a failed upstream fetch.
type Kind int

const (
	// KindUnreachable covers DNS, dial and transport failures.
	KindUnreachable Kind = iota + 1
	// KindStatus is a response outside the 2xx range.
	KindStatus
	// KindMalformed is a body that is not JSON or exceeds the size limit.
	KindMalformed
	// KindTimeout is a round-trip that outlived its deadline.
	KindTimeout
	// KindCanceled is a fetch abandoned because the caller went away.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindStatus:
		return "status"
	case KindMalformed:
		return "malformed"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is returned by Client.Fetch for every failure.
type Error struct {
	Kind Kind
	// StatusCode is the upstream status when Kind is KindStatus.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("upstream %s: unexpected status %d", e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("upstream %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the failure to the status returned to the caller.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
