// FILE: hookwisp/src/internal/delivery/errors.go
package delivery

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/valyala/fasthttp"
)

// Kind classifies a delivery failure
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindConnectionFailed
	KindNonSuccessStatus
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnectionFailed:
		return "connection_failed"
	case KindNonSuccessStatus:
		return "non_success_status"
	default:
		return "unknown"
	}
}

// DeliveryError describes a failed webhook POST. Endpoint holds only the
// scheme and host, the token-bearing path is never included.
type DeliveryError struct {
	Kind       Kind
	Endpoint   string
	StatusCode int    // set for KindNonSuccessStatus
	Body       string // truncated response body for KindNonSuccessStatus
	Err        error
}

func (e *DeliveryError) Error() string {
	switch e.Kind {
	case KindNonSuccessStatus:
		if e.Body == "" {
			return fmt.Sprintf("webhook %s returned status %d", e.Endpoint, e.StatusCode)
		}
		return fmt.Sprintf("webhook %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("webhook %s delivery failed (%s): %v", e.Endpoint, e.Kind, e.Err)
	}
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// classifyError separates timeouts from other transport failures
func classifyError(err error) Kind {
	if errors.Is(err, fasthttp.ErrTimeout) ||
		errors.Is(err, fasthttp.ErrDialTimeout) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindConnectionFailed
}

// RedactURL reduces a webhook URL to scheme://host for logs and errors
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "<invalid url>"
	}
	return u.Scheme + "://" + u.Host
}
