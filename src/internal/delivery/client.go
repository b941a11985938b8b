// FILE: hookwisp/src/internal/delivery/client.go
package delivery

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"hookwisp/src/internal/message"
	"hookwisp/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

const (
	DefaultConnectTimeout    = 5 * time.Second
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultMaxErrorBodyBytes = 512
)

// Options configures a Client. Zero values select the defaults above.
type Options struct {
	ConnectTimeout    time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	MaxErrorBodyBytes int
	UserAgent         string
	TLSConfig         *tls.Config
}

// Result is a successful delivery. The response body has already been
// read in full and the connection returned to the pool.
type Result struct {
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Client posts serialized payloads to webhook endpoints. It is safe for
// concurrent use and performs exactly one request per Deliver call.
type Client struct {
	client *fasthttp.Client
	opts   Options
	logger *log.Logger

	activeRequests atomic.Int64
}

// NewClient creates a delivery client with bounded connect, write and read timeouts.
func NewClient(opts Options, logger *log.Logger) *Client {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.MaxErrorBodyBytes <= 0 {
		opts.MaxErrorBodyBytes = DefaultMaxErrorBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = fmt.Sprintf("HookWisp/%s", version.Short())
	}

	connectTimeout := opts.ConnectTimeout
	c := &Client{
		opts:   opts,
		logger: logger,
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			MaxConnWaitTimeout:  connectTimeout,
			MaxIdleConnDuration: 10 * time.Second,
			ReadTimeout:         opts.ReadTimeout,
			WriteTimeout:        opts.WriteTimeout,
			TLSConfig:           opts.TLSConfig,
			Dial: func(addr string) (net.Conn, error) {
				return fasthttp.DialTimeout(addr, connectTimeout)
			},
		},
	}
	return c
}

// Deliver POSTs body to endpointURL. Any non-2xx status, transport
// failure or timeout is returned as a *DeliveryError.
func (c *Client) Deliver(endpointURL string, body []byte) (*Result, error) {
	c.activeRequests.Add(1)
	defer c.activeRequests.Add(-1)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpointURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(message.ContentType)
	req.Header.SetUserAgent(c.opts.UserAgent)
	req.SetBody(body)

	endpoint := RedactURL(endpointURL)
	start := time.Now()

	// Overall ceiling in case a slow server keeps trickling bytes
	deadline := c.opts.ConnectTimeout + c.opts.WriteTimeout + c.opts.ReadTimeout
	err := c.client.DoTimeout(req, resp, deadline)
	elapsed := time.Since(start)

	if err != nil {
		kind := classifyError(err)
		c.logger.Debug("msg", "Webhook request failed",
			"component", "delivery",
			"endpoint", endpoint,
			"kind", kind.String(),
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
		return nil, &DeliveryError{Kind: kind, Endpoint: endpoint, Err: err}
	}

	// Copy out before the response goes back to the pool
	statusCode := resp.StatusCode()
	respBody := append([]byte(nil), resp.Body()...)

	if statusCode < 200 || statusCode >= 300 {
		return nil, &DeliveryError{
			Kind:       KindNonSuccessStatus,
			Endpoint:   endpoint,
			StatusCode: statusCode,
			Body:       truncateBody(respBody, c.opts.MaxErrorBodyBytes),
		}
	}

	c.logger.Debug("msg", "Webhook delivered",
		"component", "delivery",
		"endpoint", endpoint,
		"status_code", statusCode,
		"duration_ms", elapsed.Milliseconds())

	return &Result{StatusCode: statusCode, Body: respBody, Duration: elapsed}, nil
}

// GetStats returns client statistics
func (c *Client) GetStats() map[string]any {
	return map[string]any{
		"active_requests":    c.activeRequests.Load(),
		"connect_timeout_ms": c.opts.ConnectTimeout.Milliseconds(),
		"read_timeout_ms":    c.opts.ReadTimeout.Milliseconds(),
		"write_timeout_ms":   c.opts.WriteTimeout.Milliseconds(),
		"tls":                c.opts.TLSConfig != nil,
	}
}

func truncateBody(body []byte, limit int) string {
	if len(body) <= limit {
		return strings.ToValidUTF8(string(body), "")
	}
	return strings.ToValidUTF8(string(body[:limit]), "") + "...(truncated)"
}
