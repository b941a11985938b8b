// FILE: hookwisp/src/internal/sink/webhook.go
package sink

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"hookwisp/src/internal/config"
	"hookwisp/src/internal/core"
	"hookwisp/src/internal/delivery"
	"hookwisp/src/internal/format"
	"hookwisp/src/internal/message"
	ltls "hookwisp/src/internal/tls"

	"github.com/lixenwraith/log"
)

// UnknownHost labels titles when the local host name cannot be resolved
const UnknownHost = "<unknown host>"

// hostname is swapped in tests
var hostname = os.Hostname

// settings is the immutable snapshot read by every Submit call. It is
// built once in NewWebhookSink and never written afterwards.
type settings struct {
	webhookURL string
	endpoint   string // redacted, safe to log
	username   *string
	channel    *string
	encoding   string
	hostLabel  string
	propagate  bool
}

// WebhookSink posts each event as a chat notification to an incoming webhook.
type WebhookSink struct {
	settings   *settings
	client     *delivery.Client
	webhookTLS *ltls.WebhookTLS
	logger     *log.Logger
	startTime  time.Time

	// Statistics
	totalSubmitted atomic.Uint64
	totalDelivered atomic.Uint64
	encodingErrors atomic.Uint64
	buildErrors    atomic.Uint64
	deliveryErrors atomic.Uint64
	timeouts       atomic.Uint64
	lastSubmitted  atomic.Value // time.Time
	lastStatusCode atomic.Int64
	lastErrorTime  atomic.Value // time.Time
}

// NewWebhookSink validates the webhook configuration and creates the sink.
// A missing or malformed URL, unknown encoding or bad TLS setup returns a
// *ConfigError and no sink.
func NewWebhookSink(cfg config.WebhookConfig, logger *log.Logger) (*WebhookSink, error) {
	s, err := newSettings(cfg)
	if err != nil {
		return nil, err
	}

	webhookTLS, err := ltls.NewWebhookTLS(cfg.TLS, logger)
	if err != nil {
		return nil, &ConfigError{Field: "tls", Reason: "invalid TLS settings", Err: err}
	}

	client := delivery.NewClient(delivery.Options{
		ConnectTimeout:    cfg.ConnectTimeout(),
		ReadTimeout:       cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
		MaxErrorBodyBytes: int(cfg.MaxErrorBodyBytes),
		UserAgent:         cfg.UserAgent,
		TLSConfig:         webhookTLS.Config(),
	}, logger)

	w := &WebhookSink{
		settings:   s,
		client:     client,
		webhookTLS: webhookTLS,
		logger:     logger,
		startTime:  time.Now(),
	}
	w.lastSubmitted.Store(time.Time{})
	w.lastErrorTime.Store(time.Time{})

	logger.Info("msg", "Webhook sink created",
		"component", "webhook_sink",
		"endpoint", s.endpoint,
		"host_label", s.hostLabel,
		"encoding", s.encoding,
		"propagate_errors", s.propagate,
		"has_username", s.username != nil,
		"has_channel", s.channel != nil)

	return w, nil
}

func newSettings(cfg config.WebhookConfig) (*settings, error) {
	rawURL := strings.TrimSpace(cfg.URL)
	if rawURL == "" {
		return nil, &ConfigError{Field: "url", Reason: "webhook URL is required"}
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &ConfigError{Field: "url", Reason: "webhook URL must be an absolute http(s) URL"}
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = core.DefaultEncoding
	}
	if err := format.ValidateEncoding(encoding); err != nil {
		return nil, &ConfigError{Field: "encoding", Reason: "unsupported encoding", Err: err}
	}

	var propagate bool
	switch cfg.ErrorMode {
	case "", config.ErrorModeIgnore:
	case config.ErrorModePropagate:
		propagate = true
	default:
		return nil, &ConfigError{Field: "error_mode", Reason: "must be 'ignore' or 'propagate'"}
	}

	hostLabel := cfg.HostLabel
	if hostLabel == "" {
		hostLabel = resolveHostLabel()
	}

	return &settings{
		webhookURL: rawURL,
		endpoint:   delivery.RedactURL(rawURL),
		username:   optional(cfg.Username),
		channel:    optional(cfg.Channel),
		encoding:   encoding,
		hostLabel:  hostLabel,
		propagate:  propagate,
	}, nil
}

func resolveHostLabel() string {
	name, err := hostname()
	if err != nil || name == "" {
		return UnknownHost
	}
	return name
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// HostLabel returns the host name used in notification titles
func (w *WebhookSink) HostLabel() string {
	return w.settings.hostLabel
}

// Submit runs format, build and delivery for one event. Failures are logged
// and swallowed in ignore mode; in propagate mode they are returned as a
// *SubmitError. Submit never holds a lock across the network call.
func (w *WebhookSink) Submit(event core.LogEvent) error {
	w.totalSubmitted.Add(1)
	w.lastSubmitted.Store(time.Now())

	err := w.post(event)
	if err == nil {
		w.totalDelivered.Add(1)
		return nil
	}

	w.recordFailure(err)
	if w.settings.propagate {
		return err
	}

	w.logger.Warn("msg", "Webhook notification dropped",
		"component", "webhook_sink",
		"endpoint", w.settings.endpoint,
		"severity", event.Severity.String(),
		"source", event.Source,
		"error", err)
	return nil
}

func (w *WebhookSink) post(event core.LogEvent) error {
	s := w.settings

	n, err := format.Format(event, s.hostLabel, s.encoding)
	if err != nil {
		return &SubmitError{Stage: StageFormat, Err: err}
	}

	payload := message.Build(n.Title, n.Body, n.Color, s.username, s.channel)
	body, err := message.Marshal(payload)
	if err != nil {
		return &SubmitError{Stage: StageBuild, Err: err}
	}

	result, err := w.client.Deliver(s.webhookURL, body)
	if err != nil {
		return &SubmitError{Stage: StageDeliver, Err: err}
	}

	w.lastStatusCode.Store(int64(result.StatusCode))
	return nil
}

func (w *WebhookSink) recordFailure(err error) {
	w.lastErrorTime.Store(time.Now())

	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		return
	}

	switch submitErr.Stage {
	case StageFormat:
		w.encodingErrors.Add(1)
	case StageBuild:
		w.buildErrors.Add(1)
	case StageDeliver:
		w.deliveryErrors.Add(1)
		var dErr *delivery.DeliveryError
		if errors.As(err, &dErr) {
			if dErr.Kind == delivery.KindTimeout {
				w.timeouts.Add(1)
			}
			if dErr.StatusCode != 0 {
				w.lastStatusCode.Store(int64(dErr.StatusCode))
			}
		}
	}
}

// GetStats returns the sink's statistics.
func (w *WebhookSink) GetStats() SinkStats {
	lastSubmitted, _ := w.lastSubmitted.Load().(time.Time)
	lastError, _ := w.lastErrorTime.Load().(time.Time)

	failed := w.encodingErrors.Load() + w.buildErrors.Load() + w.deliveryErrors.Load()

	return SinkStats{
		Type:           "webhook",
		TotalSubmitted: w.totalSubmitted.Load(),
		TotalDelivered: w.totalDelivered.Load(),
		TotalFailed:    failed,
		StartTime:      w.startTime,
		LastSubmitted:  lastSubmitted,
		Details: map[string]any{
			"endpoint":         w.settings.endpoint,
			"host_label":       w.settings.hostLabel,
			"encoding_errors":  w.encodingErrors.Load(),
			"build_errors":     w.buildErrors.Load(),
			"delivery_errors":  w.deliveryErrors.Load(),
			"timeouts":         w.timeouts.Load(),
			"last_status_code": w.lastStatusCode.Load(),
			"last_error_time":  lastError,
			"client":           w.client.GetStats(),
			"tls":              w.webhookTLS.GetStats(),
		},
	}
}
