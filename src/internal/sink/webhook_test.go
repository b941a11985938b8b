// FILE: hookwisp/src/internal/sink/webhook_test.go
package sink

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hookwisp/src/internal/config"
	"hookwisp/src/internal/core"
	"hookwisp/src/internal/delivery"
	"hookwisp/src/internal/format"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func startWebhookServer(t *testing.T, handler fasthttp.RequestHandler) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &fasthttp.Server{Handler: handler, CloseOnShutdown: true}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return "http://" + ln.Addr().String() + "/services/T1/B1/token"
}

// recordingServer stores every posted body
func recordingServer(t *testing.T, status int, respBody string) (string, func() [][]byte) {
	var mu sync.Mutex
	var bodies [][]byte
	url := startWebhookServer(t, func(ctx *fasthttp.RequestCtx) {
		mu.Lock()
		bodies = append(bodies, append([]byte(nil), ctx.PostBody()...))
		mu.Unlock()
		ctx.SetStatusCode(status)
		ctx.SetBodyString(respBody)
	})
	return url, func() [][]byte {
		mu.Lock()
		defer mu.Unlock()
		return append([][]byte(nil), bodies...)
	}
}

func TestNewWebhookSink_ConfigErrors(t *testing.T) {
	logger := newTestLogger()

	testCases := []struct {
		name  string
		cfg   config.WebhookConfig
		field string
	}{
		{"MissingURL", config.WebhookConfig{}, "url"},
		{"BlankURL", config.WebhookConfig{URL: "   "}, "url"},
		{"NotAbsolute", config.WebhookConfig{URL: "hooks.example.com/x"}, "url"},
		{"UnknownEncoding", config.WebhookConfig{URL: "https://hooks.example.com/x", Encoding: "nope-1"}, "encoding"},
		{"BadErrorMode", config.WebhookConfig{URL: "https://hooks.example.com/x", ErrorMode: "maybe"}, "error_mode"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewWebhookSink(tc.cfg, logger)
			require.Error(t, err)
			assert.Nil(t, s)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestWebhookSink_EndToEnd(t *testing.T) {
	url, bodies := recordingServer(t, fasthttp.StatusOK, "ok")

	s, err := NewWebhookSink(config.WebhookConfig{URL: url, HostLabel: "host1"}, newTestLogger())
	require.NoError(t, err)

	err = s.Submit(core.LogEvent{Severity: core.SeverityError, Message: []byte("a<b"), Encoding: "UTF-8"})
	require.NoError(t, err)

	got := bodies()
	require.Len(t, got, 1)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(got[0], &doc))

	_, hasUser := doc["username"]
	_, hasChannel := doc["channel"]
	assert.False(t, hasUser)
	assert.False(t, hasChannel)

	attachments := doc["attachments"].([]any)
	require.Len(t, attachments, 1)
	att := attachments[0].(map[string]any)
	assert.Equal(t, "ERROR on host1", att["title"])
	assert.Equal(t, "a&lt;b", att["text"])
	assert.Equal(t, "#ff0000", att["color"])

	stats := s.GetStats()
	assert.Equal(t, uint64(1), stats.TotalSubmitted)
	assert.Equal(t, uint64(1), stats.TotalDelivered)
	assert.Equal(t, int64(200), stats.Details["last_status_code"])
}

func TestWebhookSink_SenderAndChannel(t *testing.T) {
	url, bodies := recordingServer(t, fasthttp.StatusOK, "ok")

	s, err := NewWebhookSink(config.WebhookConfig{
		URL:       url,
		Username:  "bot",
		Channel:   "#ops",
		HostLabel: "h",
	}, newTestLogger())
	require.NoError(t, err)
	require.NoError(t, s.Submit(core.LogEvent{Severity: core.SeverityInfo, Message: []byte("deployed")}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(bodies()[0], &doc))
	assert.Equal(t, "bot", doc["username"])
	assert.Equal(t, "#ops", doc["channel"])
}

func TestWebhookSink_EncodingError(t *testing.T) {
	url, bodies := recordingServer(t, fasthttp.StatusOK, "ok")
	invalid := core.LogEvent{Severity: core.SeverityWarn, Message: []byte{0xc3, 0x28}}

	t.Run("IgnoreMode", func(t *testing.T) {
		s, err := NewWebhookSink(config.WebhookConfig{URL: url}, newTestLogger())
		require.NoError(t, err)

		assert.NoError(t, s.Submit(invalid))
		assert.Equal(t, uint64(1), s.GetStats().TotalFailed)
		assert.Equal(t, uint64(1), s.GetStats().Details["encoding_errors"])
	})

	t.Run("PropagateMode", func(t *testing.T) {
		s, err := NewWebhookSink(config.WebhookConfig{URL: url, ErrorMode: config.ErrorModePropagate}, newTestLogger())
		require.NoError(t, err)

		err = s.Submit(invalid)
		require.Error(t, err)

		var submitErr *SubmitError
		require.True(t, errors.As(err, &submitErr))
		assert.Equal(t, StageFormat, submitErr.Stage)

		var encErr *format.EncodingError
		assert.True(t, errors.As(err, &encErr))
	})

	assert.Empty(t, bodies(), "undecodable events must not reach the webhook")
}

func TestWebhookSink_ServerError(t *testing.T) {
	url, _ := recordingServer(t, fasthttp.StatusInternalServerError, "server error")
	event := core.LogEvent{Severity: core.SeverityError, Message: []byte("boom")}

	t.Run("PropagateMode", func(t *testing.T) {
		s, err := NewWebhookSink(config.WebhookConfig{URL: url, ErrorMode: config.ErrorModePropagate}, newTestLogger())
		require.NoError(t, err)

		err = s.Submit(event)
		require.Error(t, err)

		var dErr *delivery.DeliveryError
		require.True(t, errors.As(err, &dErr))
		assert.Equal(t, delivery.KindNonSuccessStatus, dErr.Kind)
		assert.Equal(t, 500, dErr.StatusCode)
		assert.Equal(t, "server error", dErr.Body)
		assert.NotContains(t, err.Error(), "token")
		assert.Equal(t, int64(500), s.GetStats().Details["last_status_code"])
	})

	t.Run("IgnoreMode", func(t *testing.T) {
		s, err := NewWebhookSink(config.WebhookConfig{URL: url, ErrorMode: config.ErrorModeIgnore}, newTestLogger())
		require.NoError(t, err)

		assert.NoError(t, s.Submit(event))
		assert.Equal(t, uint64(1), s.GetStats().Details["delivery_errors"])
	})
}

func TestWebhookSink_Timeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var held []net.Conn
	var mu sync.Mutex
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			held = append(held, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range held {
			_ = c.Close()
		}
	})

	s, err := NewWebhookSink(config.WebhookConfig{
		URL:              "http://" + ln.Addr().String() + "/hook",
		ErrorMode:        config.ErrorModePropagate,
		ConnectTimeoutMS: 200,
		WriteTimeoutMS:   200,
		ReadTimeoutMS:    300,
	}, newTestLogger())
	require.NoError(t, err)

	start := time.Now()
	err = s.Submit(core.LogEvent{Severity: core.SeverityFatal, Message: []byte("down")})
	elapsed := time.Since(start)

	var dErr *delivery.DeliveryError
	require.True(t, errors.As(err, &dErr))
	assert.Equal(t, delivery.KindTimeout, dErr.Kind)
	assert.Less(t, elapsed, 3*time.Second)
	assert.Equal(t, uint64(1), s.GetStats().Details["timeouts"])
}

func TestWebhookSink_ConcurrentSubmit(t *testing.T) {
	var received atomic.Int64
	url := startWebhookServer(t, func(ctx *fasthttp.RequestCtx) {
		received.Add(1)
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	s, err := NewWebhookSink(config.WebhookConfig{URL: url, ErrorMode: config.ErrorModePropagate}, newTestLogger())
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Submit(core.LogEvent{Severity: core.SeverityInfo, Message: []byte("tick")})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(n), received.Load())
	assert.Equal(t, uint64(n), s.GetStats().TotalDelivered)
}

func TestResolveHostLabel(t *testing.T) {
	orig := hostname
	t.Cleanup(func() { hostname = orig })

	hostname = func() (string, error) { return "", errors.New("no name") }
	assert.Equal(t, UnknownHost, resolveHostLabel())

	hostname = func() (string, error) { return "box-7", nil }
	assert.Equal(t, "box-7", resolveHostLabel())

	s, err := NewWebhookSink(config.WebhookConfig{URL: "https://hooks.example.com/x"}, newTestLogger())
	require.NoError(t, err)
	assert.Equal(t, "box-7", s.HostLabel())
}
