// FILE: hookwisp/src/internal/delivery/client_test.go
package delivery

import (
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

const testPath = "/services/T000/B000/s3cr3tt0ken"

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// startServer runs a fasthttp server on a loopback port and returns a
// webhook-style URL for it.
func startServer(t *testing.T, handler fasthttp.RequestHandler) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &fasthttp.Server{Handler: handler, CloseOnShutdown: true}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return "http://" + ln.Addr().String() + testPath
}

// startSilentServer accepts connections and never answers
func startSilentServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	return "http://" + ln.Addr().String() + testPath
}

func TestClient_Deliver(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success", func(t *testing.T) {
		type captured struct {
			method, contentType, path, body string
		}
		got := make(chan captured, 1)
		url := startServer(t, func(ctx *fasthttp.RequestCtx) {
			got <- captured{
				method:      string(ctx.Method()),
				contentType: string(ctx.Request.Header.ContentType()),
				path:        string(ctx.Path()),
				body:        string(ctx.PostBody()),
			}
			ctx.SetStatusCode(fasthttp.StatusOK)
			ctx.SetBodyString("ok")
		})

		client := NewClient(Options{}, logger)
		result, err := client.Deliver(url, []byte(`{"attachments":[]}`))
		require.NoError(t, err)
		assert.Equal(t, 200, result.StatusCode)
		assert.Equal(t, "ok", string(result.Body))

		req := <-got
		assert.Equal(t, "POST", req.method)
		assert.Equal(t, "application/json", req.contentType)
		assert.Equal(t, testPath, req.path)
		assert.Equal(t, `{"attachments":[]}`, req.body)
	})

	t.Run("NonSuccessStatus", func(t *testing.T) {
		url := startServer(t, func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("server error")
		})

		client := NewClient(Options{}, logger)
		_, err := client.Deliver(url, []byte(`{}`))
		require.Error(t, err)

		var dErr *DeliveryError
		require.True(t, errors.As(err, &dErr))
		assert.Equal(t, KindNonSuccessStatus, dErr.Kind)
		assert.Equal(t, 500, dErr.StatusCode)
		assert.Equal(t, "server error", dErr.Body)
		assert.NotContains(t, err.Error(), "s3cr3tt0ken")
	})

	t.Run("ErrorBodyTruncated", func(t *testing.T) {
		url := startServer(t, func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			ctx.SetBodyString(strings.Repeat("x", 100))
		})

		client := NewClient(Options{MaxErrorBodyBytes: 10}, logger)
		_, err := client.Deliver(url, []byte(`{}`))

		var dErr *DeliveryError
		require.True(t, errors.As(err, &dErr))
		assert.Equal(t, 400, dErr.StatusCode)
		assert.True(t, strings.HasPrefix(dErr.Body, strings.Repeat("x", 10)))
		assert.Less(t, len(dErr.Body), 100)
	})

	t.Run("Timeout", func(t *testing.T) {
		url := startSilentServer(t)

		client := NewClient(Options{
			ConnectTimeout: 200 * time.Millisecond,
			WriteTimeout:   200 * time.Millisecond,
			ReadTimeout:    300 * time.Millisecond,
		}, logger)

		start := time.Now()
		_, err := client.Deliver(url, []byte(`{}`))
		elapsed := time.Since(start)

		var dErr *DeliveryError
		require.True(t, errors.As(err, &dErr))
		assert.Equal(t, KindTimeout, dErr.Kind)
		assert.Less(t, elapsed, 3*time.Second)
		assert.NotContains(t, err.Error(), "s3cr3tt0ken")
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		require.NoError(t, ln.Close())

		client := NewClient(Options{ConnectTimeout: time.Second}, logger)
		_, err = client.Deliver("http://"+addr+testPath, []byte(`{}`))

		var dErr *DeliveryError
		require.True(t, errors.As(err, &dErr))
		assert.Equal(t, KindConnectionFailed, dErr.Kind)
		assert.NotNil(t, errors.Unwrap(err))
	})

	t.Run("ConcurrentDeliveries", func(t *testing.T) {
		url := startServer(t, func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusOK)
		})

		client := NewClient(Options{}, logger)
		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := client.Deliver(url, []byte(`{}`))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		assert.Equal(t, int64(0), client.GetStats()["active_requests"])
	})
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://hooks.example.com", RedactURL("https://hooks.example.com/services/A/B/C"))
	assert.Equal(t, "<invalid url>", RedactURL("not a url"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "connection_failed", KindConnectionFailed.String())
	assert.Equal(t, "non_success_status", KindNonSuccessStatus.String())
}
