// FILE: hookwisp/src/internal/source/http.go
package source

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
	"unicode/utf8"

	"hookwisp/src/internal/auth"
	"hookwisp/src/internal/config"
	"hookwisp/src/internal/core"

	"github.com/google/uuid"
	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

const requestIDHeader = "X-Request-Id"

// HTTPSource receives JSON log events via HTTP POST requests
type HTTPSource struct {
	*publisher
	host       string
	port       int64
	ingestPath string
	server     *fasthttp.Server
	listener   net.Listener
	validator  *auth.BearerValidator
	wg         sync.WaitGroup
	stopOnce   sync.Once
	startTime  time.Time
	logger     *log.Logger
}

// NewHTTPSource creates a new HTTP server source
func NewHTTPSource(cfg config.HTTPSourceConfig, bufferSize int, logger *log.Logger) (*HTTPSource, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("http source requires a valid port, got %d", cfg.Port)
	}

	ingestPath := cfg.IngestPath
	if ingestPath == "" {
		ingestPath = "/ingest"
	}

	validator, err := auth.NewBearerValidator(cfg.JWTSecret, cfg.TokenHashes, logger)
	if err != nil {
		return nil, fmt.Errorf("http source auth: %w", err)
	}

	h := &HTTPSource{
		publisher:  newPublisher("http_source", bufferSize, logger),
		host:       cfg.Host,
		port:       cfg.Port,
		ingestPath: ingestPath,
		validator:  validator,
		startTime:  time.Now(),
		logger:     logger,
	}
	return h, nil
}

func (h *HTTPSource) Start() error {
	h.server = &fasthttp.Server{
		Name:              "HookWisp",
		Handler:           h.requestHandler,
		StreamRequestBody: false,
		CloseOnShutdown:   true,
	}

	addr := net.JoinHostPort(h.host, fmt.Sprintf("%d", h.port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http source listen on %s: %w", addr, err)
	}
	h.listener = ln

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.logger.Info("msg", "HTTP source server starting",
			"component", "http_source",
			"address", ln.Addr().String(),
			"ingest_path", h.ingestPath,
			"auth", h.validator != nil)

		if err := h.server.Serve(ln); err != nil {
			h.logger.Error("msg", "HTTP source server failed",
				"component", "http_source",
				"address", ln.Addr().String(),
				"error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or "" before Start
func (h *HTTPSource) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

func (h *HTTPSource) Stop() {
	h.stopOnce.Do(func() {
		h.logger.Info("msg", "Stopping HTTP source", "component", "http_source")

		if h.server != nil {
			if err := h.server.Shutdown(); err != nil {
				h.logger.Error("msg", "Error shutting down HTTP source server",
					"component", "http_source",
					"error", err)
			}
		}
		h.wg.Wait()

		h.closeSubscribers()
		h.logger.Info("msg", "HTTP source stopped", "component", "http_source")
	})
}

func (h *HTTPSource) GetStats() SourceStats {
	return h.stats("http", h.startTime, map[string]any{
		"address":         h.Addr(),
		"ingest_path":     h.ingestPath,
		"invalid_entries": h.invalidEntries.Load(),
		"auth":            h.validator.GetStats(),
	})
}

func (h *HTTPSource) requestHandler(ctx *fasthttp.RequestCtx) {
	// Only handle POST to the configured ingest path
	if !ctx.IsPost() || string(ctx.Path()) != h.ingestPath {
		writeJSON(ctx, fasthttp.StatusNotFound, map[string]string{
			"error": "Not Found",
			"hint":  fmt.Sprintf("POST logs to %s", h.ingestPath),
		})
		return
	}

	requestID := requestIDFor(ctx)
	ctx.Response.Header.Set(requestIDHeader, requestID)

	if _, err := h.validator.Validate(string(ctx.Request.Header.Peek("Authorization"))); err != nil {
		h.logger.Warn("msg", "Ingest request rejected",
			"component", "http_source",
			"request_id", requestID,
			"remote_addr", ctx.RemoteAddr().String(),
			"error", err)
		ctx.Response.Header.Set("WWW-Authenticate", `Bearer realm="hookwisp"`)
		writeJSON(ctx, fasthttp.StatusUnauthorized, map[string]string{
			"error": "Unauthorized",
		})
		return
	}

	body := ctx.PostBody()
	if len(body) == 0 {
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{
			"error": "Empty request body",
		})
		return
	}

	events, err := parseEntries(body)
	if err != nil {
		h.invalidEntries.Add(1)
		h.logger.Debug("msg", "Invalid ingest body",
			"component", "http_source",
			"request_id", requestID,
			"error", err)
		writeJSON(ctx, fasthttp.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Invalid log format: %v", err),
		})
		return
	}

	accepted := 0
	for _, event := range events {
		if h.publish(event) {
			accepted++
		}
	}

	writeJSON(ctx, fasthttp.StatusAccepted, map[string]any{
		"accepted":   accepted,
		"total":      len(events),
		"request_id": requestID,
	})
}

// requestIDFor reuses a well-formed client request ID or generates one
func requestIDFor(ctx *fasthttp.RequestCtx) string {
	if id, err := uuid.ParseBytes(ctx.Request.Header.Peek(requestIDHeader)); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(v); err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	}
}

// parseEntries accepts a single JSON object, a JSON array or newline-delimited JSON
func parseEntries(body []byte) ([]core.LogEvent, error) {
	// json.Unmarshal would silently replace invalid bytes with U+FFFD
	if !utf8.Valid(body) {
		return nil, errInvalidUTF8
	}

	var single core.WireEvent
	if err := json.Unmarshal(body, &single); err == nil {
		if single.Message == "" {
			return nil, errMissingMessage
		}
		return []core.LogEvent{single.ToLogEvent("http")}, nil
	}

	var array []core.WireEvent
	if err := json.Unmarshal(body, &array); err == nil {
		if len(array) == 0 {
			return nil, errNoEntries
		}
		events := make([]core.LogEvent, 0, len(array))
		for i, wire := range array {
			if wire.Message == "" {
				return nil, fmt.Errorf("entry %d: %w", i, errMissingMessage)
			}
			events = append(events, wire.ToLogEvent("http"))
		}
		return events, nil
	}

	var events []core.LogEvent
	for i, line := range splitLines(body) {
		if len(line) == 0 {
			continue
		}

		var wire core.WireEvent
		if err := json.Unmarshal(line, &wire); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if wire.Message == "" {
			return nil, fmt.Errorf("line %d: %w", i+1, errMissingMessage)
		}
		events = append(events, wire.ToLogEvent("http"))
	}

	if len(events) == 0 {
		return nil, errNoEntries
	}
	return events, nil
}

// splitLines splits bytes into lines, handling both \n and \r\n
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0

	for i := 0; i < len(data); i++ {
		if data[i] == '\n' {
			end := i
			if i > 0 && data[i-1] == '\r' {
				end = i - 1
			}
			if end > start {
				lines = append(lines, data[start:end])
			}
			start = i + 1
		}
	}

	if start < len(data) {
		lines = append(lines, data[start:])
	}

	return lines
}
