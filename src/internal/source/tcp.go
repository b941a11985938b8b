// FILE: hookwisp/src/internal/source/tcp.go
package source

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hookwisp/src/internal/config"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
)

// TCPSource receives newline-delimited events over raw TCP.
// Each line is a JSON wire event or a plain text log line.
type TCPSource struct {
	*publisher
	host      string
	port      int64
	encoding  string
	server    *tcpSourceServer
	engine    *gnet.Engine
	engineMu  sync.Mutex
	wg        sync.WaitGroup
	stopOnce  sync.Once
	startTime time.Time
	logger    *log.Logger

	activeConns atomic.Int64
}

// NewTCPSource creates a new TCP server source. Plain text lines are tagged
// with cfg.Encoding; empty leaves the charset to the sink.
func NewTCPSource(cfg config.TCPSourceConfig, bufferSize int, logger *log.Logger) (*TCPSource, error) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("tcp source requires a valid port, got %d", cfg.Port)
	}

	host := cfg.Host
	if host == "" {
		host = "0.0.0.0"
	}

	return &TCPSource{
		publisher: newPublisher("tcp_source", bufferSize, logger),
		host:      host,
		port:      cfg.Port,
		encoding:  cfg.Encoding,
		startTime: time.Now(),
		logger:    logger,
	}, nil
}

func (t *TCPSource) Start() error {
	t.server = &tcpSourceServer{
		source:  t,
		clients: make(map[gnet.Conn]*tcpClient),
	}

	addr := fmt.Sprintf("tcp://%s:%d", t.host, t.port)

	// Create a gnet adapter using the existing logger instance
	gnetLogger := compat.NewGnetAdapter(t.logger)

	errChan := make(chan error, 1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.logger.Info("msg", "TCP source server starting",
			"component", "tcp_source",
			"host", t.host,
			"port", t.port)

		err := gnet.Run(t.server, addr,
			gnet.WithLogger(gnetLogger),
			gnet.WithMulticore(true),
			gnet.WithReusePort(true),
		)
		if err != nil {
			t.logger.Error("msg", "TCP source server failed",
				"component", "tcp_source",
				"port", t.port,
				"error", err)
		}
		errChan <- err
	}()

	// Wait briefly for server to start or fail
	select {
	case err := <-errChan:
		t.wg.Wait()
		if err == nil {
			err = fmt.Errorf("tcp source exited during startup")
		}
		return err
	case <-time.After(100 * time.Millisecond):
		t.logger.Info("msg", "TCP source started",
			"component", "tcp_source",
			"port", t.port)
		return nil
	}
}

func (t *TCPSource) Stop() {
	t.stopOnce.Do(func() {
		t.logger.Info("msg", "Stopping TCP source", "component", "tcp_source")

		t.engineMu.Lock()
		engine := t.engine
		t.engineMu.Unlock()

		if engine != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := (*engine).Stop(ctx); err != nil {
				t.logger.Warn("msg", "TCP engine stop returned error",
					"component", "tcp_source",
					"error", err)
			}
		}

		t.wg.Wait()
		t.closeSubscribers()
		t.logger.Info("msg", "TCP source stopped", "component", "tcp_source")
	})
}

func (t *TCPSource) GetStats() SourceStats {
	return t.stats("tcp", t.startTime, map[string]any{
		"host":               t.host,
		"port":               t.port,
		"active_connections": t.activeConns.Load(),
		"invalid_entries":    t.invalidEntries.Load(),
	})
}

// tcpClient holds per-connection partial line state
type tcpClient struct {
	buffer        bytes.Buffer
	maxBufferSeen int
}

// tcpSourceServer handles gnet events
type tcpSourceServer struct {
	gnet.BuiltinEventEngine
	source  *TCPSource
	clients map[gnet.Conn]*tcpClient
	mu      sync.RWMutex
}

func (s *tcpSourceServer) OnBoot(eng gnet.Engine) gnet.Action {
	// Store engine reference for shutdown
	s.source.engineMu.Lock()
	s.source.engine = &eng
	s.source.engineMu.Unlock()

	s.source.logger.Debug("msg", "TCP source server booted",
		"component", "tcp_source",
		"port", s.source.port)
	return gnet.None
}

func (s *tcpSourceServer) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	s.mu.Lock()
	s.clients[c] = &tcpClient{}
	s.mu.Unlock()

	newCount := s.source.activeConns.Add(1)
	s.source.logger.Debug("msg", "TCP connection opened",
		"component", "tcp_source",
		"remote_addr", c.RemoteAddr().String(),
		"active_connections", newCount)
	return nil, gnet.None
}

func (s *tcpSourceServer) OnClose(c gnet.Conn, err error) gnet.Action {
	s.mu.Lock()
	client := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()

	// A final line without trailing newline is still an event
	peakBuffer := 0
	if client != nil {
		if client.buffer.Len() > 0 {
			s.source.processLines(&client.buffer, true)
		}
		peakBuffer = client.maxBufferSeen
	}

	newCount := s.source.activeConns.Add(-1)
	s.source.logger.Debug("msg", "TCP connection closed",
		"component", "tcp_source",
		"remote_addr", c.RemoteAddr().String(),
		"active_connections", newCount,
		"peak_buffer_bytes", peakBuffer,
		"error", err)
	return gnet.None
}

func (s *tcpSourceServer) OnTraffic(c gnet.Conn) gnet.Action {
	s.mu.RLock()
	client, exists := s.clients[c]
	s.mu.RUnlock()

	if !exists {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		s.source.logger.Error("msg", "Error reading from connection",
			"component", "tcp_source",
			"error", err)
		return gnet.Close
	}

	if client.buffer.Len()+len(data) > maxClientBufferSize {
		s.source.logger.Warn("msg", "Client buffer limit exceeded, closing connection",
			"component", "tcp_source",
			"remote_addr", c.RemoteAddr().String(),
			"buffer_size", client.buffer.Len(),
			"incoming_size", len(data),
			"limit", maxClientBufferSize)
		s.source.invalidEntries.Add(1)
		client.buffer.Reset()
		return gnet.Close
	}

	client.buffer.Write(data)
	if client.buffer.Len() > client.maxBufferSeen {
		client.maxBufferSeen = client.buffer.Len()
	}

	if client.buffer.Len() > maxLineLength && bytes.IndexByte(client.buffer.Bytes(), '\n') < 0 {
		s.source.logger.Warn("msg", "Line too long without newline",
			"component", "tcp_source",
			"remote_addr", c.RemoteAddr().String(),
			"buffer_size", client.buffer.Len())
		s.source.invalidEntries.Add(1)
		client.buffer.Reset()
		return gnet.Close
	}

	s.source.processLines(&client.buffer, false)
	return gnet.None
}

// processLines publishes every complete line in buf, leaving any partial
// tail for the next read. With flush set the tail is published too.
func (t *TCPSource) processLines(buf *bytes.Buffer, flush bool) int {
	published := 0
	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			if flush {
				line = bytes.TrimRight(line, "\r\n")
				if len(line) > 0 {
					t.publish(parseLine(line, "tcp", t.encoding))
					published++
				}
			} else {
				// Put back the incomplete line
				rest := append([]byte(nil), line...)
				buf.Reset()
				buf.Write(rest)
			}
			return published
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		t.publish(parseLine(line, "tcp", t.encoding))
		published++
	}
}
