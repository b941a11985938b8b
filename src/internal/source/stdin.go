// FILE: hookwisp/src/internal/source/stdin.go
package source

import (
	"bufio"
	"io"
	"os"
	"sync"
	"time"

	"hookwisp/src/internal/config"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

// StdinSource reads one log event per line from standard input
type StdinSource struct {
	*publisher
	reader    io.Reader
	encoding  string
	done      chan struct{}
	eof       chan struct{}
	stopOnce  sync.Once
	startTime time.Time
	logger    *log.Logger
}

// NewStdinSource creates a stdin source. A nil reader means os.Stdin.
func NewStdinSource(cfg config.StdinSourceConfig, bufferSize int, reader io.Reader, logger *log.Logger) *StdinSource {
	if reader == nil {
		reader = os.Stdin
		if term.IsTerminal(int(os.Stdin.Fd())) {
			logger.Warn("msg", "Stdin is a terminal, waiting for typed input",
				"component", "stdin_source")
		}
	}

	return &StdinSource{
		publisher: newPublisher("stdin_source", bufferSize, logger),
		reader:    reader,
		encoding:  cfg.Encoding,
		done:      make(chan struct{}),
		eof:       make(chan struct{}),
		startTime: time.Now(),
		logger:    logger,
	}
}

func (s *StdinSource) Start() error {
	go s.readLoop()
	s.logger.Info("msg", "Stdin source started", "component", "stdin_source")
	return nil
}

func (s *StdinSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.closeSubscribers()
		s.logger.Info("msg", "Stdin source stopped", "component", "stdin_source")
	})
}

// EOF is closed once the input stream is exhausted
func (s *StdinSource) EOF() <-chan struct{} {
	return s.eof
}

func (s *StdinSource) GetStats() SourceStats {
	return s.stats("stdin", s.startTime, map[string]any{
		"encoding": s.encoding,
	})
}

func (s *StdinSource) readLoop() {
	defer close(s.eof)

	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	for scanner.Scan() {
		select {
		case <-s.done:
			return
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		s.publish(parseLine(line, "stdin", s.encoding))
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("msg", "Scanner error reading stdin",
			"component", "stdin_source",
			"error", err)
		return
	}
	s.logger.Debug("msg", "Stdin reached EOF", "component", "stdin_source")
}
