package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

const (
	kb = 1024
	mb = 1024 * kb

	defaultReadBuffer = 64 * kb
	defaultMaxEvent   = 32 * mb
)

// ErrEventTooLarge reports an SSE event exceeding the accumulation limit.
var ErrEventTooLarge = errors.New("SSE event exceeds maximum size")

// StreamResponse contains the SSE stream and response headers
type StreamResponse struct {
	Body    io.ReadCloser
	Headers http.Header
}

// StreamConfig bounds SSE buffer usage. Log bursts from busy sessions can
// produce single events of several megabytes.
type StreamConfig struct {
	ReadBuffer int
	MaxEvent   int
}

// DefaultStreamConfig returns the stream buffer limits, honoring
// SESSIONAUT_SSE_READ_BUFFER and SESSIONAUT_SSE_MAX_EVENT overrides.
func DefaultStreamConfig() *StreamConfig {
	cfg := &StreamConfig{
		ReadBuffer: defaultReadBuffer,
		MaxEvent:   defaultMaxEvent,
	}
	if val := os.Getenv("SESSIONAUT_SSE_READ_BUFFER"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			cfg.ReadBuffer = parsed
		}
	}
	if val := os.Getenv("SESSIONAUT_SSE_MAX_EVENT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > cfg.ReadBuffer {
			cfg.MaxEvent = parsed
		}
	}
	return cfg
}

// EventReader reads SSE events from a stream. Events are accumulated
// until their blank-line terminator, so an event of any size up to
// MaxEvent comes through intact.
type EventReader struct {
	stream      io.ReadCloser
	config      *StreamConfig
	accumulated []byte
	readBuf     []byte
	eof         bool
}

// NewEventReader creates an SSE event reader over stream.
func NewEventReader(stream io.ReadCloser, config *StreamConfig) *EventReader {
	if config == nil {
		config = DefaultStreamConfig()
	}
	return &EventReader{
		stream:  stream,
		config:  config,
		readBuf: make([]byte, config.ReadBuffer),
	}
}

// ReadEvent returns the next raw SSE event, including its trailing
// blank line. Returns io.EOF when the stream ends; a final unterminated
// event is returned alongside io.EOF.
func (r *EventReader) ReadEvent() ([]byte, error) {
	for {
		if idx := bytes.Index(r.accumulated, []byte("\n\n")); idx >= 0 {
			event := make([]byte, idx+2)
			copy(event, r.accumulated[:idx+2])
			r.accumulated = append(r.accumulated[:0], r.accumulated[idx+2:]...)
			return event, nil
		}
		if r.eof {
			if len(r.accumulated) > 0 {
				event := r.accumulated
				r.accumulated = nil
				return event, io.EOF
			}
			return nil, io.EOF
		}
		if len(r.accumulated) > r.config.MaxEvent {
			return nil, fmt.Errorf("%w: accumulated %d bytes, max %d",
				ErrEventTooLarge, len(r.accumulated), r.config.MaxEvent)
		}

		n, err := r.stream.Read(r.readBuf)
		if n > 0 {
			r.accumulated = append(r.accumulated, r.readBuf[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				r.eof = true
				continue
			}
			return nil, err
		}
	}
}

// Close closes the underlying stream.
func (r *EventReader) Close() error {
	if r.stream != nil {
		return r.stream.Close()
	}
	return nil
}

// parseEventFrame splits one raw SSE event into its event name and the
// concatenated data payload.
func parseEventFrame(frame []byte) (name string, data string) {
	var dataLines []string
	for _, line := range bytes.Split(frame, []byte("\n")) {
		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			name = string(bytes.TrimSpace(line[len("event:"):]))
		case bytes.HasPrefix(line, []byte("data:")):
			dataLines = append(dataLines, string(bytes.TrimPrefix(
				bytes.TrimPrefix(line, []byte("data:")), []byte(" "))))
		}
	}
	return name, strings.Join(dataLines, "\n")
}
