// ABOUTME: WebSocket synthesis backend accumulating streamed PCM chunks
// ABOUTME: Sends one JSON request and collects base64 chunks until done
package synth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultStreamTimeout bounds the dial and each message read
const DefaultStreamTimeout = 15 * time.Second

// StreamConfig configures a streaming synthesizer
type StreamConfig struct {
	// Endpoint is a host:port or a full ws:// URL (required)
	Endpoint string

	// APIKey is sent as a bearer token when set
	APIKey string

	// Timeout applies to the dial and to each message read
	// (default: DefaultStreamTimeout)
	Timeout time.Duration

	// SampleRate assumed when the server never states one
	// (default: DefaultFormat.SampleRate)
	SampleRate int
}

// StreamSynthesizer speaks the chunked WebSocket contract: one request
// out, base64 audio chunks in until a done message. The result is still
// a whole utterance; only the transport streams.
type StreamSynthesizer struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	rate     int
}

type streamRequest struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Voice  string `json:"voice"`
	Format string `json:"format"`
}

type streamMessage struct {
	Type       string `json:"type"`
	Audio      string `json:"audio,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Message    string `json:"message,omitempty"`
}

// NewStream creates a WebSocket synthesizer
func NewStream(config StreamConfig) (*StreamSynthesizer, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("synthesis endpoint is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultStreamTimeout
	}
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultFormat.SampleRate
	}

	return &StreamSynthesizer{
		endpoint: config.Endpoint,
		apiKey:   config.APIKey,
		timeout:  config.Timeout,
		rate:     config.SampleRate,
	}, nil
}

// Synthesize dials the endpoint and accumulates chunks until done
func (s *StreamSynthesizer) Synthesize(ctx context.Context, req Request) (*Result, error) {
	target := s.endpoint
	if !strings.Contains(target, "://") {
		u := url.URL{Scheme: "ws", Host: s.endpoint, Path: "/synthesize"}
		target = u.String()
	}

	var header http.Header
	if s.apiKey != "" {
		header = http.Header{"Authorization": []string{"Bearer " + s.apiKey}}
	}

	dialer := websocket.Dialer{HandshakeTimeout: s.timeout}
	conn, _, err := dialer.DialContext(ctx, target, header)
	if err != nil {
		return nil, fmt.Errorf("dial synthesis server: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(streamRequest{
		Type:   "synthesize",
		Text:   req.Text,
		Voice:  req.Voice,
		Format: "pcm16",
	}); err != nil {
		return nil, fmt.Errorf("send synthesis request: %w", err)
	}

	format := DefaultFormat
	format.SampleRate = s.rate

	var pcm []byte
	for {
		conn.SetReadDeadline(time.Now().Add(s.timeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("read synthesis stream: %w", err)
		}

		var msg streamMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("parse synthesis message: %w", err)
		}

		switch msg.Type {
		case "chunk":
			chunk, err := base64.StdEncoding.DecodeString(msg.Audio)
			if err != nil {
				return nil, fmt.Errorf("decode synthesis chunk: %w", err)
			}
			pcm = append(pcm, chunk...)
		case "done":
			if msg.SampleRate > 0 {
				format.SampleRate = msg.SampleRate
			}
			if len(pcm) == 0 {
				return nil, fmt.Errorf("synthesis stream contained no audio")
			}
			return &Result{PCM: pcm, Format: format}, nil
		case "error":
			return nil, fmt.Errorf("synthesis server error: %s", msg.Message)
		default:
			log.Printf("Ignoring unknown synthesis message type %q", msg.Type)
		}
	}
}
