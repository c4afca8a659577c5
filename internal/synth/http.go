// ABOUTME: HTTP synthesis backend speaking a JSON-plus-base64 contract
// ABOUTME: POSTs one utterance and decodes the returned PCM envelope
package synth

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHTTPTimeout bounds one synthesis round trip
const DefaultHTTPTimeout = 30 * time.Second

// HTTPConfig configures an HTTP synthesizer
type HTTPConfig struct {
	// Endpoint receives POST requests (required)
	Endpoint string

	// APIKey is sent as a bearer token when set
	APIKey string

	// Timeout for one request (default: DefaultHTTPTimeout)
	Timeout time.Duration

	// SampleRate assumed when the response omits one
	// (default: DefaultFormat.SampleRate)
	SampleRate int
}

// HTTPSynthesizer sends one utterance per request to a speech endpoint
type HTTPSynthesizer struct {
	endpoint string
	apiKey   string
	rate     int
	client   *http.Client
}

type httpRequest struct {
	Text   string `json:"text"`
	Voice  string `json:"voice"`
	Format string `json:"format"`
}

type httpResponse struct {
	Audio      string `json:"audio"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// NewHTTP creates an HTTP synthesizer
func NewHTTP(config HTTPConfig) (*HTTPSynthesizer, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("synthesis endpoint is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultHTTPTimeout
	}
	if config.SampleRate <= 0 {
		config.SampleRate = DefaultFormat.SampleRate
	}

	return &HTTPSynthesizer{
		endpoint: config.Endpoint,
		apiKey:   config.APIKey,
		rate:     config.SampleRate,
		client:   &http.Client{Timeout: config.Timeout},
	}, nil
}

// Synthesize posts the utterance and decodes the base64 PCM response
func (s *HTTPSynthesizer) Synthesize(ctx context.Context, req Request) (*Result, error) {
	body, err := json.Marshal(httpRequest{Text: req.Text, Voice: req.Voice, Format: "pcm16"})
	if err != nil {
		return nil, fmt.Errorf("encode synthesis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis server returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload httpResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode synthesis response: %w", err)
	}

	return s.resultFromPayload(payload)
}

func (s *HTTPSynthesizer) resultFromPayload(payload httpResponse) (*Result, error) {
	pcm, err := base64.StdEncoding.DecodeString(payload.Audio)
	if err != nil {
		return nil, fmt.Errorf("decode synthesis audio: %w", err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("synthesis response contained no audio")
	}

	format := DefaultFormat
	format.SampleRate = s.rate
	if payload.SampleRate > 0 {
		format.SampleRate = payload.SampleRate
	}
	if payload.Channels > 0 {
		format.Channels = payload.Channels
	}

	return &Result{PCM: pcm, Format: format}, nil
}
