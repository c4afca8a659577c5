// ABOUTME: WebSocket synthesizer tests against a local upgrade server
// ABOUTME: Verifies chunk accumulation, done handling, and server errors
package synth

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

// streamServer runs a canned WebSocket synthesis exchange
func streamServer(t *testing.T, respond func(conn *websocket.Conn, req streamRequest)) *httptest.Server {
	t.Helper()

	var upgrader websocket.Upgrader
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var req streamRequest
		if err := conn.ReadJSON(&req); err != nil {
			t.Errorf("read request: %v", err)
			return
		}
		respond(conn, req)
	}))
}

func wsEndpoint(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestNewStreamRequiresEndpoint(t *testing.T) {
	_, err := NewStream(StreamConfig{})
	if err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}

func TestStreamSynthesizeAccumulatesChunks(t *testing.T) {
	chunk1 := []byte{1, 0, 2, 0}
	chunk2 := []byte{3, 0, 4, 0}

	srv := streamServer(t, func(conn *websocket.Conn, req streamRequest) {
		if req.Type != "synthesize" || req.Text != "hi there" || req.Format != "pcm16" {
			t.Errorf("unexpected request %+v", req)
		}
		conn.WriteJSON(streamMessage{Type: "chunk", Audio: base64.StdEncoding.EncodeToString(chunk1)})
		conn.WriteJSON(streamMessage{Type: "chunk", Audio: base64.StdEncoding.EncodeToString(chunk2)})
		conn.WriteJSON(streamMessage{Type: "done", SampleRate: 16000})
	})
	defer srv.Close()

	s, err := NewStream(StreamConfig{Endpoint: wsEndpoint(srv)})
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}

	res, err := s.Synthesize(context.Background(), Request{Text: "hi there", Voice: "alto"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	want := append(append([]byte{}, chunk1...), chunk2...)
	if !bytes.Equal(res.PCM, want) {
		t.Errorf("PCM = % X, want % X", res.PCM, want)
	}
	if res.Format.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", res.Format.SampleRate)
	}
}

func TestStreamSynthesizeSkipsUnknownMessages(t *testing.T) {
	srv := streamServer(t, func(conn *websocket.Conn, req streamRequest) {
		conn.WriteJSON(streamMessage{Type: "status", Message: "warming up"})
		conn.WriteJSON(streamMessage{Type: "chunk", Audio: base64.StdEncoding.EncodeToString([]byte{9, 0})})
		conn.WriteJSON(streamMessage{Type: "done"})
	})
	defer srv.Close()

	s, err := NewStream(StreamConfig{Endpoint: wsEndpoint(srv)})
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}

	res, err := s.Synthesize(context.Background(), Request{Text: "x"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(res.PCM) != 2 {
		t.Errorf("PCM length = %d, want 2", len(res.PCM))
	}
	if res.Format.SampleRate != DefaultFormat.SampleRate {
		t.Errorf("sample rate = %d, want default", res.Format.SampleRate)
	}
}

func TestStreamSynthesizeServerError(t *testing.T) {
	srv := streamServer(t, func(conn *websocket.Conn, req streamRequest) {
		conn.WriteJSON(streamMessage{Type: "error", Message: "unknown voice"})
	})
	defer srv.Close()

	s, err := NewStream(StreamConfig{Endpoint: wsEndpoint(srv)})
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}

	_, err = s.Synthesize(context.Background(), Request{Text: "x", Voice: "nope"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unknown voice") {
		t.Errorf("error %q does not carry the server message", err)
	}
}

func TestStreamSynthesizeEmptyStream(t *testing.T) {
	srv := streamServer(t, func(conn *websocket.Conn, req streamRequest) {
		conn.WriteJSON(streamMessage{Type: "done"})
	})
	defer srv.Close()

	s, err := NewStream(StreamConfig{Endpoint: wsEndpoint(srv)})
	if err != nil {
		t.Fatalf("NewStream failed: %v", err)
	}

	_, err = s.Synthesize(context.Background(), Request{Text: "x"})
	if err == nil {
		t.Fatal("expected error for empty stream")
	}
}
