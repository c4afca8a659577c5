// ABOUTME: Mock synthesizer tests for determinism and pacing
// ABOUTME: The offline voice must yield identical bytes for identical input
package synth

import (
	"bytes"
	"context"
	"testing"

	"github.com/intone-audio/intone-go/pkg/audio/decode"
)

func TestMockIsDeterministic(t *testing.T) {
	m := NewMock()
	req := Request{Text: "hello spoken world", Voice: "alto"}

	first, err := m.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	second, err := m.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if !bytes.Equal(first.PCM, second.PCM) {
		t.Error("identical requests produced different audio")
	}
	if first.Format != DefaultFormat {
		t.Errorf("format = %+v, want %+v", first.Format, DefaultFormat)
	}
}

func TestMockPacesByWords(t *testing.T) {
	m := NewMock()

	short, err := m.Synthesize(context.Background(), Request{Text: "one"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	long, err := m.Synthesize(context.Background(), Request{Text: "one two three four"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if len(short.PCM) == 0 {
		t.Fatal("single word produced no audio")
	}
	if len(long.PCM) <= len(short.PCM) {
		t.Errorf("four words (%d bytes) not longer than one (%d bytes)",
			len(long.PCM), len(short.PCM))
	}

	empty, err := m.Synthesize(context.Background(), Request{Text: "   "})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(empty.PCM) != 0 {
		t.Errorf("blank text produced %d bytes", len(empty.PCM))
	}
}

func TestMockOutputIsAudible(t *testing.T) {
	m := NewMock()

	res, err := m.Synthesize(context.Background(), Request{Text: "tone"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	nonzero := false
	for _, b := range res.PCM {
		if b != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Error("rendered word is pure silence")
	}
	if len(res.PCM)%2 != 0 {
		t.Errorf("PCM byte length %d is not sample aligned", len(res.PCM))
	}
}

func TestMockOutputDecodes(t *testing.T) {
	m := NewMock()

	res, err := m.Synthesize(context.Background(), Request{Text: "check this voice"})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	dec, err := decode.NewPCM16(res.Format)
	if err != nil {
		t.Fatalf("NewPCM16 failed: %v", err)
	}
	buf, err := dec.Decode(res.PCM)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if buf.Frames() == 0 {
		t.Error("decoded buffer is empty")
	}
	if buf.Format != res.Format {
		t.Errorf("buffer format = %+v, want %+v", buf.Format, res.Format)
	}
}

func TestMockHonorsCancellation(t *testing.T) {
	m := NewMock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.Synthesize(ctx, Request{Text: "never spoken"}); err == nil {
		t.Error("expected error from cancelled context")
	}
}
