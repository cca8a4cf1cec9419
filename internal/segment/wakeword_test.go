package segment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/voicerelay/voice-relay/internal/audio"
	"github.com/voicerelay/voice-relay/internal/stt"
)

func TestGate_MatchesAnyCasing(t *testing.T) {
	for _, text := range []string{
		"hey jarvis",
		"Hey Jarvis",
		"HEY JARVIS NOW",
		"well Hey Jarvis, wake up",
	} {
		rec := &scriptedRecognizer{
			script: []stt.TranscriptEvent{{Text: text, Final: true}},
		}
		gate := NewGate(rec, "hey jarvis")
		frames := feedFrames(t, 5*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		err := gate.Wait(ctx, frames)
		cancel()
		if err != nil {
			t.Errorf("Wait() did not trigger on %q: %v", text, err)
		}
	}
}

func TestGate_IgnoresNonMatchingFinals(t *testing.T) {
	rec := &scriptedRecognizer{
		script: []stt.TranscriptEvent{
			{Text: "good morning", Final: true},
			{Text: "hey jarvis", Final: true},
		},
	}
	gate := NewGate(rec, "hey jarvis")
	frames := feedFrames(t, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := gate.Wait(ctx, frames); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
}

func TestGate_PartialsNeverTrigger(t *testing.T) {
	// Only finalized segments may trigger wake, even when a partial already
	// contains the phrase.
	rec := &scriptedRecognizer{
		script: []stt.TranscriptEvent{
			{Text: "hey jarvis"}, // partial
		},
	}
	gate := NewGate(rec, "hey jarvis")
	frames := feedFrames(t, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := gate.Wait(ctx, frames)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected gate to stay idle on partials, got %v", err)
	}
}

func TestGate_SourceClosed(t *testing.T) {
	rec := &scriptedRecognizer{}
	gate := NewGate(rec, "hey jarvis")

	frames := make(chan audio.Frame)
	close(frames)

	err := gate.Wait(context.Background(), frames)
	if !errors.Is(err, ErrSourceClosed) {
		t.Errorf("Expected ErrSourceClosed, got %v", err)
	}
}

func TestGate_RecognizerErrorPropagates(t *testing.T) {
	wantErr := errors.New("model gone")
	rec := &scriptedRecognizer{processErr: wantErr}
	gate := NewGate(rec, "hey jarvis")
	frames := feedFrames(t, 5*time.Millisecond)

	err := gate.Wait(context.Background(), frames)
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected recognizer error to propagate, got %v", err)
	}
}
