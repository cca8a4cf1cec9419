package stt

import "github.com/voicerelay/voice-relay/internal/audio"

// TranscriptEvent is one recognition result. A final event closes a
// recognition segment; a partial event reflects in-progress decoding and may
// be empty.
type TranscriptEvent struct {
	Text  string
	Final bool
}

// Recognizer wraps a speech-to-text engine fed with raw PCM frames. Decoding
// state between calls is opaque to callers; they only observe the event
// stream.
type Recognizer interface {
	// Process feeds one frame and returns the resulting event. An absence of
	// recognized speech yields an empty partial.
	Process(frame audio.Frame) (TranscriptEvent, error)

	// Finalize forces closure of the current segment, returning its final
	// text, and resets decoding state for the next segment. It never touches
	// the audio device.
	Finalize() (TranscriptEvent, error)

	// Reset discards any buffered audio and decoding state.
	Reset()

	// Close releases the underlying model.
	Close() error
}
