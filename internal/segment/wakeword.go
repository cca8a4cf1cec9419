package segment

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/voicerelay/voice-relay/internal/audio"
	"github.com/voicerelay/voice-relay/internal/observability"
	"github.com/voicerelay/voice-relay/internal/stt"
)

// Gate holds the pipeline idle until the wake phrase appears in a finalized
// recognition segment. It has no timeout: idle listening runs until a match
// or cancellation. Partial events are never checked: only finals can
// trigger wake, so half-heard phrases don't fire the gate.
type Gate struct {
	rec    stt.Recognizer
	phrase string
	logger zerolog.Logger
}

// NewGate creates a wake-word gate for the given phrase. Matching is
// case-insensitive substring containment.
func NewGate(rec stt.Recognizer, phrase string) *Gate {
	return &Gate{
		rec:    rec,
		phrase: strings.ToLower(phrase),
		logger: observability.GetLogger().With().Str("component", "wake").Logger(),
	}
}

// Wait feeds frames to the recognizer until a finalized segment contains the
// wake phrase. It returns nil on a match, ErrSourceClosed if the frame
// source closes, and ctx.Err() on cancellation. The gate is one-shot: it is
// re-entered from idle after each full command cycle.
func (g *Gate) Wait(ctx context.Context, frames <-chan audio.Frame) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case frame, ok := <-frames:
			if !ok {
				return ErrSourceClosed
			}

			ev, err := g.rec.Process(frame)
			if err != nil {
				return err
			}
			if !ev.Final || ev.Text == "" {
				continue
			}

			if strings.Contains(strings.ToLower(ev.Text), g.phrase) {
				g.logger.Info().Str("text", ev.Text).Msg("wake phrase detected")
				observability.RecordWakeDetection()
				return nil
			}
			g.logger.Debug().Str("text", ev.Text).Msg("heard speech without wake phrase")
		}
	}
}
