// Package segment turns the live transcript event stream into discrete,
// correctly-bounded utterances: the wake-word gate holds the pipeline idle
// until the wake phrase is heard, and the segmenter bounds each spoken
// command with a silence timeout.
package segment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/voicerelay/voice-relay/internal/audio"
	"github.com/voicerelay/voice-relay/internal/observability"
	"github.com/voicerelay/voice-relay/internal/stt"
)

// ErrSourceClosed is returned when the frame source closes mid-capture,
// typically because the audio device failed.
var ErrSourceClosed = errors.New("frame source closed")

// Utterance is the finalized result of one capture cycle.
type Utterance struct {
	Text string
}

// Empty reports that no speech was detected before the silence timeout.
// This is a normal outcome, not an error.
func (u Utterance) Empty() bool {
	return u.Text == ""
}

// Config holds the segmentation timing parameters.
type Config struct {
	// SilenceTimeout is the inactivity duration that ends an utterance.
	SilenceTimeout time.Duration

	// PollInterval is the granularity of the timeout check. Detected silence
	// overshoots SilenceTimeout by at most one PollInterval.
	PollInterval time.Duration
}

// activity is a timestamped transcript signal from the ingestion goroutine.
// Partial text is only an activity marker; final text joins the utterance.
type activity struct {
	text  string
	final bool
	at    time.Time
}

// Segmenter converts an unbounded stream of transcript events into exactly
// one bounded Utterance per Capture call. It ends an utterance on silence
// rather than on the recognizer's own segment boundaries alone, because
// acoustic finals can arrive mid-sentence on pauses and would fragment one
// spoken command into several.
type Segmenter struct {
	rec    stt.Recognizer
	cfg    Config
	logger zerolog.Logger
}

// NewSegmenter creates a segmenter over the given recognizer.
func NewSegmenter(rec stt.Recognizer, cfg Config) *Segmenter {
	return &Segmenter{
		rec:    rec,
		cfg:    cfg,
		logger: observability.GetLogger().With().Str("component", "segment").Logger(),
	}
}

// Capture runs one capture cycle: frames are fed to the recognizer by an
// ingestion goroutine that forwards timestamped activity over a channel,
// while the capture loop, the sole owner of the utterance state, polls the
// elapsed silence. When the timeout elapses, the recognizer is
// force-finalized and the accumulated text is returned. Finals concatenate
// in arrival order, joined by single spaces.
//
// An Utterance that is Empty means no speech was detected before the
// timeout; callers must treat that as a no-op, not an error.
func (s *Segmenter) Capture(ctx context.Context, frames <-chan audio.Frame) (Utterance, error) {
	started := time.Now()

	ingestCtx, stopIngest := context.WithCancel(ctx)
	defer stopIngest()

	events := make(chan activity)
	ingestErr := make(chan error, 1)
	ingestDone := make(chan struct{})

	go func() {
		defer close(ingestDone)
		s.ingest(ingestCtx, frames, events, ingestErr)
	}()

	var parts []string
	lastActivity := time.Now()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			// Activity timestamps arrive in channel order, so lastActivity
			// is monotonically non-decreasing within the cycle.
			lastActivity = ev.at
			if ev.final {
				parts = append(parts, ev.text)
			}

		case <-ticker.C:
			if time.Since(lastActivity) <= s.cfg.SilenceTimeout {
				continue
			}

			// The recognizer must not be finalized while the ingestion
			// goroutine may still be inside Process.
			stopIngest()
			<-ingestDone

			fin, err := s.rec.Finalize()
			if err != nil {
				s.logger.Warn().Err(err).Msg("finalize failed, keeping accumulated text")
			} else if fin.Text != "" {
				parts = append(parts, fin.Text)
			}

			utt := Utterance{Text: strings.Join(parts, " ")}
			outcome := "utterance"
			if utt.Empty() {
				outcome = "no_speech"
			}
			observability.RecordCaptureCycle(outcome, time.Since(started))
			return utt, nil

		case err := <-ingestErr:
			observability.RecordCaptureCycle("device_error", time.Since(started))
			return Utterance{}, err

		case <-ctx.Done():
			<-ingestDone
			return Utterance{}, ctx.Err()
		}
	}
}

// ingest feeds frames to the recognizer and forwards every non-empty event
// as a timestamped activity signal. It is the only goroutine that touches
// the recognizer during a capture cycle.
func (s *Segmenter) ingest(ctx context.Context, frames <-chan audio.Frame, events chan<- activity, errc chan<- error) {
	for {
		select {
		case <-ctx.Done():
			return

		case frame, ok := <-frames:
			if !ok {
				errc <- ErrSourceClosed
				return
			}

			ev, err := s.rec.Process(frame)
			if err != nil {
				errc <- err
				return
			}
			if ev.Text == "" {
				continue
			}

			select {
			case events <- activity{text: ev.Text, final: ev.Final, at: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
	}
}
