// Package relay runs the main listen/wake/capture/respond loop.
package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/voicerelay/voice-relay/internal/audio"
	"github.com/voicerelay/voice-relay/internal/config"
	"github.com/voicerelay/voice-relay/internal/notify"
	"github.com/voicerelay/voice-relay/internal/observability"
	"github.com/voicerelay/voice-relay/internal/resilience"
	"github.com/voicerelay/voice-relay/internal/router"
	"github.com/voicerelay/voice-relay/internal/segment"
	"github.com/voicerelay/voice-relay/internal/stt"
	"github.com/voicerelay/voice-relay/internal/tts"
)

// Session owns one end-to-end voice relay pipeline: microphone, recognizer,
// wake gate, segmenter, router, and speaker. It is not safe for concurrent
// use; run exactly one Session per process.
type Session struct {
	cfg       *config.Config
	rec       stt.Recognizer
	gate      *segment.Gate
	segmenter *segment.Segmenter
	router    *router.Router
	speaker   tts.Speaker
	chime     *notify.Chime
	logger    zerolog.Logger
}

// New assembles a session from its parts. The recognizer is shared by the
// gate and the segmenter; the session guarantees they never use it
// concurrently.
func New(cfg *config.Config, rec stt.Recognizer, rt *router.Router, speaker tts.Speaker, chime *notify.Chime) *Session {
	return &Session{
		cfg: cfg,
		rec: rec,
		gate: segment.NewGate(rec, cfg.WakeWord),
		segmenter: segment.NewSegmenter(rec, segment.Config{
			SilenceTimeout: cfg.SilenceTimeout,
			PollInterval:   cfg.PollInterval,
		}),
		router:  rt,
		speaker: speaker,
		chime:   chime,
		logger:  observability.GetLogger().With().Str("component", "relay").Logger(),
	}
}

// Run executes the main loop until the context is cancelled or an exit
// command is spoken. The audio stream stays open across the gate and the
// segmenter so the first syllables of a command are never lost; a device
// failure closes the stream, and the stream is reopened with backoff.
func (s *Session) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		frames, stopStream, err := s.openStream(ctx)
		if err != nil {
			return fmt.Errorf("opening audio stream: %w", err)
		}

		exit, err := s.listen(ctx, frames)
		stopStream()

		switch {
		case exit:
			return nil
		case err == nil, errors.Is(err, context.Canceled):
			if ctx.Err() != nil {
				return ctx.Err()
			}
		case errors.Is(err, segment.ErrSourceClosed) || audio.IsDeviceError(err):
			observability.RecordError("device", "relay")
			s.logger.Warn().Err(err).Msg("audio stream failed, reopening")
		default:
			return err
		}
	}
}

// openStream opens the microphone, retrying with backoff on device errors.
// Repeated failure is fatal to the process.
func (s *Session) openStream(ctx context.Context) (<-chan audio.Frame, context.CancelFunc, error) {
	var frames <-chan audio.Frame
	streamCtx, stopStream := context.WithCancel(ctx)

	retryCfg := &resilience.RetryConfig{
		MaxAttempts:    s.cfg.DeviceRetryMaxAttempts,
		InitialBackoff: s.cfg.DeviceRetryBackoff,
		MaxBackoff:     s.cfg.DeviceRetryBackoff * 8,
		Multiplier:     2.0,
		Jitter:         true,
	}
	err := resilience.Retry(ctx, func() error {
		device := audio.NewDevice(s.cfg.SampleRate, s.cfg.BlockSize)
		ch, openErr := device.Start(streamCtx)
		if openErr != nil {
			observability.RecordDeviceReopen()
			s.logger.Warn().Err(openErr).Msg("audio device open failed")
			return openErr
		}
		frames = ch
		return nil
	}, retryCfg)
	if err != nil {
		stopStream()
		return nil, nil, err
	}
	return frames, stopStream, nil
}

// listen runs wake/capture/respond cycles over one open stream. It returns
// exit=true when an exit command was spoken, or an error when the stream or
// recognizer fails.
func (s *Session) listen(ctx context.Context, frames <-chan audio.Frame) (bool, error) {
	for {
		s.logger.Info().Str("wake_word", s.cfg.WakeWord).Msg("listening for wake phrase")
		if err := s.gate.Wait(ctx, frames); err != nil {
			return false, err
		}

		cycleID := observability.NewCycleID()
		logger := observability.WithCycleID(cycleID)
		logger.Info().Msg("wake phrase detected")

		s.chime.Play()
		s.rec.Reset()

		utt, err := s.segmenter.Capture(ctx, frames)
		if err != nil {
			return false, err
		}
		if utt.Empty() {
			logger.Info().Msg("no speech detected, returning to idle")
			continue
		}

		reply, exit := s.router.Dispatch(ctx, utt)
		if err := s.speaker.Say(ctx, reply); err != nil {
			observability.RecordError("tts", "relay")
			logger.Warn().Err(err).Msg("speech output failed")
		}
		if exit {
			logger.Info().Msg("exit command received")
			return true, nil
		}
	}
}
