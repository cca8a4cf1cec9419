// Package notify plays the short chime that acknowledges wake detection.
package notify

import (
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/voicerelay/voice-relay/internal/observability"
)

// Chime decodes an mp3 file once and plays it on demand. A missing or
// unreadable file disables the chime; Play then does nothing.
type Chime struct {
	buffer  *beep.Buffer
	format  beep.Format
	enabled bool
	logger  zerolog.Logger

	initOnce sync.Once
	initErr  error
}

// NewChime loads the chime sound from path. An empty path or a load
// failure yields a disabled chime, never an error: the pipeline must not
// depend on the chime being playable.
func NewChime(path string) *Chime {
	c := &Chime{
		logger: observability.GetLogger().With().Str("component", "notify").Logger(),
	}
	if path == "" {
		return c
	}

	f, err := os.Open(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("chime file unavailable, chime disabled")
		return c
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("chime decode failed, chime disabled")
		return c
	}
	defer streamer.Close()

	// Buffer the whole clip so Play never touches the file again.
	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)

	c.buffer = buffer
	c.enabled = true
	c.format = format
	return c
}

// Play plays the chime and blocks until it finishes. Disabled chimes
// return immediately.
func (c *Chime) Play() {
	if !c.enabled {
		return
	}

	c.initOnce.Do(func() {
		rate := c.format.SampleRate
		c.initErr = speaker.Init(rate, rate.N(time.Second/10))
	})
	if c.initErr != nil {
		c.logger.Warn().Err(c.initErr).Msg("speaker init failed, chime disabled")
		c.enabled = false
		return
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(c.buffer.Streamer(0, c.buffer.Len()), beep.Callback(func() {
		close(done)
	})))
	<-done
}
