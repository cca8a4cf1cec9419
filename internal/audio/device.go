package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/voicerelay/voice-relay/internal/observability"
)

// Device captures mono int16 frames from the default input device via
// portaudio. One Device supports one Start at a time; frames arrive in read
// order with no drops (the channel send blocks, the consumer keeps up by
// construction).
type Device struct {
	sampleRate int
	blockSize  int

	mu      sync.Mutex
	lastErr error
}

// NewDevice creates a capture source for the default input device.
func NewDevice(sampleRate, blockSize int) *Device {
	return &Device{
		sampleRate: sampleRate,
		blockSize:  blockSize,
	}
}

// Start opens the microphone stream and begins delivering frames. The stream
// stays open until ctx is cancelled or a read fails; either way the returned
// channel closes and Err reports what happened.
func (d *Device) Start(ctx context.Context) (<-chan Frame, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &DeviceError{Op: "init", Err: err}
	}

	in := make([]int16, d.blockSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(d.sampleRate), len(in), in)
	if err != nil {
		portaudio.Terminate()
		return nil, &DeviceError{Op: "open", Err: err}
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, &DeviceError{Op: "start", Err: err}
	}

	d.mu.Lock()
	d.lastErr = nil
	d.mu.Unlock()

	frames := make(chan Frame)

	go func() {
		defer func() {
			if err := stream.Stop(); err != nil {
				observability.RecordError("stream_stop", "audio")
			}
			stream.Close()
			portaudio.Terminate()
			close(frames)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			// A blocked read returns within one block duration, which bounds
			// shutdown latency without closing the stream under the read.
			if err := stream.Read(); err != nil {
				d.setErr(&DeviceError{Op: "read", Err: err})
				return
			}

			samples := make([]int16, len(in))
			copy(samples, in)
			observability.RecordAudioFrame(len(samples) * 2)

			select {
			case frames <- Frame{Samples: samples, Time: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return frames, nil
}

// Err returns the error that closed the frame channel, or nil after a clean
// cancellation.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastErr
}

func (d *Device) setErr(err error) {
	d.mu.Lock()
	d.lastErr = err
	d.mu.Unlock()
}
