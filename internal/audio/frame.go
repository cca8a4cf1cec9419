package audio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Frame is one fixed-size block of signed 16-bit mono samples, stamped with
// the time it was read from the device. Ownership passes to the consumer;
// the source never retains or reuses the sample slice.
type Frame struct {
	Samples []int16
	Time    time.Time
}

// Source produces an unbounded, ordered sequence of Frames until stopped.
type Source interface {
	// Start opens the device and begins producing frames. The returned
	// channel is closed on ctx cancellation or device failure; after it
	// closes, Err reports the failure, if any.
	Start(ctx context.Context) (<-chan Frame, error)

	// Err returns the error that closed the frame channel, or nil.
	Err() error
}

// DeviceError reports a microphone open or read failure. It is fatal to the
// current capture cycle but not to the process; callers may retry opening
// the stream.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// IsDeviceError reports whether err is (or wraps) a DeviceError.
func IsDeviceError(err error) bool {
	var de *DeviceError
	return errors.As(err, &de)
}
