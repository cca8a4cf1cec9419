// Package tts speaks text responses out loud.
package tts

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/voicerelay/voice-relay/internal/observability"
)

// Speaker converts text to audible speech. Implementations block until
// playback finishes or the context is cancelled.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// CommandSpeaker shells out to a system text-to-speech command such as
// "say" on macOS or "espeak" on Linux. The text is passed as a single
// argument.
type CommandSpeaker struct {
	command string
	logger  zerolog.Logger
}

// NewCommandSpeaker creates a speaker backed by the given executable.
func NewCommandSpeaker(command string) *CommandSpeaker {
	return &CommandSpeaker{
		command: command,
		logger:  observability.GetLogger().With().Str("component", "tts").Logger(),
	}
}

// Say runs the speech command with the text. Empty text is a no-op.
func (s *CommandSpeaker) Say(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	bin, err := exec.LookPath(s.command)
	if err != nil {
		return fmt.Errorf("speech command %q not found: %w", s.command, err)
	}

	s.logger.Debug().Str("text", text).Msg("speaking response")

	cmd := exec.CommandContext(ctx, bin, text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("speech command failed: %w", err)
	}
	return nil
}

// NullSpeaker discards all text. Used when speech output is disabled.
type NullSpeaker struct{}

func (NullSpeaker) Say(_ context.Context, _ string) error { return nil }
