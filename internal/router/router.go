// Package router classifies finalized utterances and dispatches them to the
// configured text backends.
package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/voicerelay/voice-relay/internal/backend"
	"github.com/voicerelay/voice-relay/internal/observability"
	"github.com/voicerelay/voice-relay/internal/resilience"
	"github.com/voicerelay/voice-relay/internal/segment"
)

// Command is the classification of an utterance.
type Command int

const (
	// CommandQuery sends the utterance to the LLM backend.
	CommandQuery Command = iota
	// CommandShell sends the utterance to the shell generator backend.
	CommandShell
	// CommandExit ends the main loop.
	CommandExit
)

func (c Command) String() string {
	switch c {
	case CommandQuery:
		return "query"
	case CommandShell:
		return "shell"
	case CommandExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Classify maps utterance text to a Command. The match is a case-insensitive
// substring check; exit keywords win over shell keywords, and anything else
// is a query. Classification is total: every string maps to some Command.
func Classify(text string) Command {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "exit") || strings.Contains(lower, "quit"):
		return CommandExit
	case strings.Contains(lower, "run") || strings.Contains(lower, "execute"):
		return CommandShell
	default:
		return CommandQuery
	}
}

// Spoken responses for backend failures. The router never surfaces an error
// to its caller; every failure becomes something the relay can say.
const (
	msgFarewell         = "Goodbye."
	msgLLMUnavailable   = "The offline language model is not available. Please check that Ollama is running."
	msgShellUnavailable = "The shell command generator is not available. Please check that shell GPT is installed."
	msgBackendFailed    = "Sorry, I could not process that request."
)

// Router dispatches classified utterances to backends, each guarded by its
// own circuit breaker.
type Router struct {
	llm      backend.Backend
	shell    backend.Backend
	breakers map[string]*resilience.CircuitBreaker
	timeout  time.Duration
	logger   zerolog.Logger
}

// Config carries the breaker and timeout settings for a Router.
type Config struct {
	BackendTimeout      time.Duration
	BreakerMaxFailures  int
	BreakerResetTimeout time.Duration
}

// New creates a Router over the given LLM and shell backends.
func New(llm, shell backend.Backend, cfg Config) *Router {
	r := &Router{
		llm:      llm,
		shell:    shell,
		breakers: make(map[string]*resilience.CircuitBreaker),
		timeout:  cfg.BackendTimeout,
		logger:   observability.GetLogger().With().Str("component", "router").Logger(),
	}
	for _, b := range []backend.Backend{llm, shell} {
		r.breakers[b.Name()] = resilience.NewCircuitBreaker(
			b.Name(), cfg.BreakerMaxFailures, cfg.BreakerResetTimeout)
	}
	return r
}

// Dispatch classifies the utterance, calls the matching backend, and returns
// the spoken reply plus whether the main loop should exit. Backend failures
// are converted to spoken error messages and never returned as errors.
func (r *Router) Dispatch(ctx context.Context, u segment.Utterance) (string, bool) {
	cmd := Classify(u.Text)
	observability.RecordCommand(cmd.String())

	r.logger.Info().
		Str("command", cmd.String()).
		Str("text", u.Text).
		Msg("dispatching utterance")

	switch cmd {
	case CommandExit:
		return msgFarewell, true
	case CommandShell:
		return r.call(ctx, r.shell, u.Text, msgShellUnavailable), false
	default:
		return r.call(ctx, r.llm, u.Text, msgLLMUnavailable), false
	}
}

// call invokes a backend through its circuit breaker and maps every failure
// mode to a spoken message.
func (r *Router) call(ctx context.Context, b backend.Backend, prompt, unavailableMsg string) string {
	cb := r.breakers[b.Name()]

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var reply string
	start := time.Now()
	err := cb.Call(func() error {
		var genErr error
		reply, genErr = b.Generate(callCtx, prompt)
		return genErr
	})
	observability.RecordBackendRequest(b.Name(), time.Since(start), err)
	observability.UpdateCircuitBreakerState(b.Name(), int(cb.State()))

	if err == nil {
		return reply
	}

	observability.RecordError("backend", b.Name())

	switch {
	case errors.Is(err, resilience.ErrOpen):
		observability.IncrementCircuitBreakerFailures(b.Name())
		r.logger.Warn().Str("backend", b.Name()).Msg("circuit breaker open, skipping backend call")
		return unavailableMsg
	case errors.Is(err, backend.ErrUnavailable):
		r.logger.Warn().Err(err).Str("backend", b.Name()).Msg("backend unavailable")
		return unavailableMsg
	default:
		var execErr *backend.ExecError
		if errors.As(err, &execErr) {
			r.logger.Error().Err(execErr).Str("backend", b.Name()).Msg("backend execution failed")
		} else {
			r.logger.Error().Err(err).Str("backend", b.Name()).Msg("backend call failed")
		}
		return msgBackendFailed
	}
}
