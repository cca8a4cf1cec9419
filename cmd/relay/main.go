package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/voicerelay/voice-relay/internal/audio"
	"github.com/voicerelay/voice-relay/internal/backend"
	"github.com/voicerelay/voice-relay/internal/config"
	"github.com/voicerelay/voice-relay/internal/notify"
	"github.com/voicerelay/voice-relay/internal/observability"
	"github.com/voicerelay/voice-relay/internal/relay"
	"github.com/voicerelay/voice-relay/internal/router"
	"github.com/voicerelay/voice-relay/internal/stt"
	"github.com/voicerelay/voice-relay/internal/tts"
)

func main() {
	var (
		envFile  = pflag.String("env-file", "", "path to a .env file to load before reading the environment")
		logLevel = pflag.String("log-level", "", "override the configured log level")
		model    = pflag.String("model", "", "override the configured whisper model path")
	)
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		// Use fmt for fatal errors before logger is initialized
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *model != "" {
		cfg.ModelPath = *model
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("wake_word", cfg.WakeWord).
		Dur("silence_timeout", cfg.SilenceTimeout).
		Str("model", cfg.ModelPath).
		Str("log_level", cfg.LogLevel).
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Voice relay starting")

	rec, err := stt.NewEngine(stt.EngineConfig{
		ModelPath:    cfg.ModelPath,
		SampleRate:   cfg.SampleRate,
		PartialEvery: cfg.PartialEvery,
		VAD: &audio.VADConfig{
			EnergyThreshold: cfg.VADThreshold,
			SilenceBlocks:   cfg.VADSilence,
		},
		DebugAudioDir: cfg.DebugAudioDir,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load speech recognizer")
	}
	defer rec.Close()

	llm := backend.NewOllama(cfg.OllamaURL, cfg.OllamaModel)
	shell := backend.NewShellGPT(cfg.ShellGPTPath)
	rt := router.New(llm, shell, router.Config{
		BackendTimeout:      cfg.BackendTimeout,
		BreakerMaxFailures:  cfg.CircuitBreakerMaxFailures,
		BreakerResetTimeout: cfg.CircuitBreakerResetTimeout,
	})
	speaker := tts.NewCommandSpeaker(cfg.SpeakCommand)
	chime := notify.NewChime(cfg.ChimePath)

	session := relay.New(cfg, rec, rt, speaker, chime)

	// Expose health, readiness, and metrics on a side port.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", observability.HealthCheckHandler())
	mux.HandleFunc("/ready", observability.ReadinessHandler(map[string]observability.HealthCheckFunc{
		"ollama":   llm.Available,
		"shellgpt": shell.Available,
	}))
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
		logger.Info().Str("port", cfg.MetricsPort).Msg("Prometheus metrics enabled at /metrics")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.MetricsPort),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Observability server failed to start")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := session.Run(ctx)

	logger.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Observability server forced to shutdown")
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logger.Fatal().Err(runErr).Msg("Relay exited with error")
	}
	logger.Info().Msg("Relay exited gracefully")
}
