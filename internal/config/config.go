package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the voice relay
type Config struct {
	// Audio capture configuration
	SampleRate int `envconfig:"SAMPLE_RATE" default:"16000"` // Microphone sample rate in Hz
	BlockSize  int `envconfig:"BLOCK_SIZE" default:"4096"`   // Samples per device read

	// Utterance segmentation configuration
	SilenceTimeout time.Duration `envconfig:"SILENCE_TIMEOUT" default:"3s"`   // Inactivity that ends an utterance
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"100ms"`  // Timeout polling granularity
	WakeWord       string        `envconfig:"WAKE_WORD" default:"hey jarvis"` // Wake phrase, matched case-insensitively

	// Speech recognition configuration
	ModelPath     string  `envconfig:"WHISPER_MODEL_PATH" required:"true"`   // Path to the whisper ggml model file
	PartialEvery  float64 `envconfig:"PARTIAL_EVERY" default:"1.0"`          // Seconds of buffered speech between partial decodes
	VADThreshold  float64 `envconfig:"VAD_ENERGY_THRESHOLD" default:"500.0"` // RMS energy threshold for speech
	VADSilence    int     `envconfig:"VAD_SILENCE_BLOCKS" default:"4"`        // Silent blocks that close a recognizer segment
	DebugAudioDir string  `envconfig:"DEBUG_AUDIO_DIR" default:""`           // When set, finalized segments are dumped as wav files

	// LLM backend (Ollama's OpenAI-compatible endpoint)
	OllamaURL   string `envconfig:"OLLAMA_URL" default:"http://localhost:11434/v1"`
	OllamaModel string `envconfig:"OLLAMA_MODEL" default:"llama2"`

	// Shell command generator backend
	ShellGPTPath string `envconfig:"SHELLGPT_PATH" default:"sgpt"`

	// Speech output
	SpeakCommand string `envconfig:"SPEAK_COMMAND" default:"say"` // Executable used to speak responses (say, espeak, ...)
	ChimePath    string `envconfig:"CHIME_PATH" default:""`       // Optional mp3 played on wake detection

	// Backend resilience configuration
	BackendTimeout             time.Duration `envconfig:"BACKEND_TIMEOUT" default:"60s"`
	CircuitBreakerMaxFailures  int           `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`
	CircuitBreakerResetTimeout time.Duration `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30s"`
	DeviceRetryMaxAttempts     int           `envconfig:"DEVICE_RETRY_MAX_ATTEMPTS" default:"5"`
	DeviceRetryBackoff         time.Duration `envconfig:"DEVICE_RETRY_BACKOFF" default:"1s"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"true"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	MetricsPort    string `envconfig:"METRICS_PORT" default:"9090"`
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file (the given one, or ./.env when
// envFile is empty), then processes the environment and validates the result.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("SAMPLE_RATE must be positive, got %d", c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("BLOCK_SIZE must be positive, got %d", c.BlockSize)
	}
	if c.SilenceTimeout <= 0 {
		return fmt.Errorf("SILENCE_TIMEOUT must be positive, got %v", c.SilenceTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %v", c.PollInterval)
	}
	// Detected silence may overshoot the timeout by up to one poll interval,
	// so a poll interval longer than the timeout makes that bound meaningless.
	if c.PollInterval > c.SilenceTimeout {
		return fmt.Errorf("POLL_INTERVAL (%v) must not exceed SILENCE_TIMEOUT (%v)", c.PollInterval, c.SilenceTimeout)
	}
	if c.WakeWord == "" {
		return fmt.Errorf("WAKE_WORD must not be empty")
	}
	if c.ModelPath == "" {
		return fmt.Errorf("WHISPER_MODEL_PATH is required")
	}
	if c.PartialEvery <= 0 {
		return fmt.Errorf("PARTIAL_EVERY must be positive, got %f", c.PartialEvery)
	}
	if c.VADSilence <= 0 {
		return fmt.Errorf("VAD_SILENCE_BLOCKS must be positive, got %d", c.VADSilence)
	}
	return nil
}
