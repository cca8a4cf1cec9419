package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	os.Setenv("WHISPER_MODEL_PATH", "/tmp/ggml-base.en.bin")
	defer os.Unsetenv("WHISPER_MODEL_PATH")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ModelPath != "/tmp/ggml-base.en.bin" {
		t.Errorf("Expected ModelPath '/tmp/ggml-base.en.bin', got '%s'", cfg.ModelPath)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("WHISPER_MODEL_PATH")

	_, err := Load("")
	if err == nil {
		t.Error("Expected error when the model path is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("WHISPER_MODEL_PATH", "/tmp/ggml-base.en.bin")
	defer os.Unsetenv("WHISPER_MODEL_PATH")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.SampleRate != 16000 {
		t.Errorf("Expected default SampleRate 16000, got %d", cfg.SampleRate)
	}

	if cfg.BlockSize != 4096 {
		t.Errorf("Expected default BlockSize 4096, got %d", cfg.BlockSize)
	}

	if cfg.SilenceTimeout != 3*time.Second {
		t.Errorf("Expected default SilenceTimeout 3s, got %v", cfg.SilenceTimeout)
	}

	if cfg.PollInterval != 100*time.Millisecond {
		t.Errorf("Expected default PollInterval 100ms, got %v", cfg.PollInterval)
	}

	if cfg.WakeWord != "hey jarvis" {
		t.Errorf("Expected default WakeWord 'hey jarvis', got '%s'", cfg.WakeWord)
	}

	if cfg.OllamaURL != "http://localhost:11434/v1" {
		t.Errorf("Expected default OllamaURL 'http://localhost:11434/v1', got '%s'", cfg.OllamaURL)
	}

	if cfg.OllamaModel != "llama2" {
		t.Errorf("Expected default OllamaModel 'llama2', got '%s'", cfg.OllamaModel)
	}

	if cfg.ShellGPTPath != "sgpt" {
		t.Errorf("Expected default ShellGPTPath 'sgpt', got '%s'", cfg.ShellGPTPath)
	}

	if cfg.VADThreshold != 500.0 {
		t.Errorf("Expected default VADThreshold 500.0, got %f", cfg.VADThreshold)
	}

	if cfg.VADSilence != 4 {
		t.Errorf("Expected default VADSilence 4, got %d", cfg.VADSilence)
	}
}

func TestValidate_PollIntervalBound(t *testing.T) {
	cfg := &Config{
		SampleRate:     16000,
		BlockSize:      4096,
		SilenceTimeout: 100 * time.Millisecond,
		PollInterval:   3 * time.Second,
		WakeWord:       "hey jarvis",
		ModelPath:      "/tmp/model.bin",
		PartialEvery:   1.0,
		VADSilence:     4,
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Expected error when PollInterval exceeds SilenceTimeout")
	}
}

func TestValidate_BadRates(t *testing.T) {
	cfg := &Config{
		SampleRate:     0,
		BlockSize:      4096,
		SilenceTimeout: 3 * time.Second,
		PollInterval:   100 * time.Millisecond,
		WakeWord:       "hey jarvis",
		ModelPath:      "/tmp/model.bin",
		PartialEvery:   1.0,
		VADSilence:     4,
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero sample rate")
	}

	cfg.SampleRate = 16000
	cfg.WakeWord = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty wake word")
	}
}

func TestConfig_ResilienceDefaults(t *testing.T) {
	os.Setenv("WHISPER_MODEL_PATH", "/tmp/ggml-base.en.bin")
	defer os.Unsetenv("WHISPER_MODEL_PATH")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.CircuitBreakerMaxFailures != 5 {
		t.Errorf("Expected default CircuitBreakerMaxFailures 5, got %d", cfg.CircuitBreakerMaxFailures)
	}

	if cfg.CircuitBreakerResetTimeout != 30*time.Second {
		t.Errorf("Expected default CircuitBreakerResetTimeout 30s, got %v", cfg.CircuitBreakerResetTimeout)
	}

	if cfg.DeviceRetryMaxAttempts != 5 {
		t.Errorf("Expected default DeviceRetryMaxAttempts 5, got %d", cfg.DeviceRetryMaxAttempts)
	}

	if cfg.DeviceRetryBackoff != time.Second {
		t.Errorf("Expected default DeviceRetryBackoff 1s, got %v", cfg.DeviceRetryBackoff)
	}
}
