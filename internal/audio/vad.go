package audio

// VADConfig holds configuration for energy-based voice activity detection
type VADConfig struct {
	EnergyThreshold float64 // RMS energy above which a block counts as speech
	SilenceBlocks   int     // Consecutive silent blocks that mark end of speech
}

// DefaultVADConfig returns a default VAD configuration, tuned for 4096-sample
// blocks at 16 kHz (one block ~256ms, four blocks ~1s of trailing silence).
func DefaultVADConfig() *VADConfig {
	return &VADConfig{
		EnergyThreshold: 500.0,
		SilenceBlocks:   4,
	}
}

// VAD tracks whether speech is present across a stream of sample blocks.
// It runs inside the recognizer to place natural segment boundaries; the
// utterance segmenter never consumes it directly.
type VAD struct {
	config        *VADConfig
	silenceBlocks int
	speaking      bool
}

// NewVAD creates a voice activity detector
func NewVAD(config *VADConfig) *VAD {
	if config == nil {
		config = DefaultVADConfig()
	}
	return &VAD{config: config}
}

// Process consumes one block of samples.
// Returns: (speaking, speechStarted, speechEnded)
func (v *VAD) Process(samples []int16) (bool, bool, bool) {
	hasSpeech := CalculateRMS(samples) > v.config.EnergyThreshold

	var speechStarted, speechEnded bool

	if hasSpeech {
		v.silenceBlocks = 0
		if !v.speaking {
			speechStarted = true
			v.speaking = true
		}
	} else {
		v.silenceBlocks++
		if v.speaking && v.silenceBlocks >= v.config.SilenceBlocks {
			speechEnded = true
			v.speaking = false
			v.silenceBlocks = 0
		}
	}

	return v.speaking, speechStarted, speechEnded
}

// Speaking reports whether speech is currently detected
func (v *VAD) Speaking() bool {
	return v.speaking
}

// Reset clears the detector state
func (v *VAD) Reset() {
	v.silenceBlocks = 0
	v.speaking = false
}
