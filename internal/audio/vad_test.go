package audio

import (
	"testing"
)

func loudBlock(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = 5000
	}
	return samples
}

func quietBlock(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = 10
	}
	return samples
}

func TestVAD_Process_Speech(t *testing.T) {
	vad := NewVAD(&VADConfig{EnergyThreshold: 500.0, SilenceBlocks: 4})

	for i := 0; i < 5; i++ {
		speaking, started, _ := vad.Process(loudBlock(160))
		if !speaking {
			t.Errorf("Expected speech detection on block %d", i)
		}
		if i == 0 && !started {
			t.Error("Expected speech to start on first block")
		}
		if i > 0 && started {
			t.Errorf("Did not expect speech start on block %d", i)
		}
	}
}

func TestVAD_Process_Silence(t *testing.T) {
	vad := NewVAD(&VADConfig{EnergyThreshold: 500.0, SilenceBlocks: 4})

	for i := 0; i < 10; i++ {
		speaking, _, ended := vad.Process(quietBlock(160))
		if speaking {
			t.Errorf("Expected silence on block %d", i)
		}
		if ended {
			t.Error("Speech cannot end when it never started")
		}
	}
}

func TestVAD_Process_SpeechToSilence(t *testing.T) {
	vad := NewVAD(&VADConfig{EnergyThreshold: 500.0, SilenceBlocks: 4})

	for i := 0; i < 3; i++ {
		vad.Process(loudBlock(160))
	}

	var endedAt = -1
	for i := 0; i < 10; i++ {
		_, _, ended := vad.Process(quietBlock(160))
		if ended {
			endedAt = i
			break
		}
	}

	if endedAt != 3 {
		t.Errorf("Expected speech to end after 4 silent blocks (index 3), got %d", endedAt)
	}
	if vad.Speaking() {
		t.Error("Expected speaking false after speech ended")
	}
}

func TestVAD_SilenceResetByActivity(t *testing.T) {
	vad := NewVAD(&VADConfig{EnergyThreshold: 500.0, SilenceBlocks: 4})

	vad.Process(loudBlock(160))

	// Short pauses below the silence threshold never end the segment
	for i := 0; i < 10; i++ {
		vad.Process(quietBlock(160))
		vad.Process(quietBlock(160))
		_, _, ended := vad.Process(loudBlock(160))
		if ended {
			t.Fatalf("Speech ended during a short pause on iteration %d", i)
		}
	}

	if !vad.Speaking() {
		t.Error("Expected speech to still be active")
	}
}

func TestVAD_Reset(t *testing.T) {
	vad := NewVAD(nil)

	vad.Process(loudBlock(160))
	if !vad.Speaking() {
		t.Fatal("Expected speech to be detected")
	}

	vad.Reset()
	if vad.Speaking() {
		t.Error("Expected speaking false after reset")
	}
}

func TestDefaultVADConfig(t *testing.T) {
	config := DefaultVADConfig()
	if config.EnergyThreshold != 500.0 {
		t.Errorf("Expected default EnergyThreshold 500.0, got %f", config.EnergyThreshold)
	}
	if config.SilenceBlocks != 4 {
		t.Errorf("Expected default SilenceBlocks 4, got %d", config.SilenceBlocks)
	}
}
