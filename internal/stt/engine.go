package stt

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	wave "github.com/zenwerk/go-wave"

	"github.com/voicerelay/voice-relay/internal/audio"
	"github.com/voicerelay/voice-relay/internal/observability"
)

// whisper models only accept 16 kHz mono input
const whisperSampleRate = 16000

// A segment shorter than this is treated as noise and not decoded
const minSegmentDuration = 250 * time.Millisecond

// Segments are capped at 30s of audio; the ring keeps the most recent tail
const maxSegmentDuration = 30 * time.Second

// EngineConfig configures the local whisper recognizer.
type EngineConfig struct {
	ModelPath     string
	SampleRate    int              // Input sample rate; resampled to 16 kHz when different
	PartialEvery  float64          // Seconds of buffered speech between partial decodes
	VAD           *audio.VADConfig // Energy VAD placing segment boundaries
	DebugAudioDir string           // When set, finalized segments are dumped as wav files
	FS            afero.Fs         // Filesystem for debug dumps; defaults to the OS filesystem
}

// Engine is a whisper.cpp-backed Recognizer. An energy VAD marks speech;
// buffered speech is re-decoded periodically for partial events, and a
// trailing pause triggers a full decode emitted as a final event.
type Engine struct {
	model whisper.Model

	sampleRate     int
	partialSamples int
	vad            *audio.VAD
	segment        *audio.SegmentBuffer

	sinceDecode int
	lastPartial string

	fs       afero.Fs
	debugDir string
	logger   zerolog.Logger
}

// NewEngine loads the whisper model and prepares a recognizer.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("model path is empty")
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", cfg.SampleRate)
	}
	if cfg.PartialEvery <= 0 {
		cfg.PartialEvery = 1.0
	}
	if cfg.FS == nil {
		cfg.FS = afero.NewOsFs()
	}

	model, err := whisper.New(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model %s: %w", cfg.ModelPath, err)
	}

	if cfg.DebugAudioDir != "" {
		if err := cfg.FS.MkdirAll(cfg.DebugAudioDir, 0o755); err != nil {
			model.Close()
			return nil, fmt.Errorf("failed to create debug audio dir: %w", err)
		}
	}

	return &Engine{
		model:          model,
		sampleRate:     cfg.SampleRate,
		partialSamples: int(cfg.PartialEvery * whisperSampleRate),
		vad:            audio.NewVAD(cfg.VAD),
		segment:        audio.NewSegmentBuffer(int(maxSegmentDuration.Seconds()) * whisperSampleRate),
		fs:             cfg.FS,
		debugDir:       cfg.DebugAudioDir,
		logger:         observability.GetLogger().With().Str("component", "stt").Logger(),
	}, nil
}

// Process feeds one captured frame to the recognizer.
func (e *Engine) Process(frame audio.Frame) (TranscriptEvent, error) {
	samples := frame.Samples
	if e.sampleRate != whisperSampleRate {
		samples = audio.Resample(samples, e.sampleRate, whisperSampleRate)
	}

	speaking, started, ended := e.vad.Process(samples)
	if started {
		e.logger.Debug().Msg("speech started")
	}

	if speaking || ended {
		e.segment.Append(samples)
	}

	if ended {
		return e.closeSegment()
	}

	if !speaking {
		return TranscriptEvent{}, nil
	}

	e.sinceDecode += len(samples)
	if e.sinceDecode < e.partialSamples {
		return TranscriptEvent{Text: e.lastPartial}, nil
	}
	e.sinceDecode = 0

	text, err := e.decode(e.segment.Samples())
	if err != nil {
		return TranscriptEvent{}, err
	}
	e.lastPartial = text
	if text != "" {
		observability.RecordTranscriptEvent(false)
	}
	return TranscriptEvent{Text: text}, nil
}

// Finalize closes the current segment regardless of VAD state and resets
// decoding state for the next one.
func (e *Engine) Finalize() (TranscriptEvent, error) {
	return e.closeSegment()
}

// Reset discards buffered audio and decoding state without reopening
// anything.
func (e *Engine) Reset() {
	e.segment.Reset()
	e.vad.Reset()
	e.sinceDecode = 0
	e.lastPartial = ""
}

// Close releases the whisper model.
func (e *Engine) Close() error {
	return e.model.Close()
}

func (e *Engine) closeSegment() (TranscriptEvent, error) {
	samples := e.segment.Samples()
	e.Reset()

	if len(samples) < int(minSegmentDuration.Seconds()*whisperSampleRate) {
		return TranscriptEvent{Final: true}, nil
	}

	text, err := e.decode(samples)
	if err != nil {
		return TranscriptEvent{Final: true}, err
	}

	if text != "" {
		observability.RecordTranscriptEvent(true)
		e.logger.Debug().Str("text", text).Msg("segment finalized")
	}
	if e.debugDir != "" {
		e.dumpSegment(samples)
	}

	return TranscriptEvent{Text: text, Final: true}, nil
}

// decode runs a full whisper pass over the given samples.
func (e *Engine) decode(samples []int16) (string, error) {
	start := time.Now()

	wctx, err := e.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("new whisper context: %w", err)
	}

	if err := wctx.SetLanguage("en"); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))

	if err := wctx.Process(audio.SamplesToFloat32(samples), nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var parts []string
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" || isAnnotation(text) {
			continue
		}
		parts = append(parts, text)
	}

	observability.RecordDecode(time.Since(start))
	return strings.Join(parts, " "), nil
}

// isAnnotation reports whether whisper emitted a non-speech marker such as
// [BLANK_AUDIO] or (music).
func isAnnotation(text string) bool {
	first := text[0]
	last := text[len(text)-1]
	return (first == '[' && last == ']') || (first == '(' && last == ')')
}

// dumpSegment writes the finalized segment as a wav file for debugging.
// Failures are logged and otherwise ignored.
func (e *Engine) dumpSegment(samples []int16) {
	name := fmt.Sprintf("%s/segment-%d.wav", e.debugDir, time.Now().UnixNano())

	f, err := e.fs.Create(name)
	if err != nil {
		e.logger.Warn().Err(err).Str("path", name).Msg("failed to create debug wav")
		return
	}
	defer f.Close()

	writer, err := wave.NewWriter(wave.WriterParam{
		Out:           f,
		Channel:       1,
		SampleRate:    whisperSampleRate,
		BitsPerSample: 16,
	})
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to create wav writer")
		return
	}
	defer writer.Close()

	if _, err := writer.WriteSample16(samples); err != nil {
		e.logger.Warn().Err(err).Msg("failed to write debug wav")
	}
}
