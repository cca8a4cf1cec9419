package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Capture metrics
	wakeDetections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_relay_wake_detections_total",
		Help: "Total number of wake phrase detections",
	})

	captureCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_relay_capture_cycles_total",
		Help: "Total capture cycles by outcome",
	}, []string{"outcome"}) // outcome: "utterance", "no_speech", "device_error"

	captureDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_relay_capture_duration_seconds",
		Help:    "Duration of utterance capture cycles in seconds",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 30, 60},
	})

	audioFramesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_relay_audio_frames_total",
		Help: "Total audio frames read from the capture device",
	})

	audioBytesRead = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_relay_audio_bytes_total",
		Help: "Total audio bytes read from the capture device",
	})

	deviceReopens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voice_relay_device_reopens_total",
		Help: "Total attempts to reopen the audio device after a failure",
	})

	// Recognition metrics
	transcriptEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_relay_transcript_events_total",
		Help: "Total transcript events by kind",
	}, []string{"kind"}) // kind: "partial" or "final"

	decodeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voice_relay_decode_latency_seconds",
		Help:    "Whisper decode latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
	})

	// Routing and backend metrics
	commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_relay_commands_total",
		Help: "Total routed commands by kind",
	}, []string{"kind"}) // kind: "exit", "shell", "query"

	backendRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_relay_backend_requests_total",
		Help: "Total backend requests by backend and status",
	}, []string{"backend", "status"})

	backendLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voice_relay_backend_latency_seconds",
		Help:    "Backend request latency in seconds",
		Buckets: []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
	}, []string{"backend"})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_relay_errors_total",
		Help: "Total number of errors",
	}, []string{"type", "component"})

	// Circuit breaker metrics
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "voice_relay_circuit_breaker_state",
		Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
	}, []string{"backend"})

	circuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_relay_circuit_breaker_failures_total",
		Help: "Total circuit breaker failures",
	}, []string{"backend"})
)

// RecordWakeDetection records a wake phrase detection
func RecordWakeDetection() {
	wakeDetections.Inc()
}

// RecordCaptureCycle records a completed capture cycle and its duration
func RecordCaptureCycle(outcome string, duration time.Duration) {
	captureCycles.WithLabelValues(outcome).Inc()
	captureDuration.Observe(duration.Seconds())
}

// RecordAudioFrame records one frame read from the device
func RecordAudioFrame(bytes int) {
	audioFramesRead.Inc()
	audioBytesRead.Add(float64(bytes))
}

// RecordDeviceReopen records an attempt to reopen the audio device
func RecordDeviceReopen() {
	deviceReopens.Inc()
}

// RecordTranscriptEvent records a partial or final transcript event
func RecordTranscriptEvent(final bool) {
	kind := "partial"
	if final {
		kind = "final"
	}
	transcriptEvents.WithLabelValues(kind).Inc()
}

// RecordDecode records one whisper decode pass
func RecordDecode(elapsed time.Duration) {
	decodeLatency.Observe(elapsed.Seconds())
}

// RecordCommand records a routed command
func RecordCommand(kind string) {
	commands.WithLabelValues(kind).Inc()
}

// RecordBackendRequest records a backend call with its latency
func RecordBackendRequest(backend string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	backendRequests.WithLabelValues(backend, status).Inc()
	backendLatency.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// RecordError records an error by type and component
func RecordError(errorType, component string) {
	errorsTotal.WithLabelValues(errorType, component).Inc()
}

// UpdateCircuitBreakerState updates the circuit breaker state gauge
func UpdateCircuitBreakerState(backend string, state int) {
	circuitBreakerState.WithLabelValues(backend).Set(float64(state))
}

// IncrementCircuitBreakerFailures increments the circuit breaker failure counter
func IncrementCircuitBreakerFailures(backend string) {
	circuitBreakerFailures.WithLabelValues(backend).Inc()
}
