// Package simulator produces a synthetic telemetry feed so the coaching
// stack can run end to end without a watch or a GPS fix. The profile is
// deterministic: pace wobbles around a base on a slow sine, periodic
// surges push it faster and drive heart rate up, and distance integrates
// from the resulting speed.
package simulator

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/StrideLab/VoiceCoach/internal/models"
)

// Default profile values.
const (
	DefaultStep          = time.Second
	DefaultBasePace      = 9*time.Minute + 30*time.Second
	DefaultBaseHeartRate = 145
	DefaultSurgePeriod   = 4 * time.Minute
	DefaultSurgeLength   = 45 * time.Second
)

// Shape constants for the synthetic profile.
const (
	paceWobbleShare   = 0.04 // slow sine, ±4% of base pace
	surgePaceShare    = 0.08 // surges run 8% faster than base
	surgeHeartRateAdd = 18.0 // extra beats per minute at full surge
	heartRateSmooth   = 0.10 // per-step approach toward the target rate
	restingShare      = 0.60 // paused heart rate drifts toward this share of base
)

// Opts holds simulator configuration options.
type Opts struct {
	BasePace      time.Duration
	BaseHeartRate int
	SurgePeriod   time.Duration
	SurgeLength   time.Duration
	Unit          models.DistanceUnit
}

// Option configures the simulated run profile.
type Option func(*Opts)

// WithBasePace sets the steady-state pace per unit distance.
func WithBasePace(pace time.Duration) Option {
	return func(o *Opts) {
		if pace > 0 {
			o.BasePace = pace
		}
	}
}

// WithBaseHeartRate sets the steady-state heart rate.
func WithBaseHeartRate(bpm int) Option {
	return func(o *Opts) {
		if bpm > 0 {
			o.BaseHeartRate = bpm
		}
	}
}

// WithSurges sets how often a surge begins and how long it lasts. A zero
// period disables surges.
func WithSurges(period, length time.Duration) Option {
	return func(o *Opts) {
		o.SurgePeriod = period
		o.SurgeLength = length
	}
}

// WithUnit sets the unit distance the pace refers to.
func WithUnit(unit models.DistanceUnit) Option {
	return func(o *Opts) {
		if models.IsValidDistanceUnit(unit) {
			o.Unit = unit
		}
	}
}

// Simulator is a stateful synthetic run. The same options always produce
// the same run. Safe for concurrent use; voice commands pause and resume
// it from another goroutine.
type Simulator struct {
	basePace      time.Duration
	baseHeartRate float64
	surgePeriod   time.Duration
	surgeLength   time.Duration
	unitMeters    float64

	mu          sync.Mutex
	elapsed     time.Duration
	distance    float64
	paused      bool
	heartRate   float64
	currentPace time.Duration
}

// New creates a simulator with the given profile.
func New(opts ...Option) *Simulator {
	cfg := Opts{
		BasePace:      DefaultBasePace,
		BaseHeartRate: DefaultBaseHeartRate,
		SurgePeriod:   DefaultSurgePeriod,
		SurgeLength:   DefaultSurgeLength,
		Unit:          models.UnitMiles,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Simulator{
		basePace:      cfg.BasePace,
		baseHeartRate: float64(cfg.BaseHeartRate),
		surgePeriod:   cfg.SurgePeriod,
		surgeLength:   cfg.SurgeLength,
		unitMeters:    cfg.Unit.Meters(),
		heartRate:     float64(cfg.BaseHeartRate) * 0.75,
		currentPace:   cfg.BasePace,
	}
}

// Advance moves simulated time forward by step and returns the resulting
// telemetry sample. While paused, elapsed time still accrues but distance
// is frozen and heart rate drifts down toward a resting level.
func (s *Simulator) Advance(step time.Duration) models.TelemetrySample {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed += step
	seconds := step.Seconds()

	if s.paused {
		s.approachHeartRate(s.baseHeartRate * restingShare)
		hr := int(math.Round(s.heartRate))
		return models.TelemetrySample{
			Elapsed:     s.elapsed,
			Paused:      true,
			Distance:    s.distance,
			CurrentPace: s.currentPace,
			AveragePace: s.averagePaceLocked(),
			HeartRate:   &hr,
		}
	}

	phase := s.elapsed.Seconds()
	wobble := math.Sin(phase/37) * paceWobbleShare

	targetHeartRate := s.baseHeartRate * (1 + wobble*0.5)
	paceFactor := 1 + wobble
	if s.inSurge(phase) {
		paceFactor -= surgePaceShare
		targetHeartRate += surgeHeartRateAdd
	}

	s.currentPace = time.Duration(float64(s.basePace) * paceFactor)
	speed := s.unitMeters / s.currentPace.Seconds()
	s.distance += speed * seconds
	s.approachHeartRate(targetHeartRate)

	hr := int(math.Round(s.heartRate))
	return models.TelemetrySample{
		Elapsed:     s.elapsed,
		Distance:    s.distance,
		CurrentPace: s.currentPace,
		AveragePace: s.averagePaceLocked(),
		Speed:       speed,
		HeartRate:   &hr,
	}
}

// Run emits one sample per step until the context is cancelled. Each tick
// advances simulated time by the same step, so the run plays out in real
// time at 1x speed.
func (s *Simulator) Run(ctx context.Context, step time.Duration, emit func(models.TelemetrySample)) {
	if step <= 0 {
		step = DefaultStep
	}
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	slog.Info("Simulator Run", "step", step, "base_pace", s.basePace)
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Simulator Run stopped", "elapsed", s.Elapsed())
			return
		case <-ticker.C:
			emit(s.Advance(step))
		}
	}
}

// Pause freezes distance accumulation.
func (s *Simulator) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume continues the run after a pause.
func (s *Simulator) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Paused reports whether the run is paused.
func (s *Simulator) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Elapsed returns the simulated time so far.
func (s *Simulator) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Simulator) inSurge(phase float64) bool {
	if s.surgePeriod <= 0 || s.surgeLength <= 0 {
		return false
	}
	return math.Mod(phase, s.surgePeriod.Seconds()) < s.surgeLength.Seconds()
}

func (s *Simulator) approachHeartRate(target float64) {
	s.heartRate += (target - s.heartRate) * heartRateSmooth
}

func (s *Simulator) averagePaceLocked() time.Duration {
	units := s.distance / s.unitMeters
	if units <= 0 {
		return 0
	}
	return time.Duration(float64(s.elapsed) / units)
}
