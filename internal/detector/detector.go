// Package detector orchestrates one analysis request: feature
// extraction, baseline smoothing, classification, threshold rules, and
// the cooldown-gated intervention decision.
package detector

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"anxiety-service/internal/features"
	"anxiety-service/internal/models"
)

// Oracle is the narrow contract to the trained classifier. Implemented
// by model.Loader.
type Oracle interface {
	PredictFromFeatures(featureMap map[string]float64) (level string, confidence float64, probabilities map[string]float64, err error)
}

const (
	DefaultCooldownSeconds = 300
	baselineWeight         = 0.1
	interventionConfidence = 0.7
)

// interventionState tracks the cooldown between approved interventions.
// Ready/Cooling is derived from the last approval time, not a timer.
type interventionState struct {
	lastIntervention time.Time
	cooldownSeconds  int
}

func (s *interventionState) cooling(now time.Time) bool {
	if s.lastIntervention.IsZero() {
		return false
	}
	return now.Sub(s.lastIntervention).Seconds() < float64(s.cooldownSeconds)
}

type runningStats struct {
	totalAnalyses      int64
	totalInterventions int64
	levelCounts        map[string]int64
}

// Detector holds the per-process mutable state: baseline (inside the
// extractor), intervention cooldown, and counters. A mutex serializes
// Analyze so the HTTP server may accept concurrent requests while the
// core still sees one writer at a time.
type Detector struct {
	mu        sync.Mutex
	extractor *features.Extractor
	oracle    Oracle
	state     interventionState
	stats     runningStats
	logger    *zap.Logger
	now       func() time.Time
}

type Config struct {
	WindowSize      int
	CooldownSeconds int
	Logger          *zap.Logger
}

func New(oracle Oracle, cfg Config) *Detector {
	if cfg.CooldownSeconds <= 0 {
		cfg.CooldownSeconds = DefaultCooldownSeconds
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Detector{
		extractor: features.NewExtractor(cfg.WindowSize),
		oracle:    oracle,
		state:     interventionState{cooldownSeconds: cfg.CooldownSeconds},
		stats:     runningStats{levelCounts: make(map[string]int64)},
		logger:    cfg.Logger,
		now:       time.Now,
	}
}

// Analyze runs the full pipeline over one session snapshot. The baseline
// update happens after extraction, so normalization always divides by
// the previous call's baseline.
func (d *Detector) Analyze(session *models.SessionSnapshot) (*models.PredictionResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	featureMap := d.extractor.ExtractAll(session)
	d.extractor.UpdateBaseline(featureMap, baselineWeight)

	level, confidence, probabilities, err := d.oracle.PredictFromFeatures(featureMap)
	if err != nil {
		return nil, err
	}

	triggered := TriggeredFeatures(featureMap)
	intervene := d.shouldIntervene(level, confidence)

	d.stats.totalAnalyses++
	d.stats.levelCounts[level]++
	if intervene {
		d.stats.totalInterventions++
		d.logger.Info("intervention approved",
			zap.String("level", level),
			zap.Float64("confidence", confidence),
			zap.Strings("triggered", triggered),
		)
	}

	return &models.PredictionResult{
		ID:                uuid.NewString(),
		Level:             level,
		Confidence:        confidence,
		Probabilities:     probabilities,
		Features:          featureMap,
		TriggeredFeatures: triggered,
		ShouldIntervene:   intervene,
		Timestamp:         models.Timestamp{Time: d.now()},
	}, nil
}

// shouldIntervene approves an intervention only when the cooldown has
// elapsed, the level is High or Extreme, and confidence exceeds 0.7.
// Approving stamps the cooldown; rejection has no side effects.
func (d *Detector) shouldIntervene(level string, confidence float64) bool {
	now := d.now()
	if d.state.cooling(now) {
		return false
	}
	if (level == "High" || level == "Extreme") && confidence > interventionConfidence {
		d.state.lastIntervention = now
		return true
	}
	return false
}

// Stats snapshots the running counters, baseline, and cooldown state.
func (d *Detector) Stats() *models.DetectorStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	baseline := d.extractor.Baseline()
	counts := make(map[string]int64, len(d.stats.levelCounts))
	for level, n := range d.stats.levelCounts {
		counts[level] = n
	}

	stats := &models.DetectorStats{
		TotalAnalyses:      d.stats.totalAnalyses,
		TotalInterventions: d.stats.totalInterventions,
		LevelCounts:        counts,
		Baseline: models.BaselineSnapshot{
			TypingSpeed:       baseline.TypingSpeed,
			BackspaceRate:     baseline.BackspaceRate,
			KeystrokeVariance: baseline.KeystrokeVariance,
			Samples:           baseline.Samples,
		},
		CooldownSeconds: d.state.cooldownSeconds,
		CoolingDown:     d.state.cooling(d.now()),
	}
	if !d.state.lastIntervention.IsZero() {
		ts := models.Timestamp{Time: d.state.lastIntervention}
		stats.LastIntervention = &ts
	}
	return stats
}
