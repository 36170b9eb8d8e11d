package features

import (
	"anxiety-service/internal/models"
)

// Canonical feature names, in the order the model was trained with.
const (
	FeatureTypingSpeed       = "TYPING_SPEED"
	FeatureKeystrokeRate     = "KEYSTROKE_RATE"
	FeatureBackspaceRate     = "BACKSPACE_RATE"
	FeatureCompileError      = "COMPILE_ERROR"
	FeatureRedMetric         = "RED_METRIC"
	FeatureFocusSwitches     = "FOCUS_SWITCHES"
	FeatureIdleToActiveRatio = "IDLE_TO_ACTIVE_RATIO"
	FeatureUndoRedoAttempt   = "UNDO_REDO_ATTEMPT"
)

var featureNames = []string{
	FeatureTypingSpeed,
	FeatureKeystrokeRate,
	FeatureBackspaceRate,
	FeatureCompileError,
	FeatureRedMetric,
	FeatureFocusSwitches,
	FeatureIdleToActiveRatio,
	FeatureUndoRedoAttempt,
}

// FeatureNames returns the canonical feature order.
func FeatureNames() []string {
	return append([]string(nil), featureNames...)
}

// MapToVector orders a feature map into the canonical vector; missing
// names default to 0.
func MapToVector(m map[string]float64) []float64 {
	vector := make([]float64, len(featureNames))
	for i, name := range featureNames {
		vector[i] = m[name]
	}
	return vector
}

// VectorToMap names the elements of a canonical-order vector.
func VectorToMap(vector []float64) map[string]float64 {
	m := make(map[string]float64, len(vector))
	for i, v := range vector {
		if i >= len(featureNames) {
			break
		}
		m[featureNames[i]] = v
	}
	return m
}

const DefaultWindowSize = 100

// Extractor turns session snapshots into feature maps. It owns the
// adaptive baseline and a rolling window of recent events. The window is
// session memory only: features are always computed from the snapshot's
// own arrays, never from the retained buffer.
type Extractor struct {
	windowSize        int
	compileWindowSize int
	rollingKeystrokes []models.KeystrokeEvent
	rollingCompiles   []models.CompileEvent
	baseline          *Baseline
}

func NewExtractor(windowSize int) *Extractor {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Extractor{
		windowSize:        windowSize,
		compileWindowSize: windowSize / 10,
		baseline:          NewBaseline(),
	}
}

// ExtractAll computes the full 8-feature map from a snapshot. The
// baseline is read but not written; call UpdateBaseline afterwards.
func (e *Extractor) ExtractAll(session *models.SessionSnapshot) map[string]float64 {
	e.updateWindow(session)

	typing := e.extractTypingFeatures(session.Keystrokes)
	compile := e.extractCompileFeatures(session.Compiles)
	behavioral := e.extractBehavioralFeatures(session)

	undoRedo := 0.0
	if typing.backspaceRate > 0.4 {
		undoRedo = 1.0
	}

	return map[string]float64{
		FeatureTypingSpeed:       typing.typingSpeed,
		FeatureKeystrokeRate:     typing.keystrokeVariance,
		FeatureBackspaceRate:     typing.backspaceRate,
		FeatureCompileError:      compile.compileErrorRate,
		FeatureRedMetric:         compile.redMetric,
		FeatureFocusSwitches:     behavioral.focusSwitches,
		FeatureIdleToActiveRatio: behavioral.idleRatio,
		FeatureUndoRedoAttempt:   undoRedo,
	}
}

// UpdateBaseline smooths the new reading into the baseline. Must be
// called after ExtractAll so extraction always normalizes against the
// previous call's baseline.
func (e *Extractor) UpdateBaseline(features map[string]float64, weight float64) {
	e.baseline.Update(features, weight)
}

// Baseline exposes the current baseline for reporting.
func (e *Extractor) Baseline() Baseline {
	return *e.baseline
}

// updateWindow retains the most recent keystrokes and compiles as a
// bounded FIFO across calls.
func (e *Extractor) updateWindow(session *models.SessionSnapshot) {
	keystrokes := session.Keystrokes
	if len(keystrokes) > e.windowSize {
		keystrokes = keystrokes[len(keystrokes)-e.windowSize:]
	}
	e.rollingKeystrokes = append(e.rollingKeystrokes, keystrokes...)
	if excess := len(e.rollingKeystrokes) - e.windowSize; excess > 0 {
		e.rollingKeystrokes = e.rollingKeystrokes[excess:]
	}

	compiles := session.Compiles
	if len(compiles) > e.compileWindowSize {
		compiles = compiles[len(compiles)-e.compileWindowSize:]
	}
	e.rollingCompiles = append(e.rollingCompiles, compiles...)
	if excess := len(e.rollingCompiles) - e.compileWindowSize; excess > 0 {
		e.rollingCompiles = e.rollingCompiles[excess:]
	}
}

// WindowCounts reports how many events the rolling window currently
// retains.
func (e *Extractor) WindowCounts() (keystrokes, compiles int) {
	return len(e.rollingKeystrokes), len(e.rollingCompiles)
}
