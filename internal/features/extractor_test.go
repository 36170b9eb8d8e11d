package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anxiety-service/internal/models"
)

var base = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func at(t time.Time) models.Timestamp {
	return models.Timestamp{Time: t}
}

func keystrokesEvery(n int, gap time.Duration) []models.KeystrokeEvent {
	events := make([]models.KeystrokeEvent, n)
	for i := range events {
		events[i] = models.KeystrokeEvent{Timestamp: at(base.Add(time.Duration(i) * gap))}
	}
	return events
}

func strptr(s string) *string { return &s }

func TestSteadyTypingScenario(t *testing.T) {
	// 12 keystrokes spaced 200ms apart, no backspaces.
	session := &models.SessionSnapshot{Keystrokes: keystrokesEvery(12, 200*time.Millisecond)}

	e := NewExtractor(0)
	got := e.ExtractAll(session)

	assert.Equal(t, 0.0, got[FeatureBackspaceRate])
	assert.Greater(t, got[FeatureTypingSpeed], 0.0)

	// 12 keys over 2.2s = 5.4545 chars/sec -> 65.45 WPM / 40 baseline.
	assert.InDelta(t, 1.6363, got[FeatureTypingSpeed], 1e-3)
	// Perfectly even intervals have (numerically) zero variance.
	assert.InDelta(t, 0.0, got[FeatureKeystrokeRate], 1e-9)
	assert.Equal(t, 0.0, got[FeatureUndoRedoAttempt])
}

func TestTypingDegenerateDefaults(t *testing.T) {
	e := NewExtractor(0)

	// Fewer than 10 keystrokes.
	got := e.ExtractAll(&models.SessionSnapshot{Keystrokes: keystrokesEvery(9, 200*time.Millisecond)})
	assert.Equal(t, 1.0, got[FeatureTypingSpeed])
	assert.Equal(t, 0.5, got[FeatureKeystrokeRate])
	assert.Equal(t, 0.0, got[FeatureBackspaceRate])

	// Enough keystrokes but every interval filtered as noise (5ms each).
	got = e.ExtractAll(&models.SessionSnapshot{Keystrokes: keystrokesEvery(20, 5*time.Millisecond)})
	assert.Equal(t, 1.0, got[FeatureTypingSpeed])
	assert.Equal(t, 0.5, got[FeatureKeystrokeRate])
}

func TestBackspaceRateAndUndoRedo(t *testing.T) {
	keystrokes := keystrokesEvery(12, 200*time.Millisecond)
	for i := 0; i < 6; i++ {
		keystrokes[i].IsBackspace = true
	}

	e := NewExtractor(0)
	got := e.ExtractAll(&models.SessionSnapshot{Keystrokes: keystrokes})

	assert.Equal(t, 0.5, got[FeatureBackspaceRate])
	assert.Equal(t, 1.0, got[FeatureUndoRedoAttempt], "backspace rate above 0.4 flags undo/redo")
}

func TestEmptyCompilesAllZero(t *testing.T) {
	e := NewExtractor(0)
	got := e.extractCompileFeatures(nil)

	assert.Equal(t, compileFeatures{}, got)
}

func TestRepeatedErrorScenario(t *testing.T) {
	// Two identical failures then a success: the two normalized error
	// strings are adjacent and equal, so 1 repeat over 2 patterns.
	compiles := []models.CompileEvent{
		{Timestamp: at(base), Success: false, ErrorMessage: strptr("undefined reference to `foo`")},
		{Timestamp: at(base.Add(10 * time.Second)), Success: false, ErrorMessage: strptr("undefined reference to `foo`")},
		{Timestamp: at(base.Add(20 * time.Second)), Success: true},
	}

	e := NewExtractor(0)
	got := e.extractCompileFeatures(compiles)

	assert.InDelta(t, 5.0, got.redMetric, 1e-9)
	assert.InDelta(t, 0.5, got.repeatedErrorRatio, 1e-9)
	assert.InDelta(t, 2.0/3.0, got.compileErrorRate, 1e-9)
	// Both failures classify as undefined_reference, severity 0.6.
	assert.InDelta(t, 0.6, got.errorSeverity, 1e-9)
}

func TestRedMetricBounds(t *testing.T) {
	e := NewExtractor(0)

	fail := func(msg string, offset time.Duration) models.CompileEvent {
		return models.CompileEvent{Timestamp: at(base.Add(offset)), Success: false, ErrorMessage: strptr(msg)}
	}

	cases := [][]models.CompileEvent{
		nil,
		{fail("a", 0)},
		{fail("a", 0), fail("a", time.Second)},
		{fail("a", 0), fail("b", time.Second), fail("a", 2*time.Second)},
		{fail("a", 0), fail("a", time.Second), fail("a", 2*time.Second), fail("a", 3*time.Second)},
	}
	for _, compiles := range cases {
		got := e.extractCompileFeatures(compiles)
		require.GreaterOrEqual(t, got.redMetric, 0.0)
		require.LessOrEqual(t, got.redMetric, 10.0)
		require.InDelta(t, got.redMetric/10.0, got.repeatedErrorRatio, 1e-12)
	}
}

func TestWarningRate(t *testing.T) {
	compiles := []models.CompileEvent{
		{Timestamp: at(base), Success: true, WarningCount: 3},
		{Timestamp: at(base.Add(time.Minute)), Success: true, WarningCount: 1},
	}

	e := NewExtractor(0)
	got := e.extractCompileFeatures(compiles)

	assert.InDelta(t, 2.0, got.warningRate, 1e-9)
	assert.Equal(t, 0.0, got.compileErrorRate)
}

func TestBehavioralDefaults(t *testing.T) {
	e := NewExtractor(0)
	got := e.extractBehavioralFeatures(&models.SessionSnapshot{
		Keystrokes: keystrokesEvery(4, time.Second),
	})
	assert.Equal(t, behavioralFeatures{}, got)
}

func TestFocusSwitchesAndIdleRatio(t *testing.T) {
	// Four quick keystrokes, a 40s gap, two more, another 50s gap, two more.
	offsets := []time.Duration{0, 1 * time.Second, 2 * time.Second, 3 * time.Second,
		43 * time.Second, 44 * time.Second,
		94 * time.Second, 95 * time.Second}
	keystrokes := make([]models.KeystrokeEvent, len(offsets))
	for i, off := range offsets {
		keystrokes[i] = models.KeystrokeEvent{Timestamp: at(base.Add(off))}
	}

	e := NewExtractor(0)
	got := e.extractBehavioralFeatures(&models.SessionSnapshot{Keystrokes: keystrokes})

	assert.Equal(t, 2.0, got.focusSwitches)
	// 90s idle out of a 95s session.
	assert.InDelta(t, 90.0/95.0, got.idleRatio, 1e-9)
}

func TestRecoveryTime(t *testing.T) {
	session := &models.SessionSnapshot{
		Keystrokes: keystrokesEvery(5, time.Second),
		Compiles: []models.CompileEvent{
			{Timestamp: at(base), Success: false, ErrorMessage: strptr("syntax error")},
			{Timestamp: at(base.Add(20 * time.Second)), Success: true},
			// A second failure whose recovery exceeds the 300s cap.
			{Timestamp: at(base.Add(30 * time.Second)), Success: false, ErrorMessage: strptr("syntax error")},
			{Timestamp: at(base.Add(400 * time.Second)), Success: true},
		},
	}

	e := NewExtractor(0)
	got := e.extractBehavioralFeatures(session)

	// Only the 20s recovery counts; reported in minutes.
	assert.InDelta(t, 20.0/60.0, got.recoveryTime, 1e-9)
}

func TestVectorRoundTrip(t *testing.T) {
	m := map[string]float64{
		FeatureTypingSpeed:       1.2,
		FeatureKeystrokeRate:     0.4,
		FeatureBackspaceRate:     0.1,
		FeatureCompileError:      0.5,
		FeatureRedMetric:         5.0,
		FeatureFocusSwitches:     2.0,
		FeatureIdleToActiveRatio: 0.3,
		FeatureUndoRedoAttempt:   0.0,
	}

	require.Equal(t, m, VectorToMap(MapToVector(m)))
}

func TestMapToVectorMissingDefaultsToZero(t *testing.T) {
	vector := MapToVector(map[string]float64{FeatureRedMetric: 7.0})
	require.Len(t, vector, 8)
	assert.Equal(t, 7.0, vector[4])
	for i, v := range vector {
		if i != 4 {
			assert.Equal(t, 0.0, v)
		}
	}
}

func TestRollingWindowBounded(t *testing.T) {
	e := NewExtractor(100)

	session := &models.SessionSnapshot{
		Keystrokes: keystrokesEvery(150, 100*time.Millisecond),
	}
	for i := 0; i < 20; i++ {
		session.Compiles = append(session.Compiles, models.CompileEvent{
			Timestamp: at(base.Add(time.Duration(i) * time.Second)),
			Success:   true,
		})
	}

	e.ExtractAll(session)
	keystrokes, compiles := e.WindowCounts()
	assert.Equal(t, 100, keystrokes)
	assert.Equal(t, 10, compiles)

	e.ExtractAll(session)
	keystrokes, compiles = e.WindowCounts()
	assert.Equal(t, 100, keystrokes)
	assert.Equal(t, 10, compiles)
}

func TestWindowDoesNotAffectFeatures(t *testing.T) {
	// The rolling window is session memory only: an extractor with
	// history must produce the same features as a fresh one, given the
	// same snapshot and baseline.
	snapshot := &models.SessionSnapshot{Keystrokes: keystrokesEvery(30, 150*time.Millisecond)}
	other := &models.SessionSnapshot{Keystrokes: keystrokesEvery(80, 90*time.Millisecond)}

	warm := NewExtractor(0)
	warm.ExtractAll(other)
	fresh := NewExtractor(0)

	require.Equal(t, fresh.ExtractAll(snapshot), warm.ExtractAll(snapshot))
}
