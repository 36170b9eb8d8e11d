package detector

import (
	"anxiety-service/internal/features"
)

// Research-derived thresholds for the triggered-feature rules.
const (
	redMetricThreshold     = 2.5
	typingSpeedThreshold   = 0.65 // 35% drop from baseline
	backspaceRateThreshold = 0.3
	keystrokeRateThreshold = 0.5
	compileErrorThreshold  = 0.5
	focusSwitchThreshold   = 5.0
)

// TriggeredFeatures evaluates every threshold rule in fixed order; the
// rules are independent and more than one may fire. When none fire the
// result is exactly ["Normal Pattern"].
func TriggeredFeatures(f map[string]float64) []string {
	var triggered []string

	if get(f, features.FeatureRedMetric, 0) > redMetricThreshold {
		triggered = append(triggered, "Repeated Errors")
	}
	if get(f, features.FeatureTypingSpeed, 1) < typingSpeedThreshold {
		triggered = append(triggered, "Slow Typing")
	}
	if get(f, features.FeatureBackspaceRate, 0) > backspaceRateThreshold {
		triggered = append(triggered, "Excessive Corrections")
	}
	if get(f, features.FeatureKeystrokeRate, 0) > keystrokeRateThreshold {
		triggered = append(triggered, "Irregular Rhythm")
	}
	if get(f, features.FeatureCompileError, 0) > compileErrorThreshold {
		triggered = append(triggered, "Frequent Compilation Errors")
	}
	if get(f, features.FeatureFocusSwitches, 0) > focusSwitchThreshold {
		triggered = append(triggered, "Frequent Context Switching")
	}

	if len(triggered) == 0 {
		return []string{"Normal Pattern"}
	}
	return triggered
}

func get(m map[string]float64, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
