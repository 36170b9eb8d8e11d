package features

import (
	"anxiety-service/internal/models"
)

const (
	focusGapSeconds    = 30.0
	maxRecoverySeconds = 300.0
)

type behavioralFeatures struct {
	focusSwitches     float64
	idleRatio         float64
	sessionDuration   float64
	activityIntensity float64
	recoveryTime      float64
}

func (e *Extractor) extractBehavioralFeatures(session *models.SessionSnapshot) behavioralFeatures {
	keystrokes := session.Keystrokes
	if len(keystrokes) < 5 {
		return behavioralFeatures{}
	}

	start := keystrokes[0].Timestamp.Time
	end := keystrokes[len(keystrokes)-1].Timestamp.Time
	duration := end.Sub(start).Minutes()

	// Gaps over 30s count as focus switches and accumulate idle time.
	focusSwitches := 0
	idleTime := 0.0
	last := start
	for _, ks := range keystrokes[1:] {
		gap := ks.Timestamp.Sub(last).Seconds()
		if gap > focusGapSeconds {
			focusSwitches++
			idleTime += gap
		}
		last = ks.Timestamp.Time
	}

	idleRatio := 0.0
	intensity := 0.0
	if duration > 0 {
		idleRatio = idleTime / (duration * 60)
		intensity = float64(len(keystrokes)) / duration
	}

	// Recovery time: failed compile to the next successful one, counting
	// only recoveries under five minutes.
	var recoveries []float64
	compiles := session.Compiles
	for i := 0; i < len(compiles)-1; i++ {
		if compiles[i].Success {
			continue
		}
		for j := i + 1; j < len(compiles); j++ {
			if compiles[j].Success {
				recovery := compiles[j].Timestamp.Sub(compiles[i].Timestamp.Time).Seconds()
				if recovery < maxRecoverySeconds {
					recoveries = append(recoveries, recovery)
				}
				break
			}
		}
	}
	avgRecovery := 0.0
	if len(recoveries) > 0 {
		avgRecovery = mean(recoveries)
	}

	return behavioralFeatures{
		focusSwitches:     float64(focusSwitches),
		idleRatio:         idleRatio,
		sessionDuration:   duration,
		activityIntensity: intensity / 100.0,
		recoveryTime:      avgRecovery / 60.0,
	}
}
