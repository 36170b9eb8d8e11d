package features

import (
	"sort"

	"anxiety-service/internal/models"
)

const (
	minIntervalMs   = 10.0
	maxIntervalMs   = 5000.0
	pauseIntervalMs = 2000.0
)

type typingFeatures struct {
	typingSpeed       float64
	keystrokeVariance float64
	backspaceRate     float64
	burstSpeed        float64
	pauseFrequency    float64
}

// degenerateTyping is returned when there are too few keystrokes or no
// usable inter-keystroke intervals.
var degenerateTyping = typingFeatures{
	typingSpeed:       1.0,
	keystrokeVariance: 0.5,
}

func (e *Extractor) extractTypingFeatures(keystrokes []models.KeystrokeEvent) typingFeatures {
	if len(keystrokes) < 10 {
		return degenerateTyping
	}

	// Inter-keystroke intervals in milliseconds; intervals outside
	// (10ms, 5000ms) are noise or session gaps and are discarded.
	var intervals []float64
	for i := 1; i < len(keystrokes); i++ {
		interval := keystrokes[i].Timestamp.Sub(keystrokes[i-1].Timestamp.Time).Seconds() * 1000
		if interval > minIntervalMs && interval < maxIntervalMs {
			intervals = append(intervals, interval)
		}
	}
	if len(intervals) == 0 {
		return degenerateTyping
	}

	totalTime := keystrokes[len(keystrokes)-1].Timestamp.Sub(keystrokes[0].Timestamp.Time).Seconds()
	var wpm float64
	if totalTime > 0 {
		charsPerSec := float64(len(keystrokes)) / totalTime
		wpm = charsPerSec * 12 // 5 chars per word
	}
	typingSpeed := 1.0
	if e.baseline.TypingSpeed > 0 {
		typingSpeed = wpm / e.baseline.TypingSpeed
	}

	// Coefficient of variation of the intervals.
	meanInterval := mean(intervals)
	variance := 0.5
	if meanInterval > 0 {
		variance = stddev(intervals, meanInterval) / meanInterval
	}

	backspaces := 0
	for _, ks := range keystrokes {
		if ks.IsBackspace {
			backspaces++
		}
	}
	backspaceRate := float64(backspaces) / float64(len(keystrokes))

	// Burst speed: chars/sec over the fastest 10% of intervals.
	sorted := append([]float64(nil), intervals...)
	sort.Float64s(sorted)
	burstCount := int(float64(len(sorted)) * 0.1)
	burstIntervals := sorted[:burstCount]
	if burstCount == 0 {
		burstIntervals = []float64{meanInterval}
	}
	burstSpeed := 1000 / mean(burstIntervals)

	pauses := 0
	for _, interval := range intervals {
		if interval > pauseIntervalMs {
			pauses++
		}
	}
	pauseFreq := float64(pauses) / float64(len(intervals))

	return typingFeatures{
		typingSpeed:       typingSpeed,
		keystrokeVariance: variance,
		backspaceRate:     backspaceRate,
		burstSpeed:        burstSpeed / 10.0,
		pauseFrequency:    pauseFreq,
	}
}
