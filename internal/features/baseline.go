package features

// Baseline is the exponentially smoothed estimate of the user's normal
// typing behavior. Feature extraction divides by the baseline as it stood
// before the current request; Update must only run after extraction.
type Baseline struct {
	TypingSpeed       float64 // WPM-equivalent
	BackspaceRate     float64
	KeystrokeVariance float64
	Samples           int64
}

func NewBaseline() *Baseline {
	return &Baseline{
		TypingSpeed:       40.0,
		BackspaceRate:     0.15,
		KeystrokeVariance: 0.3,
	}
}

// Update folds a new feature reading into the baseline with an
// exponential moving average. TYPING_SPEED is a baseline-normalized
// ratio, so it is multiplied back by 40 WPM before smoothing.
func (b *Baseline) Update(features map[string]float64, weight float64) {
	b.TypingSpeed = (1-weight)*b.TypingSpeed + weight*getOr(features, FeatureTypingSpeed, 1.0)*40
	b.BackspaceRate = (1-weight)*b.BackspaceRate + weight*getOr(features, FeatureBackspaceRate, 0.15)
	b.KeystrokeVariance = (1-weight)*b.KeystrokeVariance + weight*getOr(features, FeatureKeystrokeRate, 0.3)
	b.Samples++
}
