package features

import (
	"anxiety-service/internal/models"
)

// severityMap scores classified error categories; unmapped categories
// score 0.5.
var severityMap = map[string]float64{
	"segmentation_fault":  1.0,
	"memory_leak":         0.9,
	"null_pointer":        0.8,
	"buffer_overflow":     0.8,
	"undefined_reference": 0.6,
	"syntax_error":        0.5,
	"type_mismatch":       0.4,
	"undeclared":          0.3,
	"warning":             0.1,
}

const defaultSeverity = 0.5

type compileFeatures struct {
	compileErrorRate   float64
	redMetric          float64
	warningRate        float64
	errorSeverity      float64
	repeatedErrorRatio float64
}

func (e *Extractor) extractCompileFeatures(compiles []models.CompileEvent) compileFeatures {
	if len(compiles) == 0 {
		return compileFeatures{}
	}

	total := float64(len(compiles))
	failed := 0
	totalWarnings := 0
	var patterns []string
	var severities []float64

	for _, c := range compiles {
		totalWarnings += c.WarningCount
		if c.Success {
			continue
		}
		failed++
		if c.ErrorMessage != nil {
			patterns = append(patterns, NormalizeErrorMessage(*c.ErrorMessage))

			category := ClassifyError(*c.ErrorMessage)
			severity, ok := severityMap[category]
			if !ok {
				severity = defaultSeverity
			}
			severities = append(severities, severity)
		}
	}

	// RED metric: adjacent equal normalized error strings, scaled to
	// 0-10. Needs at least two error patterns to be meaningful.
	redMetric := 0.0
	if len(patterns) > 1 {
		repeats := 0
		for i := 1; i < len(patterns); i++ {
			if patterns[i] == patterns[i-1] {
				repeats++
			}
		}
		redMetric = float64(repeats) / float64(len(patterns)) * 10
	}

	errorSeverity := 0.0
	if len(severities) > 0 {
		errorSeverity = mean(severities)
	}

	return compileFeatures{
		compileErrorRate:   float64(failed) / total,
		redMetric:          redMetric,
		warningRate:        float64(totalWarnings) / total,
		errorSeverity:      errorSeverity,
		repeatedErrorRatio: redMetric / 10.0,
	}
}
