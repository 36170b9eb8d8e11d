package models

import (
	"fmt"
	"time"
)

// Timestamp accepts the ISO-8601 variants the IDE plugin emits:
// with or without timezone offset and fractional seconds.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid timestamp: %s", data)
	}
	raw := string(data[1 : len(data)-1])

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}

type KeystrokeEvent struct {
	Timestamp   Timestamp `json:"timestamp"`
	IsBackspace bool      `json:"is_backspace"`
}

type CompileEvent struct {
	Timestamp    Timestamp `json:"timestamp"`
	Success      bool      `json:"success"`
	WarningCount int       `json:"warning_count"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}

// SessionSnapshot is the window of telemetry supplied on each analyze
// request. Keystrokes and compiles are ordered chronologically.
type SessionSnapshot struct {
	SessionStart Timestamp        `json:"session_start"`
	LastActivity Timestamp        `json:"last_activity"`
	Keystrokes   []KeystrokeEvent `json:"keystrokes"`
	Compiles     []CompileEvent   `json:"compiles"`
}

type PredictionResult struct {
	ID                string             `json:"id"`
	Level             string             `json:"level"`
	Confidence        float64            `json:"confidence"`
	Probabilities     map[string]float64 `json:"probabilities"`
	Features          map[string]float64 `json:"features"`
	TriggeredFeatures []string           `json:"triggered_features"`
	ShouldIntervene   bool               `json:"should_intervene"`
	Timestamp         Timestamp          `json:"timestamp"`
}

type BaselineSnapshot struct {
	TypingSpeed       float64 `json:"typing_speed"`
	BackspaceRate     float64 `json:"backspace_rate"`
	KeystrokeVariance float64 `json:"keystroke_variance"`
	Samples           int64   `json:"samples"`
}

type DetectorStats struct {
	TotalAnalyses      int64            `json:"total_analyses"`
	TotalInterventions int64            `json:"total_interventions"`
	LevelCounts        map[string]int64 `json:"level_counts"`
	Baseline           BaselineSnapshot `json:"baseline"`
	CooldownSeconds    int              `json:"cooldown_seconds"`
	CoolingDown        bool             `json:"cooling_down"`
	LastIntervention   *Timestamp       `json:"last_intervention,omitempty"`
}

type ModelInfo struct {
	ModelType         string             `json:"model_type"`
	Classes           []string           `json:"classes"`
	NumFeatures       int                `json:"n_features"`
	Metadata          map[string]any     `json:"metadata,omitempty"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
}

// Request is the envelope received on /api/v1/request; fields beyond
// Type are populated depending on the request type.
type Request struct {
	Type      string           `json:"type"`
	ModelDir  string           `json:"model_dir,omitempty"`
	Session   *SessionSnapshot `json:"session,omitempty"`
	ErrorType string           `json:"error_type,omitempty"`
}

type Response struct {
	Status     string            `json:"status"`
	Message    string            `json:"message,omitempty"`
	Prediction *PredictionResult `json:"prediction,omitempty"`
	Hint       string            `json:"hint,omitempty"`
	ModelInfo  *ModelInfo        `json:"model_info,omitempty"`
	Stats      *DetectorStats    `json:"stats,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)
