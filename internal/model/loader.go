// Package model loads the trained anxiety classifier from a model
// directory and exposes it through a narrow predict contract. The
// artifact layout is a versioned external contract: model.json,
// scaler.json and label_encoder.json are required; feature_names.json
// and model_metadata.json are optional. Loading fails closed — any
// missing or inconsistent required artifact aborts initialization.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"anxiety-service/internal/features"
)

// ErrModelNotLoaded is returned when predict is invoked before a
// successful Load.
var ErrModelNotLoaded = errors.New("model not loaded")

// ShapeMismatchError reports a feature vector whose width disagrees with
// the scaler the model was trained with.
type ShapeMismatchError struct {
	Got  int
	Want int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("feature shape mismatch: got %d features, model expects %d", e.Got, e.Want)
}

const (
	modelFile        = "model.json"
	scalerFile       = "scaler.json"
	labelEncoderFile = "label_encoder.json"
	featureNamesFile = "feature_names.json"
	metadataFile     = "model_metadata.json"
)

type modelArtifact struct {
	ModelType    string      `json:"model_type"`
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
}

type scalerArtifact struct {
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`
	NFeatures int       `json:"n_features"`
}

type labelEncoderArtifact struct {
	Classes []string `json:"classes"`
}

// Loader owns the deserialized model artifacts. It implements the
// detector's Oracle contract.
type Loader struct {
	dir          string
	model        modelArtifact
	scaler       scalerArtifact
	classes      []string
	featureNames []string
	metadata     map[string]any
	loaded       bool
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads and verifies all artifacts. On any error the loader stays
// unloaded and predictions keep failing with ErrModelNotLoaded.
func (l *Loader) Load() error {
	l.loaded = false

	if err := l.readJSON(modelFile, &l.model, true); err != nil {
		return err
	}

	var encoder labelEncoderArtifact
	if err := l.readJSON(labelEncoderFile, &encoder, true); err != nil {
		return err
	}
	l.classes = encoder.Classes

	if err := l.readJSON(scalerFile, &l.scaler, true); err != nil {
		return err
	}

	l.featureNames = nil
	if err := l.readJSON(featureNamesFile, &l.featureNames, false); err != nil {
		return err
	}
	if len(l.featureNames) == 0 {
		l.featureNames = features.FeatureNames()
	}

	l.metadata = nil
	if err := l.readJSON(metadataFile, &l.metadata, false); err != nil {
		return err
	}

	if err := l.verify(); err != nil {
		return fmt.Errorf("model verification failed: %w", err)
	}

	l.loaded = true
	return nil
}

// readJSON decodes one artifact file. Optional artifacts may be absent,
// but if present they must parse.
func (l *Loader) readJSON(name string, out any, required bool) error {
	path := filepath.Join(l.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

func (l *Loader) verify() error {
	if len(l.classes) == 0 {
		return errors.New("label encoder has no classes")
	}
	if l.scaler.NFeatures <= 0 {
		return errors.New("scaler reports no features")
	}
	if len(l.scaler.Mean) != l.scaler.NFeatures || len(l.scaler.Scale) != l.scaler.NFeatures {
		return fmt.Errorf("scaler mean/scale length %d/%d, expected %d",
			len(l.scaler.Mean), len(l.scaler.Scale), l.scaler.NFeatures)
	}
	for i, s := range l.scaler.Scale {
		if s == 0 {
			return fmt.Errorf("scaler scale[%d] is zero", i)
		}
	}
	if len(l.model.Coefficients) != len(l.classes) {
		return fmt.Errorf("model has %d coefficient rows for %d classes",
			len(l.model.Coefficients), len(l.classes))
	}
	if len(l.model.Intercepts) != len(l.classes) {
		return fmt.Errorf("model has %d intercepts for %d classes",
			len(l.model.Intercepts), len(l.classes))
	}
	for i, row := range l.model.Coefficients {
		if len(row) != l.scaler.NFeatures {
			return fmt.Errorf("coefficient row %d has %d features, expected %d",
				i, len(row), l.scaler.NFeatures)
		}
	}
	if len(l.featureNames) != l.scaler.NFeatures {
		return fmt.Errorf("%d feature names for %d model features",
			len(l.featureNames), l.scaler.NFeatures)
	}
	return nil
}

// Loaded reports whether a model is ready to predict.
func (l *Loader) Loaded() bool {
	return l.loaded
}

// Dir returns the model directory the loader reads from.
func (l *Loader) Dir() string {
	return l.dir
}

// Predict scores a canonical-order feature vector and returns the
// predicted class, the confidence (max class probability), and the full
// per-class distribution.
func (l *Loader) Predict(vector []float64) (string, float64, map[string]float64, error) {
	if !l.loaded {
		return "", 0, nil, ErrModelNotLoaded
	}
	if len(vector) != l.scaler.NFeatures {
		return "", 0, nil, &ShapeMismatchError{Got: len(vector), Want: l.scaler.NFeatures}
	}

	scaled := make([]float64, len(vector))
	for i, v := range vector {
		scaled[i] = (v - l.scaler.Mean[i]) / l.scaler.Scale[i]
	}

	scores := make([]float64, len(l.classes))
	for c, row := range l.model.Coefficients {
		score := l.model.Intercepts[c]
		for i, w := range row {
			score += w * scaled[i]
		}
		scores[c] = score
	}

	probs := softmax(scores)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	probMap := make(map[string]float64, len(l.classes))
	for i, class := range l.classes {
		probMap[class] = probs[i]
	}
	return l.classes[best], probs[best], probMap, nil
}

// PredictFromFeatures reorders a feature map by the model's feature
// names (missing names default to 0) and predicts.
func (l *Loader) PredictFromFeatures(featureMap map[string]float64) (string, float64, map[string]float64, error) {
	if !l.loaded {
		return "", 0, nil, ErrModelNotLoaded
	}
	vector := make([]float64, len(l.featureNames))
	for i, name := range l.featureNames {
		vector[i] = featureMap[name]
	}
	return l.Predict(vector)
}

// FeatureImportance derives per-feature importance from the mean
// absolute coefficient across classes.
func (l *Loader) FeatureImportance() map[string]float64 {
	if !l.loaded {
		return nil
	}
	importance := make(map[string]float64, len(l.featureNames))
	for i, name := range l.featureNames {
		var sum float64
		for _, row := range l.model.Coefficients {
			sum += math.Abs(row[i])
		}
		importance[name] = sum / float64(len(l.model.Coefficients))
	}
	return importance
}

func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	exps := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		exps[i] = math.Exp(s - max)
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}
