package model

import (
	"anxiety-service/internal/models"
)

// Info summarizes the loaded model for the model_info request; nil when
// nothing is loaded.
func (l *Loader) Info() *models.ModelInfo {
	if !l.loaded {
		return nil
	}
	return &models.ModelInfo{
		ModelType:         l.model.ModelType,
		Classes:           append([]string(nil), l.classes...),
		NumFeatures:       l.scaler.NFeatures,
		Metadata:          l.metadata,
		FeatureImportance: l.FeatureImportance(),
	}
}
