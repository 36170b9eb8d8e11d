package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"anxiety-service/internal/detector"
	"anxiety-service/internal/models"
)

func (s *Server) respond(w http.ResponseWriter, status int, resp *models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func errorResponse(format string, args ...any) *models.Response {
	return &models.Response{
		Status:  models.StatusError,
		Message: fmt.Sprintf(format, args...),
	}
}

// requestHandler decodes the typed request envelope and dispatches on
// its type. Malformed payloads (bad JSON, unparseable timestamps) are
// rejected before any detector state is touched.
func (s *Server) requestHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respond(w, http.StatusBadRequest, errorResponse("invalid request: %v", err))
		requestsTotal.WithLabelValues("invalid", models.StatusError).Inc()
		return
	}

	resp := s.dispatch(&req)
	s.respond(w, http.StatusOK, resp)

	requestsTotal.WithLabelValues(req.Type, resp.Status).Inc()
	requestDuration.WithLabelValues(req.Type).Observe(time.Since(start).Seconds())
}

func (s *Server) dispatch(req *models.Request) *models.Response {
	switch req.Type {
	case "initialize":
		if req.ModelDir == "" {
			return errorResponse("model_dir is required")
		}
		if err := s.Initialize(req.ModelDir); err != nil {
			s.logger.Error("initialization failed",
				zap.String("model_dir", req.ModelDir),
				zap.Error(err),
			)
			return errorResponse("Initialization failed: %v", err)
		}
		return &models.Response{Status: models.StatusOK, Message: "Detector initialized"}

	case "analyze":
		_, det := s.current()
		if det == nil {
			return errorResponse("Detector not initialized")
		}
		session := req.Session
		if session == nil {
			session = &models.SessionSnapshot{}
		}

		prediction, err := det.Analyze(session)
		if err != nil {
			s.logger.Error("analysis failed", zap.Error(err))
			return errorResponse("%v", err)
		}

		predictionsTotal.WithLabelValues(prediction.Level).Inc()
		if prediction.ShouldIntervene {
			interventionsTotal.Inc()
		}
		baselineSamples.Set(float64(det.Stats().Baseline.Samples))

		if s.cache != nil {
			if err := s.cache.StorePrediction(prediction); err != nil {
				s.logger.Warn("failed to cache prediction", zap.Error(err))
			}
		}
		return &models.Response{Status: models.StatusOK, Prediction: prediction}

	case "get_hint":
		if _, det := s.current(); det == nil {
			return errorResponse("Detector not initialized")
		}
		return &models.Response{Status: models.StatusOK, Hint: detector.HintFor(req.ErrorType)}

	case "model_info":
		loader, _ := s.current()
		if loader == nil {
			return errorResponse("Detector not initialized")
		}
		return &models.Response{Status: models.StatusOK, ModelInfo: loader.Info()}

	case "stats":
		_, det := s.current()
		if det == nil {
			return errorResponse("Detector not initialized")
		}
		return &models.Response{Status: models.StatusOK, Stats: det.Stats()}

	case "shutdown":
		s.shutdownOnce.Do(func() { close(s.shutdownCh) })
		return &models.Response{Status: models.StatusOK, Message: "Shutting down"}

	default:
		return errorResponse("Unknown request type: %s", req.Type)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	_, det := s.current()
	health := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     "1.0.0",
		"initialized": det != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)

	requestDuration.WithLabelValues("health").Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues("health", models.StatusOK).Inc()
}

func (s *Server) recentPredictionsHandler(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		s.respond(w, http.StatusServiceUnavailable, errorResponse("prediction cache not configured"))
		return
	}

	count := int64(10)
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			s.respond(w, http.StatusBadRequest, errorResponse("invalid count: %q", raw))
			return
		}
		count = parsed
	}

	predictions, err := s.cache.GetRecentPredictions(count)
	if err != nil {
		s.logger.Error("failed to read recent predictions", zap.Error(err))
		s.respond(w, http.StatusInternalServerError, errorResponse("failed to read recent predictions"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(predictions)
}
