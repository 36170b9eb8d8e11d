package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDebounce coalesces the burst of filesystem events produced when
// model artifacts are rewritten.
const reloadDebounce = 500 * time.Millisecond

// runModelWatcher reloads the model when artifacts in the active model
// directory change. A failed reload fails closed: the detector is
// disabled until a subsequent reload succeeds.
func (s *Server) runModelWatcher(ctx context.Context) {
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".json" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, s.reloadModel)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("model watcher error", zap.Error(err))
		}
	}
}

func (s *Server) reloadModel() {
	s.mu.Lock()
	dir := s.modelDir
	s.mu.Unlock()
	if dir == "" {
		return
	}

	s.logger.Info("model directory changed, reloading", zap.String("model_dir", dir))
	if err := s.Initialize(dir); err != nil {
		s.logger.Error("model reload failed, detector disabled until a successful reload",
			zap.String("model_dir", dir),
			zap.Error(err),
		)
		s.mu.Lock()
		s.loader = nil
		s.detector = nil
		s.mu.Unlock()
	}
}
