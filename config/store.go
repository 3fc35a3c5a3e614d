package config

import (
	"fmt"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EngineStore holds the current engine configuration snapshot. Readers call Current and keep
// the returned pointer for the duration of one computation.
type EngineStore struct {
	current atomic.Pointer[EngineConfig]
	path    string
	logger  *zap.Logger
}

// NewEngineStore seeds a store with cfg. A nil cfg uses the built-in defaults.
func NewEngineStore(cfg *EngineConfig, logger *zap.Logger) *EngineStore {
	if cfg == nil {
		cfg = DefaultEngineConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &EngineStore{logger: logger}
	s.current.Store(cfg)
	return s
}

// OpenEngineStore loads the YAML file at path. A missing or invalid file is an error.
func OpenEngineStore(path string, logger *zap.Logger) (*EngineStore, error) {
	cfg, err := LoadEngineConfigFile(path)
	if err != nil {
		return nil, err
	}
	s := NewEngineStore(cfg, logger)
	s.path = path
	return s, nil
}

// Current returns the active snapshot.
func (s *EngineStore) Current() *EngineConfig {
	return s.current.Load()
}

// Swap validates cfg and makes it the active snapshot.
func (s *EngineStore) Swap(cfg *EngineConfig) error {
	if cfg == nil {
		return fmt.Errorf("engine config: nil snapshot")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.current.Store(cfg)
	return nil
}

// Reload re-reads the backing file. The previous snapshot stays active on error.
func (s *EngineStore) Reload() error {
	if s.path == "" {
		return fmt.Errorf("engine config: store has no backing file")
	}
	cfg, err := LoadEngineConfigFile(s.path)
	if err != nil {
		return err
	}
	s.current.Store(cfg)
	s.logger.Info("Engine configuration reloaded",
		zap.String("path", s.path),
		zap.String("version", cfg.Version))
	return nil
}

// Watch reloads the snapshot whenever the backing file changes.
func (s *EngineStore) Watch() {
	if s.path == "" {
		return
	}
	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		s.logger.Warn("Engine config watch disabled", zap.String("path", s.path), zap.Error(err))
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := s.Reload(); err != nil {
			s.logger.Error("Engine config reload failed, keeping previous version",
				zap.String("event", e.String()),
				zap.String("version", s.Current().Version),
				zap.Error(err))
		}
	})
	v.WatchConfig()
}
