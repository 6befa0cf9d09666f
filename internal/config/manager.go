package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// reloadDebounce coalesces rapid file events into one reload.
const reloadDebounce = 500 * time.Millisecond

// ReloadCallback is invoked after a successful hot-reload with the previous
// and the new configuration. Returning an error rejects the reload.
type ReloadCallback func(old, updated *Config) error

// Manager loads, validates and watches the application configuration.
type Manager struct {
	mu              sync.RWMutex
	viper           *viper.Viper
	config          *Config
	logger          *zap.Logger
	watcher         *fsnotify.Watcher
	watchPaths      []string
	reloadCallbacks []ReloadCallback
	ctx             context.Context
	cancel          context.CancelFunc
	lastReload      time.Time
}

// NewManager creates an unloaded Manager. Call Load before Config.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		viper:  viper.New(),
		logger: logger.Named("config"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Load reads the configuration from the given YAML files (later files
// override earlier ones), applies environment overrides, backfills defaults
// and validates the result. With no paths the default search locations are
// used; files that do not exist are skipped.
func (m *Manager) Load(configPaths ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setupViper()
	if err := m.mergeConfigFiles(configPaths...); err != nil {
		return err
	}
	m.applyEnvOverrides(m.viper)

	cfg, err := m.assemble()
	if err != nil {
		return err
	}

	if err := m.startWatcher(); err != nil {
		return err
	}

	m.config = cfg
	m.lastReload = time.Now()
	m.logger.Info("configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("market_proxy", cfg.Analysis.MarketProxySymbol),
		zap.Int("lookback_days", cfg.Analysis.LookbackDays))
	return nil
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// OnReload registers a callback to run after each successful hot-reload.
func (m *Manager) OnReload(cb ReloadCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloadCallbacks = append(m.reloadCallbacks, cb)
}

// Close stops the file watcher.
func (m *Manager) Close() error {
	m.cancel()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

func (m *Manager) setupViper() {
	m.viper.SetConfigType("yaml")
	m.viper.AutomaticEnv()
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.SetEnvPrefix("RISKCORE")
}

func (m *Manager) mergeConfigFiles(configPaths ...string) error {
	if len(configPaths) == 0 {
		configPaths = []string{
			"./config.yaml",
			"./configs/config.yaml",
			"/etc/riskcore/config.yaml",
		}
	}

	var loaded []string
	for _, path := range configPaths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			m.logger.Debug("config file not found, skipping", zap.String("path", path))
			continue
		}
		m.viper.SetConfigFile(path)
		if err := m.viper.MergeInConfig(); err != nil {
			return fmt.Errorf("config: load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	m.watchPaths = loaded

	if len(loaded) == 0 {
		m.logger.Warn("no configuration files found, using defaults and environment")
	} else {
		m.logger.Info("configuration files merged", zap.Strings("files", loaded))
	}
	return nil
}

// applyEnvOverrides maps the supported environment variables onto config
// keys so they win over file values. It runs against the given viper so the
// initial load and every hot-reload apply the same precedence.
func (m *Manager) applyEnvOverrides(v *viper.Viper) {
	envMappings := map[string]string{
		"RISKCORE_ENVIRONMENT":                  "environment",
		"RISKCORE_LOGGING_LEVEL":                "logging.level",
		"RISKCORE_LOGGING_FORMAT":               "logging.format",
		"RISKCORE_ANALYSIS_MARKET_PROXY_SYMBOL": "analysis.market_proxy_symbol",
		"RISKCORE_ANALYSIS_LOOKBACK_DAYS":       "analysis.lookback_days",
		"RISKCORE_ANALYSIS_RISK_FREE_RATE":      "analysis.risk_free_rate_annual",
		"RISKCORE_ANALYSIS_FACTOR_SYMBOLS":      "analysis.factor_symbols",
	}
	for envVar, key := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if key == "analysis.factor_symbols" {
				v.Set(key, strings.Split(value, ","))
				continue
			}
			v.Set(key, value)
		}
	}
}

// assemble unmarshals, backfills and validates a Config from the current
// viper state.
func (m *Manager) assemble() (*Config, error) {
	var cfg Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	setDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (m *Manager) startWatcher() error {
	if len(m.watchPaths) == 0 {
		m.logger.Info("no config files to watch, hot-reload disabled")
		return nil
	}
	if m.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	m.watcher = watcher

	for _, path := range m.watchPaths {
		if err := watcher.Add(path); err != nil {
			m.logger.Warn("cannot watch config file", zap.String("path", path), zap.Error(err))
		}
	}
	go m.watchForChanges()
	m.logger.Info("hot-reload watcher started", zap.Strings("paths", m.watchPaths))
	return nil
}

func (m *Manager) watchForChanges() {
	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-m.ctx.Done():
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				m.logger.Debug("config file changed",
					zap.String("file", event.Name),
					zap.String("operation", event.Op.String()))
				debounce.Reset(reloadDebounce)
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("config watcher error", zap.Error(err))

		case <-debounce.C:
			if err := m.reload(); err != nil {
				m.logger.Error("configuration reload failed", zap.Error(err))
			}
		}
	}
}

// reload re-reads the watched files into a fresh viper, runs the callbacks
// and swaps the snapshot in. Any failure leaves the previous configuration
// in place.
func (m *Manager) reload() error {
	m.mu.RLock()
	old := m.config
	paths := append([]string(nil), m.watchPaths...)
	callbacks := append([]ReloadCallback(nil), m.reloadCallbacks...)
	m.mu.RUnlock()

	fresh := viper.New()
	fresh.SetConfigType("yaml")
	fresh.AutomaticEnv()
	fresh.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	fresh.SetEnvPrefix("RISKCORE")
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		fresh.SetConfigFile(path)
		if err := fresh.MergeInConfig(); err != nil {
			return fmt.Errorf("config: reload %s: %w", path, err)
		}
	}
	m.applyEnvOverrides(fresh)

	var cfg Config
	if err := fresh.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("config: reload unmarshal: %w", err)
	}
	setDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: reload validation: %w", err)
	}

	for _, cb := range callbacks {
		if err := cb(old, &cfg); err != nil {
			return fmt.Errorf("config: reload callback: %w", err)
		}
	}

	m.mu.Lock()
	m.viper = fresh
	m.config = &cfg
	m.lastReload = time.Now()
	m.mu.Unlock()

	m.logger.Info("configuration reloaded", zap.Time("reloaded_at", m.lastReload))
	return nil
}
