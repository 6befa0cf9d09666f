package config

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestManagerLoadMissingFilesFallsBackToDefaults(t *testing.T) {
	m := NewManager(nil)
	defer m.Close()

	require.NoError(t, m.Load(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Equal(t, DefaultConfig(), m.Config())
}

func TestManagerLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `
environment: production
logging:
  level: debug
analysis:
  lookback_days: 126
  market_proxy_symbol: QQQ
`)

	m := NewManager(nil)
	defer m.Close()
	require.NoError(t, m.Load(path))

	cfg := m.Config()
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 126, cfg.Analysis.LookbackDays)
	assert.Equal(t, "QQQ", cfg.Analysis.MarketProxySymbol)

	// untouched keys come from the defaults
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.InDelta(t, 0.03, cfg.Analysis.RiskFreeRateAnnual, 1e-12)
	assert.Equal(t, []string{"SPY", "TLT", "GLD", "DXY"}, cfg.Analysis.FactorSymbols)
}

func TestManagerLoadMergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	override := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(base, []byte("environment: staging\nanalysis:\n  lookback_days: 100\n"), 0o644))
	require.NoError(t, os.WriteFile(override, []byte("analysis:\n  lookback_days: 126\n"), 0o644))

	m := NewManager(nil)
	defer m.Close()
	require.NoError(t, m.Load(base, override))

	cfg := m.Config()
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 126, cfg.Analysis.LookbackDays)
}

func TestManagerLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), "environment: bogus\n")

	m := NewManager(nil)
	defer m.Close()
	assert.Error(t, m.Load(path))
}

func TestManagerEnvOverrides(t *testing.T) {
	t.Setenv("RISKCORE_ENVIRONMENT", "staging")
	t.Setenv("RISKCORE_LOGGING_LEVEL", "warn")
	t.Setenv("RISKCORE_ANALYSIS_LOOKBACK_DAYS", "126")
	t.Setenv("RISKCORE_ANALYSIS_FACTOR_SYMBOLS", "SPY,QQQ,IWM")

	m := NewManager(nil)
	defer m.Close()
	require.NoError(t, m.Load(filepath.Join(t.TempDir(), "absent.yaml")))

	cfg := m.Config()
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 126, cfg.Analysis.LookbackDays)
	assert.Equal(t, []string{"SPY", "QQQ", "IWM"}, cfg.Analysis.FactorSymbols)
}

func TestManagerEnvWinsOverFile(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), "analysis:\n  lookback_days: 100\n")
	t.Setenv("RISKCORE_ANALYSIS_LOOKBACK_DAYS", "189")

	m := NewManager(nil)
	defer m.Close()
	require.NoError(t, m.Load(path))

	assert.Equal(t, 189, m.Config().Analysis.LookbackDays)
}

func TestManagerReloadAppliesChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "analysis:\n  lookback_days: 126\n")

	m := NewManager(nil)
	defer m.Close()
	require.NoError(t, m.Load(path))
	require.Equal(t, 126, m.Config().Analysis.LookbackDays)

	var mu sync.Mutex
	var sawOld, sawNew int
	m.OnReload(func(old, updated *Config) error {
		mu.Lock()
		defer mu.Unlock()
		sawOld = old.Analysis.LookbackDays
		sawNew = updated.Analysis.LookbackDays
		return nil
	})

	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  lookback_days: 189\n"), 0o644))
	require.NoError(t, m.reload())

	assert.Equal(t, 189, m.Config().Analysis.LookbackDays)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 126, sawOld)
	assert.Equal(t, 189, sawNew)
}

func TestManagerReloadKeepsEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "analysis:\n  lookback_days: 126\n")
	t.Setenv("RISKCORE_ANALYSIS_FACTOR_SYMBOLS", "SPY,QQQ,IWM")
	t.Setenv("RISKCORE_LOGGING_LEVEL", "warn")

	m := NewManager(nil)
	defer m.Close()
	require.NoError(t, m.Load(path))
	require.Equal(t, []string{"SPY", "QQQ", "IWM"}, m.Config().Analysis.FactorSymbols)

	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  lookback_days: 189\n"), 0o644))
	require.NoError(t, m.reload())

	// env precedence survives the reload alongside the file change
	cfg := m.Config()
	assert.Equal(t, 189, cfg.Analysis.LookbackDays)
	assert.Equal(t, []string{"SPY", "QQQ", "IWM"}, cfg.Analysis.FactorSymbols)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestManagerReloadEnvWinsOverChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "analysis:\n  lookback_days: 126\n")
	t.Setenv("RISKCORE_ANALYSIS_LOOKBACK_DAYS", "189")

	m := NewManager(nil)
	defer m.Close()
	require.NoError(t, m.Load(path))
	require.Equal(t, 189, m.Config().Analysis.LookbackDays)

	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  lookback_days: 100\n"), 0o644))
	require.NoError(t, m.reload())

	assert.Equal(t, 189, m.Config().Analysis.LookbackDays)
}

func TestManagerReloadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "analysis:\n  lookback_days: 126\n")

	m := NewManager(nil)
	defer m.Close()
	require.NoError(t, m.Load(path))

	require.NoError(t, os.WriteFile(path, []byte("environment: bogus\n"), 0o644))
	assert.Error(t, m.reload())

	// the previous snapshot stays in place
	assert.Equal(t, 126, m.Config().Analysis.LookbackDays)
	assert.Equal(t, "development", m.Config().Environment)
}

func TestManagerReloadCallbackCanVeto(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "analysis:\n  lookback_days: 126\n")

	m := NewManager(nil)
	defer m.Close()
	require.NoError(t, m.Load(path))

	m.OnReload(func(old, updated *Config) error {
		return errors.New("not during trading hours")
	})

	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  lookback_days: 189\n"), 0o644))
	assert.Error(t, m.reload())
	assert.Equal(t, 126, m.Config().Analysis.LookbackDays)
}
