package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
env: test
strategy:
  kind: AVELLANEDA
  coin: XRP
  quantity: 1
  positionThreshold: 500
  simulation: true
  gridSpacing: 0.006
  takeProfitSpacing: 0.004
  gamma: 1.0
  eta: 1.0
  sigma: 0.01
  timeHorizon: 1
`

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Strategy.Symbol() != "XRP_USDT" {
		t.Fatalf("expected XRP_USDT, got %s", cfg.Strategy.Symbol())
	}
	if cfg.Gateway.BaseURL != "https://api.gateio.ws" {
		t.Fatalf("expected default base url, got %s", cfg.Gateway.BaseURL)
	}
}

func TestValidateRejectsZeroGamma(t *testing.T) {
	cfg := Default()
	cfg.Strategy.Gamma = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected gamma validation error")
	}
}

func TestValidateRejectsZeroEta(t *testing.T) {
	cfg := Default()
	cfg.Strategy.Eta = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected eta validation error")
	}
}

func TestValidateLiveModeNeedsCredentials(t *testing.T) {
	cfg := Default()
	cfg.Strategy.Simulation = false
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected credential error in live mode")
	}
	cfg.Gateway.APIKey = "k"
	cfg.Gateway.APISecret = "s"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error with credentials: %v", err)
	}
}

func TestValidateProfitTarget(t *testing.T) {
	cfg := Default()
	cfg.Strategy.ProfitTarget.Enabled = true
	cfg.Strategy.ProfitTarget.TargetUSDT = 0
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected profit target validation error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GATE_API_KEY", "env-key")
	t.Setenv("GATE_API_SECRET", "env-secret")
	cfg, err := LoadWithEnvOverrides(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Gateway.APIKey != "env-key" || cfg.Gateway.APISecret != "env-secret" {
		t.Fatalf("env overrides not applied: %+v", cfg.Gateway)
	}
}

func TestGridKindSkipsAvellanedaParams(t *testing.T) {
	cfg := Default()
	cfg.Strategy.Kind = "GRID"
	cfg.Strategy.Gamma = 0
	cfg.Strategy.Eta = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("grid must not require avellaneda params: %v", err)
	}
}
