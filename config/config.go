package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gate-mm-go/infrastructure/logger"
	"gate-mm-go/strategy"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env         string         `yaml:"env"`
	MetricsAddr string         `yaml:"metricsAddr"`
	Logger      logger.Config  `yaml:"logger"`
	Gateway     GatewayConfig  `yaml:"gateway"`
	Strategy    StrategyConfig `yaml:"strategy"`
}

// GatewayConfig Gate.io 接入配置。
type GatewayConfig struct {
	APIKey    string `yaml:"apiKey"`
	APISecret string `yaml:"apiSecret"`
	BaseURL   string `yaml:"baseURL"` // 默认 https://api.gateio.ws
	WSURL     string `yaml:"wsURL"`   // 默认 wss://fx-ws.gateio.ws/v4/ws/usdt
}

// ProfitTargetConfig 盈利目标守护配置。
type ProfitTargetConfig struct {
	Enabled     bool    `yaml:"enabled"`
	TargetUSDT  float64 `yaml:"targetUSDT"`
	AutoRestart bool    `yaml:"autoRestart"`
}

// StrategyConfig 单次运行的策略配置；会话启动后不可变，
// 改动只能暂存，下次启动才生效。
type StrategyConfig struct {
	Kind              string  `yaml:"kind"` // GRID 或 AVELLANEDA
	Coin              string  `yaml:"coin"` // 如 XRP，合约为 <coin>_USDT
	Leverage          int     `yaml:"leverage"`
	Quantity          float64 `yaml:"quantity"`          // 单边挂单数量（张）
	PositionThreshold float64 `yaml:"positionThreshold"` // 仓位阈值
	Simulation        bool    `yaml:"simulation"`

	GridSpacing       float64 `yaml:"gridSpacing"`       // 0.006 = 0.6%
	TakeProfitSpacing float64 `yaml:"takeProfitSpacing"` // 0.004 = 0.4%

	// Avellaneda-Stoikov 参数
	Gamma       float64 `yaml:"gamma"`
	Eta         float64 `yaml:"eta"`
	Sigma       float64 `yaml:"sigma"`
	TimeHorizon float64 `yaml:"timeHorizon"`
	TakerFee    float64 `yaml:"takerFee"`

	ProfitTarget ProfitTargetConfig `yaml:"profitTarget"`
}

// Symbol 返回 Gate 合约名。
func (s StrategyConfig) Symbol() string {
	return s.Coin + "_USDT"
}

// Params 转换为报价模型参数。
func (s StrategyConfig) Params() strategy.Params {
	return strategy.Params{
		Kind:        strategy.Kind(s.Kind),
		GridSpacing: s.GridSpacing,
		Gamma:       s.Gamma,
		Eta:         s.Eta,
		Sigma:       s.Sigma,
		TimeHorizon: s.TimeHorizon,
	}
}

// Default returns a config mirroring the defaults of the trading panel.
func Default() AppConfig {
	return AppConfig{
		Env:         "dev",
		MetricsAddr: ":9090",
		Logger:      logger.DefaultConfig(),
		Gateway: GatewayConfig{
			BaseURL: "https://api.gateio.ws",
			WSURL:   "wss://fx-ws.gateio.ws/v4/ws/usdt",
		},
		Strategy: StrategyConfig{
			Kind:              string(strategy.Avellaneda),
			Coin:              "XRP",
			Leverage:          20,
			Quantity:          1,
			PositionThreshold: 500,
			Simulation:        true,
			GridSpacing:       0.006,
			TakeProfitSpacing: 0.004,
			Gamma:             1.0,
			Eta:               1.0,
			Sigma:             0.01,
			TimeHorizon:       1,
			TakerFee:          0.0005,
			ProfitTarget: ProfitTargetConfig{
				Enabled:     false,
				TargetUSDT:  100,
				AutoRestart: true,
			},
		},
	}
}

// Load reads YAML config from path and applies basic validation.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides credentials from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("GATE_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("GATE_API_SECRET"); v != "" {
		cfg.Gateway.APISecret = v
	}
	return cfg, Validate(cfg)
}
