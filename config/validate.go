package config

import (
	"errors"
	"fmt"
)

// Validate ensures required fields are present. A failure here is fatal to
// starting a run; the session never leaves IDLE on an invalid config.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	s := cfg.Strategy
	if s.Coin == "" {
		return errors.New("strategy.coin is required")
	}
	if s.Quantity <= 0 {
		return fmt.Errorf("strategy.quantity must be > 0, got %f", s.Quantity)
	}
	if s.PositionThreshold < 0 {
		return fmt.Errorf("strategy.positionThreshold must be >= 0, got %f", s.PositionThreshold)
	}
	if s.TakeProfitSpacing <= 0 {
		return fmt.Errorf("strategy.takeProfitSpacing must be > 0, got %f", s.TakeProfitSpacing)
	}
	if s.TakerFee < 0 {
		return fmt.Errorf("strategy.takerFee must be >= 0, got %f", s.TakerFee)
	}
	if s.Leverage <= 0 {
		return fmt.Errorf("strategy.leverage must be > 0, got %d", s.Leverage)
	}
	// gamma/eta/sigma 校验委托给报价模型；为零会导致除零/对数域错误。
	if err := s.Params().Validate(); err != nil {
		return fmt.Errorf("strategy params: %w", err)
	}
	if s.ProfitTarget.Enabled && s.ProfitTarget.TargetUSDT <= 0 {
		return fmt.Errorf("strategy.profitTarget.targetUSDT must be > 0, got %f", s.ProfitTarget.TargetUSDT)
	}
	if !s.Simulation {
		if cfg.Gateway.APIKey == "" || cfg.Gateway.APISecret == "" {
			return errors.New("gateway.apiKey/apiSecret is required in live mode (or GATE_API_KEY/GATE_API_SECRET)")
		}
	}
	return nil
}
