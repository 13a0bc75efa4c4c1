package risk

import "sync"

// PnLSource 提供当前累计盈亏。
type PnLSource interface {
	TotalPnL() float64
}

// Guardian 监控自策略启动以来的盈利，达到目标后由会话触发清仓。
// 每个 tick 都检查，不受报价节流影响。
type Guardian struct {
	Enabled     bool
	Target      float64 // 盈利目标（USDT）
	AutoRestart bool
	Source      PnLSource

	mu       sync.Mutex
	baseline float64
	armed    bool
}

// Arm 在会话启动时记录盈亏基线。
func (g *Guardian) Arm() {
	if g == nil || g.Source == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.baseline = g.Source.TotalPnL()
	g.armed = true
}

// Disarm 会话停止后不再触发。
func (g *Guardian) Disarm() {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = false
}

// Profit 自基线以来的盈利。
func (g *Guardian) Profit() float64 {
	if g == nil || g.Source == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Source.TotalPnL() - g.baseline
}

// Check 返回是否达到盈利目标；未启用或未武装时恒为 false。
func (g *Guardian) Check() (triggered bool, profit float64) {
	if g == nil || !g.Enabled || g.Source == nil {
		return false, 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.armed {
		return false, 0
	}
	profit = g.Source.TotalPnL() - g.baseline
	return profit >= g.Target, profit
}

// Baseline 当前基线（展示用）。
func (g *Guardian) Baseline() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.baseline
}
