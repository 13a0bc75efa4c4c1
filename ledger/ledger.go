package ledger

import "sync"

// Side 订单方向。定义在账本层，订单层以别名复用。
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Opposite 返回对手方向。
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Ledger 维护多空仓位与盈亏。进程启动后不重置。
type Ledger struct {
	mu         sync.RWMutex
	long       float64
	short      float64
	longCost   float64 // 多头加权平均开仓价
	shortCost  float64 // 空头加权平均开仓价
	realized   float64
	unrealized float64
	balance    float64
}

// State 某一时刻的账本快照（值拷贝，tick 处理与展示共用）。
type State struct {
	Long       float64
	Short      float64
	Net        float64
	Realized   float64
	Unrealized float64
	Balance    float64
}

// ApplyFill 按成交调整仓位。reduceOnly 成交只减仓，减到零为止；
// 返回实际平掉的数量是否小于请求数量（被钳制）。
func (l *Ledger) ApplyFill(side Side, size, price float64, reduceOnly bool) (clamped bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !reduceOnly {
		switch side {
		case Buy:
			total := l.longCost*l.long + price*size
			l.long += size
			l.longCost = total / l.long
		case Sell:
			total := l.shortCost*l.short + price*size
			l.short += size
			l.shortCost = total / l.short
		}
		return false
	}

	// 减仓：buy 平空，sell 平多。
	switch side {
	case Buy:
		closed := size
		if closed > l.short {
			closed = l.short
			clamped = true
		}
		l.realized += (l.shortCost - price) * closed
		l.short -= closed
		if l.short == 0 {
			l.shortCost = 0
		}
	case Sell:
		closed := size
		if closed > l.long {
			closed = l.long
			clamped = true
		}
		l.realized += (price - l.longCost) * closed
		l.long -= closed
		if l.long == 0 {
			l.longCost = 0
		}
	}
	return clamped
}

// ApplySnapshot 用交易所仓位回报覆盖本地计数（实盘模式，回报永远优先）。
func (l *Ledger) ApplySnapshot(long, short, unrealized float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.long = long
	l.short = short
	l.unrealized = unrealized
}

// MarkPrice 按最新价重估浮动盈亏（模拟模式下本地计算）。
func (l *Ledger) MarkPrice(price float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unrealized = (price-l.longCost)*l.long + (l.shortCost-price)*l.short
}

// SetBalance 更新账户余额（futures.balances 回报）。
func (l *Ledger) SetBalance(balance float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = balance
}

// NetInventory 净库存 = 多头 − 空头。
func (l *Ledger) NetInventory() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.long - l.short
}

// TotalPnL 已实现 + 浮动盈亏。
func (l *Ledger) TotalPnL() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.realized + l.unrealized
}

// Snapshot 返回当前状态的值拷贝。
func (l *Ledger) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return State{
		Long:       l.long,
		Short:      l.short,
		Net:        l.long - l.short,
		Realized:   l.realized,
		Unrealized: l.unrealized,
		Balance:    l.balance,
	}
}
