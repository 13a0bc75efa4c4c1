// Package sim 实现纸面交易用的简化撮合引擎。
//
// 只用最新成交价触发：buy 在 price <= 挂单价时成交，sell 在 price >= 挂单价
// 时成交，整单一次性成交（无部分成交、无盘口深度建模）。这是对真实交易所
// 撮合的刻意简化。
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gate-mm-go/ledger"
	"gate-mm-go/order"
)

// Order 模拟挂单。
type Order struct {
	ID         string
	Price      float64
	Size       float64
	Side       order.Side
	ReduceOnly bool
	CreatedAt  time.Time
}

// Fill 一次模拟成交。
type Fill struct {
	Order   Order
	Price   float64
	Clamped bool // reduceOnly 成交被钳制（仓位不足）
}

// Engine 维护模拟挂单并对价格 tick 撮合；同时实现 order.Gateway。
type Engine struct {
	mu      sync.Mutex
	ledger  *ledger.Ledger
	resting []Order
	seq     int64
}

// NewEngine 创建撮合引擎，成交直接写入 ledger。
func NewEngine(l *ledger.Ledger) *Engine {
	return &Engine{ledger: l}
}

// PlaceOrder 登记模拟挂单。
func (e *Engine) PlaceOrder(_ context.Context, _ string, side order.Side, price, size float64, reduceOnly bool) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("invalid size: %f", size)
	}
	if price <= 0 {
		return "", fmt.Errorf("invalid price: %f", price)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	o := Order{
		ID:         fmt.Sprintf("sim-%d", e.seq),
		Price:      price,
		Size:       size,
		Side:       side,
		ReduceOnly: reduceOnly,
		CreatedAt:  time.Now(),
	}
	e.resting = append(e.resting, o)
	return o.ID, nil
}

// CancelOrder 按 ID 移除挂单。
func (e *Engine) CancelOrder(_ context.Context, _ string, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, o := range e.resting {
		if o.ID == id {
			e.resting = append(e.resting[:i], e.resting[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("unknown sim order %s", id)
}

// CancelAll 撤掉指定方向的挂单；side 为空则全撤。
func (e *Engine) CancelAll(_ context.Context, _ string, side order.Side) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if side == "" {
		e.resting = nil
		return nil
	}
	kept := e.resting[:0]
	for _, o := range e.resting {
		if o.Side != side {
			kept = append(kept, o)
		}
	}
	e.resting = kept
	return nil
}

// Tick 用最新价对全部挂单做一次撮合，成交写入 ledger 并整单移除。
// 单次遍历：本轮新产生的状态不会再次触发成交。
func (e *Engine) Tick(price float64) []Fill {
	e.mu.Lock()
	defer e.mu.Unlock()

	var fills []Fill
	kept := e.resting[:0]
	for _, o := range e.resting {
		crossed := (o.Side == order.Buy && price <= o.Price) ||
			(o.Side == order.Sell && price >= o.Price)
		if !crossed {
			kept = append(kept, o)
			continue
		}
		clamped := e.ledger.ApplyFill(o.Side, o.Size, o.Price, o.ReduceOnly)
		fills = append(fills, Fill{Order: o, Price: o.Price, Clamped: clamped})
	}
	e.resting = kept

	e.ledger.MarkPrice(price)
	return fills
}

// Resting 返回当前挂单的拷贝（测试与展示用）。
func (e *Engine) Resting() []Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Order, len(e.resting))
	copy(out, e.resting)
	return out
}
