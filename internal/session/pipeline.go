package session

import (
	"context"
	"time"

	"gate-mm-go/gateway"
	"gate-mm-go/infrastructure/eventlog"
	"gate-mm-go/ledger"
	"gate-mm-go/market"
	"gate-mm-go/order"
	"gate-mm-go/strategy"
)

// OnTick 处理一个行情样本：账本更新 → 节流对账 → 守护检查。
// 守护检查不节流，目标达成必须在下一个样本内反应。
func (s *Session) OnTick(last, bid, ask float64) {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return
	}
	epoch := s.epoch
	s.lastPrice = last
	quote := s.lastQuote
	guardian := s.guardian
	s.mu.Unlock()

	if s.mon != nil {
		s.mon.TicksTotal.Inc()
		s.mon.LastPrice.Set(last)
	}

	// 1. 账本更新：模拟模式先过撮合引擎。
	if s.simEng != nil {
		for _, fill := range s.simEng.Tick(last) {
			o := fill.Order
			s.events.Successf("[sim] filled %s %.0f@%.4f reduceOnly=%v",
				o.Side, o.Size, fill.Price, o.ReduceOnly)
			if fill.Clamped {
				s.events.EmitThrottled("sim-clamp", eventlog.Warning,
					"reduce-only fill clamped at zero position")
			}
			if s.mon != nil {
				s.mon.FillsTotal.Inc()
			}
		}
	}
	s.publishLedger()

	// 2. 节流对账。
	now := s.clock.Now()
	s.mu.Lock()
	due := now.Sub(s.lastReconcile) >= s.throttle
	if due && !s.reconciling {
		s.lastReconcile = now
		s.reconciling = true
		s.mu.Unlock()
		go s.runReconcile(epoch, last)
	} else {
		s.mu.Unlock()
	}

	// 3. 图表历史：每个样本都记录当前目标价。
	s.history.Append(market.Point{
		Time:    now,
		Price:   last,
		Bid:     quote.Bid,
		Ask:     quote.Ask,
		Reserve: quote.Reserve,
	})

	// 4. 守护检查。
	if triggered, profit := guardian.Check(); triggered {
		s.onProfitTarget(epoch, last, profit)
	}
}

// runReconcile 单轮对账：计算报价并收敛挂单集合。独立 goroutine 执行，
// 网关延迟不阻塞后续行情样本。
func (s *Session) runReconcile(epoch int64, price float64) {
	defer func() {
		s.mu.Lock()
		s.reconciling = false
		s.mu.Unlock()
	}()

	s.mu.Lock()
	if s.state != Running || s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	params := s.params
	reconciler := s.reconciler
	ctx := s.runCtx
	s.mu.Unlock()

	quote, err := strategy.Compute(price, s.ledgr.NetInventory(), params)
	if err != nil {
		s.events.Errorf("quote computation failed: %v", err)
		return
	}
	if quote.Clamped {
		s.events.EmitThrottled("quote-clamp", eventlog.Warning,
			"computed quote clamped to minimum tick at price %.4f", price)
	}

	s.mu.Lock()
	s.lastQuote = quote
	s.mu.Unlock()

	if s.mon != nil {
		s.mon.TargetBid.Set(quote.Bid)
		s.mon.TargetAsk.Set(quote.Ask)
		s.mon.ReservePrice.Set(quote.Reserve)
		s.mon.ReconcilePasses.Inc()
	}

	reconciler.Reconcile(ctx, quote, s.ledgr.Snapshot(), price)
}

// onProfitTarget 盈利目标达成：全撤、平仓、停机，可选延迟重启。
func (s *Session) onProfitTarget(epoch int64, price, profit float64) {
	s.mu.Lock()
	if s.state != Running || s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	cfg := s.cfg
	s.stopRunLocked()
	s.mu.Unlock()

	s.events.Successf("profit target reached: +%.2f USDT (target %.2f)",
		profit, cfg.ProfitTarget.TargetUSDT)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.gw.CancelAll(ctx, cfg.Symbol(), ""); err != nil {
		s.events.Errorf("cancel all on liquidation failed: %v", err)
	}
	st := s.ledgr.Snapshot()
	if st.Long > 0 {
		s.closePosition(ctx, cfg.Symbol(), order.Sell, price, st.Long)
	}
	if st.Short > 0 {
		s.closePosition(ctx, cfg.Symbol(), order.Buy, price, st.Short)
	}
	s.events.Infof("liquidation orders issued, session idle")

	if cfg.ProfitTarget.AutoRestart {
		s.scheduleRestart(epoch)
	} else {
		s.events.Warnf("auto-restart disabled, manual start required")
	}
}

func (s *Session) closePosition(ctx context.Context, symbol string, side order.Side, price, size float64) {
	if _, err := s.gw.PlaceOrder(ctx, symbol, side, price, size, true); err != nil {
		s.events.Errorf("closing %s %.0f failed: %v", side, size, err)
		return
	}
	s.events.Infof("closing position: %s %.0f@%.4f reduceOnly=true", side, size, price)
}

// scheduleRestart 安排一次延迟重启；显式 Stop 会将其作废。
func (s *Session) scheduleRestart(epoch int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	s.events.Infof("auto-restart scheduled in %s", s.cooldown)
	s.restartTimer = time.AfterFunc(s.cooldown, func() {
		s.mu.Lock()
		// 冷却期内被手动停止或重新启动过则放弃。
		if s.restartTimer == nil || s.state != Idle || s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		s.restartTimer = nil
		s.mu.Unlock()
		if s.mon != nil {
			s.mon.Restarts.Inc()
		}
		s.events.Infof("auto-restarting strategy")
		if err := s.Start(); err != nil {
			s.events.Errorf("auto-restart failed: %v", err)
		}
	})
}

// publishLedger 把账本状态同步到监控指标。
func (s *Session) publishLedger() {
	if s.mon == nil {
		return
	}
	st := s.ledgr.Snapshot()
	s.mon.LongPosition.Set(st.Long)
	s.mon.ShortPosition.Set(st.Short)
	s.mon.NetInventory.Set(st.Net)
	s.mon.RealizedPnL.Set(st.Realized)
	s.mon.UnrealizedPnL.Set(st.Unrealized)
}

// OnOrders 交易所挂单回报修正本地缓存；已停止 run 的迟到回报丢弃。
func (s *Session) OnOrders(updates []gateway.OrderUpdate) {
	s.mu.Lock()
	running := s.state == Running
	s.mu.Unlock()
	if !running {
		s.events.Infof("discarding %d late order updates for stopped run", len(updates))
		return
	}
	for _, u := range updates {
		if u.Open {
			s.book.Set(order.OpenOrder{
				ID:         u.ID,
				Price:      u.Price,
				Remaining:  u.Remaining,
				Side:       u.Side,
				ReduceOnly: u.ReduceOnly,
				UpdatedAt:  s.clock.Now(),
			})
		} else {
			s.book.Remove(u.ID)
		}
	}
}

// OnPositions 交易所仓位回报覆盖本地账本（回报优先）。
func (s *Session) OnPositions(updates []gateway.PositionUpdate) {
	s.mu.Lock()
	symbol := s.cfg.Symbol()
	running := s.state == Running
	s.mu.Unlock()
	if !running {
		return
	}
	for _, u := range updates {
		if u.Contract != symbol {
			continue
		}
		s.ledgr.ApplySnapshot(u.Long, u.Short, u.Unrealized)
	}
	s.publishLedger()
}

// OnBalances 余额回报。
func (s *Session) OnBalances(updates []gateway.BalanceUpdate) {
	for _, u := range updates {
		if u.Currency == "USDT" {
			s.ledgr.SetBalance(u.Balance)
		}
	}
}

// Snapshot 面板展示用的会话快照。
type Snapshot struct {
	State  State
	Price  float64
	Quote  strategy.Quote
	Ledger ledger.State
	Profit float64
}

// Snapshot 返回当前会话快照。
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	state := s.state
	price := s.lastPrice
	quote := s.lastQuote
	guardian := s.guardian
	s.mu.Unlock()
	return Snapshot{
		State:  state,
		Price:  price,
		Quote:  quote,
		Ledger: s.ledgr.Snapshot(),
		Profit: guardian.Profit(),
	}
}
