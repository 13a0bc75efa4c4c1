package order

import (
	"context"
	"time"

	"gate-mm-go/infrastructure/eventlog"
	"gate-mm-go/infrastructure/monitor"
	"gate-mm-go/ledger"
	"gate-mm-go/strategy"
)

// ReconcilerConfig 对账参数，运行期间不可变。
type ReconcilerConfig struct {
	Symbol            string
	Quantity          float64 // 单边开仓挂单数量
	PositionThreshold float64 // 超过该仓位后停止该方向开仓
	TakeProfitSpacing float64 // 止盈挂单间距（比例）
}

// Reconciler 把目标报价收敛到网关的挂单集合。
//
// 每个 tick 按方向独立执行撤单重挂（cancel-then-place）：牺牲一些网关调用
// 换取"每方向至多一张开仓单 + 一张止盈单"的简单不变式。单步失败只记录，
// 剩余步骤继续；下一个周期的撤挂循环就是重试机制。
type Reconciler struct {
	gw   Gateway
	book *Book
	feed *eventlog.Feed
	mon  *monitor.Monitor
	cfg  ReconcilerConfig
}

// NewReconciler 创建对账器；mon 可为 nil。
func NewReconciler(gw Gateway, book *Book, feed *eventlog.Feed, mon *monitor.Monitor, cfg ReconcilerConfig) *Reconciler {
	return &Reconciler{gw: gw, book: book, feed: feed, mon: mon, cfg: cfg}
}

// Reconcile 执行一轮收敛：先处理买侧，再卖侧，最后止盈单。
func (r *Reconciler) Reconcile(ctx context.Context, quote strategy.Quote, st ledger.State, price float64) {
	r.reconcileSide(ctx, Buy, quote.Bid, st.Long)
	r.reconcileSide(ctx, Sell, quote.Ask, st.Short)
	r.placeTakeProfits(ctx, st, price)
}

// reconcileSide 处理单边：仓位超限只撤不挂，否则撤后重挂一张开仓单。
func (r *Reconciler) reconcileSide(ctx context.Context, side Side, target, position float64) {
	r.cancelSide(ctx, side)

	if position > r.cfg.PositionThreshold {
		r.feed.EmitThrottled("threshold-"+string(side), eventlog.Warning,
			"%s position %.0f over threshold %.0f, opening %s suppressed",
			side, position, r.cfg.PositionThreshold, side)
		return
	}
	r.place(ctx, side, target, r.cfg.Quantity, false)
}

// placeTakeProfits 为现有仓位重挂全额止盈单。
// 每轮都重挂（包括部分成交后的剩余单）：在"每方向至多一张止盈单"
// 的不变式下可接受，代价是额外的订单流转。
func (r *Reconciler) placeTakeProfits(ctx context.Context, st ledger.State, price float64) {
	if st.Long > 0 {
		r.place(ctx, Sell, price*(1+r.cfg.TakeProfitSpacing), st.Long, true)
	}
	if st.Short > 0 {
		r.place(ctx, Buy, price*(1-r.cfg.TakeProfitSpacing), st.Short, true)
	}
}

func (r *Reconciler) cancelSide(ctx context.Context, side Side) {
	if err := r.gw.CancelAll(ctx, r.cfg.Symbol, side); err != nil {
		r.feed.Errorf("cancel %s orders failed: %v", side, err)
		return
	}
	r.book.RemoveBySide(side)
	if r.mon != nil {
		r.mon.OrdersCanceled.Inc()
	}
}

func (r *Reconciler) place(ctx context.Context, side Side, price, size float64, reduceOnly bool) {
	if size <= 0 {
		return
	}
	id, err := r.gw.PlaceOrder(ctx, r.cfg.Symbol, side, price, size, reduceOnly)
	if err != nil {
		if r.mon != nil {
			r.mon.OrdersRejected.Inc()
		}
		r.feed.Errorf("place %s %.4f@%.4f (reduceOnly=%v) failed: %v", side, size, price, reduceOnly, err)
		return
	}
	if ctx.Err() != nil {
		// run 已结束，迟到的确认只记录不入缓存。
		r.feed.Infof("late confirmation for %s discarded", id)
		return
	}
	r.book.Set(OpenOrder{
		ID:         id,
		Price:      price,
		Remaining:  size,
		Side:       side,
		ReduceOnly: reduceOnly,
		UpdatedAt:  time.Now(),
	})
	if r.mon != nil {
		r.mon.OrdersPlaced.Inc()
	}
	r.feed.Infof("placed %s %.4f@%.4f reduceOnly=%v", side, size, price, reduceOnly)
}
