// Package session 把行情、账本、报价与对账串成一条事件驱动的流水线。
//
// 所有状态变更都发生在行情事件的处理函数里；推送客户端保证同一连接的
// 回调顺序执行，因此账本与挂单缓存无需额外同步。对账走独立 goroutine，
// 同一节流窗口内不会有第二轮进入（跳过而非排队）。
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"gate-mm-go/config"
	"gate-mm-go/gateway"
	"gate-mm-go/infrastructure/eventlog"
	"gate-mm-go/infrastructure/logger"
	"gate-mm-go/infrastructure/monitor"
	"gate-mm-go/ledger"
	"gate-mm-go/market"
	"gate-mm-go/order"
	"gate-mm-go/risk"
	"gate-mm-go/sim"
	"gate-mm-go/strategy"
)

// State 会话状态。
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "RUNNING"
	}
	return "IDLE"
}

// ThrottleWindow 两次对账之间的最小间隔。
const ThrottleWindow = 10 * time.Second

// RestartCooldown 盈利目标触发后自动重启的冷却时间，
// 同时为上一轮的撤单/平仓留出完成窗口。
const RestartCooldown = 10 * time.Second

// MarketFeed 行情来源；实盘为 gateway.WSFeed，测试/回放可注入。
type MarketFeed interface {
	Run(ctx context.Context, h gateway.Handler) error
}

// Components 会话依赖组件。
type Components struct {
	Ledger  *ledger.Ledger
	Book    *order.Book
	Gateway order.Gateway
	Sim     *sim.Engine // 模拟模式撮合引擎，实盘为 nil
	Feed    MarketFeed
	Events  *eventlog.Feed
	Logger  *logger.Logger
	Monitor *monitor.Monitor // 可为 nil
	History *market.History
	Clock   risk.Clock
}

// Session 单交易对策略会话，独占自己的行情订阅、账本与挂单缓存。
type Session struct {
	log    *logger.Logger
	events *eventlog.Feed
	mon    *monitor.Monitor

	ledgr   *ledger.Ledger
	book    *order.Book
	gw      order.Gateway
	simEng  *sim.Engine
	feed    MarketFeed
	history *market.History
	clock   risk.Clock

	throttle time.Duration
	cooldown time.Duration

	mu            sync.Mutex
	state         State
	epoch         int64 // 每次启动递增；旧 run 的迟到回报按此丢弃
	cfg           config.StrategyConfig
	staged        *config.StrategyConfig
	params        strategy.Params
	reconciler    *order.Reconciler
	guardian      *risk.Guardian
	lastQuote     strategy.Quote
	lastPrice     float64
	lastReconcile time.Time
	reconciling   bool
	restartTimer  *time.Timer
	runCtx        context.Context
	runCancel     context.CancelFunc
}

// New 创建会话；配置非法返回错误，会话停留在 IDLE。
func New(cfg config.AppConfig, deps Components) (*Session, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if deps.Ledger == nil || deps.Book == nil || deps.Gateway == nil || deps.Feed == nil {
		return nil, errors.New("session components incomplete")
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = risk.RealClock
	}
	if deps.History == nil {
		deps.History = market.NewHistory(100)
	}

	s := &Session{
		log:      deps.Logger,
		events:   deps.Events,
		mon:      deps.Monitor,
		ledgr:    deps.Ledger,
		book:     deps.Book,
		gw:       deps.Gateway,
		simEng:   deps.Sim,
		feed:     deps.Feed,
		history:  deps.History,
		clock:    deps.Clock,
		throttle: ThrottleWindow,
		cooldown: RestartCooldown,
		state:    Idle,
	}
	s.applyConfig(cfg.Strategy)
	return s, nil
}

// applyConfig 绑定一次运行的策略配置；调用方持锁或在构造期。
func (s *Session) applyConfig(sc config.StrategyConfig) {
	s.cfg = sc
	s.params = sc.Params()
	s.reconciler = order.NewReconciler(s.gw, s.book, s.events, s.mon, order.ReconcilerConfig{
		Symbol:            sc.Symbol(),
		Quantity:          sc.Quantity,
		PositionThreshold: sc.PositionThreshold,
		TakeProfitSpacing: sc.TakeProfitSpacing,
	})
	s.guardian = &risk.Guardian{
		Enabled:     sc.ProfitTarget.Enabled,
		Target:      sc.ProfitTarget.TargetUSDT,
		AutoRestart: sc.ProfitTarget.AutoRestart,
		Source:      s.ledgr,
	}
}

// Stage 暂存新配置；正在运行的会话不受影响，下次 Start 生效。
func (s *Session) Stage(sc config.StrategyConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = &sc
}

// Start 启动会话：记录盈亏基线并打开行情订阅。IDLE→RUNNING。
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return errors.New("session already running")
	}
	s.cancelRestartLocked()
	if s.staged != nil {
		s.applyConfig(*s.staged)
		s.staged = nil
	}
	s.state = Running
	s.epoch++
	s.lastReconcile = time.Time{} // 首个 tick 立即对账
	s.guardian.Arm()

	ctx, cancel := context.WithCancel(context.Background())
	s.runCtx = ctx
	s.runCancel = cancel
	cfg := s.cfg
	s.mu.Unlock()

	if s.mon != nil {
		s.mon.SessionState.Set(1)
	}
	mode := "live"
	if cfg.Simulation {
		mode = "simulation"
	}
	s.events.Successf("strategy started: %s [%s] %s", cfg.Kind, mode, cfg.Symbol())
	if cfg.ProfitTarget.Enabled {
		s.events.Infof("profit target %.2f USDT, autoRestart=%v",
			cfg.ProfitTarget.TargetUSDT, cfg.ProfitTarget.AutoRestart)
	}

	go func() {
		if err := s.feed.Run(ctx, s); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("market feed terminated", zap.Error(err))
		}
	}()
	return nil
}

// Stop 显式停止：关闭行情订阅并撤销待触发的重启。RUNNING→IDLE。
// 进行中的网关调用允许完成，但其结果对已停止的 run 只记录不生效。
func (s *Session) Stop() {
	s.mu.Lock()
	s.cancelRestartLocked()
	if s.state == Idle {
		s.mu.Unlock()
		return
	}
	s.stopRunLocked()
	s.mu.Unlock()
	s.events.Warnf("strategy stopped")
}

// stopRunLocked 关闭当前 run；调用方持锁。
func (s *Session) stopRunLocked() {
	s.state = Idle
	s.guardian.Disarm()
	if s.runCancel != nil {
		s.runCancel()
		s.runCancel = nil
		s.runCtx = nil
	}
	s.book.RemoveBySide("")
	if s.mon != nil {
		s.mon.SessionState.Set(0)
	}
}

// cancelRestartLocked 无条件、幂等地取消待触发的自动重启。
func (s *Session) cancelRestartLocked() {
	if s.restartTimer != nil {
		s.restartTimer.Stop()
		s.restartTimer = nil
	}
}

// State 当前状态。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
