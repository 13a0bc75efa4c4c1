package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gate-mm-go/infrastructure/logger"
	"gate-mm-go/infrastructure/monitor"
)

// Handler 接收行情/账户推送。回调在同一个读循环里顺序执行，
// 实现方无需加锁即可安全修改自身状态。
type Handler interface {
	OnTick(last, bid, ask float64)
	OnOrders([]OrderUpdate)
	OnPositions([]PositionUpdate)
	OnBalances([]BalanceUpdate)
}

// FeedConfig 推送连接配置。
type FeedConfig struct {
	URL       string // wss://fx-ws.gateio.ws/v4/ws/usdt
	Symbol    string // 合约名，如 XRP_USDT
	APIKey    string
	APISecret string
	Private   bool // 订阅私有频道（实盘）
}

// WSFeed Gate.io 行情推送客户端。读循环断开后自动重连，
// 单条消息解析失败只丢弃该条，连接保持。
type WSFeed struct {
	cfg    FeedConfig
	dialer *websocket.Dialer
	log    *logger.Logger
	mon    *monitor.Monitor
	now    func() time.Time
}

// NewWSFeed 创建推送客户端；mon 可为 nil。
func NewWSFeed(cfg FeedConfig, log *logger.Logger, mon *monitor.Monitor) *WSFeed {
	return &WSFeed{
		cfg:    cfg,
		dialer: websocket.DefaultDialer,
		log:    log,
		mon:    mon,
		now:    time.Now,
	}
}

// Run 维持连接直到 ctx 取消。连接断开按指数退避重连，上限 30 秒。
func (f *WSFeed) Run(ctx context.Context, h Handler) error {
	backoff := time.Second
	for {
		err := f.runOnce(ctx, h)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.log.Warn("feed disconnected, reconnecting",
			zap.Error(err), zap.Duration("backoff", backoff))
		if f.mon != nil {
			f.mon.FeedReconnects.Inc()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

type subscribeMsg struct {
	Time    int64    `json:"time"`
	Channel string   `json:"channel"`
	Event   string   `json:"event"`
	Payload []string `json:"payload"`
	Auth    *WSAuth  `json:"auth,omitempty"`
}

func (f *WSFeed) runOnce(ctx context.Context, h Handler) error {
	conn, _, err := f.dialer.DialContext(ctx, f.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// ctx 取消时关闭连接让读循环退出。
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	if err := f.subscribe(conn); err != nil {
		return err
	}
	f.log.Info("feed connected", zap.String("symbol", f.cfg.Symbol))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		f.dispatch(raw, h)
	}
}

func (f *WSFeed) subscribe(conn *websocket.Conn) error {
	now := f.now()
	t := now.Unix()

	send := func(channel string, payload []string, signed bool) error {
		msg := subscribeMsg{Time: t, Channel: channel, Event: "subscribe", Payload: payload}
		if signed {
			auth := SignWSChannel(f.cfg.APIKey, f.cfg.APISecret, channel, now)
			msg.Auth = &auth
		}
		return conn.WriteJSON(msg)
	}

	if err := send("futures.tickers", []string{f.cfg.Symbol}, false); err != nil {
		return err
	}
	if !f.cfg.Private {
		return nil
	}
	if err := send("futures.orders", []string{f.cfg.Symbol}, true); err != nil {
		return err
	}
	if err := send("futures.positions", []string{f.cfg.Symbol}, true); err != nil {
		return err
	}
	return send("futures.balances", []string{"USDT"}, true)
}

// dispatch 解析并分发一条消息；解析失败只记录，连接不受影响。
func (f *WSFeed) dispatch(raw []byte, h Handler) {
	var msg wsMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		f.discard(err)
		return
	}
	if msg.Event != "update" || len(msg.Result) == 0 {
		return
	}

	switch msg.Channel {
	case "futures.tickers":
		last, bid, ask, ok, err := ParseTicker(msg)
		if err != nil {
			f.discard(err)
			return
		}
		if ok {
			h.OnTick(last, bid, ask)
		}
	case "futures.orders":
		updates, err := ParseOrders(msg)
		if err != nil {
			f.discard(err)
			return
		}
		h.OnOrders(updates)
	case "futures.positions":
		updates, err := ParsePositions(msg)
		if err != nil {
			f.discard(err)
			return
		}
		h.OnPositions(updates)
	case "futures.balances":
		updates, err := ParseBalances(msg)
		if err != nil {
			f.discard(err)
			return
		}
		h.OnBalances(updates)
	}
}

func (f *WSFeed) discard(err error) {
	f.log.Warn("malformed feed message discarded", zap.Error(err))
	if f.mon != nil {
		f.mon.FeedErrors.Inc()
	}
}
