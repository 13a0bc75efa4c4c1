package order

import (
	"time"

	"gate-mm-go/ledger"
)

// Side 订单方向，与账本层共用同一类型。
type Side = ledger.Side

const (
	Buy  = ledger.Buy
	Sell = ledger.Sell
)

// OpenOrder 本地维护的挂单视图（实盘模式）。
// 该缓存是最终一致的：交易所回报才是权威状态。
type OpenOrder struct {
	ID         string
	Price      float64
	Remaining  float64
	Side       Side
	ReduceOnly bool
	UpdatedAt  time.Time
}
