package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gate-mm-go/order"
)

// wsMessage Gate 推送消息外层。
type wsMessage struct {
	Time    int64           `json:"time"`
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Result  json.RawMessage `json:"result"`
}

// TickerUpdate futures.tickers 更新。
type TickerUpdate struct {
	Contract string `json:"contract"`
	Last     string `json:"last"`
	BestBid  string `json:"b"`
	BestAsk  string `json:"a"`
}

// OrderUpdate futures.orders 更新（本地缓存修正用）。
type OrderUpdate struct {
	ID         string
	Price      float64
	Remaining  float64
	Side       order.Side
	ReduceOnly bool
	Open       bool
}

// PositionUpdate futures.positions 更新；size 有符号，正多负空。
type PositionUpdate struct {
	Contract   string
	Long       float64
	Short      float64
	Unrealized float64
}

// BalanceUpdate futures.balances 更新。
type BalanceUpdate struct {
	Currency string
	Balance  float64
}

type rawOrder struct {
	ID           json.Number `json:"id"`
	Price        string      `json:"price"`
	Left         json.Number `json:"left"`
	Size         json.Number `json:"size"`
	Status       string      `json:"status"`
	IsReduceOnly bool        `json:"is_reduce_only"`
}

type rawPosition struct {
	Contract      string      `json:"contract"`
	Size          json.Number `json:"size"`
	UnrealisedPnL string      `json:"unrealised_pnl"`
}

type rawBalance struct {
	Currency string      `json:"currency"`
	Balance  json.Number `json:"balance"`
}

// parseResultArray 兼容单对象与数组两种 result 形态。
func parseResultArray(raw json.RawMessage, out interface{}) error {
	if len(raw) > 0 && raw[0] == '[' {
		return json.Unmarshal(raw, out)
	}
	// 单对象包一层数组再解。
	wrapped := append([]byte{'['}, raw...)
	wrapped = append(wrapped, ']')
	return json.Unmarshal(wrapped, out)
}

// ParseTicker 从 futures.tickers 更新提取价格；非 update 事件返回 false。
func ParseTicker(msg wsMessage) (last, bid, ask float64, ok bool, err error) {
	var tickers []TickerUpdate
	if err = parseResultArray(msg.Result, &tickers); err != nil {
		return 0, 0, 0, false, fmt.Errorf("parse tickers: %w", err)
	}
	if len(tickers) == 0 {
		return 0, 0, 0, false, nil
	}
	t := tickers[0]
	last, err = strconv.ParseFloat(t.Last, 64)
	if err != nil {
		return 0, 0, 0, false, fmt.Errorf("parse last %q: %w", t.Last, err)
	}
	// 最优买卖价缺失不致命。
	bid, _ = strconv.ParseFloat(t.BestBid, 64)
	ask, _ = strconv.ParseFloat(t.BestAsk, 64)
	return last, bid, ask, true, nil
}

// ParseOrders 解析 futures.orders 更新。
func ParseOrders(msg wsMessage) ([]OrderUpdate, error) {
	var raws []rawOrder
	if err := parseResultArray(msg.Result, &raws); err != nil {
		return nil, fmt.Errorf("parse orders: %w", err)
	}
	updates := make([]OrderUpdate, 0, len(raws))
	for _, r := range raws {
		price, _ := strconv.ParseFloat(r.Price, 64)
		left, _ := r.Left.Float64()
		size, _ := r.Size.Float64()
		side := order.Buy
		if size < 0 {
			side = order.Sell
		}
		updates = append(updates, OrderUpdate{
			ID:         r.ID.String(),
			Price:      price,
			Remaining:  left,
			Side:       side,
			ReduceOnly: r.IsReduceOnly,
			Open:       r.Status == "open",
		})
	}
	return updates, nil
}

// ParsePositions 解析 futures.positions 更新。
func ParsePositions(msg wsMessage) ([]PositionUpdate, error) {
	var raws []rawPosition
	if err := parseResultArray(msg.Result, &raws); err != nil {
		return nil, fmt.Errorf("parse positions: %w", err)
	}
	updates := make([]PositionUpdate, 0, len(raws))
	for _, r := range raws {
		size, _ := r.Size.Float64()
		unrealized, _ := strconv.ParseFloat(r.UnrealisedPnL, 64)
		u := PositionUpdate{Contract: r.Contract, Unrealized: unrealized}
		if size > 0 {
			u.Long = size
		} else {
			u.Short = -size
		}
		updates = append(updates, u)
	}
	return updates, nil
}

// ParseBalances 解析 futures.balances 更新。
func ParseBalances(msg wsMessage) ([]BalanceUpdate, error) {
	var raws []rawBalance
	if err := parseResultArray(msg.Result, &raws); err != nil {
		return nil, fmt.Errorf("parse balances: %w", err)
	}
	updates := make([]BalanceUpdate, 0, len(raws))
	for _, r := range raws {
		bal, _ := r.Balance.Float64()
		updates = append(updates, BalanceUpdate{Currency: r.Currency, Balance: bal})
	}
	return updates, nil
}
