package market

import (
	"sync"
	"time"
)

// Tick represents a market data sample.
type Tick struct {
	LastPrice float64
	BestBid   float64
	BestAsk   float64
	Ts        time.Time
}

// Point 图表时间序列的一个采样点。
type Point struct {
	Time    time.Time
	Price   float64
	Bid     float64 // 当前目标买价
	Ask     float64 // 当前目标卖价
	Reserve float64 // 保留价
}

// History 保留最近 capacity 个采样点的环形缓冲，最旧的先淘汰。
type History struct {
	mu     sync.RWMutex
	points []Point
	cap    int
}

// NewHistory 创建历史缓冲；capacity <= 0 时默认 100。
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 100
	}
	return &History{cap: capacity}
}

// Append 追加采样点，超出容量时淘汰最旧的。
func (h *History) Append(p Point) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = append(h.points, p)
	if len(h.points) > h.cap {
		h.points = h.points[len(h.points)-h.cap:]
	}
}

// Points 返回采样点拷贝，按时间升序。
func (h *History) Points() []Point {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Point, len(h.points))
	copy(out, h.points)
	return out
}

// Len 当前采样点数。
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.points)
}
