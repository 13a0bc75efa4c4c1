package order

import "sync"

// Book 记录挂单缓存，支持查询。
// 只是本地最优视图：交易所回报随时可能修正它。
type Book struct {
	mu     sync.RWMutex
	orders map[string]OpenOrder
}

func NewBook() *Book {
	return &Book{orders: make(map[string]OpenOrder)}
}

// Set 登记或更新挂单。
func (b *Book) Set(o OpenOrder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[o.ID] = o
}

// Remove 移除挂单（成交/撤销确认后）。
func (b *Book) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.orders, id)
}

func (b *Book) Get(id string) (OpenOrder, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.orders[id]
	return o, ok
}

// List 返回全部挂单（拷贝）。
func (b *Book) List() []OpenOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	res := make([]OpenOrder, 0, len(b.orders))
	for _, o := range b.orders {
		res = append(res, o)
	}
	return res
}

// BySide 返回指定方向的挂单；side 为空则全部。
func (b *Book) BySide(side Side) []OpenOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	res := make([]OpenOrder, 0, len(b.orders))
	for _, o := range b.orders {
		if side == "" || o.Side == side {
			res = append(res, o)
		}
	}
	return res
}

// RemoveBySide 移除指定方向的挂单；side 为空则清空。
func (b *Book) RemoveBySide(side Side) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, o := range b.orders {
		if side == "" || o.Side == side {
			delete(b.orders, id)
		}
	}
}

// Len 当前挂单数。
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}
