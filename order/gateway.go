package order

import "context"

// Gateway 下单/撤单抽象；实盘由 gateway.RESTClient 实现，模拟由 sim.Engine 实现。
// 调用方把每次调用当作 fire-and-forget：失败只记录，不中断 tick 流水线。
type Gateway interface {
	// PlaceOrder 挂限价单，成功返回订单 ID。
	PlaceOrder(ctx context.Context, symbol string, side Side, price, size float64, reduceOnly bool) (string, error)
	// CancelOrder 按 ID 撤单。
	CancelOrder(ctx context.Context, symbol, id string) error
	// CancelAll 撤掉该合约的挂单；side 为空则双边全撤。
	CancelAll(ctx context.Context, symbol string, side Side) error
}
