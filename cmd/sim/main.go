package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"gate-mm-go/infrastructure/eventlog"
	"gate-mm-go/ledger"
	"gate-mm-go/order"
	"gate-mm-go/sim"
	"gate-mm-go/strategy"
)

// 一个极简的本地回放：随机游走价格驱动报价、对账与模拟撮合。
// 不连接交易所，仅用于观察策略在噪声行情下的挂单与盈亏轨迹。
func main() {
	kind := flag.String("kind", "AVELLANEDA", "strategy kind (GRID or AVELLANEDA)")
	base := flag.Float64("base", 0.62, "starting price")
	ticks := flag.Int("ticks", 200, "number of random ticks to simulate")
	vol := flag.Float64("vol", 0.002, "per-tick gaussian volatility (ratio)")
	quantity := flag.Float64("quantity", 1, "per-side order size")
	threshold := flag.Float64("threshold", 500, "position threshold")
	gridSpacing := flag.Float64("gridSpacing", 0.006, "grid spacing ratio")
	tpSpacing := flag.Float64("tpSpacing", 0.004, "take-profit spacing ratio")
	gamma := flag.Float64("gamma", 1, "risk aversion")
	eta := flag.Float64("eta", 1, "order book liquidity")
	sigma := flag.Float64("sigma", 0.01, "volatility estimate")
	seed := flag.Int64("seed", 42, "rng seed")
	flag.Parse()

	params := strategy.Params{
		Kind:        strategy.Kind(*kind),
		GridSpacing: *gridSpacing,
		Gamma:       *gamma,
		Eta:         *eta,
		Sigma:       *sigma,
		TimeHorizon: 1,
	}
	if err := params.Validate(); err != nil {
		log.Fatalf("参数非法: %v", err)
	}

	ledgr := &ledger.Ledger{}
	engine := sim.NewEngine(ledgr)
	book := order.NewBook()
	events := eventlog.New(eventlog.NewMemorySink(500))
	rec := order.NewReconciler(engine, book, events, nil, order.ReconcilerConfig{
		Symbol:            "SIM_USDT",
		Quantity:          *quantity,
		PositionThreshold: *threshold,
		TakeProfitSpacing: *tpSpacing,
	})

	rng := rand.New(rand.NewSource(*seed))
	price := *base
	ctx := context.Background()
	fills := 0

	for i := 0; i < *ticks; i++ {
		price *= 1 + rng.NormFloat64()*(*vol)
		for _, fill := range engine.Tick(price) {
			fills++
			o := fill.Order
			fmt.Printf("tick %3d fill %s %.0f@%.4f reduceOnly=%v\n",
				i, o.Side, o.Size, fill.Price, o.ReduceOnly)
		}
		quote, err := strategy.Compute(price, ledgr.NetInventory(), params)
		if err != nil {
			log.Fatalf("tick %d 报价失败: %v", i, err)
		}
		rec.Reconcile(ctx, quote, ledgr.Snapshot(), price)
	}

	st := ledgr.Snapshot()
	fmt.Printf("\nfinal price %.4f  fills %d  long %.0f short %.0f\n", price, fills, st.Long, st.Short)
	fmt.Printf("realized %.4f  unrealized %.4f  total %.4f\n",
		st.Realized, st.Unrealized, st.Realized+st.Unrealized)
}
