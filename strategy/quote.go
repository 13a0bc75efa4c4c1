package strategy

import (
	"fmt"
	"math"
)

// Kind 策略类型。
type Kind string

const (
	Grid       Kind = "GRID"
	Avellaneda Kind = "AVELLANEDA"
)

// MinTick 报价下限；计算出的负价被钳制到该值。
const MinTick = 0.0001

// Params 报价参数，策略运行期间不可变。
type Params struct {
	Kind        Kind
	GridSpacing float64 // 网格间距（比例，如 0.006 = 0.6%）
	Gamma       float64 // 风险厌恶系数
	Eta         float64 // 库存衰减系数
	Sigma       float64 // 波动率
	TimeHorizon float64 // T
}

// Quote 单次报价结果，每个 tick 重新计算。
type Quote struct {
	Reserve float64
	Bid     float64
	Ask     float64
	Clamped bool // 任一价格被钳制到 MinTick
}

// Validate 校验参数；gamma/eta 为零会导致除零或对数域错误，必须在这里拒绝。
func (p Params) Validate() error {
	switch p.Kind {
	case Grid, Avellaneda:
	default:
		return fmt.Errorf("unknown strategy kind %q", p.Kind)
	}
	if p.GridSpacing <= 0 {
		return fmt.Errorf("gridSpacing must be > 0, got %f", p.GridSpacing)
	}
	if p.Kind == Avellaneda {
		if p.Gamma <= 0 {
			return fmt.Errorf("gamma must be > 0, got %f", p.Gamma)
		}
		if p.Eta <= 0 {
			return fmt.Errorf("eta must be > 0, got %f", p.Eta)
		}
		if p.Sigma <= 0 {
			return fmt.Errorf("sigma must be > 0, got %f", p.Sigma)
		}
		if p.TimeHorizon <= 0 {
			return fmt.Errorf("timeHorizon must be > 0, got %f", p.TimeHorizon)
		}
	}
	return nil
}

// Compute 根据最新价与净库存计算目标报价。纯函数，无副作用。
func Compute(price, inventory float64, p Params) (Quote, error) {
	if price <= 0 {
		return Quote{}, fmt.Errorf("invalid price: %f", price)
	}

	var q Quote
	switch p.Kind {
	case Grid:
		q.Reserve = price
		q.Bid = price * (1 - p.GridSpacing)
		q.Ask = price * (1 + p.GridSpacing)
	case Avellaneda:
		variance := p.Sigma * p.Sigma * p.TimeHorizon
		shift := p.Gamma * variance * price
		q.Reserve = price - inventory*shift

		spreadTerm := 0.5*p.Gamma*variance + (1/p.Gamma)*math.Log(1+p.Gamma/p.Eta)
		halfSpread := math.Max(p.GridSpacing*price*0.5, spreadTerm*price)
		q.Bid = q.Reserve - halfSpread
		q.Ask = q.Reserve + halfSpread
	default:
		return Quote{}, fmt.Errorf("unknown strategy kind %q", p.Kind)
	}

	if q.Bid < MinTick {
		q.Bid = MinTick
		q.Clamped = true
	}
	if q.Ask < MinTick {
		q.Ask = MinTick
		q.Clamped = true
	}
	return q, nil
}
