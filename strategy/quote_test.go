package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridQuoteBracketsPrice(t *testing.T) {
	p := Params{Kind: Grid, GridSpacing: 0.006}
	for _, price := range []float64{0.5, 100, 42000} {
		q, err := Compute(price, 0, p)
		require.NoError(t, err)
		assert.Less(t, q.Bid, price)
		assert.Greater(t, q.Ask, price)
		assert.Equal(t, price, q.Reserve)
	}
}

func TestAvellanedaZeroInventory(t *testing.T) {
	// price=100, gamma=1, sigma=0.01, T=1, eta=1, q=0:
	// variance=0.0001, spreadTerm=0.00005+ln(2)=0.69320, halfSpread=max(0.3, 69.32)
	p := Params{Kind: Avellaneda, GridSpacing: 0.006, Gamma: 1, Eta: 1, Sigma: 0.01, TimeHorizon: 1}
	q, err := Compute(100, 0, p)
	require.NoError(t, err)
	assert.InDelta(t, 100, q.Reserve, 1e-9)

	spreadTerm := 0.5*0.0001 + math.Log(2)
	half := math.Max(0.006*100*0.5, spreadTerm*100)
	assert.InDelta(t, 100-half, q.Bid, 1e-9)
	assert.InDelta(t, 100+half, q.Ask, 1e-9)
}

func TestAvellanedaInventoryShiftsReserve(t *testing.T) {
	p := Params{Kind: Avellaneda, GridSpacing: 0.006, Gamma: 1, Eta: 1, Sigma: 0.01, TimeHorizon: 1}
	base, err := Compute(100, 0, p)
	require.NoError(t, err)

	// Long inventory must push the reserve price below mid so further buys
	// are discouraged; short inventory symmetrically above.
	long, err := Compute(100, 5, p)
	require.NoError(t, err)
	assert.Less(t, long.Reserve, base.Reserve)

	short, err := Compute(100, -5, p)
	require.NoError(t, err)
	assert.Greater(t, short.Reserve, base.Reserve)

	// More inventory moves it strictly further.
	longer, err := Compute(100, 10, p)
	require.NoError(t, err)
	assert.Less(t, longer.Reserve, long.Reserve)
}

func TestComputeClampsNegativePrices(t *testing.T) {
	// Huge inventory drives reserve far negative; bid/ask must clamp.
	p := Params{Kind: Avellaneda, GridSpacing: 0.006, Gamma: 1, Eta: 1, Sigma: 1, TimeHorizon: 1}
	q, err := Compute(100, 1000, p)
	require.NoError(t, err)
	assert.True(t, q.Clamped)
	assert.GreaterOrEqual(t, q.Bid, MinTick)
	assert.GreaterOrEqual(t, q.Ask, MinTick)
}

func TestComputeRejectsBadPrice(t *testing.T) {
	if _, err := Compute(0, 0, Params{Kind: Grid, GridSpacing: 0.006}); err == nil {
		t.Fatalf("expected error for zero price")
	}
	if _, err := Compute(-1, 0, Params{Kind: Grid, GridSpacing: 0.006}); err == nil {
		t.Fatalf("expected error for negative price")
	}
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name string
		p    Params
		ok   bool
	}{
		{"grid ok", Params{Kind: Grid, GridSpacing: 0.006}, true},
		{"grid zero spacing", Params{Kind: Grid}, false},
		{"as ok", Params{Kind: Avellaneda, GridSpacing: 0.006, Gamma: 1, Eta: 1, Sigma: 0.01, TimeHorizon: 1}, true},
		{"as zero gamma", Params{Kind: Avellaneda, GridSpacing: 0.006, Eta: 1, Sigma: 0.01, TimeHorizon: 1}, false},
		{"as zero eta", Params{Kind: Avellaneda, GridSpacing: 0.006, Gamma: 1, Sigma: 0.01, TimeHorizon: 1}, false},
		{"as zero sigma", Params{Kind: Avellaneda, GridSpacing: 0.006, Gamma: 1, Eta: 1, TimeHorizon: 1}, false},
		{"unknown kind", Params{Kind: "MOMENTUM", GridSpacing: 0.006}, false},
	}
	for _, tc := range cases {
		err := tc.p.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
