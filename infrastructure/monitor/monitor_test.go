package monitor

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMonitorExposesMetrics(t *testing.T) {
	m := New(DefaultConfig())
	m.TicksTotal.Inc()
	m.OrdersPlaced.Inc()
	m.LastPrice.Set(2.345)
	m.SessionState.Set(1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()

	buf := make([]byte, 1<<16)
	n, _ := resp.Body.Read(buf)
	body := string(buf[:n])

	for _, want := range []string{
		"mm_gate_ticks_total 1",
		"mm_gate_orders_placed_total 1",
		"mm_gate_last_price 2.345",
		"mm_gate_session_state 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
