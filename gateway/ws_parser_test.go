package gateway

import (
	"encoding/json"
	"testing"

	"gate-mm-go/order"
)

func mustMsg(t *testing.T, raw string) wsMessage {
	t.Helper()
	var msg wsMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return msg
}

func TestParseTickerArrayAndObject(t *testing.T) {
	arr := mustMsg(t, `{"time":1700000000,"channel":"futures.tickers","event":"update",
		"result":[{"contract":"XRP_USDT","last":"0.6234","b":"0.6233","a":"0.6235"}]}`)
	last, bid, ask, ok, err := ParseTicker(arr)
	if err != nil || !ok {
		t.Fatalf("unexpected: ok=%v err=%v", ok, err)
	}
	if last != 0.6234 || bid != 0.6233 || ask != 0.6235 {
		t.Fatalf("unexpected values %f %f %f", last, bid, ask)
	}

	obj := mustMsg(t, `{"time":1700000000,"channel":"futures.tickers","event":"update",
		"result":{"contract":"XRP_USDT","last":"0.62","b":"","a":""}}`)
	last, bid, ask, ok, err = ParseTicker(obj)
	if err != nil || !ok {
		t.Fatalf("single-object result must parse: ok=%v err=%v", ok, err)
	}
	if last != 0.62 || bid != 0 || ask != 0 {
		t.Fatalf("missing best bid/ask must default to zero, got %f %f %f", last, bid, ask)
	}
}

func TestParseTickerMalformed(t *testing.T) {
	msg := mustMsg(t, `{"channel":"futures.tickers","event":"update",
		"result":[{"last":"not-a-number"}]}`)
	if _, _, _, _, err := ParseTicker(msg); err == nil {
		t.Fatalf("expected parse error for bad price")
	}
}

func TestParseOrders(t *testing.T) {
	msg := mustMsg(t, `{"channel":"futures.orders","event":"update","result":[
		{"id":12345,"price":"0.6200","left":3,"size":5,"status":"open","is_reduce_only":false},
		{"id":12346,"price":"0.6300","left":0,"size":-2,"status":"finished","is_reduce_only":true}]}`)
	updates, err := ParseOrders(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}

	buy := updates[0]
	if buy.ID != "12345" || buy.Side != order.Buy || !buy.Open || buy.Remaining != 3 {
		t.Fatalf("unexpected buy update: %+v", buy)
	}
	sell := updates[1]
	if sell.Side != order.Sell || sell.Open || !sell.ReduceOnly {
		t.Fatalf("unexpected sell update: %+v", sell)
	}
}

func TestParsePositionsSignedSize(t *testing.T) {
	msg := mustMsg(t, `{"channel":"futures.positions","event":"update","result":[
		{"contract":"XRP_USDT","size":7,"unrealised_pnl":"1.25"},
		{"contract":"XRP_USDT","size":-4,"unrealised_pnl":"-0.5"}]}`)
	updates, err := ParsePositions(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updates[0].Long != 7 || updates[0].Short != 0 || updates[0].Unrealized != 1.25 {
		t.Fatalf("unexpected long position: %+v", updates[0])
	}
	if updates[1].Long != 0 || updates[1].Short != 4 || updates[1].Unrealized != -0.5 {
		t.Fatalf("unexpected short position: %+v", updates[1])
	}
}

func TestParseBalances(t *testing.T) {
	msg := mustMsg(t, `{"channel":"futures.balances","event":"update","result":[
		{"currency":"USDT","balance":1052.33}]}`)
	updates, err := ParseBalances(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updates[0].Currency != "USDT" || updates[0].Balance != 1052.33 {
		t.Fatalf("unexpected balance: %+v", updates[0])
	}
}
