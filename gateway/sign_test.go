package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"testing"
	"time"
)

func TestSignRequestMatchesSpec(t *testing.T) {
	now := time.Unix(1700000000, 0)
	sig := SignRequest("secret", "POST", "/api/v4/futures/usdt/orders", "", `{"contract":"XRP_USDT"}`, now)

	if sig.Timestamp != "1700000000" {
		t.Fatalf("expected unix timestamp, got %s", sig.Timestamp)
	}
	if len(sig.Sign) != 128 {
		t.Fatalf("expected 128 hex chars for hmac-sha512, got %d", len(sig.Sign))
	}

	// Recompute the documented payload independently.
	h := sha512.Sum512([]byte(`{"contract":"XRP_USDT"}`))
	payload := "POST\n/api/v4/futures/usdt/orders\n\n" + hex.EncodeToString(h[:]) + "\n1700000000"
	mac := hmac.New(sha512.New, []byte("secret"))
	mac.Write([]byte(payload))
	if want := hex.EncodeToString(mac.Sum(nil)); sig.Sign != want {
		t.Fatalf("signature mismatch:\n got %s\nwant %s", sig.Sign, want)
	}
}

func TestSignRequestDeterministic(t *testing.T) {
	now := time.Unix(1700000000, 0)
	a := SignRequest("secret", "GET", "/api/v4/futures/usdt/orders", "contract=XRP_USDT", "", now)
	b := SignRequest("secret", "GET", "/api/v4/futures/usdt/orders", "contract=XRP_USDT", "", now)
	if a.Sign != b.Sign {
		t.Fatalf("same inputs must produce same signature")
	}
	c := SignRequest("other", "GET", "/api/v4/futures/usdt/orders", "contract=XRP_USDT", "", now)
	if a.Sign == c.Sign {
		t.Fatalf("different secrets must produce different signatures")
	}
}

func TestSignWSChannel(t *testing.T) {
	now := time.Unix(1700000000, 0)
	auth := SignWSChannel("key", "secret", "futures.balances", now)

	if auth.Method != "api_key" || auth.Key != "key" || auth.Time != 1700000000 {
		t.Fatalf("unexpected auth block: %+v", auth)
	}

	mac := hmac.New(sha512.New, []byte("secret"))
	mac.Write([]byte("channel=futures.balances&event=subscribe&time=1700000000"))
	if want := hex.EncodeToString(mac.Sum(nil)); auth.Sign != want {
		t.Fatalf("ws signature mismatch")
	}
}
