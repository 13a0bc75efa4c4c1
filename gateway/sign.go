package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Gate.io v4 签名：payload 为
// method\npath\nquery\nSHA512(body)\ntimestamp，HMAC-SHA512 十六进制输出。

// Signature REST 请求签名结果。
type Signature struct {
	Sign      string
	Timestamp string
}

// SignRequest 对 REST 请求签名。
func SignRequest(secret, method, path, query, body string, now time.Time) Signature {
	t := strconv.FormatInt(now.Unix(), 10)
	h := sha512.Sum512([]byte(body))
	hashedPayload := hex.EncodeToString(h[:])
	payload := method + "\n" + path + "\n" + query + "\n" + hashedPayload + "\n" + t

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(payload))
	return Signature{
		Sign:      hex.EncodeToString(mac.Sum(nil)),
		Timestamp: t,
	}
}

// WSAuth 推送频道订阅的鉴权块。
type WSAuth struct {
	Method string `json:"method"`
	Key    string `json:"KEY"`
	Sign   string `json:"SIGN"`
	Time   int64  `json:"time"`
}

// SignWSChannel 对推送频道订阅签名。
func SignWSChannel(key, secret, channel string, now time.Time) WSAuth {
	t := now.Unix()
	message := fmt.Sprintf("channel=%s&event=subscribe&time=%d", channel, t)
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(message))
	return WSAuth{
		Method: "api_key",
		Key:    key,
		Sign:   hex.EncodeToString(mac.Sum(nil)),
		Time:   t,
	}
}
