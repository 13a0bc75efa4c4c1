package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"gate-mm-go/order"
)

const apiPrefix = "/api/v4"

// RESTClient Gate.io USDT 永续合约下单客户端；HTTPClient 可注入 httptest。
// 实现 order.Gateway。
type RESTClient struct {
	BaseURL    string
	APIKey     string
	Secret     string
	HTTPClient *http.Client

	// 本地挂单缓存，按方向撤单时查询（Gate 不支持按方向全撤）。
	book    *order.Book
	limiter *rate.Limiter
	now     func() time.Time
}

// NewRESTClient 创建客户端；限速默认 10 req/s，burst 20。
func NewRESTClient(baseURL, apiKey, secret string, book *order.Book) *RESTClient {
	return &RESTClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Secret:     secret,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		book:       book,
		limiter:    rate.NewLimiter(10, 20),
		now:        time.Now,
	}
}

type placeOrderRequest struct {
	Contract   string `json:"contract"`
	Size       int64  `json:"size"` // 正数买入，负数卖出
	Iceberg    int64  `json:"iceberg"`
	Price      string `json:"price"`
	Tif        string `json:"tif"`
	Text       string `json:"text"`
	ReduceOnly bool   `json:"reduce_only"`
}

type placeOrderResponse struct {
	ID int64 `json:"id"`
}

// PlaceOrder 挂限价单（GTC）。
func (c *RESTClient) PlaceOrder(ctx context.Context, symbol string, side order.Side, price, size float64, reduceOnly bool) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("invalid size: %f", size)
	}
	contracts := int64(math.Round(size))
	if contracts <= 0 {
		return "", fmt.Errorf("size %f below one contract", size)
	}
	if side == order.Sell {
		contracts = -contracts
	}
	req := placeOrderRequest{
		Contract:   symbol,
		Size:       contracts,
		Price:      strconv.FormatFloat(price, 'f', 4, 64),
		Tif:        "gtc",
		Text:       "t-gate-mm",
		ReduceOnly: reduceOnly,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	var resp placeOrderResponse
	if err := c.do(ctx, http.MethodPost, "/futures/usdt/orders", "", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == 0 {
		return "", fmt.Errorf("empty order id in response")
	}
	return strconv.FormatInt(resp.ID, 10), nil
}

// CancelOrder 按 ID 撤单。
func (c *RESTClient) CancelOrder(ctx context.Context, _ string, id string) error {
	return c.do(ctx, http.MethodDelete, "/futures/usdt/orders/"+id, "", nil, nil)
}

// CancelAll 撤掉合约挂单。Gate 的批量撤单不分方向，按方向撤时
// 遍历本地缓存逐一撤销（与缓存不一致的订单由交易所回报修正）。
func (c *RESTClient) CancelAll(ctx context.Context, symbol string, side order.Side) error {
	if side == "" {
		return c.do(ctx, http.MethodDelete, "/futures/usdt/orders", "contract="+symbol, nil, nil)
	}
	if c.book == nil {
		return fmt.Errorf("side cancel requires order book cache")
	}
	var lastErr error
	for _, o := range c.book.BySide(side) {
		if err := c.CancelOrder(ctx, symbol, o.ID); err != nil {
			lastErr = err
			continue
		}
		c.book.Remove(o.ID)
	}
	return lastErr
}

// do 签名并执行一次请求；非 2xx 返回带响应体的错误。
func (c *RESTClient) do(ctx context.Context, method, path, query string, body []byte, out interface{}) error {
	if c.HTTPClient == nil {
		return fmt.Errorf("http client not set")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	fullPath := apiPrefix + path
	sig := SignRequest(c.Secret, method, fullPath, query, string(body), c.now())

	endpoint := c.BaseURL + fullPath
	if query != "" {
		endpoint += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("KEY", c.APIKey)
	req.Header.Set("SIGN", sig.Sign)
	req.Header.Set("Timestamp", sig.Timestamp)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gate api %s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
