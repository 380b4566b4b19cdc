package backend

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/crypto_order_panel/internal/domain"
	"go.uber.org/zap"
)

// Client talks to the remote trading backend over its REST and
// websocket contracts. All trading, backtesting and statistics happen
// on the backend side; the client only moves requests and responses.
type Client struct {
	apiKey    string
	apiSecret string
	baseURL   string
	wsURL     string
	client    *http.Client
	logger    *zap.Logger

	wsConn      *websocket.Conn
	callbacks   []func(symbol string, price float64)
	disconnects []func()
	mu          sync.Mutex
}

func NewClient(apiKey, apiSecret, baseURL, wsURL string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		wsURL:     wsURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

// --- REST API ---

func (c *Client) sign(params string, timestamp int64) string {
	toSign := fmt.Sprintf("%d%s%s", timestamp, c.apiKey, params)
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(toSign))
	return hex.EncodeToString(h.Sum(nil))
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) sendRequest(ctx context.Context, method, path string, payload interface{}) (json.RawMessage, error) {
	timestamp := time.Now().UnixMilli()

	var body []byte
	var paramsStr string

	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = jsonBody
		paramsStr = string(jsonBody)
	} else if idx := strings.Index(path, "?"); idx != -1 {
		paramsStr = path[idx+1:]
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("X-API-TIMESTAMP", strconv.FormatInt(timestamp, 10))
	req.Header.Set("X-API-SIGN", c.sign(paramsStr, timestamp))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("backend http %d: %s", resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("backend decode: %w", err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("backend error %d: %s", env.Code, env.Msg)
	}

	return env.Data, nil
}

func (c *Client) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	data, err := c.sendRequest(ctx, "GET", "/api/v1/market/price?symbol="+symbol, nil)
	if err != nil {
		return 0, err
	}

	var result struct {
		Symbol    string  `json:"symbol"`
		LastPrice float64 `json:"last_price"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, err
	}
	if result.LastPrice <= 0 {
		return 0, fmt.Errorf("no price for symbol %s", symbol)
	}
	return result.LastPrice, nil
}

func (c *Client) GetTopGainers(ctx context.Context, limit int) ([]domain.GainerRow, error) {
	path := fmt.Sprintf("/api/v1/market/top-gainers?limit=%d", limit)
	data, err := c.sendRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []domain.GainerRow `json:"list"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

func (c *Client) GetAccount(ctx context.Context) (*domain.AccountBalance, error) {
	data, err := c.sendRequest(ctx, "GET", "/api/v1/account", nil)
	if err != nil {
		return nil, err
	}

	var balance domain.AccountBalance
	if err := json.Unmarshal(data, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (c *Client) GetPositions(ctx context.Context) ([]*domain.Position, error) {
	data, err := c.sendRequest(ctx, "GET", "/api/v1/positions", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		List []*domain.Position `json:"list"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

func (c *Client) PlaceOrder(ctx context.Context, ticket *domain.OrderTicket) (string, error) {
	payload := map[string]interface{}{
		"symbol":            ticket.Symbol,
		"order_type":        string(ticket.Direction),
		"qty":               ticket.Qty,
		"entry_price":       ticket.EntryPrice,
		"stop_loss_price":   ticket.StopLossPrice,
		"take_profit_price": ticket.TakeProfitPrice,
	}

	data, err := c.sendRequest(ctx, "POST", "/api/v1/orders", payload)
	if err != nil {
		return "", err
	}

	var result struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", err
	}
	if result.OrderID == "" {
		return "", fmt.Errorf("backend accepted order but returned no order id")
	}
	return result.OrderID, nil
}

func (c *Client) CancelOrder(ctx context.Context, backendOrderID string) error {
	_, err := c.sendRequest(ctx, "DELETE", "/api/v1/orders/"+backendOrderID, nil)
	return err
}

func (c *Client) StartBot(ctx context.Context, strategy string) error {
	payload := map[string]interface{}{"strategy": strategy}
	_, err := c.sendRequest(ctx, "POST", "/api/v1/bot/start", payload)
	return err
}

func (c *Client) StopBot(ctx context.Context) error {
	_, err := c.sendRequest(ctx, "POST", "/api/v1/bot/stop", nil)
	return err
}

func (c *Client) GetBotStatus(ctx context.Context) (*domain.BotStatus, error) {
	data, err := c.sendRequest(ctx, "GET", "/api/v1/bot/status", nil)
	if err != nil {
		return nil, err
	}

	var status domain.BotStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) RunBacktest(ctx context.Context, cfg *domain.BacktestConfig) (*domain.BacktestResult, error) {
	if !domain.KnownEngine(cfg.Engine) {
		return nil, fmt.Errorf("unknown backtest engine %q", cfg.Engine)
	}

	data, err := c.sendRequest(ctx, "POST", "/api/v1/backtest/"+cfg.Engine, cfg)
	if err != nil {
		return nil, err
	}

	var result domain.BacktestResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
