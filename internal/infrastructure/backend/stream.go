package backend

import (
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Websocket ticker stream. The backend pushes last-price updates for
// subscribed symbols; the client fans them out to registered callbacks.

func (c *Client) OnPriceUpdate(callback func(symbol string, price float64)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// OnDisconnect registers a callback fired when the stream connection is
// lost. Subscriptions do not survive a reconnect, so listeners must
// treat their subscription state as void.
func (c *Client) OnDisconnect(callback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnects = append(c.disconnects, callback)
}

// Subscribe dials the stream on first use, then sends a subscribe op
// for the given symbols on the existing connection.
func (c *Client) Subscribe(symbols []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wsConn == nil {
		conn, _, err := websocket.DefaultDialer.Dial(c.wsURL, nil)
		if err != nil {
			return err
		}
		c.wsConn = conn
		go c.readLoop(conn)
	}

	return c.subscribe(symbols)
}

func (c *Client) subscribe(symbols []string) error {
	if len(symbols) == 0 {
		return nil
	}
	args := make([]interface{}, len(symbols))
	for i, s := range symbols {
		args[i] = "ticker." + s
	}
	subMsg := map[string]interface{}{
		"op":   "subscribe",
		"args": args,
	}
	return c.wsConn.WriteJSON(subMsg)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		c.mu.Lock()
		if c.wsConn == conn {
			c.wsConn = nil
		}
		disconnects := make([]func(), len(c.disconnects))
		copy(disconnects, c.disconnects)
		c.mu.Unlock()

		for _, cb := range disconnects {
			cb()
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.logger.Warn("Ticker stream closed", zap.Error(err))
			return
		}

		var event struct {
			Topic string `json:"topic"`
			Data  struct {
				LastPrice float64 `json:"last_price"`
			} `json:"data"`
		}
		if err := json.Unmarshal(message, &event); err != nil {
			c.logger.Debug("Ticker stream decode error", zap.Error(err))
			continue
		}

		if !strings.HasPrefix(event.Topic, "ticker.") {
			continue
		}
		symbol := strings.TrimPrefix(event.Topic, "ticker.")
		if event.Data.LastPrice <= 0 {
			continue
		}

		c.mu.Lock()
		callbacks := make([]func(string, float64), len(c.callbacks))
		copy(callbacks, c.callbacks)
		c.mu.Unlock()

		for _, cb := range callbacks {
			cb(symbol, event.Data.LastPrice)
		}
	}
}
