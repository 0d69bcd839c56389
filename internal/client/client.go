// Package client is the consumer side of the host's wire contract, used by
// cashier terminals and kitchen displays. Every call degrades to a zero
// value on network failure — empty list, nil, false — so UI flows stay
// responsive; the caller decides whether absence of data means "show empty"
// or "show error".
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/YoshikiFujii/FLcasher/internal/broadcast"
	"github.com/YoshikiFujii/FLcasher/internal/config"
	"github.com/YoshikiFujii/FLcasher/internal/model"
)

// OrderResponse is the host's answer to an order submission.
type OrderResponse struct {
	ID        int64 `json:"id"`
	DisplayID int   `json:"displayId"`
}

type Client struct {
	host   string
	client *http.Client
}

// New returns a client talking to host ("ip:port").
func New(host string) *Client {
	return &Client{
		host: host,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// NewFromSettings builds a client from the persisted device settings.
func NewFromSettings(s config.Settings) *Client {
	return New(s.ServerAddress)
}

func (c *Client) url(path string) string {
	return "http://" + c.host + path
}

// GetProducts returns the host's product list, or an empty list on error.
func (c *Client) GetProducts(ctx context.Context) []model.Product {
	var out []model.Product
	if err := c.getJSON(ctx, "/products", &out); err != nil {
		slog.Warn("getProducts failed", "err", err)
		return []model.Product{}
	}
	return out
}

// AddProduct reports whether the host accepted the product.
func (c *Client) AddProduct(ctx context.Context, p model.Product) bool {
	return c.postJSON(ctx, "/products", p)
}

// UpdateProduct reports whether the host accepted the update.
func (c *Client) UpdateProduct(ctx context.Context, p model.Product) bool {
	body, _ := json.Marshal(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.url("/products/"+strconv.FormatInt(p.ID, 10)), bytes.NewBuffer(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doOK(req)
}

// DeleteProduct reports whether the product was deleted.
func (c *Client) DeleteProduct(ctx context.Context, id int64) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.url("/products/"+strconv.FormatInt(id, 10)), nil)
	if err != nil {
		return false
	}
	return c.doOK(req)
}

// SendOrder submits the order and returns the assigned ids, or nil on any
// failure.
func (c *Client) SendOrder(ctx context.Context, order model.Order, items []model.OrderItem) *OrderResponse {
	payload := map[string]interface{}{
		"timestamp":   order.Timestamp,
		"totalAmount": order.TotalAmount,
		"status":      order.Status,
		"items":       items,
		"isTakeout":   order.IsTakeout,
	}
	if order.RandomID != nil {
		payload["randomId"] = *order.RandomID
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/order"), bytes.NewBuffer(body))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("sendOrder failed", "err", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}
	var out OrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil
	}
	return &out
}

// GetKitchenOrders returns PENDING orders, or an empty list on error.
func (c *Client) GetKitchenOrders(ctx context.Context) []model.OrderWithItems {
	var out []model.OrderWithItems
	if err := c.getJSON(ctx, "/kitchen/orders", &out); err != nil {
		slog.Warn("getKitchenOrders failed", "err", err)
		return []model.OrderWithItems{}
	}
	return out
}

// GetKitchenHistory returns all orders, or an empty list on error.
func (c *Client) GetKitchenHistory(ctx context.Context) []model.OrderWithItems {
	var out []model.OrderWithItems
	if err := c.getJSON(ctx, "/kitchen/history", &out); err != nil {
		slog.Warn("getKitchenHistory failed", "err", err)
		return []model.OrderWithItems{}
	}
	return out
}

// GetOrdersInRange returns orders in [start, end], or an empty list on error.
func (c *Client) GetOrdersInRange(ctx context.Context, start, end int64) []model.OrderWithItems {
	path := fmt.Sprintf("/orders/range?start=%d&end=%d", start, end)
	var out []model.OrderWithItems
	if err := c.getJSON(ctx, path, &out); err != nil {
		slog.Warn("getOrdersInRange failed", "err", err)
		return []model.OrderWithItems{}
	}
	return out
}

// CompleteOrder reports whether the transition was accepted.
func (c *Client) CompleteOrder(ctx context.Context, id int64) bool {
	return c.postJSON(ctx, fmt.Sprintf("/order/%d/complete", id), nil)
}

// RevertOrder reports whether the transition was accepted.
func (c *Client) RevertOrder(ctx context.Context, id int64) bool {
	return c.postJSON(ctx, fmt.Sprintf("/order/%d/revert", id), nil)
}

// DeleteOrder reports whether the order was deleted.
func (c *Client) DeleteOrder(ctx context.Context, id int64) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.url(fmt.Sprintf("/order/%d", id)), nil)
	if err != nil {
		return false
	}
	return c.doOK(req)
}

// ResetOrderNumber reports whether the sequence was reset.
func (c *Client) ResetOrderNumber(ctx context.Context) bool {
	return c.postJSON(ctx, "/reset-order-number", nil)
}

// GetTotalSalesSince returns the summed totalAmount since the given epoch
// millisecond timestamp, or 0 on error.
func (c *Client) GetTotalSalesSince(ctx context.Context, since int64) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.url(fmt.Sprintf("/sales/total?since=%d", since)), nil)
	if err != nil {
		return 0
	}
	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("getTotalSalesSince failed", "err", err)
		return 0
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0
	}
	total, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0
	}
	return total
}

// SubscribeKitchen opens the push channel and returns a stream of events.
// The channel closes when the connection drops or ctx is cancelled; the
// caller re-subscribes and re-fetches current state.
func (c *Client) SubscribeKitchen(ctx context.Context) (<-chan broadcast.Event, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+c.host+"/kitchen", nil)
	if err != nil {
		return nil, err
	}

	events := make(chan broadcast.Event)
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			var ev broadcast.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	return events, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) bool {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return false
		}
		buf = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), buf)
	if err != nil {
		return false
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doOK(req)
}

func (c *Client) doOK(req *http.Request) bool {
	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("request failed", "url", req.URL.Path, "err", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}
