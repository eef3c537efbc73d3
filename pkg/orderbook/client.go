// Package orderbook provides a client for the UniswapX order-book service.
package orderbook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/speedrun-hq/intentscope/pkg/logger"
	"github.com/speedrun-hq/intentscope/pkg/metrics"
	"github.com/speedrun-hq/intentscope/pkg/models"
)

const ordersPath = "/v2/orders"

// Response represents the structure of the order-book response
type Response struct {
	Orders []json.RawMessage `json:"orders"`
	Cursor string            `json:"cursor,omitempty"`
}

// Client represents an order-book API client
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     logger.Logger
}

// New creates a new order-book client
func New(endpoint string, timeout time.Duration, logger logger.Logger) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: createHTTPClient(timeout),
		logger:     logger,
	}
}

// FetchOrders issues exactly one query against the order book and returns the raw order records
func (c *Client) FetchOrders(ctx context.Context, params models.FetchOrdersParams) ([]json.RawMessage, error) {
	reqURL := c.endpoint + ordersPath + "?" + params.Query().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order book request: %v", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.OrderBookLatency.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			c.logger.Error("Failed to close response body: %v", err)
		}
	}(resp.Body)
	metrics.OrderBookLatency.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	// Read the response body regardless of status code
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var orderResp Response
	if err := json.Unmarshal(bodyBytes, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %v", err)
	}

	c.logger.DebugWithChain(params.ChainID, "Fetched %d %s orders (status %s)",
		len(orderResp.Orders), params.OrderType, params.OrderStatus)

	if orderResp.Orders == nil {
		return []json.RawMessage{}, nil
	}
	return orderResp.Orders, nil
}

// StatusError is returned when the order book answers with a non-200 status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, e.Body)
}

// Helper function to create an HTTP client with timeouts
func createHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
