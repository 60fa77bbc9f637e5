package refprice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"darkcross/internal/domain"
	"darkcross/internal/event"
	"darkcross/internal/infra"

	"github.com/shopspring/decimal"
)

// tradeResponse represents one entry of the last-sale API response
type tradeResponse struct {
	Symbol    string `json:"symbol"`
	Price     string `json:"price"`
	Timestamp int64  `json:"timestamp"`
}

// Client polls the last stable trade price for each configured symbol and
// publishes reference price updates to the engine.
type Client struct {
	intake       *event.Intake
	symbols      []string
	prices       map[string]decimal.Decimal
	mu           sync.RWMutex
	pollInterval time.Duration
	apiURL       string
	httpClient   *http.Client
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewClient creates a new reference price client
func NewClient(intake *event.Intake, symbols []string, apiURL string, pollIntervalSec int) *Client {
	c := &Client{
		intake:       intake,
		symbols:      symbols,
		prices:       make(map[string]decimal.Decimal),
		pollInterval: 60 * time.Second, // Default: 1 minute
		apiURL:       apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if pollIntervalSec > 0 {
		c.pollInterval = time.Duration(pollIntervalSec) * time.Second
	}
	return c
}

// Start begins polling for reference price updates
func (c *Client) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	// Fetch immediately on start
	if err := c.fetchPrices(ctx); err != nil {
		slog.Warn("Initial reference price fetch failed", slog.Any("error", err))
		// Continue anyway - will retry on next tick
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Reference price polling panic recovered", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Reference price polling stopped")
				return
			case <-ticker.C:
				if err := c.fetchPrices(ctx); err != nil {
					slog.Warn("Reference price fetch failed", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}

// fetchPrices fetches the current last-sale prices with retry logic
func (c *Client) fetchPrices(ctx context.Context) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s
			delay := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doFetch(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		slog.Warn("Reference price fetch attempt failed", slog.Int("attempt", i+1), slog.Any("error", err))
		if !domain.IsRetriable(err) {
			break
		}
	}
	infra.GlobalMetrics.RecordError()
	return lastErr
}

func (c *Client) doFetch(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL, nil)
	if err != nil {
		return err
	}

	// Add browser-like User-Agent to avoid bot detection
	req.Header.Set("User-Agent", infra.DefaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewNetworkError("fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.NewNetworkError("fetch", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewNetworkError("read", err)
	}

	var data []tradeResponse
	if err := json.Unmarshal(body, &data); err != nil {
		// A malformed payload will not fix itself on retry
		return domain.NewFatalNetworkError("decode", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("empty last-sale response")
	}

	for _, trade := range data {
		c.applyTrade(trade)
	}

	return nil
}

// applyTrade publishes a reference price update when the price moved.
func (c *Client) applyTrade(trade tradeResponse) {
	if !c.watches(trade.Symbol) {
		return
	}

	price, err := decimal.NewFromString(trade.Price)
	if err != nil || price.Sign() <= 0 {
		slog.Warn("Dropping malformed last-sale price",
			slog.String("symbol", trade.Symbol),
			slog.String("price", trade.Price))
		return
	}

	c.mu.Lock()
	old, seen := c.prices[trade.Symbol]
	c.prices[trade.Symbol] = price
	c.mu.Unlock()

	if seen && old.Equal(price) {
		return
	}

	ev := event.AcquireRefPriceEvent()
	ev.Symbol = trade.Symbol
	ev.Price = price

	c.intake.Submit(func(seq uint64, ts int64) event.Event {
		ev.Seq = seq
		ev.Ts = ts
		return ev
	})
}

func (c *Client) watches(symbol string) bool {
	for _, s := range c.symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// LastPrice returns the last published reference price for a symbol.
func (c *Client) LastPrice(symbol string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[symbol]
	return p, ok
}

// Stop stops the polling
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.wg.Wait()
	}
}
