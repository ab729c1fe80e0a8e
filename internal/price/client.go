// Package price fetches the current bitcoin price in USD. The lookup is
// best-effort: every failure path degrades to a configured fallback
// constant with warnings describing what went wrong, so the planner
// never blocks on a market data outage.
package price

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/btcplan/retirement-planner/internal/config"
	"github.com/btcplan/retirement-planner/pkg/money"
)

const userAgent = "btcplan/1.0 (+https://github.com/btcplan/retirement-planner)"

// Quoter supplies the current bitcoin price in USD. Implementations do
// not fail: they return a usable price plus any warnings accumulated
// while obtaining it.
type Quoter interface {
	CurrentPrice(ctx context.Context) (float64, []string)
}

// Static is a Quoter that always returns a fixed price.
type Static float64

func (s Static) CurrentPrice(context.Context) (float64, []string) { return float64(s), nil }

// diaQuotation is the asset quotation document served by the DIA API.
type diaQuotation struct {
	Symbol string  `json:"Symbol"`
	Name   string  `json:"Name"`
	Price  float64 `json:"Price"`
	Time   string  `json:"Time"`
}

// Client fetches quotes over HTTP with retries and exponential backoff.
type Client struct {
	settings  config.PriceSettings
	quickFail bool
	httpc     *http.Client
	sleep     func(time.Duration)
}

// NewClient builds a client from the price settings.
func NewClient(settings config.PriceSettings) *Client {
	return &Client{
		settings: settings,
		httpc:    &http.Client{Timeout: settings.Timeout()},
		sleep:    time.Sleep,
	}
}

// WithQuickFail returns a copy of the client that makes a single attempt
// and never sleeps, for interactive paths that prefer the fallback over
// waiting out retries.
func (c *Client) WithQuickFail() *Client {
	cp := *c
	cp.quickFail = true
	return &cp
}

// CurrentPrice fetches the live price, retrying with exponential backoff
// plus optional jitter. When every attempt fails the configured fallback
// price is returned; the warnings list then records one entry per failed
// attempt plus the fallback notice.
func (c *Client) CurrentPrice(ctx context.Context) (float64, []string) {
	attempts := c.settings.MaxAttempts
	if attempts < 1 || c.quickFail {
		attempts = 1
	}

	var warnings []string
	for attempt := 0; attempt < attempts; attempt++ {
		p, err := c.fetch(ctx)
		if err == nil {
			return p, warnings
		}
		warnings = append(warnings, fmt.Sprintf("price fetch attempt %d/%d failed: %v", attempt+1, attempts, err))

		if ctx.Err() != nil {
			break
		}
		if attempt < attempts-1 {
			delay := c.settings.BaseDelay() << attempt
			if j := c.settings.Jitter(); j > 0 {
				delay += time.Duration(rand.Int63n(int64(j)))
			}
			c.sleep(delay)
		}
	}

	warnings = append(warnings, fmt.Sprintf("using fallback price %s", money.New(c.settings.FallbackPrice).Format()))
	return c.settings.FallbackPrice, warnings
}

func (c *Client) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.settings.Endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var q diaQuotation
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if q.Price <= 0 {
		return 0, fmt.Errorf("response price %v is not positive", q.Price)
	}
	return q.Price, nil
}
