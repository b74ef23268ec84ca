// Package quote fetches the current price of an underlying from a
// brapi-compatible HTTP API.
package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/opcoes"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PricePath locates the price in the quote response.
const PricePath = "$.results[0].regularMarketPrice"

// ErrNoPrice is returned when the response carries no usable price.
var ErrNoPrice = errors.New("no price")

// Client queries GET {BaseURL}/quote/{ticker}.
type Client struct {
	BaseURL string
	Token   string // sent as a bearer token when set
	HTTP    *http.Client
}

// New returns a Client whose requests time out after timeout and are logged to log.
func New(baseURL, token string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: &logTransport{base: http.DefaultTransport, log: log},
		},
	}
}

// logTransport logs every exchange at debug level.
type logTransport struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.log.Debug().Err(err).Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Msg("quote request failed")
		return nil, err
	}
	t.log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).
		Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("quote request")
	return resp, nil
}

// Latest returns the current price of ticker.
func (c *Client) Latest(ctx context.Context, ticker string) (opcoes.Money, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return opcoes.R(0), fmt.Errorf("quote: empty ticker")
	}
	addr := c.BaseURL + "/quote/" + url.PathEscape(ticker)

	var jobj any
	if err := c.jwget(ctx, addr, &jobj); err != nil {
		return opcoes.R(0), fmt.Errorf("quote %s: %w", ticker, err)
	}
	jval, err := jsonpath.Get(PricePath, jobj)
	if err != nil {
		return opcoes.R(0), fmt.Errorf("quote %s: %w: %v", ticker, ErrNoPrice, err)
	}
	// jsonpath may wrap a single answer in a list
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	price, err := toDecimal(jval)
	if err != nil {
		return opcoes.R(0), fmt.Errorf("quote %s: %w", ticker, err)
	}
	if !price.IsPositive() {
		return opcoes.R(0), fmt.Errorf("quote %s: %w: %v", ticker, ErrNoPrice, price)
	}
	return opcoes.R(price), nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch v := v.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		v = strings.TrimSpace(v)
		if strings.Contains(v, ",") {
			// pt-BR formatted, "36,12"
			return opcoes.ParseMoney(v).Decimal(), nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrNoPrice, v)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: unexpected value %v", ErrNoPrice, v)
	}
}

// jwget performs an HTTP GET request and decodes the JSON response into data,
// keeping numbers exact.
func (c *Client) jwget(ctx context.Context, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	return dec.Decode(data)
}
