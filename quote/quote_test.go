package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/etnz/opcoes"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) (*Client, *http.Request) {
	t.Helper()
	var got http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = *r
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "secret", time.Second, zerolog.Nop()), &got
}

func TestLatest(t *testing.T) {
	c, req := serve(t, http.StatusOK, `{"results":[{"symbol":"PETR4","regularMarketPrice":36.12}],"requestedAt":"2024-03-01"}`)

	price, err := c.Latest(context.Background(), " petr4 ")
	require.NoError(t, err)
	assert.True(t, price.Equal(opcoes.R(36.12)), "price %v", price)
	assert.Equal(t, "/quote/PETR4", req.URL.Path)
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
}

func TestLatest_StringPrice(t *testing.T) {
	tests := []struct {
		body string
		want opcoes.Money
	}{
		{`{"results":[{"regularMarketPrice":"64,10"}]}`, opcoes.R(64.1)},
		{`{"results":[{"regularMarketPrice":"1.064,10"}]}`, opcoes.R(1064.1)},
		{`{"results":[{"regularMarketPrice":"36.12"}]}`, opcoes.R(36.12)},
		{`{"results":[{"regularMarketPrice":" 36 "}]}`, opcoes.R(36)},
	}
	for _, tt := range tests {
		c, _ := serve(t, http.StatusOK, tt.body)
		price, err := c.Latest(context.Background(), "VALE3")
		require.NoError(t, err, tt.body)
		assert.True(t, price.Equal(tt.want), "%s: price %v, want %v", tt.body, price, tt.want)
	}
}

func TestLatest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusNotFound, `{"error":true}`},
		{"no results", http.StatusOK, `{"results":[]}`},
		{"missing price", http.StatusOK, `{"results":[{"symbol":"PETR4"}]}`},
		{"null price", http.StatusOK, `{"results":[{"regularMarketPrice":null}]}`},
		{"zero price", http.StatusOK, `{"results":[{"regularMarketPrice":0}]}`},
		{"not json", http.StatusOK, `<html>`},
		{"malformed string price", http.StatusOK, `{"results":[{"regularMarketPrice":"n/a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := serve(t, tt.status, tt.body)
			_, err := c.Latest(context.Background(), "PETR4")
			assert.Error(t, err)
		})
	}
}

func TestLatest_EmptyTicker(t *testing.T) {
	c, _ := serve(t, http.StatusOK, `{}`)
	_, err := c.Latest(context.Background(), "  ")
	assert.Error(t, err)
}
