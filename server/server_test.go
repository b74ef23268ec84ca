package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/etnz/opcoes"
	"github.com/etnz/opcoes/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = opcoes.NewDate(2024, time.March, 12)

func created(n int) time.Time {
	return time.Date(2024, time.February, 1, 10, n, 0, 0, time.UTC)
}

// book holds an open sold put short of collateral, a call closed in March
// for +150 and a monthly goal, plus a position of another user.
func book() *opcoes.Snapshot {
	return &opcoes.Snapshot{
		Positions: []opcoes.Position{
			{
				ID: "put", User: "u", Ticker: "PETRO300", Underlying: "PETR4",
				Type: opcoes.Put, Direction: opcoes.Sell,
				Strike: opcoes.R(30), Quote: opcoes.R(31), Quantity: opcoes.Q(100), Premium: opcoes.R(1),
				Expiration: opcoes.NewDate(2024, time.March, 15), Created: created(1),
			},
			{
				ID: "call", User: "u", Ticker: "VALEC700", Underlying: "VALE3",
				Type: opcoes.Call, Direction: opcoes.Sell,
				Strike: opcoes.R(70), Quote: opcoes.R(66), Quantity: opcoes.Q(100), Premium: opcoes.R(2),
				Expiration: opcoes.NewDate(2024, time.April, 19), Created: created(2),
			},
			{
				ID: "theirs", User: "other", Ticker: "BBASO250", Underlying: "BBAS3",
				Type: opcoes.Put, Direction: opcoes.Sell,
				Strike: opcoes.R(25), Quote: opcoes.R(26), Quantity: opcoes.Q(100), Premium: opcoes.R(1),
				Expiration: opcoes.NewDate(2024, time.March, 13), Created: created(3),
			},
		},
		Closings: []opcoes.Closing{
			{
				ID: "c1", User: "u", Position: "call", Premium: opcoes.R(0.5), Quantity: opcoes.Q(100),
				Date: opcoes.NewDate(2024, time.March, 5), Created: created(4),
			},
		},
		Collaterals: []opcoes.Collateral{
			{ID: "cash", User: "u", Kind: opcoes.FixedIncome, Instrument: opcoes.Caixa, Amount: opcoes.R(2000), Created: created(0)},
		},
		Goals: []opcoes.Goal{
			{ID: "g1", User: "u", Kind: opcoes.MonthlyGoal, Target: opcoes.R(100), Year: 2024, Created: created(0)},
		},
	}
}

func newTestServer(t *testing.T, st store.Store) http.Handler {
	t.Helper()
	s := New(Config{
		Store:          st,
		User:           "u",
		Addr:           ":0",
		AllowedOrigins: []string{"http://localhost:5173"},
		AlertDays:      opcoes.DefaultAlertDays,
		Log:            zerolog.Nop(),
		Today:          func() opcoes.Date { return today },
	})
	return s.Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return rec.Code, res
}

func doList(t *testing.T, h http.Handler, target string) []any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res []any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func field(t *testing.T, v any, path ...string) any {
	t.Helper()
	for _, k := range path {
		m, ok := v.(map[string]any)
		require.True(t, ok, "%v is not an object at %q", v, k)
		v = m[k]
	}
	return v
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, store.NewMemory(book()))

	code, res := do(t, h, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", res["status"])
	assert.Equal(t, "u", res["user"])
}

func TestDashboard(t *testing.T) {
	h := newTestServer(t, store.NewMemory(book()))

	code, res := do(t, h, http.MethodGet, "/api/dashboard", nil)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "2024-03-12", res["on"])
	assert.Equal(t, 1.0, res["open_count"])
	assert.Equal(t, 150.0, res["month_result"])
	assert.Greater(t, res["notional"], 3000.0, "notional includes the exercise fees")
	assert.Equal(t, 2000.0, res["put_collateral"])
	assert.Equal(t, true, res["put_collateral_short"])
	assert.Equal(t, 100.0, field(t, res, "distribution", "put_share"))

	alerts, ok := res["alerts"].([]any)
	require.True(t, ok)
	require.Len(t, alerts, 1, "the other user's position must not raise an alert")
	assert.Equal(t, "put", field(t, alerts[0], "id"))
	assert.Equal(t, 3.0, field(t, alerts[0], "days_left"))
}

func TestPositions(t *testing.T) {
	h := newTestServer(t, store.NewMemory(book()))

	code, res := do(t, h, http.MethodGet, "/api/positions", nil)
	require.Equal(t, http.StatusOK, code)

	open := res["open"].([]any)
	require.Len(t, open, 1)
	put := open[0]
	assert.Equal(t, "PETRO300", field(t, put, "ticker"))
	assert.Equal(t, "PUT", field(t, put, "type"))
	assert.Equal(t, "SELL", field(t, put, "direction"))
	assert.Equal(t, 100.0, field(t, put, "max_result"))
	assert.Equal(t, false, field(t, put, "coverage", "covered"))
	assert.Equal(t, 2000.0, field(t, put, "coverage", "free_amount"))
	assert.Equal(t, 1000.0, field(t, put, "coverage", "shortfall_amount"))
	assert.NotNil(t, field(t, put, "risk"))

	closed := res["closed"].([]any)
	require.Len(t, closed, 1)
	assert.Equal(t, "call", field(t, closed[0], "id"))
	assert.Equal(t, "c1", field(t, closed[0], "closing", "id"))
	assert.Equal(t, 150.0, field(t, closed[0], "result"))
	assert.InDelta(t, 75.0, field(t, closed[0], "result_percent"), 0.001)
}

func TestProfits(t *testing.T) {
	h := newTestServer(t, store.NewMemory(book()))

	tests := []struct {
		name    string
		target  string
		code    int
		buckets []string
	}{
		{name: "default monthly", target: "/api/profits", code: http.StatusOK, buckets: []string{"2024-03"}},
		{name: "yearly ascending", target: "/api/profits?period=year&order=asc", code: http.StatusOK, buckets: []string{"2024"}},
		{name: "year without closings", target: "/api/profits?year=2023", code: http.StatusOK, buckets: []string{}},
		{name: "unknown period", target: "/api/profits?period=week", code: http.StatusBadRequest},
		{name: "unknown order", target: "/api/profits?order=sideways", code: http.StatusBadRequest},
		{name: "invalid year", target: "/api/profits?year=abc", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, res := do(t, h, http.MethodGet, tt.target, nil)

			require.Equal(t, tt.code, code, res)
			if tt.code != http.StatusOK {
				assert.NotEmpty(t, res["error"])
				return
			}
			keys := []string{}
			for _, b := range res["buckets"].([]any) {
				keys = append(keys, field(t, b, "key").(string))
			}
			assert.Equal(t, tt.buckets, keys)
		})
	}

	_, res := do(t, h, http.MethodGet, "/api/profits", nil)
	assert.Equal(t, 150.0, res["total"])
	bucket := res["buckets"].([]any)[0]
	assert.Equal(t, "março de 2024", field(t, bucket, "name"))
	assert.Equal(t, 150.0, field(t, bucket, "gain"))
	assert.Equal(t, 0.0, field(t, bucket, "loss"))
	assert.Equal(t, 1.0, field(t, bucket, "count"))
}

func TestCollateral(t *testing.T) {
	h := newTestServer(t, store.NewMemory(book()))

	code, res := do(t, h, http.MethodGet, "/api/collateral", nil)
	require.Equal(t, http.StatusOK, code)

	fixed := res["fixed_income"].([]any)
	require.Len(t, fixed, 1)
	assert.Equal(t, "caixa", field(t, fixed[0], "instrument"))
	assert.Equal(t, 3000.0, field(t, fixed[0], "pledged"))
	assert.Equal(t, -1000.0, field(t, fixed[0], "free"))
	assert.Equal(t, 2000.0, res["total_amount"])
	assert.Empty(t, res["equities"])
}

func TestGoals(t *testing.T) {
	h := newTestServer(t, store.NewMemory(book()))

	goals := doList(t, h, "/api/goals")

	require.Len(t, goals, 1)
	assert.Equal(t, "Meta mensal", field(t, goals[0], "title"))
	assert.Equal(t, 50.0, field(t, goals[0], "current"))
	assert.Equal(t, 50.0, field(t, goals[0], "remaining"))
	assert.Equal(t, "behind", field(t, goals[0], "band"))
}

func TestPreview(t *testing.T) {
	h := newTestServer(t, store.NewMemory(book()))

	candidate := `{"ticker":"petrp200","underlying":"petr4","type":"put","direction":"venda",
		"strike":20,"quote":22,"quantity":100,"premium":0.5,"expiration":"2024-04-19"}`
	code, res := do(t, h, http.MethodPost, "/api/preview", strings.NewReader(candidate))

	require.Equal(t, http.StatusOK, code, res)
	assert.Equal(t, "PETRP200", res["ticker"])
	assert.Equal(t, "PETR4", res["underlying"])
	assert.Equal(t, 50.0, res["max_result"])
	assert.Equal(t, 2000.0, field(t, res, "coverage", "required_amount"))
	assert.Equal(t, -1000.0, field(t, res, "coverage", "free_amount"))
	assert.Equal(t, 3000.0, field(t, res, "coverage", "shortfall_amount"))
	assert.InDelta(t, 2.5, res["collateral_yield"], 0.001)
	assert.NotNil(t, res["max_profitability"])
}

func TestPreview_Invalid(t *testing.T) {
	h := newTestServer(t, store.NewMemory(book()))

	code, res := do(t, h, http.MethodPost, "/api/preview", strings.NewReader(`{"type":"straddle"}`))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, res["error"], "straddle")

	code, res = do(t, h, http.MethodPost, "/api/preview", strings.NewReader(`{"ticker":"PETRP200","underlying":"PETR4","quantity":0}`))
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, res["error"], "quantity")
}

type failingStore struct{ store.Store }

func (failingStore) Snapshot(context.Context, string) (*opcoes.Snapshot, error) {
	return nil, errors.New("connection refused")
}

func TestStoreFailure(t *testing.T) {
	h := newTestServer(t, failingStore{})

	code, res := do(t, h, http.MethodGet, "/api/dashboard", nil)

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, res["error"], "connection refused")
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, store.NewMemory(book()))

	req := httptest.NewRequest(http.MethodOptions, "/api/dashboard", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
