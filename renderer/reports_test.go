package renderer

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/etnz/opcoes"
	east "github.com/yuin/goldmark/extension/ast"
)

func position(id string, dir opcoes.Direction, typ opcoes.InstrumentType, underlying string, qty, strike, premium float64) opcoes.Position {
	return opcoes.Position{
		ID:         id,
		Ticker:     underlying[:4] + "X" + id,
		Underlying: underlying,
		Type:       typ,
		Direction:  dir,
		Strike:     opcoes.R(strike),
		Quote:      opcoes.R(strike),
		Quantity:   opcoes.Q(qty),
		Premium:    opcoes.R(premium),
		Expiration: opcoes.NewDate(2024, time.March, 15),
		Created:    time.Date(2024, time.February, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestDashboardMarkdown(t *testing.T) {
	today := opcoes.NewDate(2024, time.March, 12)
	put := position("p1", opcoes.Sell, opcoes.Put, "PETR4", 100, 30, 1)
	call := position("p2", opcoes.Sell, opcoes.Call, "VALE3", 100, 70, 2)
	call.Expiration = opcoes.NewDate(2024, time.April, 19)
	s := &opcoes.Snapshot{Positions: []opcoes.Position{put, call}}

	o := parse(t, DashboardMarkdown(opcoes.NewDashboard(s, today, opcoes.DefaultAlertDays)))

	want := []string{"Dashboard em 12/03/2024", "Distribuição", "Alertas de vencimento"}
	if !slices.Equal(o.headings, want) {
		t.Errorf("headings = %q, want %q", o.headings, want)
	}
	cards := o.table(t, 0)
	if got := cell(t, cards, "Operações abertas", 1); got != "2" {
		t.Errorf("open count = %q, want 2", got)
	}
	if got := cell(t, cards, "Garantia em renda fixa", 1); !strings.Contains(got, "insuficiente") {
		t.Errorf("put collateral = %q, want it flagged as short", got)
	}
	if got := cell(t, o.table(t, 1), "PUT", 2); got != "50,00%" {
		t.Errorf("put share = %q, want 50,00%%", got)
	}
	alerts := o.table(t, 2)
	if len(alerts) != 2 || cell(t, alerts, put.Ticker, 3) != "3 dias" {
		t.Errorf("alerts = %v, want only %s in 3 days", alerts, put.Ticker)
	}
}

func TestDashboardMarkdown_Empty(t *testing.T) {
	o := parse(t, DashboardMarkdown(opcoes.NewDashboard(&opcoes.Snapshot{}, opcoes.NewDate(2024, time.March, 12), 5)))

	if got := cell(t, o.table(t, 1), "CALL", 2); got != opcoes.NotApplicable {
		t.Errorf("call share without positions = %q, want %q", got, opcoes.NotApplicable)
	}
	if len(o.tables) != 2 {
		t.Errorf("got %d tables, want no alert table", len(o.tables))
	}
}

func TestPositionsMarkdown(t *testing.T) {
	open := position("p1", opcoes.Sell, opcoes.Call, "PETR4", 200, 38, 1)
	closed := position("p2", opcoes.Sell, opcoes.Put, "PETR4", 100, 30, 0.85)
	s := &opcoes.Snapshot{
		Positions: []opcoes.Position{open, closed},
		Closings: []opcoes.Closing{{
			ID: "c1", Position: "p2", Premium: opcoes.R(0.2), Quantity: opcoes.Q(100),
			Date: opcoes.NewDate(2024, time.March, 5),
		}},
		Collaterals: []opcoes.Collateral{{ID: "g1", Kind: opcoes.Equity, Ticker: "PETR4", Quantity: opcoes.Q(100)}},
	}

	o := parse(t, PositionsMarkdown(s))

	want := []string{"Operações", "Abertas (1)", "Encerradas (1)"}
	if !slices.Equal(o.headings, want) {
		t.Errorf("headings = %q, want %q", o.headings, want)
	}
	if got := cell(t, o.table(t, 0), "p1", 9); got != "Alavancado em 100 ações" {
		t.Errorf("coverage = %q, want a 100 shares shortfall", got)
	}
	if got := cell(t, o.table(t, 1), "p2", 7); got != "+76,47%" {
		t.Errorf("result percent = %q, want +76,47%%", got)
	}
}

func TestProfitsMarkdown(t *testing.T) {
	p1 := position("p1", opcoes.Sell, opcoes.Put, "PETR4", 100, 30, 1)
	p2 := position("p2", opcoes.Buy, opcoes.Call, "VALE3", 100, 70, 2)
	closings := []opcoes.Closing{
		{ID: "c1", Position: "p1", Premium: opcoes.R(0.5), Quantity: opcoes.Q(100), Date: opcoes.NewDate(2024, time.February, 20)},
		{ID: "c2", Position: "p2", Premium: opcoes.R(1), Quantity: opcoes.Q(100), Date: opcoes.NewDate(2024, time.March, 1)},
	}
	bs := opcoes.Aggregate([]opcoes.Position{p1, p2}, closings, opcoes.Monthly)

	o := parse(t, ProfitsMarkdown(bs, false))
	table := o.table(t, 0)
	if len(table) != 4 {
		t.Fatalf("table = %v, want header, two months and total", table)
	}
	if table[1][0] != "março de 2024" || table[2][0] != "fevereiro de 2024" {
		t.Errorf("months = %q, %q, want most recent first", table[1][0], table[2][0])
	}
	if got := cell(t, table, "março de 2024", 3); got != opcoes.R(100).String() {
		t.Errorf("march loss = %q, want %s", got, opcoes.R(100))
	}
	if got, want := o.aligns[0], []east.Alignment{east.AlignLeft, east.AlignRight, east.AlignRight, east.AlignRight}; !slices.Equal(got, want) {
		t.Errorf("column alignments = %v, want period left and amounts right", got)
	}

	asc := parse(t, ProfitsMarkdown(bs, true)).table(t, 0)
	if asc[1][0] != "fevereiro de 2024" {
		t.Errorf("ascending first month = %q, want fevereiro de 2024", asc[1][0])
	}

	empty := parse(t, ProfitsMarkdown(opcoes.Aggregate(nil, nil, opcoes.Yearly), false))
	if empty.headings[0] != "Resultados anuais" || len(empty.tables) != 0 {
		t.Errorf("empty yearly report = %+v", empty)
	}
}

func TestCollateralMarkdown(t *testing.T) {
	open := []opcoes.Position{position("p1", opcoes.Sell, opcoes.Put, "PETR4", 100, 30, 1)}
	collaterals := []opcoes.Collateral{
		{ID: "g1", Kind: opcoes.FixedIncome, Instrument: opcoes.TesouroSelic, Amount: opcoes.R(5000)},
		{ID: "g2", Kind: opcoes.Equity, Ticker: "VALE3", Quantity: opcoes.Q(300)},
	}
	o := parse(t, CollateralMarkdown(opcoes.Allocate(open, collaterals, opcoes.ByCreation)))

	if got := cell(t, o.table(t, 0), "g2", 4); got != "Livre" {
		t.Errorf("equity status = %q, want Livre", got)
	}
	fixed := o.table(t, 1)
	if got := cell(t, fixed, "g1", 3); got != opcoes.R(3000).String() {
		t.Errorf("pledged = %q, want %s", got, opcoes.R(3000))
	}
	if got := cell(t, fixed, "Total", 4); got != opcoes.R(2000).String() {
		t.Errorf("free total = %q, want %s", got, opcoes.R(2000))
	}
}

func TestGoalsMarkdown(t *testing.T) {
	g := opcoes.Goal{ID: "m1", Kind: opcoes.AnnualGoal, Target: opcoes.R(1000), Year: 2024}
	progress := []opcoes.GoalProgress{{Goal: g, Current: opcoes.R(600), Percent: 60, Remaining: opcoes.R(400), Band: opcoes.GoalOnTrack}}

	table := parse(t, GoalsMarkdown(progress)).table(t, 0)
	if got := cell(t, table, "m1", 1); got != "Meta 2024" {
		t.Errorf("title = %q, want Meta 2024", got)
	}
	if got := cell(t, table, "m1", 6); got != "No caminho" {
		t.Errorf("band = %q, want No caminho", got)
	}

	if o := parse(t, GoalsMarkdown(nil)); len(o.tables) != 0 || len(o.text) != 1 {
		t.Errorf("no goal report = %+v", o)
	}
}

func TestPreviewMarkdown(t *testing.T) {
	p := position("", opcoes.Sell, opcoes.Put, "PETR4", 100, 30, 1)
	p.Ticker = "PETRO300"
	cov := opcoes.Evaluate(p, opcoes.Allocation{})

	o := parse(t, PreviewMarkdown(p, cov))

	if o.headings[0] != "Simulação: Venda PUT PETRO300" {
		t.Errorf("title = %q", o.headings[0])
	}
	items := o.table(t, 0)
	if got := cell(t, items, "Ganho máximo", 1); got != opcoes.R(100).String() {
		t.Errorf("max gain = %q, want %s", got, opcoes.R(100))
	}
	if got := cell(t, items, "Rentabilidade máxima", 1); got == opcoes.NotApplicable {
		t.Errorf("max profitability should apply to a sold put")
	}
	if last := o.text[len(o.text)-1]; !strings.HasPrefix(last, "Alavancado em") {
		t.Errorf("coverage = %q, want a shortfall", last)
	}
}
