package server

import (
	"github.com/etnz/opcoes"
)

// percent drops percentages that cannot be computed.
func percent(p opcoes.Percent, ok bool) *opcoes.Percent {
	if !ok {
		return nil
	}
	return &p
}

type riskView struct {
	Level      string         `json:"level"`
	Label      string         `json:"label"`
	Divergence opcoes.Percent `json:"divergence"`
	Gauge      int            `json:"gauge"`
}

type coverageView struct {
	Regime            string          `json:"regime"`
	Covered           bool            `json:"covered"`
	Label             string          `json:"label"`
	RequiredShares    opcoes.Quantity `json:"required_shares"`
	FreeShares        opcoes.Quantity `json:"free_shares"`
	ShortfallQuantity opcoes.Quantity `json:"shortfall_quantity"`
	RequiredAmount    opcoes.Money    `json:"required_amount"`
	FreeAmount        opcoes.Money    `json:"free_amount"`
	ShortfallAmount   opcoes.Money    `json:"shortfall_amount"`
}

func newCoverageView(c opcoes.Coverage) coverageView {
	return coverageView{
		Regime:            c.Regime.String(),
		Covered:           c.Covered(),
		Label:             c.Label(),
		RequiredShares:    c.RequiredShares,
		FreeShares:        c.FreeShares,
		ShortfallQuantity: c.ShortfallQuantity,
		RequiredAmount:    c.RequiredAmount,
		FreeAmount:        c.FreeAmount,
		ShortfallAmount:   c.ShortfallAmount,
	}
}

// openView is an open position with its valuation.
type openView struct {
	opcoes.Position
	InitialValue     opcoes.Money    `json:"initial_value"`
	MaxResult        opcoes.Money    `json:"max_result"`
	MaxResultLabel   string          `json:"max_result_label"`
	Notional         opcoes.Money    `json:"notional"`
	CollateralYield  *opcoes.Percent `json:"collateral_yield,omitempty"`
	MaxProfitability *opcoes.Percent `json:"max_profitability,omitempty"`
	Risk             *riskView       `json:"risk,omitempty"`
	Coverage         coverageView    `json:"coverage"`
}

func newOpenView(p opcoes.Position, cov opcoes.Coverage) openView {
	v := openView{
		Position:         p,
		InitialValue:     p.InitialValue(),
		MaxResult:        p.MaxResult(),
		MaxResultLabel:   p.MaxResultLabel(),
		Notional:         p.Notional(),
		CollateralYield:  percent(p.CollateralYield()),
		MaxProfitability: percent(p.MaxProfitability()),
		Coverage:         newCoverageView(cov),
	}
	if r, ok := p.Risk(); ok {
		v.Risk = &riskView{Level: r.Level.String(), Label: r.Level.Label(), Divergence: r.Divergence, Gauge: r.Gauge}
	}
	return v
}

// closedView is a closed position with its realized result.
type closedView struct {
	opcoes.Position
	Closing       opcoes.Closing  `json:"closing"`
	FinalValue    opcoes.Money    `json:"final_value"`
	Result        opcoes.Money    `json:"result"`
	ResultPercent *opcoes.Percent `json:"result_percent,omitempty"`
}

func newClosedView(c opcoes.ClosedPosition) closedView {
	return closedView{
		Position:      c.Position,
		Closing:       c.Closing,
		FinalValue:    c.Closing.FinalValue(),
		Result:        c.Result(),
		ResultPercent: percent(c.ResultPercent()),
	}
}

type positionsView struct {
	Open   []openView   `json:"open"`
	Closed []closedView `json:"closed"`
}

type alertView struct {
	ID         string                `json:"id"`
	Ticker     string                `json:"ticker"`
	Underlying string                `json:"underlying"`
	Type       opcoes.InstrumentType `json:"type"`
	Direction  opcoes.Direction      `json:"direction"`
	Expiration opcoes.Date           `json:"expiration"`
	DaysLeft   int                   `json:"days_left"`
}

type distributionView struct {
	Calls     int             `json:"calls"`
	Puts      int             `json:"puts"`
	CallShare *opcoes.Percent `json:"call_share,omitempty"`
	PutShare  *opcoes.Percent `json:"put_share,omitempty"`
}

type dashboardView struct {
	On                 opcoes.Date      `json:"on"`
	OpenCount          int              `json:"open_count"`
	MonthResult        opcoes.Money     `json:"month_result"`
	MaxEstimated       opcoes.Money     `json:"max_estimated"`
	Notional           opcoes.Money     `json:"notional"`
	PutCollateral      opcoes.Money     `json:"put_collateral"`
	PutCollateralShort bool             `json:"put_collateral_short"`
	Distribution       distributionView `json:"distribution"`
	Alerts             []alertView      `json:"alerts"`
}

func newDashboardView(d opcoes.Dashboard) dashboardView {
	v := dashboardView{
		On:                 d.On,
		OpenCount:          d.OpenCount,
		MonthResult:        d.MonthResult,
		MaxEstimated:       d.MaxEstimated,
		Notional:           d.Notional,
		PutCollateral:      d.PutCollateral,
		PutCollateralShort: d.PutCollateralShort(),
		Distribution: distributionView{
			Calls:     d.Distribution.Calls,
			Puts:      d.Distribution.Puts,
			CallShare: percent(d.Distribution.CallShare()),
			PutShare:  percent(d.Distribution.PutShare()),
		},
		Alerts: make([]alertView, 0, len(d.Alerts)),
	}
	for _, a := range d.Alerts {
		v.Alerts = append(v.Alerts, alertView{
			ID:         a.ID,
			Ticker:     a.Ticker,
			Underlying: a.Underlying,
			Type:       a.Type,
			Direction:  a.Direction,
			Expiration: a.Expiration,
			DaysLeft:   a.DaysLeft,
		})
	}
	return v
}

type bucketView struct {
	Key       string       `json:"key"`
	Name      string       `json:"name"`
	ShortName string       `json:"short_name"`
	Start     opcoes.Date  `json:"start"`
	Count     int          `json:"count"`
	Total     opcoes.Money `json:"total"`
	Gain      opcoes.Money `json:"gain"`
	Loss      opcoes.Money `json:"loss"`
}

type profitsView struct {
	Period  string       `json:"period"`
	Buckets []bucketView `json:"buckets"`
	Total   opcoes.Money `json:"total"`
}

func newProfitsView(bs opcoes.Buckets, ascending bool) profitsView {
	list := bs.Descending()
	if ascending {
		list = bs.Ascending()
	}
	v := profitsView{Period: bs.Period().String(), Buckets: make([]bucketView, 0, len(list)), Total: bs.Total()}
	for _, b := range list {
		v.Buckets = append(v.Buckets, bucketView{
			Key:       b.Key,
			Name:      b.Name(),
			ShortName: b.ShortName(),
			Start:     b.Start,
			Count:     len(b.Members),
			Total:     b.Total,
			Gain:      b.Gain(),
			Loss:      b.Loss(),
		})
	}
	return v
}

type equityView struct {
	opcoes.Collateral
	Pledged opcoes.Quantity `json:"pledged"`
	Free    opcoes.Quantity `json:"free"`
	Status  string          `json:"status"`
}

type fixedIncomeView struct {
	opcoes.Collateral
	Pledged opcoes.Money `json:"pledged"`
	Free    opcoes.Money `json:"free"`
}

type collateralView struct {
	Equities    []equityView      `json:"equities"`
	FixedIncome []fixedIncomeView `json:"fixed_income"`
	TotalAmount opcoes.Money      `json:"total_amount"`
	FreeAmount  opcoes.Money      `json:"free_amount"`
}

func newCollateralView(a opcoes.Allocation) collateralView {
	v := collateralView{
		Equities:    make([]equityView, 0, len(a.Equities)),
		FixedIncome: make([]fixedIncomeView, 0, len(a.FixedIncome)),
		TotalAmount: a.TotalAmount(),
		FreeAmount:  a.FreeAmount(),
	}
	for _, h := range a.Equities {
		v.Equities = append(v.Equities, equityView{Collateral: h.Collateral, Pledged: h.Pledged, Free: h.Free, Status: h.Status()})
	}
	for _, h := range a.FixedIncome {
		v.FixedIncome = append(v.FixedIncome, fixedIncomeView{Collateral: h.Collateral, Pledged: h.Pledged, Free: h.Free})
	}
	return v
}

type goalView struct {
	opcoes.Goal
	Title     string         `json:"title"`
	Current   opcoes.Money   `json:"current"`
	Percent   opcoes.Percent `json:"percent"`
	Remaining opcoes.Money   `json:"remaining"`
	Band      string         `json:"band"`
}

func newGoalView(gp opcoes.GoalProgress) goalView {
	return goalView{
		Goal:      gp.Goal,
		Title:     gp.Goal.Title(),
		Current:   gp.Current,
		Percent:   gp.Percent,
		Remaining: gp.Remaining,
		Band:      gp.Band.String(),
	}
}
