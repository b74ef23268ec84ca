package opcoes

// DefaultAlertDays is how many days ahead an expiration raises an alert.
const DefaultAlertDays = 5

// Distribution counts the open positions per instrument type.
type Distribution struct {
	Calls, Puts int
}

// Total is the number of open positions.
func (d Distribution) Total() int { return d.Calls + d.Puts }

// CallShare is the percentage of calls. ok is false when there is no open position.
func (d Distribution) CallShare() (Percent, bool) {
	if d.Total() == 0 {
		return 0, false
	}
	return Percent(float64(d.Calls) * 100 / float64(d.Total())), true
}

// PutShare is the percentage of puts. ok is false when there is no open position.
func (d Distribution) PutShare() (Percent, bool) {
	if d.Total() == 0 {
		return 0, false
	}
	return Percent(float64(d.Puts) * 100 / float64(d.Total())), true
}

// Alert is an open position expiring soon.
type Alert struct {
	Position
	DaysLeft int
}

// Dashboard summarizes a book on a given day.
type Dashboard struct {
	On            Date
	OpenCount     int
	MonthResult   Money // realized during On's month
	MaxEstimated  Money // sum of MaxResult over open positions
	Notional      Money // sum of Notional over open sold puts
	PutCollateral Money // sum of fixed-income collateral
	Distribution  Distribution
	Alerts        []Alert
}

// PutCollateralShort reports whether the fixed-income collateral is below the notional of sold puts.
func (d Dashboard) PutCollateralShort() bool { return d.PutCollateral.LessThan(d.Notional) }

// NewDashboard computes the dashboard of s on day today. Open positions
// expiring within alertDays (today included) are reported as alerts.
func NewDashboard(s *Snapshot, today Date, alertDays int) Dashboard {
	d := Dashboard{
		On:            today,
		MonthResult:   R(0),
		MaxEstimated:  R(0),
		Notional:      R(0),
		PutCollateral: R(0),
	}
	month := Monthly.Range(today)
	for _, c := range s.Closed() {
		if month.Contains(c.Closing.Date) {
			d.MonthResult = d.MonthResult.Add(c.Result())
		}
	}

	horizon := NewRange(today, today.Add(alertDays))
	for _, p := range s.OpenByExpiration() {
		d.OpenCount++
		d.MaxEstimated = d.MaxEstimated.Add(p.MaxResult())
		switch p.Type {
		case Call:
			d.Distribution.Calls++
		case Put:
			d.Distribution.Puts++
			if p.Direction == Sell {
				d.Notional = d.Notional.Add(p.Notional())
			}
		}
		if !p.Expiration.IsZero() && horizon.Contains(p.Expiration) {
			d.Alerts = append(d.Alerts, Alert{Position: p, DaysLeft: today.DaysUntil(p.Expiration)})
		}
	}

	for _, c := range s.Collaterals {
		if c.Kind == FixedIncome {
			d.PutCollateral = d.PutCollateral.Add(c.Amount)
		}
	}
	return d
}
