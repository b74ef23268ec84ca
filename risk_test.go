package opcoes

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		dir  Direction
		typ  InstrumentType
		div  Percent
		want RiskLevel
	}{
		// bought call or put: the farther the strike, the riskier
		{Buy, Call, -0.01, VeryLow},
		{Buy, Call, 0, Low},
		{Buy, Call, 4, Low},
		{Buy, Call, 4.01, Medium},
		{Buy, Call, 6, Medium},
		{Buy, Call, 6.01, High},
		{Buy, Put, -3, VeryLow},
		{Buy, Put, 2, Low},
		{Buy, Put, 5, Medium},
		{Buy, Put, 12, High},

		// sold put: the farther the strike, the safer
		{Sell, Put, -0.5, VeryHigh},
		{Sell, Put, 0, High},
		{Sell, Put, 4, High},
		{Sell, Put, 4.5, Medium},
		{Sell, Put, 6, Medium},
		{Sell, Put, 6.5, Low},

		// sold call: strict comparisons
		{Sell, Call, -1, VeryHigh},
		{Sell, Call, 0, High},
		{Sell, Call, 3, High},
		{Sell, Call, 3.01, Medium},
		{Sell, Call, 6, Medium},
		{Sell, Call, 6.01, Low},
	}
	for _, test := range tests {
		if got := Classify(test.dir, test.typ, test.div); got != test.want {
			t.Errorf("Classify(%v, %v, %v) = %v, want %v", test.dir, test.typ, test.div, got, test.want)
		}
	}
}

func TestPosition_Risk(t *testing.T) {
	tests := []struct {
		name      string
		dir       Direction
		typ       InstrumentType
		strike    float64
		quote     float64
		wantLevel RiskLevel
		wantGauge int
		wantLabel string
	}{
		{"sold call far out of the money", Sell, Call, 35, 30, Low, 20, "baixo"},
		{"sold call in the money", Sell, Call, 28, 30, VeryHigh, 90, "altíssimo"},
		{"sold put close to the money", Sell, Put, 29, 30, High, 70, "alto"},
		{"bought call in the money", Buy, Call, 28, 30, VeryLow, 10, "baixíssimo"},
		{"bought put medium", Buy, Put, 28.5, 30, Medium, 70, "médio"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := option("p", test.dir, test.typ, "PETR4", 100, test.strike, 1)
			p.Quote = BR(test.quote)
			r, ok := p.Risk()
			if !ok {
				t.Fatalf("Risk() not applicable")
			}
			if r.Level != test.wantLevel {
				t.Errorf("Risk().Level = %v, want %v", r.Level, test.wantLevel)
			}
			if r.Gauge != test.wantGauge {
				t.Errorf("Risk().Gauge = %d, want %d", r.Gauge, test.wantGauge)
			}
			if r.Level.Label() != test.wantLabel {
				t.Errorf("Risk().Level.Label() = %q, want %q", r.Level.Label(), test.wantLabel)
			}
		})
	}

	p := option("p", Sell, Call, "PETR4", 100, 30, 1)
	p.Quote = R(0)
	if _, ok := p.Risk(); ok {
		t.Errorf("Risk() without quote should not be applicable")
	}
}
