package opcoes

import (
	"errors"
	"testing"
	"time"
)

func TestPosition_Validate(t *testing.T) {
	valid := option("p", Sell, Call, "PETR4", 100, 38, 0.5)
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}

	broken := valid
	broken.Premium = BR(-1)
	broken.Quantity = Q(0)
	broken.Expiration = Date{}
	err := broken.Validate()
	if err == nil {
		t.Fatalf("Validate() expected an error")
	}
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Validate() error %v does not wrap ErrInvalid", err)
	}
	if n := len(err.(interface{ Unwrap() []error }).Unwrap()); n != 3 {
		t.Errorf("Validate() reported %d failures, want 3: %v", n, err)
	}
}

func TestClosing_Validate(t *testing.T) {
	p := option("p", Sell, Call, "PETR4", 100, 38, 0.5)
	tests := []struct {
		name    string
		closing Closing
		wantErr bool
	}{
		{"business day", closing("c", p, 0.2, "2024-03-08"), false},
		{"zero premium is fine", closing("c", p, 0, "2024-03-08"), false},
		{"saturday", closing("c", p, 0.2, "2024-03-09"), true},
		{"sunday", closing("c", p, 0.2, "2024-03-10"), true},
		{"negative premium", closing("c", p, -0.2, "2024-03-08"), true},
		{"no date", Closing{Position: "p", Premium: BR(1), Quantity: Q(1)}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.closing.Validate()
			if (err != nil) != test.wantErr {
				t.Errorf("Validate() = %v, want error %v", err, test.wantErr)
			}
		})
	}
}

func TestCollateral_Validate(t *testing.T) {
	tests := []struct {
		name       string
		collateral Collateral
		wantErr    bool
	}{
		{"share code", stock("s", "PETR4", 100, 0), false},
		{"unit code", stock("s", "TAEE11", 100, 0), false},
		{"lower case", stock("s", "petr4", 100, 0), true},
		{"option code", stock("s", "PETRK300", 100, 0), true},
		{"negative shares", stock("s", "VALE3", -1, 0), true},
		{"fixed income", fixed("f", 1000, 0), false},
		{"negative amount", fixed("f", -10, 0), true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.collateral.Validate()
			if (err != nil) != test.wantErr {
				t.Errorf("Validate() = %v, want error %v", err, test.wantErr)
			}
		})
	}
}

func TestGoal_Validate(t *testing.T) {
	if err := (Goal{Kind: AnnualGoal, Target: BR(100), Year: 2025}).Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if err := (Goal{Kind: AnnualGoal, Target: BR(100)}).Validate(); err == nil {
		t.Errorf("Validate() expected an error for a missing year")
	}
	if err := (Goal{Kind: MonthlyGoal, Target: BR(0), Year: time.Now().Year()}).Validate(); err == nil {
		t.Errorf("Validate() expected an error for a zero target")
	}
}
