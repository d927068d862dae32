package core

import "testing"

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Date:        "2025-08-01",
		House:       500,
		Electricity: 100,
		Users:       []ExpenseUser{{Name: "Alice", Amount: 250, ElectricityShare: 0.5}},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid expense rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Expense)
	}{
		{"empty date", func(e *Expense) { e.Date = " " }},
		{"negative house", func(e *Expense) { e.House = -1 }},
		{"negative optional", func(e *Expense) { e.Water = Float(-5) }},
		{"nameless user", func(e *Expense) { e.Users[0].Name = "" }},
		{"negative share", func(e *Expense) { e.Users[0].ElectricityShare = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			e.Users = append([]ExpenseUser(nil), valid.Users...)
			tt.mutate(&e)
			if err := e.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestExpenseValidatePermissiveShares(t *testing.T) {
	// Shares are not required to sum to 1.
	e := Expense{
		Date:        "2025-08-01",
		Electricity: 100,
		Users: []ExpenseUser{
			{Name: "Alice", ElectricityShare: 0.5},
			{Name: "Bob", ElectricityShare: 0.7},
		},
	}
	if err := e.Validate(); err != nil {
		t.Errorf("over-allocated shares rejected: %v", err)
	}
}

func TestExpenseUserTotals(t *testing.T) {
	u := ExpenseUser{Amount: 250, ElectricityShare: 0.25, AdditionalAmount: Float(20)}
	if got := u.ElectricityAmount(100); got != 25 {
		t.Errorf("ElectricityAmount = %v, want 25", got)
	}
	if got := u.Total(100); got != 295 {
		t.Errorf("Total = %v, want 295", got)
	}
}

func TestDefaultExpenseTypes(t *testing.T) {
	types := DefaultExpenseTypes()
	if len(types) != 4 {
		t.Fatalf("got %d default types, want 4", len(types))
	}
	if types[0].Name != "Mining" {
		t.Errorf("first default type = %q", types[0].Name)
	}
	for _, typ := range types {
		if err := typ.Validate(); err != nil {
			t.Errorf("default type %q invalid: %v", typ.Name, err)
		}
	}
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	if p.Theme != "light" || p.Currency != "USD" || p.Language != "en" {
		t.Errorf("unexpected defaults: %+v", p)
	}
}
