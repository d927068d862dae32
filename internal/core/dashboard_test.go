package core

import (
	"testing"
	"time"
)

func sampleExpenses() []Expense {
	return []Expense{
		{
			Date:        "2025-08-01",
			House:       500,
			Electricity: 100,
			Users:       []ExpenseUser{{Name: "Alice", Room: "A1"}},
		},
		{
			Date:        "2025-07-01",
			House:       500,
			Electricity: 120,
			Water:       Float(30),
			Waste:       Float(10),
			Additional:  Float(25),
			Users:       []ExpenseUser{{Name: "Bob", Room: "B2"}},
		},
	}
}

func TestTotalExpenses(t *testing.T) {
	expenses := []Expense{{House: 500, Electricity: 100}}
	if got := TotalExpenses(expenses); got != 600 {
		t.Errorf("TotalExpenses = %v, want 600", got)
	}
	if got := TotalExpenses(nil); got != 0 {
		t.Errorf("TotalExpenses(nil) = %v, want 0", got)
	}
}

func TestExpensesByCategory(t *testing.T) {
	expenses := []Expense{{House: 500, Electricity: 100}}
	got := ExpensesByCategory(expenses)

	want := []CategoryAmount{
		{Name: "House", Value: 500},
		{Name: "Electricity", Value: 100},
		{Name: "Water", Value: 0},
		{Name: "Waste", Value: 0},
		{Name: "Additional", Value: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d categories, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExpensesByCategoryMatchesGrandTotal(t *testing.T) {
	expenses := sampleExpenses()

	var byCategory float64
	for _, c := range ExpensesByCategory(expenses) {
		byCategory += c.Value
	}

	// House+Electricity totals plus the optional categories must agree
	// with the headline total plus the same optional sums.
	optional := 30.0 + 10.0 + 25.0
	if got, want := byCategory, TotalExpenses(expenses)+optional; got != want {
		t.Errorf("category sum = %v, want %v", got, want)
	}
}

func TestRecentTransactions(t *testing.T) {
	expenses := sampleExpenses()
	got := RecentTransactions(expenses, 5)

	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	first := got[0]
	if first.Description != "Room A1 Expense" {
		t.Errorf("description = %q", first.Description)
	}
	if first.Category != "Rental" {
		t.Errorf("category = %q, want Rental", first.Category)
	}
	if first.Amount != "600.00" {
		t.Errorf("amount = %q, want 600.00", first.Amount)
	}

	if got := RecentTransactions(expenses, 1); len(got) != 1 {
		t.Errorf("limit 1 returned %d rows", len(got))
	}
}

func TestRecentTransactionsNoUsers(t *testing.T) {
	got := RecentTransactions([]Expense{{Date: "2025-08-01", House: 100}}, 5)
	if got[0].Description != "Room  Expense" {
		t.Errorf("description without users = %q", got[0].Description)
	}
}

func TestMonthlyComparison(t *testing.T) {
	now := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)
	got := MonthlyComparison(sampleExpenses(), 5000, now)

	if len(got) != 6 {
		t.Fatalf("got %d months, want 6", len(got))
	}
	if got[0].Month != "Mar" || got[5].Month != "Aug" {
		t.Errorf("month window = %q..%q, want Mar..Aug", got[0].Month, got[5].Month)
	}
	for _, m := range got {
		if m.Income != 5000 {
			t.Errorf("month %s income = %v, want 5000", m.Month, m.Income)
		}
		switch m.Month {
		case "Aug":
			if m.Expense != 600 {
				t.Errorf("Aug expense = %v, want 600", m.Expense)
			}
		case "Jul":
			if m.Expense != 620 {
				t.Errorf("Jul expense = %v, want 620", m.Expense)
			}
		default:
			if m.Expense != 0 {
				t.Errorf("month %s expense = %v, want 0", m.Month, m.Expense)
			}
		}
	}
}

func TestSavingsRate(t *testing.T) {
	tests := []struct {
		income, expenses, want float64
	}{
		{0, 123, 0},
		{1000, 1000, 0},
		{1000, 500, 50},
		{-100, 50, 0},
	}
	for _, tt := range tests {
		if got := SavingsRate(tt.income, tt.expenses); got != tt.want {
			t.Errorf("SavingsRate(%v, %v) = %v, want %v", tt.income, tt.expenses, got, tt.want)
		}
	}
}
