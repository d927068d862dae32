package core

import (
	"time"
)

// CategoryAmount is one slice of the category breakdown.
type CategoryAmount struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Transaction is a display-ready row for the dashboard's recent list.
type Transaction struct {
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
}

// MonthTotal pairs one trailing month's expense total with the income
// figure used for comparison.
type MonthTotal struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// TotalExpenses sums house plus electricity across all records. Water,
// waste and additional charges are intentionally excluded: the dashboard
// headline tracks the fixed rental bill only.
func TotalExpenses(expenses []Expense) float64 {
	var sum float64
	for _, e := range expenses {
		sum += e.House + e.Electricity
	}
	return sum
}

// ExpensesByCategory returns the fixed-order category breakdown. Absent
// optional fields count as zero.
func ExpensesByCategory(expenses []Expense) []CategoryAmount {
	var house, electricity, water, waste, additional float64
	for _, e := range expenses {
		house += e.House
		electricity += e.Electricity
		water += deref(e.Water)
		waste += deref(e.Waste)
		additional += deref(e.Additional)
	}
	return []CategoryAmount{
		{Name: "House", Value: house},
		{Name: "Electricity", Value: electricity},
		{Name: "Water", Value: water},
		{Name: "Waste", Value: waste},
		{Name: "Additional", Value: additional},
	}
}

// RecentTransactions maps the first n expenses to display rows. Ordering
// is the caller's: the repository lists date-descending by default, so the
// first records are the most recent.
func RecentTransactions(expenses []Expense, n int) []Transaction {
	if n <= 0 {
		n = 5
	}
	if n > len(expenses) {
		n = len(expenses)
	}
	out := make([]Transaction, 0, n)
	for _, e := range expenses[:n] {
		room := ""
		if len(e.Users) > 0 {
			room = e.Users[0].Room
		}
		out = append(out, Transaction{
			Description: "Room " + room + " Expense",
			Category:    "Rental",
			Date:        e.Date,
			Amount:      FormatAmount(e.House + e.Electricity),
			Type:        "expense",
		})
	}
	return out
}

// MonthlyComparison buckets house+electricity totals into the trailing six
// calendar months ending at now, paired with a constant income figure.
//
// Records are matched by short month name only, so two same-named months
// twelve months apart land in the same bucket.
func MonthlyComparison(expenses []Expense, income float64, now time.Time) []MonthTotal {
	months := make([]MonthTotal, 0, 6)
	for i := 5; i >= 0; i-- {
		m := now.AddDate(0, -i, 0)
		months = append(months, MonthTotal{Month: m.Format("Jan"), Income: income})
	}
	for _, e := range expenses {
		d, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			continue
		}
		name := d.Format("Jan")
		for i := range months {
			if months[i].Month == name {
				months[i].Expense += e.House + e.Electricity
			}
		}
	}
	return months
}

// SavingsRate is the percentage of income left after expenses. Zero or
// negative income yields 0.
func SavingsRate(income, totalExpenses float64) float64 {
	if income <= 0 {
		return 0
	}
	return (income - totalExpenses) / income * 100
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
