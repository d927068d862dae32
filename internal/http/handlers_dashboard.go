package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

type dashboardSummary struct {
	TotalExpenses      float64               `json:"totalExpenses"`
	ExpensesByCategory []core.CategoryAmount `json:"expensesByCategory"`
	RecentTransactions []core.Transaction    `json:"recentTransactions"`
	MonthlyComparison  []core.MonthTotal     `json:"monthlyComparison"`
	SavingsRate        float64               `json:"savingsRate"`
}

const (
	dashboardPageSize   = 100
	recentTransactionsN = 5
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	income := s.income
	if v := r.URL.Query().Get("income"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "Invalid income")
			return
		}
		income = parsed
	}

	cacheKey := fmt.Sprintf("income=%.2f", income)
	if summary, ok := s.dashCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	expenses, err := s.allExpenses(r.Context())
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	total := core.TotalExpenses(expenses)
	summary := dashboardSummary{
		TotalExpenses:      total,
		ExpensesByCategory: core.ExpensesByCategory(expenses),
		RecentTransactions: core.RecentTransactions(expenses, recentTransactionsN),
		MonthlyComparison:  core.MonthlyComparison(expenses, income, time.Now()),
		SavingsRate:        core.SavingsRate(income, total),
	}

	s.dashCache.Set(cacheKey, summary)
	writeJSON(w, http.StatusOK, summary)
}

// allExpenses walks every page of the collection. Aggregations need the
// full history, not a window.
func (s *Server) allExpenses(ctx context.Context) ([]core.Expense, error) {
	var expenses []core.Expense
	opts := store.ListOptions{
		Page:          1,
		PageSize:      dashboardPageSize,
		SortField:     "date",
		SortDirection: store.SortDescending,
	}

	for {
		page, err := s.stores.List(ctx, opts)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, page.Items...)
		if opts.Page >= page.TotalPages || len(page.Items) == 0 {
			return expenses, nil
		}
		opts.Page++
	}
}
