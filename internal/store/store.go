// Package store defines the contracts between the application and its
// document store, the record codec shared by every backend, and the tagged
// error type store operations report.
package store

import (
	"context"

	"rentledger/internal/core"
)

// Collection names, shared by every backend.
const (
	ExpenseCollection = "rental-expenses"
	TypeCollection    = "additional-expense-types"
	ProfileCollection = "users"
)

// SortAscending and SortDescending are the accepted ListOptions directions.
const (
	SortAscending  = "asc"
	SortDescending = "desc"
)

// ListOptions controls pagination, ordering and search for ExpenseStore.List.
// Zero values fall back to page 1, page size 10, date descending.
type ListOptions struct {
	Page          int
	PageSize      int
	SortField     string
	SortDirection string
	SearchTerm    string
}

// Normalize fills defaults in place and returns the options.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = 10
	}
	if o.SortField == "" {
		o.SortField = "date"
		o.SortDirection = SortDescending
	}
	if o.SortDirection != SortAscending && o.SortDirection != SortDescending {
		o.SortDirection = SortDescending
	}
	return o
}

// Offset is the number of ordered records preceding the requested page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.PageSize
}

// Page is one page of listed expenses plus the pagination bookkeeping the
// UI renders.
type Page struct {
	Items       []core.Expense `json:"items"`
	TotalItems  int            `json:"totalItems"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// PageCount computes the page total for a given item count and page size.
func PageCount(totalItems, pageSize int) int {
	if pageSize < 1 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// ExpenseStore is the expense collection. List serves offset pagination by
// walking and discarding the records before the requested page on every
// call; the cost is O(page * pageSize) per request and is accepted for the
// collection sizes of a household tool. Implementations must keep that
// observable behavior so a cursor-based store can replace it behind the
// same interface.
type ExpenseStore interface {
	List(ctx context.Context, opts ListOptions) (Page, error)
	Create(ctx context.Context, e core.Expense) (string, error)
	// Update and Delete are no-ops for an expense without an ID.
	Update(ctx context.Context, e core.Expense) error
	Delete(ctx context.Context, e core.Expense) error
	// SeedBulk imports spreadsheet rows with currency-string cleanup.
	SeedBulk(ctx context.Context, rows []SeedRow) (int, error)
}

// TypeStore is the additional-expense-type collection.
type TypeStore interface {
	ListTypes(ctx context.Context) ([]core.AdditionalExpenseType, error)
	CreateType(ctx context.Context, t core.AdditionalExpenseType) (string, error)
	UpdateType(ctx context.Context, t core.AdditionalExpenseType) error
	DeleteType(ctx context.Context, t core.AdditionalExpenseType) error
	// SeedDefaultTypes writes the four default categories when the
	// collection is empty and reports how many were created.
	SeedDefaultTypes(ctx context.Context) (int, error)
}

// ProfileStore is the user-profile collection, keyed by provider uid.
// Get returns core.ErrProfileNotFound for an unknown uid.
type ProfileStore interface {
	GetProfile(ctx context.Context, uid string) (core.UserProfile, error)
	PutProfile(ctx context.Context, p core.UserProfile) error
	UpdateProfile(ctx context.Context, uid string, updates map[string]any) error
	ListProfiles(ctx context.Context) ([]core.UserProfile, error)
}

// Stores bundles the three collections a backend provides.
type Stores interface {
	ExpenseStore
	TypeStore
	ProfileStore
}

// SeedRow is one raw spreadsheet row for bulk import. All money cells are
// currency-formatted strings; "$ -" means no value.
type SeedRow struct {
	Date        string `json:"date"`
	House       string `json:"house"`
	TotalElect  string `json:"totalElect"`
	RtAcFridge  string `json:"rtAcFridge"`
	PheaFridge  string `json:"pheaFridge"`
	Mining      string `json:"mining"`
	Electricity string `json:"electricity"`
	Water       string `json:"water"`
	Waste       string `json:"waste"`
	Additional  string `json:"additional"`
}

// ExpenseFromSeedRow cleans one import row into a domain expense.
func ExpenseFromSeedRow(row SeedRow) (core.Expense, error) {
	e := core.Expense{Date: row.Date}

	house, err := core.ParseCurrency(row.House)
	if err != nil {
		return core.Expense{}, err
	}
	if house != nil {
		e.House = *house
	}
	electricity, err := core.ParseCurrency(row.Electricity)
	if err != nil {
		return core.Expense{}, err
	}
	if electricity != nil {
		e.Electricity = *electricity
	}

	optional := []struct {
		raw  string
		dest **float64
	}{
		{row.TotalElect, &e.TotalElect},
		{row.RtAcFridge, &e.RtAcFridge},
		{row.PheaFridge, &e.PheaFridge},
		{row.Mining, &e.Mining},
		{row.Water, &e.Water},
		{row.Waste, &e.Waste},
		{row.Additional, &e.Additional},
	}
	for _, f := range optional {
		v, err := core.ParseCurrency(f.raw)
		if err != nil {
			return core.Expense{}, err
		}
		*f.dest = v
	}
	return e, nil
}
