package memory

import (
	"context"
	"fmt"
	"testing"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

func seedN(t *testing.T, s *Store, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		e := core.Expense{
			Date:        fmt.Sprintf("2025-01-%02d", i),
			House:       float64(i * 100),
			Electricity: 50,
		}
		if _, err := s.Create(ctx, e); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
}

func TestListPagination(t *testing.T) {
	s := New()
	seedN(t, s, 25)

	page, err := s.List(context.Background(), store.ListOptions{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 25 || page.TotalPages != 3 || page.CurrentPage != 2 {
		t.Errorf("pagination: %+v", page)
	}
	if len(page.Items) != 10 {
		t.Fatalf("got %d items, want 10", len(page.Items))
	}
	// Default sort is date descending, so page 2 holds days 15..06.
	if page.Items[0].Date != "2025-01-15" || page.Items[9].Date != "2025-01-06" {
		t.Errorf("page window = %s..%s", page.Items[0].Date, page.Items[9].Date)
	}

	last, err := s.List(context.Background(), store.ListOptions{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(last.Items) != 5 {
		t.Errorf("last page has %d items, want 5", len(last.Items))
	}

	beyond, err := s.List(context.Background(), store.ListOptions{Page: 9, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(beyond.Items) != 0 {
		t.Errorf("page beyond end has %d items", len(beyond.Items))
	}
}

func TestListSearchPrefix(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, d := range []string{"2025-01-10", "2025-02-10", "2025-02-20", "2026-02-01"} {
		if _, err := s.Create(ctx, core.Expense{Date: d, House: 1}); err != nil {
			t.Fatal(err)
		}
	}

	page, err := s.List(ctx, store.ListOptions{SearchTerm: "2025-02"})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("search matched %d items, want 2", len(page.Items))
	}
	for _, e := range page.Items {
		if e.Date[:7] != "2025-02" {
			t.Errorf("unexpected match %s", e.Date)
		}
	}
	// Totals stay collection-wide while searching.
	if page.TotalItems != 4 || page.TotalPages != 1 {
		t.Errorf("totals = %d items / %d pages, want 4 / 1", page.TotalItems, page.TotalPages)
	}
}

func TestListSortAscending(t *testing.T) {
	s := New()
	seedN(t, s, 3)

	page, err := s.List(context.Background(), store.ListOptions{SortField: "date", SortDirection: store.SortAscending})
	if err != nil {
		t.Fatal(err)
	}
	if page.Items[0].Date != "2025-01-01" {
		t.Errorf("ascending sort starts at %s", page.Items[0].Date)
	}

	byHouse, err := s.List(context.Background(), store.ListOptions{SortField: "house", SortDirection: store.SortDescending})
	if err != nil {
		t.Fatal(err)
	}
	if byHouse.Items[0].House != 300 {
		t.Errorf("house desc starts at %v", byHouse.Items[0].House)
	}
}

func TestUpdateDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, err := s.Create(ctx, core.Expense{Date: "2025-03-01", House: 100})
	if err != nil {
		t.Fatal(err)
	}

	// No-ops without an ID.
	if err := s.Update(ctx, core.Expense{Date: "2025-03-01"}); err != nil {
		t.Errorf("update without id should be a no-op: %v", err)
	}
	if err := s.Delete(ctx, core.Expense{}); err != nil {
		t.Errorf("delete without id should be a no-op: %v", err)
	}

	if err := s.Update(ctx, core.Expense{ID: id, Date: "2025-03-02", House: 200}); err != nil {
		t.Fatal(err)
	}
	page, _ := s.List(ctx, store.ListOptions{})
	if page.Items[0].Date != "2025-03-02" || page.Items[0].House != 200 {
		t.Errorf("update not applied: %+v", page.Items[0])
	}
	if page.Items[0].UpdatedAt.IsZero() {
		t.Error("updatedAt not refreshed")
	}

	if err := s.Delete(ctx, core.Expense{ID: id}); err != nil {
		t.Fatal(err)
	}
	page, _ = s.List(ctx, store.ListOptions{})
	if page.TotalItems != 0 {
		t.Errorf("delete not applied, %d items left", page.TotalItems)
	}
}

func TestSeedBulk(t *testing.T) {
	s := New()
	ctx := context.Background()
	rows := []store.SeedRow{
		{Date: "2024-01-01", House: "$1,200.00", Electricity: "$85.00", Water: "$ -"},
		{Date: "2024-02-01", House: "$1,200.00", Electricity: "$90.00", Additional: "$15.50"},
	}
	n, err := s.SeedBulk(ctx, rows)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("seeded %d rows, want 2", n)
	}
	page, _ := s.List(ctx, store.ListOptions{SortDirection: store.SortAscending, SortField: "date"})
	if page.Items[0].House != 1200 {
		t.Errorf("house = %v", page.Items[0].House)
	}
	if page.Items[0].Water != nil {
		t.Errorf("sentinel water should be nil")
	}
	if page.Items[1].Additional == nil || *page.Items[1].Additional != 15.5 {
		t.Errorf("additional = %v", page.Items[1].Additional)
	}
}

func TestSeedDefaultTypes(t *testing.T) {
	s := New()
	ctx := context.Background()

	n, err := s.SeedDefaultTypes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("seeded %d types, want 4", n)
	}

	// Second call is a no-op: the collection is no longer empty.
	n, err = s.SeedDefaultTypes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("reseed created %d types, want 0", n)
	}

	types, _ := s.ListTypes(ctx)
	if len(types) != 4 {
		t.Errorf("got %d types", len(types))
	}
}

func TestTypeCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, err := s.CreateType(ctx, core.AdditionalExpenseType{Name: "Internet"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateType(ctx, core.AdditionalExpenseType{ID: id, Name: "Internet", Description: "WiFi"}); err != nil {
		t.Fatal(err)
	}
	types, _ := s.ListTypes(ctx)
	if types[0].Description != "WiFi" {
		t.Errorf("description = %q", types[0].Description)
	}
	if err := s.DeleteType(ctx, core.AdditionalExpenseType{ID: id}); err != nil {
		t.Fatal(err)
	}
	types, _ = s.ListTypes(ctx)
	if len(types) != 0 {
		t.Errorf("%d types left after delete", len(types))
	}
}

func TestProfiles(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.GetProfile(ctx, "nope"); err != core.ErrProfileNotFound {
		t.Errorf("missing profile error = %v", err)
	}

	p := core.UserProfile{UID: "u1", Email: "a@b.c", DisplayName: "Alice", Preferences: core.DefaultPreferences()}
	if err := s.PutProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.DisplayName != "Alice" || got.Preferences.Theme != "light" {
		t.Errorf("profile: %+v", got)
	}

	if err := s.UpdateProfile(ctx, "u1", map[string]any{"theme": "dark", "displayName": "Alicia"}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProfile(ctx, "u1")
	if got.Preferences.Theme != "dark" || got.DisplayName != "Alicia" {
		t.Errorf("update not applied: %+v", got)
	}

	all, _ := s.ListProfiles(ctx)
	if len(all) != 1 {
		t.Errorf("%d profiles", len(all))
	}
}
