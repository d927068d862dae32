package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"rentledger/internal/core"
	"rentledger/internal/store"
)

func newTestStores(t *testing.T) *SQLiteStores {
	t.Helper()
	r, err := NewSQLiteStores(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestSQLiteExpenseCRUD(t *testing.T) {
	r := newTestStores(t)
	ctx := context.Background()

	e := core.Expense{
		Date:        "2025-08-01",
		House:       500,
		Electricity: 100,
		Water:       core.Float(30),
		Users: []core.ExpenseUser{{
			Name: "Alice", Amount: 250, ElectricityShare: 0.5, Room: "A1",
		}},
	}
	id, err := r.Create(ctx, e)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	page, err := r.List(ctx, store.ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalItems != 1 {
		t.Fatalf("total = %d", page.TotalItems)
	}
	got := page.Items[0]
	if got.ID != id || got.House != 500 || got.Water == nil || *got.Water != 30 {
		t.Errorf("round trip: %+v", got)
	}
	if len(got.Users) != 1 || got.Users[0].Room != "A1" {
		t.Errorf("users: %+v", got.Users)
	}
	if got.Waste != nil {
		t.Errorf("absent waste should stay nil, got %v", *got.Waste)
	}
	if got.CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}

	e.ID = id
	e.House = 600
	if err := r.Update(ctx, e); err != nil {
		t.Fatalf("update: %v", err)
	}
	page, _ = r.List(ctx, store.ListOptions{})
	if page.Items[0].House != 600 || page.Items[0].UpdatedAt.IsZero() {
		t.Errorf("update not applied: %+v", page.Items[0])
	}

	if err := r.Delete(ctx, core.Expense{ID: id}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	page, _ = r.List(ctx, store.ListOptions{})
	if page.TotalItems != 0 {
		t.Errorf("delete not applied")
	}
}

func TestSQLitePagination(t *testing.T) {
	r := newTestStores(t)
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		_, err := r.Create(ctx, core.Expense{Date: fmt.Sprintf("2025-01-%02d", i), House: 1})
		if err != nil {
			t.Fatal(err)
		}
	}

	page, err := r.List(ctx, store.ListOptions{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalPages != 3 || len(page.Items) != 10 {
		t.Fatalf("pagination: total_pages=%d items=%d", page.TotalPages, len(page.Items))
	}
	if page.Items[0].Date != "2025-01-15" {
		t.Errorf("page 2 starts at %s, want 2025-01-15", page.Items[0].Date)
	}
}

func TestSQLiteSearch(t *testing.T) {
	r := newTestStores(t)
	ctx := context.Background()
	for _, d := range []string{"2025-01-10", "2025-02-10", "2026-02-01"} {
		if _, err := r.Create(ctx, core.Expense{Date: d, House: 1}); err != nil {
			t.Fatal(err)
		}
	}
	page, err := r.List(ctx, store.ListOptions{SearchTerm: "2025-02"})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].Date != "2025-02-10" {
		t.Errorf("search: %+v", page)
	}
	// Totals stay collection-wide while searching.
	if page.TotalItems != 3 {
		t.Errorf("total = %d, want 3", page.TotalItems)
	}
}

func TestSQLiteTypesAndSeeding(t *testing.T) {
	r := newTestStores(t)
	ctx := context.Background()

	n, err := r.SeedDefaultTypes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("seeded %d, want 4", n)
	}
	if n, _ := r.SeedDefaultTypes(ctx); n != 0 {
		t.Errorf("reseed created %d", n)
	}

	types, err := r.ListTypes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 4 {
		t.Fatalf("got %d types", len(types))
	}

	upd := types[0]
	upd.Description = "changed"
	if err := r.UpdateType(ctx, upd); err != nil {
		t.Fatal(err)
	}
	if err := r.DeleteType(ctx, types[1]); err != nil {
		t.Fatal(err)
	}
	types, _ = r.ListTypes(ctx)
	if len(types) != 3 {
		t.Errorf("%d types after delete", len(types))
	}
}

func TestSQLiteProfiles(t *testing.T) {
	r := newTestStores(t)
	ctx := context.Background()

	if _, err := r.GetProfile(ctx, "missing"); err != core.ErrProfileNotFound {
		t.Errorf("missing profile error = %v", err)
	}

	p := core.UserProfile{UID: "u1", Email: "a@b.c", Preferences: core.DefaultPreferences()}
	if err := r.PutProfile(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := r.UpdateProfile(ctx, "u1", map[string]any{"theme": "dark"}); err != nil {
		t.Fatal(err)
	}
	got, err := r.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Preferences.Theme != "dark" {
		t.Errorf("theme = %q", got.Preferences.Theme)
	}
	if err := r.UpdateProfile(ctx, "ghost", map[string]any{"theme": "dark"}); err != core.ErrProfileNotFound {
		t.Errorf("updating missing profile: %v", err)
	}
}

func TestSQLiteSeedBulk(t *testing.T) {
	r := newTestStores(t)
	ctx := context.Background()
	n, err := r.SeedBulk(ctx, []store.SeedRow{
		{Date: "2024-01-01", House: "$1,200.00", Electricity: "$85.00", Water: "$ -"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("seeded %d", n)
	}
	page, _ := r.List(ctx, store.ListOptions{})
	if page.Items[0].House != 1200 || page.Items[0].Water != nil {
		t.Errorf("seed row: %+v", page.Items[0])
	}
}
