package store

import (
	"reflect"
	"testing"
	"time"

	"rentledger/internal/core"
)

func TestEncodeExpense(t *testing.T) {
	e := core.Expense{
		ID:          "ignored",
		Date:        "2025-08-01",
		House:       500,
		Electricity: 100.5,
		Water:       core.Float(30),
		CreatedAt:   time.Now(),
		Users: []core.ExpenseUser{{
			Name:             "Alice",
			Amount:           250,
			ElectricityShare: 0.5,
			Room:             "A1",
		}},
	}
	rec := EncodeExpense(e)

	if rec.House != "500" || rec.Electricity != "100.5" || rec.Water != "30" {
		t.Errorf("numeric encoding: house=%q electricity=%q water=%q", rec.House, rec.Electricity, rec.Water)
	}
	// Absent optionals encode as empty string, not "0".
	if rec.Waste != "" || rec.Additional != "" || rec.Mining != "" {
		t.Errorf("absent fields: waste=%q additional=%q mining=%q", rec.Waste, rec.Additional, rec.Mining)
	}
	if len(rec.Users) != 1 || rec.Users[0].Amount != "250" || rec.Users[0].ElectricityShare != "0.5" {
		t.Errorf("user encoding: %+v", rec.Users)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	rec := ExpenseRecord{
		Date:        "2025-08-01",
		House:       "500",
		Electricity: "100.5",
		Water:       "30",
		Waste:       "",
		Additional:  "",
		Users: []UserAllocation{{
			Name:             "Alice",
			Amount:           "250",
			ElectricityShare: "0.5",
			AdditionalAmount: "",
		}},
	}
	decoded := DecodeExpense("abc", rec, time.Time{}, time.Time{})

	if decoded.ID != "abc" {
		t.Errorf("id = %q", decoded.ID)
	}
	if decoded.Water == nil || *decoded.Water != 30 {
		t.Errorf("water = %v", decoded.Water)
	}
	if decoded.Waste != nil {
		t.Errorf("empty string should decode to nil, got %v", *decoded.Waste)
	}

	// Non-empty decimal strings survive the round trip unchanged.
	back := EncodeExpense(decoded)
	if len(back.Users) != 1 || back.Users[0] != rec.Users[0] {
		t.Errorf("user round trip mismatch: %+v", back.Users)
	}
	back.Users, rec.Users = nil, nil
	if !reflect.DeepEqual(back, rec) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, rec)
	}
}

func TestDecodeExpenseCorruptField(t *testing.T) {
	rec := ExpenseRecord{Date: "2025-08-01", House: "oops", Water: "NaN-ish"}
	decoded := DecodeExpense("x", rec, time.Time{}, time.Time{})
	if decoded.House != 0 {
		t.Errorf("corrupt required field should decode to 0, got %v", decoded.House)
	}
	if decoded.Water != nil {
		t.Errorf("corrupt optional field should decode to nil, got %v", *decoded.Water)
	}

	// Fields holding float spellings ParseFloat would accept still decode
	// to absent; NaN and Inf never reach the aggregations or the encoder.
	rec = ExpenseRecord{Date: "2025-08-01", House: "NaN", Water: "Inf", Waste: "-Inf"}
	decoded = DecodeExpense("x", rec, time.Time{}, time.Time{})
	if decoded.House != 0 {
		t.Errorf("NaN house should decode to 0, got %v", decoded.House)
	}
	if decoded.Water != nil || decoded.Waste != nil {
		t.Errorf("Inf fields should decode to nil, got water=%v waste=%v", decoded.Water, decoded.Waste)
	}
}

func TestProfileCodec(t *testing.T) {
	p := core.UserProfile{
		UID:         "uid-1",
		Email:       "a@b.c",
		DisplayName: "Alice",
		Preferences: core.DefaultPreferences(),
	}
	rec := EncodeProfile(p)
	if rec.Theme != "light" || rec.Currency != "USD" {
		t.Errorf("preferences flattening: %+v", rec)
	}
	now := time.Now()
	back := DecodeProfile(rec, now, now, now)
	if back.UID != p.UID || back.Preferences != p.Preferences {
		t.Errorf("profile round trip: %+v", back)
	}
}

func TestExpenseFromSeedRow(t *testing.T) {
	row := SeedRow{
		Date:        "2024-01-01",
		House:       "$1,200.00",
		Electricity: "$85.25",
		Water:       "$ -",
		Waste:       "",
	}
	e, err := ExpenseFromSeedRow(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.House != 1200.00 {
		t.Errorf("house = %v, want 1200", e.House)
	}
	if e.Electricity != 85.25 {
		t.Errorf("electricity = %v, want 85.25", e.Electricity)
	}
	if e.Water != nil {
		t.Errorf("sentinel water should be nil, got %v", *e.Water)
	}
	if e.Waste != nil {
		t.Errorf("empty waste should be nil, got %v", *e.Waste)
	}

	if _, err := ExpenseFromSeedRow(SeedRow{Date: "2024-01-01", House: "abc"}); err == nil {
		t.Error("expected error for unparsable house")
	}
}

func TestListOptionsNormalize(t *testing.T) {
	o := ListOptions{}.Normalize()
	if o.Page != 1 || o.PageSize != 10 || o.SortField != "date" || o.SortDirection != SortDescending {
		t.Errorf("defaults: %+v", o)
	}
	o = ListOptions{Page: 3, PageSize: 20, SortField: "house", SortDirection: "sideways"}.Normalize()
	if o.SortDirection != SortDescending {
		t.Errorf("bad direction should fall back to desc, got %q", o.SortDirection)
	}
	if o.Offset() != 40 {
		t.Errorf("offset = %d, want 40", o.Offset())
	}
}

func TestPageCount(t *testing.T) {
	if got := PageCount(25, 10); got != 3 {
		t.Errorf("PageCount(25,10) = %d, want 3", got)
	}
	if got := PageCount(0, 10); got != 0 {
		t.Errorf("PageCount(0,10) = %d, want 0", got)
	}
}
