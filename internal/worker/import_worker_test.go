package worker

import (
	"context"
	"testing"

	"rentledger/internal/amqp"
	"rentledger/internal/store"
	"rentledger/internal/store/memory"
)

func TestHandleImportMessage(t *testing.T) {
	stores := memory.New()
	w := NewImportWorker(stores, 2)

	msg := amqp.NewImportMessage([]store.SeedRow{
		{Date: "2024-01-01", House: "$1,200.00", Electricity: "$150.00"},
		{Date: "2024-02-01", House: "$1,200.00", Electricity: "$140.00", Water: "$ -"},
		{Date: "2024-03-01", House: "$1,250.00", Electricity: "$160.00"},
	})

	if err := w.HandleImportMessage(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	page, err := stores.List(context.Background(), store.ListOptions{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if page.TotalItems != 3 {
		t.Errorf("total = %d", page.TotalItems)
	}
	if page.Items[0].Date != "2024-03-01" || page.Items[0].House != 1250 {
		t.Errorf("newest item: %+v", page.Items[0])
	}
}

func TestHandleImportMessageBadRow(t *testing.T) {
	stores := memory.New()
	w := NewImportWorker(stores, 10)

	msg := amqp.NewImportMessage([]store.SeedRow{
		{Date: "2024-01-01", House: "garbage"},
	})

	if err := w.HandleImportMessage(context.Background(), msg); err == nil {
		t.Fatal("expected error for unparsable row")
	}
}

func TestEnsureDefaultTypes(t *testing.T) {
	stores := memory.New()
	w := NewImportWorker(stores, 10)

	if err := w.EnsureDefaultTypes(context.Background()); err != nil {
		t.Fatal(err)
	}
	types, err := stores.ListTypes(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 4 {
		t.Errorf("type count = %d", len(types))
	}

	// Second call is a no-op.
	if err := w.EnsureDefaultTypes(context.Background()); err != nil {
		t.Fatal(err)
	}
	types, _ = stores.ListTypes(context.Background())
	if len(types) != 4 {
		t.Errorf("type count after reseed = %d", len(types))
	}
}
