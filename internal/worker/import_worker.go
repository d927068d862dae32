// Package worker processes queued import batches against the store.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"rentledger/internal/amqp"
	"rentledger/internal/store"
)

// ImportWorker writes queued spreadsheet rows into the expense store.
type ImportWorker struct {
	stores    store.Stores
	batchSize int
}

func NewImportWorker(stores store.Stores, batchSize int) *ImportWorker {
	if batchSize < 1 {
		batchSize = 50
	}
	return &ImportWorker{
		stores:    stores,
		batchSize: batchSize,
	}
}

// HandleImportMessage processes one queued batch. Rows are written in
// chunks so a large batch cannot hold a connection for its full length.
func (w *ImportWorker) HandleImportMessage(ctx context.Context, msg *amqp.ImportMessage) error {
	slog.InfoContext(ctx, "Processing import batch",
		"batch_id", msg.BatchID,
		"row_count", len(msg.Rows))

	imported := 0
	for start := 0; start < len(msg.Rows); start += w.batchSize {
		end := start + w.batchSize
		if end > len(msg.Rows) {
			end = len(msg.Rows)
		}

		n, err := w.stores.SeedBulk(ctx, msg.Rows[start:end])
		imported += n
		if err != nil {
			return fmt.Errorf("import rows %d..%d of batch %s: %w", start, end, msg.BatchID, err)
		}
	}

	slog.InfoContext(ctx, "Import batch completed",
		"batch_id", msg.BatchID,
		"imported", imported)

	return nil
}

// EnsureDefaultTypes seeds the default expense-type categories on
// startup when the collection is empty.
func (w *ImportWorker) EnsureDefaultTypes(ctx context.Context) error {
	seeded, err := w.stores.SeedDefaultTypes(ctx)
	if err != nil {
		return fmt.Errorf("seed default expense types: %w", err)
	}
	if seeded > 0 {
		slog.InfoContext(ctx, "Seeded default expense types", "seeded", seeded)
	}
	return nil
}
