package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var errCopyOutsideTx = errors.New("copy requires transaction context")

// BatchInserter bulk-loads rows with the COPY protocol. Bill and order lines
// and seed data go through it.
type BatchInserter struct {
	txManager *TxManager
}

// NewBatchInserter creates a new batch inserter.
func NewBatchInserter(txManager *TxManager) *BatchInserter {
	return &BatchInserter{txManager: txManager}
}

// CopyFromSlice inserts rows into table. Each row matches columns.
// It must run inside a transaction so the lines commit with their header.
func (b *BatchInserter) CopyFromSlice(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx := b.txManager.GetTx(ctx)
	if tx == nil {
		return 0, errCopyOutsideTx
	}
	return tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
}
