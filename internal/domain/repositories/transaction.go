package repositories

import "context"

// TxFn runs with a context that carries the active transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a function atomically. Repositories called with the
// TxFn context join the transaction automatically.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
