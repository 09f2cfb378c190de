package database

import "context"

type txKey struct{}

// TxInfo carries a transaction through the context together with
// ownership. Nested units of work join the outer transaction and
// must not commit it.
type TxInfo struct {
	Tx    Transaction
	Owned bool
}

// WithTx stores a transaction in the context.
func WithTx(ctx context.Context, tx Transaction, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, TxInfo{Tx: tx, Owned: owned})
}

// TxFromContext returns the context transaction, or nil.
func TxFromContext(ctx context.Context) Transaction {
	info, ok := ctx.Value(txKey{}).(TxInfo)
	if !ok {
		return nil
	}
	return info.Tx
}

// TxInfoFromContext returns the transaction with its ownership flag.
func TxInfoFromContext(ctx context.Context) (TxInfo, bool) {
	info, ok := ctx.Value(txKey{}).(TxInfo)
	if !ok || info.Tx == nil {
		return TxInfo{}, false
	}
	return info, true
}

// ExecutorFromContext prefers the context transaction over the bare
// connection, so repositories transparently join an ambient transaction.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return conn
}
