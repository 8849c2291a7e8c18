package explorer

import "context"

type IEndpoint interface {
	BlockNumber(ctx context.Context) (uint64, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	GetReceiptLogs(ctx context.Context, txHash string) ([]Log, error)
}
