package explorer

import "context"

type MockEndpoint struct {
	BlockNumberFunc     func(ctx context.Context) (uint64, error)
	GetTransactionsFunc func(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	GetReceiptLogsFunc  func(ctx context.Context, txHash string) ([]Log, error)
}

func (m *MockEndpoint) BlockNumber(ctx context.Context) (uint64, error) {
	if m.BlockNumberFunc != nil {
		return m.BlockNumberFunc(ctx)
	}

	return 0, nil
}

func (m *MockEndpoint) GetTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	if m.GetTransactionsFunc != nil {
		return m.GetTransactionsFunc(ctx, filter)
	}

	return nil, nil
}

func (m *MockEndpoint) GetReceiptLogs(ctx context.Context, txHash string) ([]Log, error) {
	if m.GetReceiptLogsFunc != nil {
		return m.GetReceiptLogsFunc(ctx, txHash)
	}

	return nil, ErrReceiptNotFound
}
