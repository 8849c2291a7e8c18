package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
)

type TokenTransactionRepository interface {
	Create(ctx context.Context, tx *entity.TokenTransaction) error
	GetByTxHash(ctx context.Context, txHash string) (*entity.TokenTransaction, error)
	GetPending(ctx context.Context, before time.Time, limit int) ([]entity.TokenTransaction, error)
	UpdateStatus(ctx context.Context, txHash string, status entity.TransactionStatus, reason string) error
}

type tokenTransactionRepository struct{}

func NewTokenTransactionRepository() *tokenTransactionRepository {
	return &tokenTransactionRepository{}
}

func (r *tokenTransactionRepository) Create(ctx context.Context, tx *entity.TokenTransaction) error {
	return xcontext.DB(ctx).Create(tx).Error
}

func (r *tokenTransactionRepository) GetByTxHash(
	ctx context.Context, txHash string,
) (*entity.TokenTransaction, error) {
	var result entity.TokenTransaction
	if err := xcontext.DB(ctx).Take(&result, "tx_hash=?", txHash).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *tokenTransactionRepository) GetPending(
	ctx context.Context, before time.Time, limit int,
) ([]entity.TokenTransaction, error) {
	var result []entity.TokenTransaction
	err := xcontext.DB(ctx).
		Where("status=? AND created_at<?", entity.TransactionStatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateStatus resolves a pending transaction. It returns ErrNotAffected if
// the transaction is not pending anymore.
func (r *tokenTransactionRepository) UpdateStatus(
	ctx context.Context, txHash string, status entity.TransactionStatus, reason string,
) error {
	updates := map[string]any{"status": status, "error": reason}
	if status == entity.TransactionStatusConfirmed {
		updates["confirmed_at"] = sql.NullTime{Valid: true, Time: time.Now()}
	}

	tx := xcontext.DB(ctx).
		Model(&entity.TokenTransaction{}).
		Where("tx_hash=? AND status=?", txHash, entity.TransactionStatusPending).
		Updates(updates)

	return checkSingleRowAffected(tx)
}
