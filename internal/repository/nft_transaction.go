package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
)

type NFTTransactionRepository interface {
	Create(ctx context.Context, tx *entity.NFTTransaction) error
	GetByTxHash(ctx context.Context, txHash string) (*entity.NFTTransaction, error)
	GetPending(ctx context.Context, before time.Time, limit int) ([]entity.NFTTransaction, error)
	Confirm(ctx context.Context, txHash, tokenID string) error
	SetPlaceholder(ctx context.Context, txHash, tokenID string) error
	UpdateStatus(ctx context.Context, txHash string, status entity.TransactionStatus, reason string) error
}

type nftTransactionRepository struct{}

func NewNFTTransactionRepository() *nftTransactionRepository {
	return &nftTransactionRepository{}
}

func (r *nftTransactionRepository) Create(ctx context.Context, tx *entity.NFTTransaction) error {
	return xcontext.DB(ctx).Create(tx).Error
}

func (r *nftTransactionRepository) GetByTxHash(
	ctx context.Context, txHash string,
) (*entity.NFTTransaction, error) {
	var result entity.NFTTransaction
	if err := xcontext.DB(ctx).Take(&result, "tx_hash=?", txHash).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *nftTransactionRepository) GetPending(
	ctx context.Context, before time.Time, limit int,
) ([]entity.NFTTransaction, error) {
	var result []entity.NFTTransaction
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

func (r *nftTransactionRepository) Confirm(ctx context.Context, txHash, tokenID string) error {
	return xcontext.DB(ctx).
		Model(&entity.NFTTransaction{}).
		Where("tx_hash=?", txHash).
		Updates(map[string]any{
			"status":       entity.TransactionStatusConfirmed,
			"token_id":     tokenID,
			"placeholder":  false,
			"confirmed_at": sql.NullTime{Valid: true, Time: time.Now()},
		}).Error
}

func (r *nftTransactionRepository) SetPlaceholder(ctx context.Context, txHash, tokenID string) error {
	return xcontext.DB(ctx).
		Model(&entity.NFTTransaction{}).
		Where("tx_hash=? AND token_id=?", txHash, "").
		Updates(map[string]any{
			"token_id":    tokenID,
			"placeholder": true,
		}).Error
}

func (r *nftTransactionRepository) UpdateStatus(
	ctx context.Context, txHash string, status entity.TransactionStatus, reason string,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.NFTTransaction{}).
		Where("tx_hash=? AND status=?", txHash, entity.TransactionStatusPending).
		Updates(map[string]any{"status": status, "error": reason})

	return checkSingleRowAffected(tx)
}
