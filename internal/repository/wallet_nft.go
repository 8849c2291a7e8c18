package repository

import (
	"context"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type WalletNFTRepository interface {
	GetByUserID(ctx context.Context, userID string) ([]entity.WalletNFT, error)
	BulkInsert(ctx context.Context, nfts []entity.WalletNFT) error
}

type walletNFTRepository struct{}

func NewWalletNFTRepository() *walletNFTRepository {
	return &walletNFTRepository{}
}

func (r *walletNFTRepository) GetByUserID(ctx context.Context, userID string) ([]entity.WalletNFT, error) {
	var result []entity.WalletNFT
	if err := xcontext.DB(ctx).Find(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *walletNFTRepository) BulkInsert(ctx context.Context, nfts []entity.WalletNFT) error {
	if len(nfts) == 0 {
		return nil
	}

	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&nfts).Error
}
