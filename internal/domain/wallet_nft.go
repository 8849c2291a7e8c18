package domain

import (
	"context"

	"github.com/hauntpass/backend/internal/domain/walletnft"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/pkg/xcontext"
)

type WalletNFTDomain interface {
	MarkNFTAddedToWallet(context.Context, *model.MarkNFTAddedToWalletRequest) (*model.MarkNFTAddedToWalletResponse, error)
	HasNFTInWallet(context.Context, *model.HasNFTInWalletRequest) (*model.HasNFTInWalletResponse, error)
}

type walletNFTDomain struct {
	tracker walletnft.Tracker
}

func NewWalletNFTDomain(tracker walletnft.Tracker) *walletNFTDomain {
	return &walletNFTDomain{tracker: tracker}
}

func (d *walletNFTDomain) MarkNFTAddedToWallet(
	ctx context.Context, req *model.MarkNFTAddedToWalletRequest,
) (*model.MarkNFTAddedToWalletResponse, error) {
	err := d.tracker.Add(ctx, walletnft.CompositeKey{
		UserID:   xcontext.RequestUserID(ctx),
		Contract: req.Contract,
		TokenID:  req.TokenID,
	})
	if err != nil {
		return nil, err
	}

	return &model.MarkNFTAddedToWalletResponse{}, nil
}

func (d *walletNFTDomain) HasNFTInWallet(
	ctx context.Context, req *model.HasNFTInWalletRequest,
) (*model.HasNFTInWalletResponse, error) {
	added, err := d.tracker.Has(ctx, walletnft.CompositeKey{
		UserID:   xcontext.RequestUserID(ctx),
		Contract: req.Contract,
		TokenID:  req.TokenID,
	})
	if err != nil {
		return nil, err
	}

	return &model.HasNFTInWalletResponse{Added: added}, nil
}
