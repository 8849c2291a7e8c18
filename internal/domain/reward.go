package domain

import (
	"context"
	"errors"

	"github.com/hauntpass/backend/internal/domain/reward"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/ethutil"
	"github.com/hauntpass/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RewardDomain interface {
	ClaimReward(context.Context, *model.ClaimRewardRequest) (*model.ClaimRewardResponse, error)
	ClaimDirectReward(context.Context, *model.ClaimDirectRewardRequest) (*model.ClaimDirectRewardResponse, error)
}

type rewardDomain struct {
	userRepo     repository.UserRepository
	orchestrator reward.Orchestrator
}

func NewRewardDomain(userRepo repository.UserRepository, orchestrator reward.Orchestrator) *rewardDomain {
	return &rewardDomain{
		userRepo:     userRepo,
		orchestrator: orchestrator,
	}
}

func (d *rewardDomain) ClaimReward(
	ctx context.Context, req *model.ClaimRewardRequest,
) (*model.ClaimRewardResponse, error) {
	if req.QuestID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require quest id")
	}

	userID := xcontext.RequestUserID(ctx)
	address, err := d.walletAddress(ctx, userID, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	result, err := d.orchestrator.ClaimReward(ctx, userID, req.QuestID, address)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot claim reward of quest %s: %v", req.QuestID, err)
		return nil, errorx.Unknown
	}

	return (*model.ClaimRewardResponse)(result), nil
}

func (d *rewardDomain) ClaimDirectReward(
	ctx context.Context, req *model.ClaimDirectRewardRequest,
) (*model.ClaimDirectRewardResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require user id")
	}

	address, err := d.walletAddress(ctx, req.UserID, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	directReq := *req
	directReq.WalletAddress = address
	result, err := d.orchestrator.ClaimDirectReward(ctx, directReq)
	if err != nil {
		var errx errorx.Error
		if errors.As(err, &errx) && errx.Code == errorx.BadRequest {
			return nil, err
		}

		xcontext.Logger(ctx).Errorf("Cannot claim direct reward %s: %v", req.RewardKey, err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Admin %s granted direct reward %s to %s",
		xcontext.RequestUserID(ctx), req.RewardKey, req.UserID)

	return (*model.ClaimDirectRewardResponse)(result), nil
}

// walletAddress returns the requested address, or the linked address of the
// user if none is requested. A user without linked address gets the
// requested one linked.
func (d *rewardDomain) walletAddress(ctx context.Context, userID, requested string) (string, error) {
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user %s: %v", userID, err)
		return "", errorx.Unknown
	}

	if requested == "" {
		if !user.WalletAddress.Valid || user.WalletAddress.String == "" {
			return "", errorx.New(errorx.BadRequest, "Require wallet address")
		}

		return user.WalletAddress.String, nil
	}

	if !ethutil.IsValidAddress(requested) {
		return "", errorx.New(errorx.BadRequest, "Invalid wallet address")
	}

	if !user.WalletAddress.Valid || user.WalletAddress.String == "" {
		if err := d.userRepo.UpdateWalletAddress(ctx, userID, requested); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot link wallet address of user %s: %v", userID, err)
		}
	}

	return requested, nil
}
