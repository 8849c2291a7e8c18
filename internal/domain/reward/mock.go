package reward

import (
	"context"

	"github.com/hauntpass/backend/internal/model"
)

type MockOrchestrator struct {
	ClaimRewardFunc       func(ctx context.Context, userID, questID, walletAddress string) (*model.ClaimResult, error)
	ClaimDirectRewardFunc func(ctx context.Context, req model.ClaimDirectRewardRequest) (*model.ClaimResult, error)
}

func (m *MockOrchestrator) ClaimReward(
	ctx context.Context, userID, questID, walletAddress string,
) (*model.ClaimResult, error) {
	if m.ClaimRewardFunc != nil {
		return m.ClaimRewardFunc(ctx, userID, questID, walletAddress)
	}

	return &model.ClaimResult{}, nil
}

func (m *MockOrchestrator) ClaimDirectReward(
	ctx context.Context, req model.ClaimDirectRewardRequest,
) (*model.ClaimResult, error) {
	if m.ClaimDirectRewardFunc != nil {
		return m.ClaimDirectRewardFunc(ctx, req)
	}

	return &model.ClaimResult{}, nil
}
