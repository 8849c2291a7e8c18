package domain

import (
	"testing"

	"github.com/hauntpass/backend/internal/domain/walletnft"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_walletNFTDomain(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1.ID)
	redisClient, _ := testutil.NewMockSetRedisClient()
	domain := NewWalletNFTDomain(walletnft.NewTracker(repository.NewWalletNFTRepository(), redisClient))

	has, err := domain.HasNFTInWallet(ctx, &model.HasNFTInWalletRequest{Contract: testutil.NFTContract, TokenID: "42"})
	require.NoError(t, err)
	require.False(t, has.Added)

	_, err = domain.MarkNFTAddedToWallet(ctx, &model.MarkNFTAddedToWalletRequest{Contract: testutil.NFTContract, TokenID: "42"})
	require.NoError(t, err)

	has, err = domain.HasNFTInWallet(ctx, &model.HasNFTInWalletRequest{Contract: testutil.NFTContract, TokenID: "42"})
	require.NoError(t, err)
	require.True(t, has.Added)

	// The set is per user.
	has, err = domain.HasNFTInWallet(xcontext.WithRequestUserID(ctx, testutil.User2.ID),
		&model.HasNFTInWalletRequest{Contract: testutil.NFTContract, TokenID: "42"})
	require.NoError(t, err)
	require.False(t, has.Added)

	_, err = domain.MarkNFTAddedToWallet(ctx, &model.MarkNFTAddedToWalletRequest{Contract: "pumpkin", TokenID: "42"})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}
