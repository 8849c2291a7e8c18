package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestLedger() *ledger {
	return New(
		repository.NewUserRepository(),
		repository.NewQuestRepository(),
		repository.NewQuestCompletionRepository(),
		repository.NewDirectClaimRepository(),
		repository.NewNotificationRepository(),
	)
}

func Test_ledger_GetClaimableReward(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger()

	reward, err := l.GetClaimableReward(ctx, testutil.User1.ID, testutil.QuestTokenAndNFT.ID)
	require.NoError(t, err)
	require.Equal(t, int64(100), reward.RewardXP)
	require.Equal(t, float64(50), reward.RewardTPX)
	require.True(t, reward.HasNFT)
	require.Len(t, reward.NFTAttributes, 2)

	_, err = l.GetClaimableReward(ctx, testutil.User1.ID, testutil.QuestNotReviewed.ID)
	require.True(t, errorx.Is(err, errorx.NotFound))

	_, err = l.GetClaimableReward(ctx, testutil.User1.ID, "unknown")
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_ledger_RecordClaims(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger()
	completionRepo := repository.NewQuestCompletionRepository()

	flags, err := l.IsAlreadyClaimed(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)
	require.Equal(t, ClaimFlags{}, flags)

	require.NoError(t, l.RecordTokenClaim(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID, 25, "0xtoken"))

	err = l.RecordTokenClaim(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID, 25, "0xother")
	require.True(t, errorx.Is(err, errorx.AlreadyClaimed))

	completion, err := completionRepo.Get(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)
	require.True(t, completion.TokensClaimed)
	require.Equal(t, "0xtoken", completion.TokenTxHash)
	// XP is not granted yet.
	require.Equal(t, entity.QuestCompletionVerified, completion.Status)

	granted, err := l.MarkXPGranted(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = l.MarkXPGranted(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)
	require.False(t, granted)

	completion, err = completionRepo.Get(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)
	require.Equal(t, entity.QuestCompletionClaimed, completion.Status)
	require.True(t, completion.ClaimedAt.Valid)

	// A claimed completion is still readable.
	_, err = l.GetClaimableReward(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)

	flags, err = l.IsAlreadyClaimed(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)
	require.Equal(t, ClaimFlags{TokensClaimed: true, XPGranted: true}, flags)
}

func Test_ledger_RecordNFTClaim(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger()

	require.NoError(t, l.RecordNFTClaim(ctx, testutil.User1.ID, testutil.QuestTokenAndNFT.ID, "42", "0xmint"))

	err := l.RecordNFTClaim(ctx, testutil.User1.ID, testutil.QuestTokenAndNFT.ID, "43", "0xmint2")
	require.True(t, errorx.Is(err, errorx.AlreadyClaimed))

	completion, err := repository.NewQuestCompletionRepository().
		Get(ctx, testutil.User1.ID, testutil.QuestTokenAndNFT.ID)
	require.NoError(t, err)
	require.True(t, completion.NFTMinted)
	require.False(t, completion.TokensClaimed)
	require.Equal(t, "42", completion.NFTTokenID)
	require.Equal(t, entity.QuestCompletionVerified, completion.Status)
}

func Test_ledger_UpdateUserAggregate(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger()

	update, err := l.UpdateUserAggregate(ctx, testutil.User1.ID, repository.ProgressDelta{
		XP:             100,
		TokensEarned:   50,
		TokensClaimed:  50,
		QuestCompleted: true,
	})
	require.NoError(t, err)
	require.True(t, update.LeveledUp)
	require.Equal(t, 1, update.PreviousLevel)
	require.Equal(t, int64(100), update.User.TotalXP)
	require.Equal(t, 2, update.User.Level)
	require.Equal(t, entity.PassportTierBronze, update.User.PassportTier)
	require.Equal(t, float64(50), update.User.TotalTokensEarned)
	require.Equal(t, int64(1), update.User.QuestsCompleted)

	update, err = l.UpdateUserAggregate(ctx, testutil.User1.ID, repository.ProgressDelta{XP: 50})
	require.NoError(t, err)
	require.False(t, update.LeveledUp)
	require.Equal(t, 2, update.User.Level)

	// 1600 XP is level 5.
	update, err = l.UpdateUserAggregate(ctx, testutil.User1.ID, repository.ProgressDelta{XP: 1450})
	require.NoError(t, err)
	require.True(t, update.LeveledUp)
	require.Equal(t, 5, update.User.Level)
	require.Equal(t, entity.PassportTierSilver, update.User.PassportTier)

	_, err = l.UpdateUserAggregate(ctx, "unknown", repository.ProgressDelta{XP: 1})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_ledger_UpdateUserAggregate_TierNeverRegresses(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger()

	err := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", testutil.User2.ID).
		Update("passport_tier", entity.PassportTierGold).Error
	require.NoError(t, err)

	update, err := l.UpdateUserAggregate(ctx, testutil.User2.ID, repository.ProgressDelta{XP: 100})
	require.NoError(t, err)
	require.Equal(t, 2, update.User.Level)
	require.Equal(t, entity.PassportTierGold, update.User.PassportTier)
}

func Test_ledger_UpdateUserAggregate_Concurrent(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger()

	wg := sync.WaitGroup{}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.UpdateUserAggregate(ctx, testutil.User1.ID, repository.ProgressDelta{
				XP:           100,
				TokensEarned: 2.5,
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	user, err := repository.NewUserRepository().GetByID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2000), user.TotalXP)
	require.InDelta(t, 50, user.TotalTokensEarned, 1e-9)
	require.Equal(t, entity.LevelFromXP(2000), user.Level)
	require.Equal(t, entity.TierFromLevel(user.Level), user.PassportTier)
}

func Test_ledger_ClaimLease(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger()

	ok, err := l.AcquireClaim(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.AcquireClaim(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	// Another completion is not affected.
	ok, err = l.AcquireClaim(ctx, testutil.User2.ID, testutil.QuestTokenOnly.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.ReleaseClaim(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID))

	ok, err = l.AcquireClaim(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID, -time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// The lease above is already expired.
	ok, err = l.AcquireClaim(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Without completion there is no lease to take.
	ok, err = l.AcquireClaim(ctx, testutil.User1.ID, "unknown", time.Minute)
	require.True(t, errorx.Is(err, errorx.NotFound))
	require.False(t, ok)
}

func Test_ledger_DirectReward(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger()

	flags, err := l.IsDirectRewardClaimed(ctx, testutil.User1.ID, "halloween-bonus")
	require.NoError(t, err)
	require.Equal(t, ClaimFlags{}, flags)

	ok, err := l.AcquireDirectClaim(ctx, testutil.User1.ID, "halloween-bonus", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.AcquireDirectClaim(ctx, testutil.User1.ID, "halloween-bonus", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, l.RecordDirectTokenClaim(ctx, testutil.User1.ID, "halloween-bonus", "0xtoken"))
	err = l.RecordDirectTokenClaim(ctx, testutil.User1.ID, "halloween-bonus", "0xother")
	require.True(t, errorx.Is(err, errorx.AlreadyClaimed))

	granted, err := l.MarkDirectXPGranted(ctx, testutil.User1.ID, "halloween-bonus")
	require.NoError(t, err)
	require.True(t, granted)

	granted, err = l.MarkDirectXPGranted(ctx, testutil.User1.ID, "halloween-bonus")
	require.NoError(t, err)
	require.False(t, granted)

	flags, err = l.IsDirectRewardClaimed(ctx, testutil.User1.ID, "halloween-bonus")
	require.NoError(t, err)
	require.Equal(t, ClaimFlags{TokensClaimed: true, XPGranted: true}, flags)

	require.NoError(t, l.RecordDirectNFTClaim(ctx, testutil.User1.ID, "halloween-bonus", "0xmint"))
	flags, err = l.IsDirectRewardClaimed(ctx, testutil.User1.ID, "halloween-bonus")
	require.NoError(t, err)
	require.True(t, flags.NFTMinted)

	// A failed transfer hands the token leg back.
	directClaimRepo := repository.NewDirectClaimRepository()
	require.NoError(t, directClaimRepo.ResetTokensClaimed(ctx, testutil.User1.ID, "halloween-bonus", "0xother"))
	flags, err = l.IsDirectRewardClaimed(ctx, testutil.User1.ID, "halloween-bonus")
	require.NoError(t, err)
	require.True(t, flags.TokensClaimed)

	require.NoError(t, directClaimRepo.ResetTokensClaimed(ctx, testutil.User1.ID, "halloween-bonus", "0xtoken"))
	flags, err = l.IsDirectRewardClaimed(ctx, testutil.User1.ID, "halloween-bonus")
	require.NoError(t, err)
	require.False(t, flags.TokensClaimed)

	require.NoError(t, l.ReleaseDirectClaim(ctx, testutil.User1.ID, "halloween-bonus"))
	ok, err = l.AcquireDirectClaim(ctx, testutil.User1.ID, "halloween-bonus", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func Test_ledger_MarkQuestCounted(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger()

	counted, err := l.MarkQuestCounted(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)
	require.True(t, counted)

	counted, err = l.MarkQuestCounted(ctx, testutil.User1.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)
	require.False(t, counted)

	counted, err = l.MarkQuestCounted(ctx, testutil.User2.ID, testutil.QuestTokenOnly.ID)
	require.NoError(t, err)
	require.True(t, counted)
}

func Test_ClaimFlags_Done(t *testing.T) {
	reward := entity.RewardSpec{RewardXP: 10, RewardTPX: 5, HasNFT: true}
	require.False(t, ClaimFlags{TokensClaimed: true, XPGranted: true}.Done(reward))
	require.True(t, ClaimFlags{TokensClaimed: true, NFTMinted: true, XPGranted: true}.Done(reward))
	require.True(t, ClaimFlags{}.Done(entity.RewardSpec{}))
	require.True(t, ClaimFlags{XPGranted: true}.Done(entity.RewardSpec{RewardXP: 10}))
}
