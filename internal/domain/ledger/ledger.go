package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/hauntpass/backend/internal/common"
	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Level and tier are written with a compare-and-swap on total_xp.
const maxLevelUpdateRetries = 5

type ClaimFlags struct {
	TokensClaimed bool
	NFTMinted     bool
	XPGranted     bool
}

// Done reports whether every leg the reward carries is done.
func (f ClaimFlags) Done(reward entity.RewardSpec) bool {
	return (!reward.HasTokens() || f.TokensClaimed) &&
		(!reward.HasNFT || f.NFTMinted) &&
		(reward.RewardXP <= 0 || f.XPGranted)
}

type AggregateUpdate struct {
	User          *entity.User
	PreviousLevel int
	LeveledUp     bool
}

type Ledger interface {
	GetClaimableReward(ctx context.Context, userID, questID string) (*entity.RewardSpec, error)
	IsAlreadyClaimed(ctx context.Context, userID, questID string) (ClaimFlags, error)
	RecordTokenClaim(ctx context.Context, userID, questID string, amount float64, txHash string) error
	RecordNFTClaim(ctx context.Context, userID, questID, tokenID, txHash string) error
	MarkXPGranted(ctx context.Context, userID, questID string) (bool, error)
	MarkQuestCounted(ctx context.Context, userID, questID string) (bool, error)
	UpdateUserAggregate(ctx context.Context, userID string, delta repository.ProgressDelta) (*AggregateUpdate, error)
	AcquireClaim(ctx context.Context, userID, questID string, lease time.Duration) (bool, error)
	ReleaseClaim(ctx context.Context, userID, questID string) error
	CreateNotification(ctx context.Context, notification *entity.Notification) error

	IsDirectRewardClaimed(ctx context.Context, userID, rewardKey string) (ClaimFlags, error)
	RecordDirectTokenClaim(ctx context.Context, userID, rewardKey, txHash string) error
	RecordDirectNFTClaim(ctx context.Context, userID, rewardKey, txHash string) error
	MarkDirectXPGranted(ctx context.Context, userID, rewardKey string) (bool, error)
	AcquireDirectClaim(ctx context.Context, userID, rewardKey string, lease time.Duration) (bool, error)
	ReleaseDirectClaim(ctx context.Context, userID, rewardKey string) error
}

type ledger struct {
	userRepo            repository.UserRepository
	questRepo           repository.QuestRepository
	questCompletionRepo repository.QuestCompletionRepository
	directClaimRepo     repository.DirectClaimRepository
	notificationRepo    repository.NotificationRepository
}

func New(
	userRepo repository.UserRepository,
	questRepo repository.QuestRepository,
	questCompletionRepo repository.QuestCompletionRepository,
	directClaimRepo repository.DirectClaimRepository,
	notificationRepo repository.NotificationRepository,
) *ledger {
	return &ledger{
		userRepo:            userRepo,
		questRepo:           questRepo,
		questCompletionRepo: questCompletionRepo,
		directClaimRepo:     directClaimRepo,
		notificationRepo:    notificationRepo,
	}
}

// GetClaimableReward returns the reward of a completion which passed review. A
// claimed completion is still returned, so a repeated claim can be reported
// as already claimed.
func (l *ledger) GetClaimableReward(ctx context.Context, userID, questID string) (*entity.RewardSpec, error) {
	completion, err := l.questCompletionRepo.Get(ctx, userID, questID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest completion")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest completion: %v", err)
		return nil, errorx.Unknown
	}

	if !completion.IsClaimable() {
		return nil, errorx.New(errorx.NotFound, "Quest completion is %s", completion.Status)
	}

	quest, err := l.questRepo.GetByID(ctx, questID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found quest")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return nil, errorx.Unknown
	}

	reward := quest.RewardSpec
	return &reward, nil
}

func (l *ledger) IsAlreadyClaimed(ctx context.Context, userID, questID string) (ClaimFlags, error) {
	completion, err := l.questCompletionRepo.Get(ctx, userID, questID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClaimFlags{}, errorx.New(errorx.NotFound, "Not found quest completion")
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest completion: %v", err)
		return ClaimFlags{}, errorx.Unknown
	}

	return ClaimFlags{
		TokensClaimed: completion.TokensClaimed,
		NFTMinted:     completion.NFTMinted,
		XPGranted:     completion.XPGranted,
	}, nil
}

// RecordTokenClaim sets the tokens_claimed flag only if it is not set yet.
// The amount is counted by UpdateUserAggregate.
func (l *ledger) RecordTokenClaim(
	ctx context.Context, userID, questID string, amount float64, txHash string,
) error {
	err := l.questCompletionRepo.SetTokensClaimed(ctx, userID, questID, txHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return errorx.New(errorx.AlreadyClaimed, "Tokens of quest %s were already claimed", questID)
		}

		xcontext.Logger(ctx).Errorf("Cannot record token claim of %s (%v tokens): %v", txHash, amount, err)
		return l.ledgerFailure("record_token_claim")
	}

	return l.markClaimedIfDone(ctx, userID, questID)
}

func (l *ledger) RecordNFTClaim(ctx context.Context, userID, questID, tokenID, txHash string) error {
	err := l.questCompletionRepo.SetNFTMinted(ctx, userID, questID, tokenID, txHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return errorx.New(errorx.AlreadyClaimed, "NFT of quest %s was already minted", questID)
		}

		xcontext.Logger(ctx).Errorf("Cannot record nft claim of %s: %v", txHash, err)
		return l.ledgerFailure("record_nft_claim")
	}

	return l.markClaimedIfDone(ctx, userID, questID)
}

// MarkXPGranted returns true only for the first caller.
func (l *ledger) MarkXPGranted(ctx context.Context, userID, questID string) (bool, error) {
	err := l.questCompletionRepo.SetXPGranted(ctx, userID, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot mark xp granted: %v", err)
		return false, l.ledgerFailure("mark_xp_granted")
	}

	if err := l.markClaimedIfDone(ctx, userID, questID); err != nil {
		return true, err
	}

	return true, nil
}

// MarkQuestCounted returns true only for the first caller, which adds the
// completion to quests_completed.
func (l *ledger) MarkQuestCounted(ctx context.Context, userID, questID string) (bool, error) {
	err := l.questCompletionRepo.SetQuestCounted(ctx, userID, questID)
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot mark quest counted: %v", err)
		return false, l.ledgerFailure("mark_quest_counted")
	}

	return true, nil
}

func (l *ledger) markClaimedIfDone(ctx context.Context, userID, questID string) error {
	completion, err := l.questCompletionRepo.Get(ctx, userID, questID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest completion: %v", err)
		return l.ledgerFailure("mark_claimed")
	}

	quest, err := l.questRepo.GetByID(ctx, questID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest: %v", err)
		return l.ledgerFailure("mark_claimed")
	}

	flags := ClaimFlags{
		TokensClaimed: completion.TokensClaimed,
		NFTMinted:     completion.NFTMinted,
		XPGranted:     completion.XPGranted,
	}

	if !flags.Done(quest.RewardSpec) {
		return nil
	}

	if err := l.questCompletionRepo.MarkClaimed(ctx, userID, questID, time.Now()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark quest completion as claimed: %v", err)
		return l.ledgerFailure("mark_claimed")
	}

	return nil
}

// UpdateUserAggregate applies the delta with relative increments, then writes
// level and tier derived from the stored XP. Tier never regresses.
func (l *ledger) UpdateUserAggregate(
	ctx context.Context, userID string, delta repository.ProgressDelta,
) (*AggregateUpdate, error) {
	if err := l.userRepo.IncreaseProgress(ctx, userID, delta); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot increase progress of user: %v", err)
		return nil, l.ledgerFailure("increase_progress")
	}

	for i := 0; i < maxLevelUpdateRetries; i++ {
		user, err := l.userRepo.GetByID(ctx, userID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, l.ledgerFailure("update_level")
		}

		previousLevel := user.Level
		level := entity.LevelFromXP(user.TotalXP)
		if level < user.Level {
			level = user.Level
		}
		tier := entity.HigherTier(user.PassportTier, entity.TierFromLevel(level))

		if level == user.Level && tier == user.PassportTier {
			return &AggregateUpdate{User: user, PreviousLevel: previousLevel}, nil
		}

		err = l.userRepo.UpdateLevel(ctx, userID, user.TotalXP, level, tier)
		if err == nil {
			user.Level = level
			user.PassportTier = tier
			return &AggregateUpdate{
				User:          user,
				PreviousLevel: previousLevel,
				LeveledUp:     level > previousLevel,
			}, nil
		}

		if !errors.Is(err, repository.ErrNotAffected) {
			xcontext.Logger(ctx).Errorf("Cannot update level of user: %v", err)
			return nil, l.ledgerFailure("update_level")
		}
	}

	// Every CAS failure means another claim changed the XP after this one. That
	// claim writes the level of the newer XP itself.
	xcontext.Logger(ctx).Debugf("Level of user %s is left to a concurrent claim", userID)
	user, err := l.userRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, l.ledgerFailure("update_level")
	}

	return &AggregateUpdate{User: user, PreviousLevel: user.Level}, nil
}

// AcquireClaim returns false if another claim of the same completion holds an
// unexpired lease, and a NotFound error if there is no completion.
func (l *ledger) AcquireClaim(ctx context.Context, userID, questID string, lease time.Duration) (bool, error) {
	now := time.Now()
	err := l.questCompletionRepo.AcquireLease(ctx, userID, questID, now, now.Add(lease))
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return false, l.checkCompletionExists(ctx, userID, questID)
		}

		xcontext.Logger(ctx).Errorf("Cannot acquire claim lease: %v", err)
		return false, errorx.Unknown
	}

	return true, nil
}

// checkCompletionExists tells a held lease from a missing completion, both of
// which leave AcquireLease without a matched row.
func (l *ledger) checkCompletionExists(ctx context.Context, userID, questID string) error {
	_, err := l.questCompletionRepo.Get(ctx, userID, questID)
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.New(errorx.NotFound, "Not found quest completion")
	}

	xcontext.Logger(ctx).Errorf("Cannot get quest completion: %v", err)
	return errorx.Unknown
}

func (l *ledger) ReleaseClaim(ctx context.Context, userID, questID string) error {
	if err := l.questCompletionRepo.ReleaseLease(ctx, userID, questID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot release claim lease: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (l *ledger) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := l.notificationRepo.Create(ctx, notification); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create notification: %v", err)
		return l.ledgerFailure("create_notification")
	}

	return nil
}

func (l *ledger) IsDirectRewardClaimed(ctx context.Context, userID, rewardKey string) (ClaimFlags, error) {
	claim, err := l.directClaimRepo.Get(ctx, userID, rewardKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ClaimFlags{}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get direct claim: %v", err)
		return ClaimFlags{}, errorx.Unknown
	}

	return ClaimFlags{
		TokensClaimed: claim.TokensClaimed,
		NFTMinted:     claim.NFTMinted,
		XPGranted:     claim.XPGranted,
	}, nil
}

func (l *ledger) RecordDirectTokenClaim(ctx context.Context, userID, rewardKey, txHash string) error {
	err := l.directClaimRepo.SetTokensClaimed(ctx, userID, rewardKey, txHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return errorx.New(errorx.AlreadyClaimed, "Tokens of reward %s were already claimed", rewardKey)
		}

		xcontext.Logger(ctx).Errorf("Cannot record direct token claim of %s: %v", txHash, err)
		return l.ledgerFailure("record_token_claim")
	}

	return nil
}

func (l *ledger) RecordDirectNFTClaim(ctx context.Context, userID, rewardKey, txHash string) error {
	err := l.directClaimRepo.SetNFTMinted(ctx, userID, rewardKey, txHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return errorx.New(errorx.AlreadyClaimed, "NFT of reward %s was already minted", rewardKey)
		}

		xcontext.Logger(ctx).Errorf("Cannot record direct nft claim of %s: %v", txHash, err)
		return l.ledgerFailure("record_nft_claim")
	}

	return nil
}

func (l *ledger) MarkDirectXPGranted(ctx context.Context, userID, rewardKey string) (bool, error) {
	err := l.directClaimRepo.SetXPGranted(ctx, userID, rewardKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot mark direct xp granted: %v", err)
		return false, l.ledgerFailure("mark_xp_granted")
	}

	return true, nil
}

func (l *ledger) AcquireDirectClaim(
	ctx context.Context, userID, rewardKey string, lease time.Duration,
) (bool, error) {
	if err := l.directClaimRepo.Upsert(ctx, userID, rewardKey); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create direct claim: %v", err)
		return false, errorx.Unknown
	}

	now := time.Now()
	err := l.directClaimRepo.AcquireLease(ctx, userID, rewardKey, now, now.Add(lease))
	if err != nil {
		if errors.Is(err, repository.ErrNotAffected) {
			return false, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot acquire direct claim lease: %v", err)
		return false, errorx.Unknown
	}

	return true, nil
}

func (l *ledger) ReleaseDirectClaim(ctx context.Context, userID, rewardKey string) error {
	if err := l.directClaimRepo.ReleaseLease(ctx, userID, rewardKey); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot release direct claim lease: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (l *ledger) ledgerFailure(operation string) error {
	common.PromCounters[common.LedgerWriteFailure].WithLabelValues(operation).Inc()
	return errorx.New(errorx.LedgerWriteFailure, "Cannot write %s", operation)
}
