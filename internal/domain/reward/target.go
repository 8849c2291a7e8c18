package reward

import (
	"context"
	"time"

	"github.com/hauntpass/backend/internal/domain/ledger"
	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/xcontext"
)

// target hides whether the claimed reward belongs to a quest completion or is
// a direct reward keyed by the caller.
type target interface {
	userID() string
	rewardKey() string
	acquire(ctx context.Context, lease time.Duration) (bool, error)
	release(ctx context.Context)
	flags(ctx context.Context) (ledger.ClaimFlags, error)
	recordToken(ctx context.Context, amount float64, txHash string)
	recordNFT(ctx context.Context, tokenID, txHash string)
	markXPGranted(ctx context.Context) bool

	// markCounted returns true once per quest completion, false for rewards
	// which complete no quest.
	markCounted(ctx context.Context) bool
}

type questTarget struct {
	ledger  ledger.Ledger
	user    string
	questID string
}

func (t *questTarget) userID() string    { return t.user }
func (t *questTarget) rewardKey() string { return t.questID }

func (t *questTarget) acquire(ctx context.Context, lease time.Duration) (bool, error) {
	return t.ledger.AcquireClaim(ctx, t.user, t.questID, lease)
}

func (t *questTarget) release(ctx context.Context) {
	if err := t.ledger.ReleaseClaim(ctx, t.user, t.questID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot release claim of quest %s: %v", t.questID, err)
	}
}

func (t *questTarget) flags(ctx context.Context) (ledger.ClaimFlags, error) {
	return t.ledger.IsAlreadyClaimed(ctx, t.user, t.questID)
}

func (t *questTarget) recordToken(ctx context.Context, amount float64, txHash string) {
	err := t.ledger.RecordTokenClaim(ctx, t.user, t.questID, amount, txHash)
	if err != nil {
		logRecordError(ctx, "token", t.questID, err)
	}
}

func (t *questTarget) recordNFT(ctx context.Context, tokenID, txHash string) {
	err := t.ledger.RecordNFTClaim(ctx, t.user, t.questID, tokenID, txHash)
	if err != nil {
		logRecordError(ctx, "nft", t.questID, err)
	}
}

func (t *questTarget) markXPGranted(ctx context.Context) bool {
	granted, err := t.ledger.MarkXPGranted(ctx, t.user, t.questID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark xp of quest %s granted: %v", t.questID, err)
	}

	return granted
}

func (t *questTarget) markCounted(ctx context.Context) bool {
	counted, err := t.ledger.MarkQuestCounted(ctx, t.user, t.questID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count completion of quest %s: %v", t.questID, err)
	}

	return counted
}

// directTarget is a reward without quest record, tracked by its DirectClaim.
type directTarget struct {
	ledger ledger.Ledger
	user   string
	key    string
}

func (t *directTarget) userID() string    { return t.user }
func (t *directTarget) rewardKey() string { return entity.DirectRewardKey(t.key) }

func (t *directTarget) acquire(ctx context.Context, lease time.Duration) (bool, error) {
	return t.ledger.AcquireDirectClaim(ctx, t.user, t.key, lease)
}

func (t *directTarget) release(ctx context.Context) {
	if err := t.ledger.ReleaseDirectClaim(ctx, t.user, t.key); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot release direct claim %s: %v", t.key, err)
	}
}

func (t *directTarget) flags(ctx context.Context) (ledger.ClaimFlags, error) {
	return t.ledger.IsDirectRewardClaimed(ctx, t.user, t.key)
}

func (t *directTarget) recordToken(ctx context.Context, amount float64, txHash string) {
	err := t.ledger.RecordDirectTokenClaim(ctx, t.user, t.key, txHash)
	if err != nil {
		logRecordError(ctx, "token", t.rewardKey(), err)
	}
}

func (t *directTarget) recordNFT(ctx context.Context, tokenID, txHash string) {
	err := t.ledger.RecordDirectNFTClaim(ctx, t.user, t.key, txHash)
	if err != nil {
		logRecordError(ctx, "nft", t.rewardKey(), err)
	}
}

func (t *directTarget) markXPGranted(ctx context.Context) bool {
	granted, err := t.ledger.MarkDirectXPGranted(ctx, t.user, t.key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark xp of direct reward %s granted: %v", t.key, err)
	}

	return granted
}

func (t *directTarget) markCounted(context.Context) bool { return false }

func logRecordError(ctx context.Context, leg, rewardKey string, err error) {
	if errorx.Is(err, errorx.AlreadyClaimed) {
		xcontext.Logger(ctx).Warnf("The %s leg of %s was recorded by another claim", leg, rewardKey)
		return
	}

	xcontext.Logger(ctx).Errorf("Cannot record %s leg of %s: %v", leg, rewardKey, err)
}
