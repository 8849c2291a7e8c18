package reward

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hauntpass/backend/internal/common"
	"github.com/hauntpass/backend/internal/domain/blockchain"
	"github.com/hauntpass/backend/internal/domain/ledger"
	"github.com/hauntpass/backend/internal/domain/monitor"
	"github.com/hauntpass/backend/internal/domain/statistic"
	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/api/explorer"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/eventbus"
	"github.com/hauntpass/backend/pkg/xcontext"
)

const defaultClaimLease = 10 * time.Minute

type Orchestrator interface {
	ClaimReward(ctx context.Context, userID, questID, walletAddress string) (*model.ClaimResult, error)
	ClaimDirectReward(ctx context.Context, req model.ClaimDirectRewardRequest) (*model.ClaimResult, error)
}

type orchestrator struct {
	ledger       ledger.Ledger
	tokenGateway blockchain.TokenGateway
	nftGateway   blockchain.NFTGateway
	monitor      monitor.Monitor
	leaderboard  statistic.Leaderboard
	tokenTxRepo  repository.TokenTransactionRepository
	nftTxRepo    repository.NFTTransactionRepository
	bus          eventbus.Bus
}

func New(
	ledger ledger.Ledger,
	tokenGateway blockchain.TokenGateway,
	nftGateway blockchain.NFTGateway,
	monitor monitor.Monitor,
	leaderboard statistic.Leaderboard,
	tokenTxRepo repository.TokenTransactionRepository,
	nftTxRepo repository.NFTTransactionRepository,
	bus eventbus.Bus,
) *orchestrator {
	return &orchestrator{
		ledger:       ledger,
		tokenGateway: tokenGateway,
		nftGateway:   nftGateway,
		monitor:      monitor,
		leaderboard:  leaderboard,
		tokenTxRepo:  tokenTxRepo,
		nftTxRepo:    nftTxRepo,
		bus:          bus,
	}
}

// ClaimReward claims the reward of a reviewed quest completion. Failures of a
// chain leg are reported in the result, only unexpected ledger faults are
// returned as error.
func (o *orchestrator) ClaimReward(
	ctx context.Context, userID, questID, walletAddress string,
) (*model.ClaimResult, error) {
	c := newClaim(&questTarget{ledger: o.ledger, user: userID, questID: questID}, walletAddress)

	return o.claim(ctx, c, func(ctx context.Context) error {
		reward, err := o.ledger.GetClaimableReward(ctx, userID, questID)
		if err != nil {
			return err
		}

		c.setReward(*reward)
		c.metadata = metadataOf(*reward)
		return nil
	})
}

// ClaimDirectReward grants a reward which is not backed by a quest. The
// reward key identifies it for idempotency.
func (o *orchestrator) ClaimDirectReward(
	ctx context.Context, req model.ClaimDirectRewardRequest,
) (*model.ClaimResult, error) {
	if req.UserID == "" || req.RewardKey == "" {
		return nil, errorx.New(errorx.BadRequest, "Require user id and reward key")
	}

	if req.XP < 0 || req.TPX < 0 {
		return nil, errorx.New(errorx.BadRequest, "Reward must not be negative")
	}

	c := newClaim(&directTarget{ledger: o.ledger, user: req.UserID, key: req.RewardKey}, req.WalletAddress)
	c.placeholderTokenID = req.PlaceholderTokenID

	reward := entity.RewardSpec{RewardXP: req.XP, RewardTPX: req.TPX}
	if req.NFT != nil {
		reward.HasNFT = true
		reward.NFTName = req.NFT.Name
		reward.NFTDescription = req.NFT.Description
		reward.NFTImage = req.NFT.Image
		c.metadata = *req.NFT
		if c.metadata.Name == "" {
			c.metadata.Name = xcontext.Configs(ctx).Reward.NFTCollectionName
		}
	}

	return o.claim(ctx, c, func(context.Context) error {
		c.setReward(reward)
		return nil
	})
}

func (o *orchestrator) claim(
	ctx context.Context, c *claim, loadReward func(context.Context) error,
) (*model.ClaimResult, error) {
	c.transition(ctx, StateCheckingLedger)

	acquired, err := c.target.acquire(ctx, claimLease(ctx))
	if err != nil {
		c.transition(ctx, StateError)
		if errorx.Is(err, errorx.NotFound) {
			return o.reject(c, outcomeNotEligible, err), nil
		}

		return nil, err
	}

	if !acquired {
		c.transition(ctx, StateError)
		return o.reject(c, outcomeInProgress,
			errorx.New(errorx.ClaimInProgress, "Reward %s is being claimed", c.target.rewardKey())), nil
	}

	// The lease must be released even if the caller went away.
	defer c.target.release(context.WithoutCancel(ctx))

	if err := loadReward(ctx); err != nil {
		c.transition(ctx, StateError)
		if errorx.Is(err, errorx.NotFound) {
			return o.reject(c, outcomeNotEligible, err), nil
		}

		return nil, err
	}

	c.flags, err = c.target.flags(ctx)
	if err != nil {
		c.transition(ctx, StateError)
		return nil, err
	}

	if c.flags.Done(c.reward) {
		xcontext.Logger(ctx).Infof("Reward %s of user %s was already claimed",
			c.target.rewardKey(), c.target.userID())
		c.transition(ctx, StateDone)
		c.result.Success = true
		c.result.AlreadyClaimed = true
		o.count(outcomeAlreadyClaimed)
		return c.result, nil
	}

	o.transferTokens(ctx, c)
	o.mintNFT(ctx, c)

	// Chain operations cannot be undone, so their bookkeeping outlives the
	// request.
	o.reconcile(context.WithoutCancel(ctx), c)

	o.finish(ctx, c)
	return c.result, nil
}

func (o *orchestrator) transferTokens(ctx context.Context, c *claim) {
	if !c.reward.HasTokens() || c.flags.TokensClaimed {
		return
	}

	c.chainTried = true
	startBlock := o.monitor.StartBlock(ctx)

	c.transition(ctx, StateTransferringTokens)
	transfer := o.tokenGateway.Transfer(ctx, blockchain.TransferRequest{
		UserID:    c.target.userID(),
		RewardKey: c.target.rewardKey(),
		Address:   c.address,
		Amount:    c.reward.RewardTPX,
	})

	c.result.TokenResult = &model.TokenResult{Success: transfer.Success}
	if !transfer.Success {
		xcontext.Logger(ctx).Warnf("Cannot transfer tokens of %s to user %s: %s",
			c.target.rewardKey(), c.target.userID(), transfer.Error)
		c.result.TokenResult.Error = errorx.FriendlyReason(transfer.Error)
		return
	}

	c.tokenSuccess = true
	c.tokenTxHash = transfer.TxHash
	c.result.TokenResult.TxHash = transfer.TxHash

	c.transition(ctx, StateConfirmingTokens)
	cfg := xcontext.Configs(ctx)
	watch, err := o.monitor.Watch(ctx, monitor.WatchRequest{
		Kind:        explorer.TokenTransfer,
		Address:     c.address,
		Contract:    cfg.Blockchain.TokenAddress,
		TxHash:      transfer.TxHash,
		StartBlock:  startBlock,
		Interval:    confirmInterval(ctx),
		MaxAttempts: attempts(cfg.Reward.TokenConfirmAttempts, monitor.DefaultTokenAttempts),
	}, nil)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Stop confirming transfer %s: %v", transfer.TxHash, err)
	}

	if !watch.Found {
		xcontext.Logger(ctx).Infof("Transfer %s is not confirmed yet, keep the submitted hash", transfer.TxHash)
		return
	}

	c.result.TokenResult.Confirmed = true
	err = o.tokenTxRepo.UpdateStatus(context.WithoutCancel(ctx),
		transfer.TxHash, entity.TransactionStatusConfirmed, "")
	if err != nil && !errors.Is(err, repository.ErrNotAffected) {
		xcontext.Logger(ctx).Errorf("Cannot confirm token transaction %s: %v", transfer.TxHash, err)
		common.PromCounters[common.LedgerWriteFailure].WithLabelValues("confirm_token_transaction").Inc()
	}
}

func (o *orchestrator) mintNFT(ctx context.Context, c *claim) {
	if !c.reward.HasNFT || c.flags.NFTMinted {
		return
	}

	c.chainTried = true
	c.result.NFTResult = &model.NFTResult{}

	metadataURI, err := blockchain.BuildMetadataURI(c.metadata)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot build metadata of %s: %v", c.target.rewardKey(), err)
		c.result.NFTResult.Error = errorx.FriendlyMessage(err)
		return
	}

	startBlock := o.monitor.StartBlock(ctx)

	c.transition(ctx, StateMintingNFT)
	mint := o.nftGateway.Mint(ctx, blockchain.MintRequest{
		UserID:      c.target.userID(),
		RewardKey:   c.target.rewardKey(),
		Address:     c.address,
		MetadataURI: metadataURI,
	})
	if !mint.Success {
		xcontext.Logger(ctx).Warnf("Cannot mint nft of %s to user %s: %s",
			c.target.rewardKey(), c.target.userID(), mint.Error)
		c.result.NFTResult.Error = errorx.FriendlyReason(mint.Error)
		return
	}

	c.nftSuccess = true
	c.nftTxHash = mint.TxHash
	c.result.NFTResult.Success = true
	c.result.NFTResult.TxHash = mint.TxHash

	c.transition(ctx, StateConfirmingNFT)
	cfg := xcontext.Configs(ctx)
	watch, err := o.monitor.Watch(ctx, monitor.WatchRequest{
		Kind:        explorer.NFTTransfer,
		Address:     c.address,
		Contract:    cfg.Blockchain.NFTAddress,
		TxHash:      mint.TxHash,
		StartBlock:  startBlock,
		Interval:    confirmInterval(ctx),
		MaxAttempts: attempts(cfg.Reward.NFTConfirmAttempts, monitor.DefaultNFTAttempts),
	}, nil)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Stop confirming mint %s: %v", mint.TxHash, err)
	}

	bgCtx := context.WithoutCancel(ctx)
	if watch.Found && watch.TokenID != "" {
		c.nftTokenID = watch.TokenID
		c.result.NFTResult.Confirmed = true
		c.result.NFTResult.TokenID = watch.TokenID

		if err := o.nftTxRepo.Confirm(bgCtx, mint.TxHash, watch.TokenID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot confirm nft transaction %s: %v", mint.TxHash, err)
			common.PromCounters[common.LedgerWriteFailure].WithLabelValues("confirm_nft_transaction").Inc()
		}

		return
	}

	c.nftTokenID = placeholderTokenID(ctx, c.placeholderTokenID)
	c.result.NFTResult.TokenID = c.nftTokenID
	xcontext.Logger(ctx).Infof("Mint %s is not confirmed yet, assume token id %s", mint.TxHash, c.nftTokenID)

	if err := o.nftTxRepo.SetPlaceholder(bgCtx, mint.TxHash, c.nftTokenID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot set placeholder of nft transaction %s: %v", mint.TxHash, err)
		common.PromCounters[common.LedgerWriteFailure].WithLabelValues("placeholder_nft_transaction").Inc()
	}
}

// reconcile writes the outcome of the chain legs back. Failures are logged and
// counted but never returned.
func (o *orchestrator) reconcile(ctx context.Context, c *claim) {
	c.transition(ctx, StateReconciling)

	if c.tokenSuccess {
		c.target.recordToken(ctx, c.reward.RewardTPX, c.tokenTxHash)
	}

	if c.nftSuccess {
		c.target.recordNFT(ctx, c.nftTokenID, c.nftTxHash)
	}

	delta := repository.ProgressDelta{}
	if c.tokenSuccess {
		delta.TokensEarned = c.reward.RewardTPX
		delta.TokensClaimed = c.reward.RewardTPX
	}

	// XP is granted with the first chain leg that succeeds, or right away when
	// no chain leg is left.
	if c.reward.RewardXP > 0 && !c.flags.XPGranted && (c.tokenSuccess || c.nftSuccess || !c.chainTried) {
		if c.target.markXPGranted(ctx) {
			delta.XP = c.reward.RewardXP
		}
	}

	// A quest is completed by the first leg it grants, whatever the leg.
	if c.tokenSuccess || c.nftSuccess || delta.XP > 0 {
		delta.QuestCompleted = c.target.markCounted(ctx)
	}

	if delta.XP == 0 && delta.TokensEarned == 0 && !c.nftSuccess && !delta.QuestCompleted {
		return
	}

	var update *ledger.AggregateUpdate
	if delta.XP != 0 || delta.TokensEarned != 0 || delta.QuestCompleted {
		var err error
		update, err = o.ledger.UpdateUserAggregate(ctx, c.target.userID(), delta)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update aggregate of user %s: %v", c.target.userID(), err)
		}

		err = o.leaderboard.Change(ctx, c.target.userID(), delta.XP, delta.TokensEarned, time.Now())
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot change leaderboard of user %s: %v", c.target.userID(), err)
		}
	}

	o.notify(ctx, c, delta, update)
}

func (o *orchestrator) notify(
	ctx context.Context, c *claim, delta repository.ProgressDelta, update *ledger.AggregateUpdate,
) {
	notifications := []*entity.Notification{}

	if parts := rewardParts(delta); len(parts) > 0 {
		notifications = append(notifications, &entity.Notification{
			UserID:  c.target.userID(),
			Title:   "Reward claimed",
			Message: fmt.Sprintf("You received %s.", strings.Join(parts, " and ")),
			Type:    entity.NotificationTypeReward,
		})
	}

	if c.nftSuccess {
		name := c.metadata.Name
		if name == "" {
			name = xcontext.Configs(ctx).Reward.NFTCollectionName
		}

		notifications = append(notifications, &entity.Notification{
			UserID:  c.target.userID(),
			Title:   "New NFT",
			Message: fmt.Sprintf("%s was minted to your wallet.", name),
			Type:    entity.NotificationTypeNFT,
		})
	}

	if update != nil && update.LeveledUp {
		notifications = append(notifications, &entity.Notification{
			UserID: c.target.userID(),
			Title:  "Level up!",
			Message: fmt.Sprintf("You reached level %d with a %s passport.",
				update.User.Level, update.User.PassportTier),
			Type: entity.NotificationTypeLevelUp,
		})
	}

	for _, n := range notifications {
		if err := o.ledger.CreateNotification(ctx, n); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create %s notification: %v", n.Type, err)
		}
	}
}

func (o *orchestrator) finish(ctx context.Context, c *claim) {
	c.result.Success = c.tokenSuccess || c.nftSuccess || (!c.chainTried && c.reward.RewardXP > 0)

	switch {
	case !c.result.Success:
		c.transition(ctx, StateError)
		c.result.Error = firstLegError(c.result)
		o.count(outcomeFailed)
	case legFailed(c.result):
		c.transition(ctx, StateDone)
		o.count(outcomePartial)
	default:
		c.transition(ctx, StateDone)
		o.count(outcomeSuccess)
	}

	o.bus.Publish(context.WithoutCancel(ctx), model.EventUserDataUpdated, model.UserDataUpdatedEvent{
		UserID:        c.target.userID(),
		WalletAddress: c.address,
	})
}

func (o *orchestrator) reject(c *claim, out outcome, err error) *model.ClaimResult {
	o.count(out)
	c.result.Success = false
	c.result.Error = errorx.FriendlyMessage(err)
	return c.result
}

func (o *orchestrator) count(out outcome) {
	common.PromCounters[common.RewardClaimTotal].WithLabelValues(string(out)).Inc()
}

func rewardParts(delta repository.ProgressDelta) []string {
	parts := []string{}
	if delta.TokensEarned > 0 {
		parts = append(parts, fmt.Sprintf("%g TPX", delta.TokensEarned))
	}

	if delta.XP > 0 {
		parts = append(parts, fmt.Sprintf("%d XP", delta.XP))
	}

	return parts
}

func legFailed(result *model.ClaimResult) bool {
	return (result.TokenResult != nil && !result.TokenResult.Success) ||
		(result.NFTResult != nil && !result.NFTResult.Success)
}

func firstLegError(result *model.ClaimResult) string {
	if result.TokenResult != nil && result.TokenResult.Error != "" {
		return result.TokenResult.Error
	}

	if result.NFTResult != nil && result.NFTResult.Error != "" {
		return result.NFTResult.Error
	}

	return errorx.FriendlyMessage(errorx.Unknown)
}

func placeholderTokenID(ctx context.Context, supplied string) string {
	if supplied != "" {
		return supplied
	}

	prefix := xcontext.Configs(ctx).Reward.PlaceholderTokenIDPrefix
	if node := xcontext.SnowFlake(ctx); node != nil {
		return prefix + node.Generate().String()
	}

	return prefix + uuid.NewString()
}

func claimLease(ctx context.Context) time.Duration {
	if lease := xcontext.Configs(ctx).Reward.ClaimLease; lease > 0 {
		return lease
	}

	return defaultClaimLease
}

func confirmInterval(ctx context.Context) time.Duration {
	if interval := xcontext.Configs(ctx).Reward.ConfirmInterval; interval > 0 {
		return interval
	}

	return monitor.DefaultInterval
}

func attempts(configured, fallback int) int {
	if configured > 0 {
		return configured
	}

	return fallback
}
