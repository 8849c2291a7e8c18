package reward

import (
	"context"

	"github.com/hauntpass/backend/internal/domain/ledger"
	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/pkg/enum"
	"github.com/hauntpass/backend/pkg/xcontext"
)

type State string

var (
	StateStart              = enum.New(State("start"))
	StateCheckingLedger     = enum.New(State("checking_ledger"))
	StateTransferringTokens = enum.New(State("transferring_tokens"))
	StateConfirmingTokens   = enum.New(State("confirming_tokens"))
	StateMintingNFT         = enum.New(State("minting_nft"))
	StateConfirmingNFT      = enum.New(State("confirming_nft"))
	StateReconciling        = enum.New(State("reconciling"))
	StateDone               = enum.New(State("done"))
	StateError              = enum.New(State("error"))
)

type outcome string

const (
	outcomeSuccess        outcome = "success"
	outcomePartial        outcome = "partial"
	outcomeFailed         outcome = "failed"
	outcomeAlreadyClaimed outcome = "already_claimed"
	outcomeInProgress     outcome = "in_progress"
	outcomeNotEligible    outcome = "not_eligible"
)

// claim is the state of one orchestrator run.
type claim struct {
	target  target
	address string

	reward             entity.RewardSpec
	metadata           model.NFTMetadata
	placeholderTokenID string
	flags              ledger.ClaimFlags

	state  State
	result *model.ClaimResult

	// Filled by the chain legs and consumed while reconciling.
	tokenTxHash  string
	nftTxHash    string
	nftTokenID   string
	tokenSuccess bool
	nftSuccess   bool
	chainTried   bool
}

func newClaim(t target, address string) *claim {
	return &claim{
		target:  t,
		address: address,
		state:   StateStart,
		result:  &model.ClaimResult{},
	}
}

func (c *claim) transition(ctx context.Context, next State) {
	xcontext.Logger(ctx).Infof("Claim %s of user %s: %s -> %s",
		c.target.rewardKey(), c.target.userID(), c.state, next)
	c.state = next
}

func (c *claim) setReward(reward entity.RewardSpec) {
	c.reward = reward
	c.result.Rewards = model.ClaimRewards{
		XP:  reward.RewardXP,
		TPX: reward.RewardTPX,
		NFT: reward.HasNFT,
	}
}

func metadataOf(reward entity.RewardSpec) model.NFTMetadata {
	return model.NFTMetadata{
		Name:        reward.NFTName,
		Description: reward.NFTDescription,
		Image:       reward.NFTImage,
		Attributes:  model.ConvertNFTAttributes(reward.NFTAttributes),
	}
}
