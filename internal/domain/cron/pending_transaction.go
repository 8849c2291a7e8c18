package cron

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/hauntpass/backend/internal/common"
	"github.com/hauntpass/backend/internal/domain/blockchain"
	"github.com/hauntpass/backend/internal/domain/blockchain/eth"
	"github.com/hauntpass/backend/internal/domain/statistic"
	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/model"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/eventbus"
	"github.com/hauntpass/backend/pkg/xcontext"
)

const (
	defaultReconcileInterval = time.Minute
	defaultPendingGrace      = 5 * time.Minute
	defaultBatchSize         = 100

	// A transaction without receipt after this long was dropped by the chain.
	droppedAfter = 24 * time.Hour

	reasonReverted = "reverted"
	reasonDropped  = "dropped"
)

type receiptOutcome int

const (
	receiptPending receiptOutcome = iota
	receiptSucceeded
	receiptFailed
)

// PendingTransactionCronJob resolves token and nft transactions which were
// submitted by a claim but not confirmed before the claim returned.
type PendingTransactionCronJob struct {
	ethClient           eth.EthClient
	tokenTxRepo         repository.TokenTransactionRepository
	nftTxRepo           repository.NFTTransactionRepository
	questCompletionRepo repository.QuestCompletionRepository
	directClaimRepo     repository.DirectClaimRepository
	userRepo            repository.UserRepository
	leaderboard         statistic.Leaderboard
	bus                 eventbus.Bus
	interval            time.Duration
}

func NewPendingTransactionCronJob(
	ethClient eth.EthClient,
	tokenTxRepo repository.TokenTransactionRepository,
	nftTxRepo repository.NFTTransactionRepository,
	questCompletionRepo repository.QuestCompletionRepository,
	directClaimRepo repository.DirectClaimRepository,
	userRepo repository.UserRepository,
	leaderboard statistic.Leaderboard,
	bus eventbus.Bus,
	interval time.Duration,
) *PendingTransactionCronJob {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}

	return &PendingTransactionCronJob{
		ethClient:           ethClient,
		tokenTxRepo:         tokenTxRepo,
		nftTxRepo:           nftTxRepo,
		questCompletionRepo: questCompletionRepo,
		directClaimRepo:     directClaimRepo,
		userRepo:            userRepo,
		leaderboard:         leaderboard,
		bus:                 bus,
		interval:            interval,
	}
}

func (job *PendingTransactionCronJob) Do(ctx context.Context) {
	cfg := xcontext.Configs(ctx).Worker

	grace := cfg.PendingGrace
	if grace <= 0 {
		grace = defaultPendingGrace
	}

	limit := cfg.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}

	before := time.Now().Add(-grace)
	job.reconcileTokens(ctx, before, limit)
	job.reconcileNFTs(ctx, before, limit)
}

func (job *PendingTransactionCronJob) RunNow() bool {
	return true
}

func (job *PendingTransactionCronJob) Interval() time.Duration {
	return job.interval
}

func (job *PendingTransactionCronJob) reconcileTokens(ctx context.Context, before time.Time, limit int) {
	txs, err := job.tokenTxRepo.GetPending(ctx, before, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending token transactions: %v", err)
		return
	}

	for _, tx := range txs {
		outcome, reason, _ := job.check(ctx, tx.TxHash, tx.CreatedAt)
		switch outcome {
		case receiptPending:
			continue

		case receiptSucceeded:
			err := job.tokenTxRepo.UpdateStatus(ctx, tx.TxHash, entity.TransactionStatusConfirmed, "")
			if err != nil {
				job.logResolveError(ctx, "confirm token", tx.TxHash, err)
				continue
			}

			job.count("token", entity.TransactionStatusConfirmed)

		case receiptFailed:
			if err := job.failToken(ctx, tx, reason); err != nil {
				job.logResolveError(ctx, "fail token", tx.TxHash, err)
				continue
			}

			job.count("token", entity.TransactionStatusFailed)
			job.publish(ctx, tx.UserID, tx.ToAddress)
		}
	}
}

// failToken marks the transfer failed and takes its tokens back from the
// aggregate, so the token leg can be claimed again. Only the worker which
// moves the transaction out of pending takes them back.
func (job *PendingTransactionCronJob) failToken(
	ctx context.Context, tx entity.TokenTransaction, reason string,
) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := job.tokenTxRepo.UpdateStatus(ctx, tx.TxHash, entity.TransactionStatusFailed, reason); err != nil {
		return err
	}

	var err error
	if key, ok := entity.ParseDirectRewardKey(tx.RewardKey); ok {
		err = job.directClaimRepo.ResetTokensClaimed(ctx, tx.UserID, key, tx.TxHash)
	} else {
		err = job.questCompletionRepo.ResetTokensClaimed(ctx, tx.UserID, tx.RewardKey, tx.TxHash)
	}
	if err != nil {
		return err
	}

	err = job.userRepo.IncreaseProgress(ctx, tx.UserID, repository.ProgressDelta{
		TokensEarned:  -tx.Amount,
		TokensClaimed: -tx.Amount,
	})
	if err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)

	// The tokens are taken back from the board of the period they were earned in.
	if err := job.leaderboard.Change(ctx, tx.UserID, 0, -tx.Amount, tx.CreatedAt); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot revert leaderboard of user %s: %v", tx.UserID, err)
	}

	return nil
}

func (job *PendingTransactionCronJob) reconcileNFTs(ctx context.Context, before time.Time, limit int) {
	txs, err := job.nftTxRepo.GetPending(ctx, before, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending nft transactions: %v", err)
		return
	}

	for _, tx := range txs {
		outcome, reason, receipt := job.check(ctx, tx.TxHash, tx.CreatedAt)
		switch outcome {
		case receiptPending:
			continue

		case receiptSucceeded:
			if err := job.confirmNFT(ctx, tx, receipt); err != nil {
				job.logResolveError(ctx, "confirm nft", tx.TxHash, err)
				continue
			}

			job.count("nft", entity.TransactionStatusConfirmed)
			if tx.Placeholder {
				job.publish(ctx, tx.UserID, tx.ToAddress)
			}

		case receiptFailed:
			if err := job.failNFT(ctx, tx, reason); err != nil {
				job.logResolveError(ctx, "fail nft", tx.TxHash, err)
				continue
			}

			job.count("nft", entity.TransactionStatusFailed)
			job.publish(ctx, tx.UserID, tx.ToAddress)
		}
	}
}

// confirmNFT replaces a placeholder token id by the one minted in the
// receipt. A receipt without mint event keeps the placeholder.
func (job *PendingTransactionCronJob) confirmNFT(
	ctx context.Context, tx entity.NFTTransaction, receipt *ethtypes.Receipt,
) error {
	tokenID, ok := blockchain.DecodeMintedTokenID(receipt.Logs, tx.Contract)
	if !ok {
		xcontext.Logger(ctx).Warnf("Cannot find minted token id in receipt of %s", tx.TxHash)
		return job.nftTxRepo.UpdateStatus(ctx, tx.TxHash, entity.TransactionStatusConfirmed, "")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := job.nftTxRepo.Confirm(ctx, tx.TxHash, tokenID); err != nil {
		return err
	}

	if _, direct := entity.ParseDirectRewardKey(tx.RewardKey); !direct && tx.TokenID != tokenID {
		err := job.questCompletionRepo.UpdateNFTTokenID(ctx, tx.UserID, tx.RewardKey, tx.TxHash, tokenID)
		if err != nil {
			return err
		}
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

func (job *PendingTransactionCronJob) failNFT(
	ctx context.Context, tx entity.NFTTransaction, reason string,
) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := job.nftTxRepo.UpdateStatus(ctx, tx.TxHash, entity.TransactionStatusFailed, reason); err != nil {
		return err
	}

	var err error
	if key, ok := entity.ParseDirectRewardKey(tx.RewardKey); ok {
		err = job.directClaimRepo.ResetNFTMinted(ctx, tx.UserID, key, tx.TxHash)
	} else {
		err = job.questCompletionRepo.ResetNFTMinted(ctx, tx.UserID, tx.RewardKey, tx.TxHash)
	}
	if err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

func (job *PendingTransactionCronJob) check(
	ctx context.Context, txHash string, createdAt time.Time,
) (receiptOutcome, string, *ethtypes.Receipt) {
	receipt, err := job.ethClient.TransactionReceipt(ctx, ethcommon.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			if time.Since(createdAt) > droppedAfter {
				return receiptFailed, reasonDropped, nil
			}

			return receiptPending, "", nil
		}

		xcontext.Logger(ctx).Warnf("Cannot get receipt of %s: %v", txHash, err)
		return receiptPending, "", nil
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return receiptFailed, reasonReverted, receipt
	}

	return receiptSucceeded, "", receipt
}

// logResolveError stays quiet when another worker already resolved the
// transaction.
func (job *PendingTransactionCronJob) logResolveError(ctx context.Context, action, txHash string, err error) {
	if errors.Is(err, repository.ErrNotAffected) {
		xcontext.Logger(ctx).Debugf("Transaction %s was already resolved", txHash)
		return
	}

	xcontext.Logger(ctx).Errorf("Cannot %s transaction %s: %v", action, txHash, err)
}

func (job *PendingTransactionCronJob) count(kind string, status entity.TransactionStatus) {
	common.PromCounters[common.ReconciledTransactionTotal].WithLabelValues(kind, string(status)).Inc()
}

func (job *PendingTransactionCronJob) publish(ctx context.Context, userID, address string) {
	job.bus.Publish(ctx, model.EventUserDataUpdated, model.UserDataUpdatedEvent{
		UserID:        userID,
		WalletAddress: address,
	})
}
