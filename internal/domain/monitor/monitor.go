package monitor

import (
	"context"
	"errors"
	"strings"
	"time"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/hauntpass/backend/internal/common"
	"github.com/hauntpass/backend/internal/domain/blockchain"
	"github.com/hauntpass/backend/pkg/api/explorer"
	"github.com/hauntpass/backend/pkg/enum"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/pkg/math"
	"github.com/puzpuzpuz/xsync"
)

const (
	DefaultInterval      = 2 * time.Second
	DefaultTokenAttempts = 60
	DefaultNFTAttempts   = 120

	// Consumed hashes are forgotten after this duration.
	seenRetention = time.Hour
)

type State string

var (
	StateWatching  = enum.New(State("watching"))
	StateFound     = enum.New(State("found"))
	StateTimeout   = enum.New(State("timeout"))
	StateCancelled = enum.New(State("cancelled"))
)

type WatchRequest struct {
	Kind    explorer.TransferKind
	Address string

	// Contract and TxHash are optional filters.
	Contract string
	TxHash   string

	StartBlock  uint64
	Interval    time.Duration
	MaxAttempts int
}

type Confirmation struct {
	TransactionHash string
	TokenID         string
	BlockNumber     uint64
}

type WatchResult struct {
	State           State
	Found           bool
	TransactionHash string
	TokenID         string
	Attempts        int
}

type Monitor interface {
	StartBlock(ctx context.Context) uint64
	Watch(ctx context.Context, req WatchRequest, onFound func(Confirmation)) (WatchResult, error)
}

type monitor struct {
	explorer explorer.IEndpoint

	// seen holds transaction hashes consumed by earlier watches, with the time
	// they were consumed.
	seen *xsync.MapOf[string, time.Time]
}

func New(endpoint explorer.IEndpoint) *monitor {
	return &monitor{
		explorer: endpoint,
		seen:     xsync.NewMapOf[time.Time](),
	}
}

// StartBlock returns the block a watch started now should scan from. A few
// blocks are looked back so a transaction mined while the request was in
// flight is still found.
func (m *monitor) StartBlock(ctx context.Context) uint64 {
	current, err := m.explorer.BlockNumber(ctx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get current block number: %v", err)
		return 0
	}

	lookback := xcontext.Configs(ctx).Reward.StartBlockLookback
	return uint64(math.MaxInt64(int64(current)-lookback, 0))
}

// Watch polls the explorer until a matching transaction is found, the attempt
// budget runs out or ctx is done. The n-th attempt starts (n-1) intervals
// after the first one and every poll is bounded by one interval, so a watch
// always ends within MaxAttempts*Interval.
func (m *monitor) Watch(ctx context.Context, req WatchRequest, onFound func(Confirmation)) (WatchResult, error) {
	if req.Interval <= 0 {
		req.Interval = DefaultInterval
	}

	if req.MaxAttempts <= 0 {
		req.MaxAttempts = 1
	}

	m.pruneSeen()

	start := time.Now()
	ticker := time.NewTicker(req.Interval)
	defer ticker.Stop()

	xcontext.Logger(ctx).Debugf("Start watching %s transfers of %s (tx %s) from block %d",
		req.Kind, req.Address, req.TxHash, req.StartBlock)

	for attempt := 1; ; attempt++ {
		confirmation, found := m.poll(ctx, req)
		if found {
			m.observe(req, StateFound, start)
			if onFound != nil {
				onFound(confirmation)
			}

			return WatchResult{
				State:           StateFound,
				Found:           true,
				TransactionHash: confirmation.TransactionHash,
				TokenID:         confirmation.TokenID,
				Attempts:        attempt,
			}, nil
		}

		if ctx.Err() != nil {
			m.observe(req, StateCancelled, start)
			return WatchResult{State: StateCancelled, Attempts: attempt}, ctx.Err()
		}

		if attempt >= req.MaxAttempts {
			m.observe(req, StateTimeout, start)
			xcontext.Logger(ctx).Infof("Cannot find %s transfer of %s after %d attempts",
				req.Kind, req.Address, attempt)
			return WatchResult{State: StateTimeout, Attempts: attempt}, nil
		}

		select {
		case <-ctx.Done():
			m.observe(req, StateCancelled, start)
			return WatchResult{State: StateCancelled, Attempts: attempt}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *monitor) poll(ctx context.Context, req WatchRequest) (Confirmation, bool) {
	pollCtx, cancel := context.WithTimeout(ctx, req.Interval)
	defer cancel()

	txs, err := m.explorer.GetTransactions(pollCtx, explorer.TransactionFilter{
		Kind:       req.Kind,
		Address:    req.Address,
		Contract:   req.Contract,
		StartBlock: req.StartBlock,
	})
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot get transactions of %s: %v", req.Address, err)
		return Confirmation{}, false
	}

	for _, tx := range txs {
		if !matches(req, tx) {
			continue
		}

		if _, loaded := m.seen.LoadOrStore(strings.ToLower(tx.Hash), time.Now()); loaded {
			continue
		}

		confirmation := Confirmation{TransactionHash: tx.Hash, BlockNumber: tx.BlockNumber}
		if req.Kind == explorer.NFTTransfer {
			confirmation.TokenID = m.tokenID(pollCtx, req, tx)
		}

		return confirmation, true
	}

	return Confirmation{}, false
}

func matches(req WatchRequest, tx explorer.Transaction) bool {
	if req.TxHash != "" {
		return strings.EqualFold(req.TxHash, tx.Hash)
	}

	if req.Contract != "" && !strings.EqualFold(req.Contract, tx.Contract) {
		return false
	}

	return strings.EqualFold(req.Address, tx.To)
}

// tokenID decodes the minted token id from the receipt logs and falls back to
// the id reported by the explorer.
func (m *monitor) tokenID(ctx context.Context, req WatchRequest, tx explorer.Transaction) string {
	logs, err := m.explorer.GetReceiptLogs(ctx, tx.Hash)
	if err != nil {
		if !errors.Is(err, explorer.ErrReceiptNotFound) {
			xcontext.Logger(ctx).Warnf("Cannot get receipt logs of %s: %v", tx.Hash, err)
		}

		return tx.TokenID
	}

	ethLogs := []*ethtypes.Log{}
	for _, l := range logs {
		ethLog, err := l.ToEthLog()
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot decode log of %s: %v", tx.Hash, err)
			continue
		}
		ethLogs = append(ethLogs, ethLog)
	}

	if id, ok := blockchain.DecodeMintedTokenID(ethLogs, req.Contract); ok {
		return id
	}

	return tx.TokenID
}

func (m *monitor) pruneSeen() {
	threshold := time.Now().Add(-seenRetention)
	m.seen.Range(func(key string, consumedAt time.Time) bool {
		if consumedAt.Before(threshold) {
			m.seen.Delete(key)
		}
		return true
	})
}

func (m *monitor) observe(req WatchRequest, state State, start time.Time) {
	common.PromHistograms[common.ConfirmationDurationSeconds].
		WithLabelValues(string(req.Kind), string(state)).
		Observe(time.Since(start).Seconds())
}
