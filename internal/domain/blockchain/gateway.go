package blockchain

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	internalcommon "github.com/hauntpass/backend/internal/common"
	"github.com/hauntpass/backend/internal/domain/blockchain/eth"
	"github.com/hauntpass/backend/internal/domain/blockchain/types"
	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/ethutil"
	"github.com/hauntpass/backend/pkg/xcontext"
)

var errInvalidAddress = errors.New("invalid address")

// Dispatcher sends signed transactions to a blockchain.
type Dispatcher interface {
	Dispatch(ctx context.Context, request *types.DispatchedTxRequest) *types.DispatchedTxResult
}

type TransferRequest struct {
	UserID    string
	RewardKey string
	Address   string
	Amount    float64
}

type TransferResult struct {
	Success bool
	TxHash  string
	Error   string
}

type MintRequest struct {
	UserID      string
	RewardKey   string
	Address     string
	MetadataURI string
}

// MintResult never carries a token id. It is only known once the mint is
// confirmed.
type MintResult struct {
	Success bool
	TokenID string
	TxHash  string
	Error   string
}

type TokenGateway interface {
	Transfer(ctx context.Context, req TransferRequest) TransferResult
}

type NFTGateway interface {
	Mint(ctx context.Context, req MintRequest) MintResult
}

// Submitter signs contract calls with the admin wallet and dispatches them.
// Submissions are serialized so two claims never race on the same pending
// nonce.
type Submitter struct {
	client     eth.EthClient
	dispatcher Dispatcher
	mutex      sync.Mutex
}

func NewSubmitter(client eth.EthClient, dispatcher Dispatcher) *Submitter {
	return &Submitter{client: client, dispatcher: dispatcher}
}

// submit returns the hash of the dispatched transaction, or an opaque reason
// of the failure.
func (s *Submitter) submit(ctx context.Context, contract string, data []byte) (string, string) {
	cfg := xcontext.Configs(ctx).Blockchain
	if !ethutil.IsValidAddress(contract) {
		xcontext.Logger(ctx).Errorf("Contract address %q is not configured", contract)
		return "", types.ErrUnsupported.String()
	}

	key, err := ethutil.GeneratePrivateKey([]byte(cfg.SecretKey), nil)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate admin private key: %v", err)
		return "", types.ErrGeneric.String()
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx, err := s.client.GetSignedContractTx(ctx, key, common.HexToAddress(contract), data)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get signed tx of contract %s: %v", contract, err)
		return "", types.ClassifyError(err).String()
	}

	result := s.dispatcher.Dispatch(ctx, &types.DispatchedTxRequest{Chain: cfg.Chain, Tx: tx})
	if !result.Success {
		return "", result.Err.String()
	}

	return result.TxHash, ""
}

type tokenGateway struct {
	submitter   *Submitter
	tokenTxRepo repository.TokenTransactionRepository
}

func NewTokenGateway(submitter *Submitter, tokenTxRepo repository.TokenTransactionRepository) *tokenGateway {
	return &tokenGateway{submitter: submitter, tokenTxRepo: tokenTxRepo}
}

// Transfer sends an ERC-20 transfer of the reward token from the admin wallet
// and appends a pending TokenTransaction. It never retries.
func (g *tokenGateway) Transfer(ctx context.Context, req TransferRequest) TransferResult {
	cfg := xcontext.Configs(ctx).Blockchain
	if !ethutil.IsValidAddress(req.Address) {
		return g.fail(ctx, errInvalidAddress.Error())
	}

	if req.Amount <= 0 {
		return g.fail(ctx, "invalid amount")
	}

	data, err := PackTransfer(common.HexToAddress(req.Address), ethutil.ToWei(req.Amount, cfg.TokenDecimals))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot pack transfer call: %v", err)
		return g.fail(ctx, types.ErrMarshal.String())
	}

	txHash, reason := g.submitter.submit(ctx, cfg.TokenAddress, data)
	if reason != "" {
		return g.fail(ctx, reason)
	}

	err = g.tokenTxRepo.Create(ctx, &entity.TokenTransaction{
		UserID:    req.UserID,
		RewardKey: req.RewardKey,
		Amount:    req.Amount,
		ToAddress: req.Address,
		TxHash:    txHash,
		Status:    entity.TransactionStatusPending,
	})
	if err != nil {
		// The transfer is on chain already, the reconciler cannot see it but
		// the claim flags still record the hash.
		xcontext.Logger(ctx).Errorf("Cannot create token transaction %s: %v", txHash, err)
		internalcommon.PromCounters[internalcommon.LedgerWriteFailure].
			WithLabelValues("token_transaction").Inc()
	}

	return TransferResult{Success: true, TxHash: txHash}
}

func (g *tokenGateway) fail(ctx context.Context, reason string) TransferResult {
	xcontext.Logger(ctx).Warnf("Token transfer failed: %s", reason)
	internalcommon.PromCounters[internalcommon.BlockchainTransactionFailure].
		WithLabelValues("transfer").Inc()
	return TransferResult{Success: false, Error: reason}
}

type nftGateway struct {
	submitter *Submitter
	nftTxRepo repository.NFTTransactionRepository
}

func NewNFTGateway(submitter *Submitter, nftTxRepo repository.NFTTransactionRepository) *nftGateway {
	return &nftGateway{submitter: submitter, nftTxRepo: nftTxRepo}
}

// Mint calls safeMint of the reward collection and appends a pending
// NFTTransaction without token id.
func (g *nftGateway) Mint(ctx context.Context, req MintRequest) MintResult {
	cfg := xcontext.Configs(ctx).Blockchain
	if !ethutil.IsValidAddress(req.Address) {
		return g.fail(ctx, errInvalidAddress.Error())
	}

	data, err := PackSafeMint(common.HexToAddress(req.Address), req.MetadataURI)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot pack safeMint call: %v", err)
		return g.fail(ctx, types.ErrMarshal.String())
	}

	txHash, reason := g.submitter.submit(ctx, cfg.NFTAddress, data)
	if reason != "" {
		return g.fail(ctx, reason)
	}

	err = g.nftTxRepo.Create(ctx, &entity.NFTTransaction{
		UserID:      req.UserID,
		RewardKey:   req.RewardKey,
		ToAddress:   req.Address,
		Contract:    cfg.NFTAddress,
		TxHash:      txHash,
		MetadataURI: req.MetadataURI,
		Status:      entity.TransactionStatusPending,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create nft transaction %s: %v", txHash, err)
		internalcommon.PromCounters[internalcommon.LedgerWriteFailure].
			WithLabelValues("nft_transaction").Inc()
	}

	return MintResult{Success: true, TxHash: txHash}
}

func (g *nftGateway) fail(ctx context.Context, reason string) MintResult {
	xcontext.Logger(ctx).Warnf("NFT mint failed: %s", reason)
	internalcommon.PromCounters[internalcommon.BlockchainTransactionFailure].
		WithLabelValues("mint").Inc()
	return MintResult{Success: false, Error: reason}
}
