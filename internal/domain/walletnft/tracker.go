package walletnft

import (
	"context"
	"fmt"
	"strings"

	"github.com/hauntpass/backend/internal/entity"
	"github.com/hauntpass/backend/internal/repository"
	"github.com/hauntpass/backend/pkg/errorx"
	"github.com/hauntpass/backend/pkg/ethutil"
	"github.com/hauntpass/backend/pkg/xcontext"
	"github.com/hauntpass/backend/pkg/xredis"
)

// CompositeKey identifies an NFT a user added to their wallet app.
type CompositeKey struct {
	UserID   string
	Contract string
	TokenID  string
}

func (k CompositeKey) member() string {
	return fmt.Sprintf("%s/%s", strings.ToLower(k.Contract), k.TokenID)
}

func parseMember(userID, member string) (CompositeKey, bool) {
	contract, tokenID, ok := strings.Cut(member, "/")
	if !ok {
		return CompositeKey{}, false
	}

	return CompositeKey{UserID: userID, Contract: contract, TokenID: tokenID}, true
}

func redisKey(userID string) string {
	return fmt.Sprintf("wallet_nft:%s", userID)
}

// Tracker is the set of NFTs already added to the wallet app of users. The
// redis set of a user is loaded from the wallet_nfts table on first use and
// every added key is written to both.
type Tracker interface {
	Has(ctx context.Context, key CompositeKey) (bool, error)
	Add(ctx context.Context, key CompositeKey) error
	Load(ctx context.Context, userID string) ([]CompositeKey, error)
	Save(ctx context.Context, userID string) error
}

type tracker struct {
	walletNFTRepo repository.WalletNFTRepository
	redisClient   xredis.Client
}

func NewTracker(walletNFTRepo repository.WalletNFTRepository, redisClient xredis.Client) *tracker {
	return &tracker{walletNFTRepo: walletNFTRepo, redisClient: redisClient}
}

func (t *tracker) Has(ctx context.Context, key CompositeKey) (bool, error) {
	if err := validate(key); err != nil {
		return false, err
	}

	if _, err := t.Load(ctx, key.UserID); err != nil {
		return false, err
	}

	ok, err := t.redisClient.SIsMember(ctx, redisKey(key.UserID), key.member())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call SIsMember redis: %v", err)
		return false, errorx.Unknown
	}

	return ok, nil
}

func (t *tracker) Add(ctx context.Context, key CompositeKey) error {
	if err := validate(key); err != nil {
		return err
	}

	if _, err := t.Load(ctx, key.UserID); err != nil {
		return err
	}

	if err := t.redisClient.SAdd(ctx, redisKey(key.UserID), key.member()); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call SAdd redis: %v", err)
		return errorx.Unknown
	}

	err := t.walletNFTRepo.BulkInsert(ctx, []entity.WalletNFT{{
		UserID:   key.UserID,
		Contract: strings.ToLower(key.Contract),
		TokenID:  key.TokenID,
	}})
	if err != nil {
		// The key stays in redis, the next Save persists it.
		xcontext.Logger(ctx).Warnf("Cannot insert wallet nft of user %s: %v", key.UserID, err)
	}

	return nil
}

// Load returns the set of the user, filling redis from the table if needed.
func (t *tracker) Load(ctx context.Context, userID string) ([]CompositeKey, error) {
	key := redisKey(userID)
	exists, err := t.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return nil, errorx.Unknown
	}

	if exists {
		members, err := t.redisClient.SMembers(ctx, key)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot call SMembers redis: %v", err)
			return nil, errorx.Unknown
		}

		keys := []CompositeKey{}
		for _, m := range members {
			if k, ok := parseMember(userID, m); ok {
				keys = append(keys, k)
			}
		}

		return keys, nil
	}

	nfts, err := t.walletNFTRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get wallet nfts of user: %v", err)
		return nil, errorx.Unknown
	}

	keys := []CompositeKey{}
	members := []string{}
	for _, n := range nfts {
		k := CompositeKey{UserID: n.UserID, Contract: n.Contract, TokenID: n.TokenID}
		keys = append(keys, k)
		members = append(members, k.member())
	}

	if len(members) > 0 {
		if err := t.redisClient.SAdd(ctx, key, members...); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot call SAdd redis: %v", err)
			return nil, errorx.Unknown
		}
	}

	return keys, nil
}

// Save writes the redis set of the user to the table.
func (t *tracker) Save(ctx context.Context, userID string) error {
	keys, err := t.Load(ctx, userID)
	if err != nil {
		return err
	}

	nfts := []entity.WalletNFT{}
	for _, k := range keys {
		nfts = append(nfts, entity.WalletNFT{UserID: k.UserID, Contract: k.Contract, TokenID: k.TokenID})
	}

	if err := t.walletNFTRepo.BulkInsert(ctx, nfts); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save wallet nfts of user: %v", err)
		return errorx.Unknown
	}

	return nil
}

func validate(key CompositeKey) error {
	if key.UserID == "" || key.TokenID == "" {
		return errorx.New(errorx.BadRequest, "Require user id and token id")
	}

	if !ethutil.IsValidAddress(key.Contract) {
		return errorx.New(errorx.BadRequest, "Invalid contract address")
	}

	if strings.Contains(key.TokenID, "/") {
		return errorx.New(errorx.BadRequest, "Invalid token id")
	}

	return nil
}
