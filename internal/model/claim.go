package model

type ClaimRewards struct {
	XP  int64   `json:"xp"`
	TPX float64 `json:"tpx"`
	NFT bool    `json:"nft"`
}

// TokenResult reports the token leg of a claim. Confirmed is false when the
// transfer was submitted but not observed on-chain in time.
type TokenResult struct {
	Success   bool   `json:"success"`
	TxHash    string `json:"tx_hash,omitempty"`
	Error     string `json:"error,omitempty"`
	Confirmed bool   `json:"confirmed"`
}

// NFTResult reports the NFT leg of a claim. When Confirmed is false, TokenID
// is a placeholder.
type NFTResult struct {
	Success   bool   `json:"success"`
	TokenID   string `json:"token_id,omitempty"`
	TxHash    string `json:"tx_hash,omitempty"`
	Error     string `json:"error,omitempty"`
	Confirmed bool   `json:"confirmed"`
}

type ClaimResult struct {
	Success        bool         `json:"success"`
	AlreadyClaimed bool         `json:"already_claimed"`
	Rewards        ClaimRewards `json:"rewards"`
	TokenResult    *TokenResult `json:"token_result,omitempty"`
	NFTResult      *NFTResult   `json:"nft_result,omitempty"`
	Error          string       `json:"error,omitempty"`
}

type ClaimRewardRequest struct {
	QuestID       string `json:"quest_id"`
	WalletAddress string `json:"wallet_address"`
}

type ClaimRewardResponse ClaimResult

type ClaimDirectRewardRequest struct {
	UserID             string       `json:"user_id"`
	WalletAddress      string       `json:"wallet_address"`
	RewardKey          string       `json:"reward_key"`
	XP                 int64        `json:"xp"`
	TPX                float64      `json:"tpx"`
	NFT                *NFTMetadata `json:"nft"`
	PlaceholderTokenID string       `json:"placeholder_token_id"`
}

type ClaimDirectRewardResponse ClaimResult
