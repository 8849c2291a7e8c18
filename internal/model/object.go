package model

type User struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name,omitempty"`
	WalletAddress      string  `json:"wallet_address,omitempty"`
	TotalXP            int64   `json:"total_xp"`
	Level              int     `json:"level"`
	TotalTokensEarned  float64 `json:"total_tokens_earned"`
	TotalTokensClaimed float64 `json:"total_tokens_claimed"`
	QuestsCompleted    int64   `json:"quests_completed"`
	PassportTier       string  `json:"passport_tier"`
}

type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type UserStatistic struct {
	User        User    `json:"user"`
	Value       float64 `json:"value"`
	CurrentRank int     `json:"current_rank"`
}

type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

type NFTMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Attributes  []NFTAttribute `json:"attributes"`
}
