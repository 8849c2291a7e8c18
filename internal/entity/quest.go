package entity

type NFTAttribute struct {
	TraitType string `json:"trait_type" mapstructure:"trait_type"`
	Value     any    `json:"value" mapstructure:"value"`
}

// RewardSpec is the reward a quest grants. It is stored inline in the quests
// table.
type RewardSpec struct {
	RewardXP  int64
	RewardTPX float64

	HasNFT         bool
	NFTName        string
	NFTDescription string
	NFTImage       string
	NFTAttributes  Array[NFTAttribute]
}

func (r RewardSpec) HasTokens() bool {
	return r.RewardTPX > 0
}

type Quest struct {
	Base

	Title       string
	Description string
	Location    string
	RewardSpec  `gorm:"embedded"`
}
