package model

type MarkNFTAddedToWalletRequest struct {
	Contract string `json:"contract"`
	TokenID  string `json:"token_id"`
}

type MarkNFTAddedToWalletResponse struct{}

type HasNFTInWalletRequest struct {
	Contract string `form:"contract"`
	TokenID  string `form:"token_id"`
}

type HasNFTInWalletResponse struct {
	Added bool `json:"added"`
}
