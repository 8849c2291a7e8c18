package entity

// WalletNFT records that a user already added an NFT to their wallet app.
type WalletNFT struct {
	UserID   string `gorm:"primaryKey"`
	Contract string `gorm:"primaryKey"`
	TokenID  string `gorm:"primaryKey"`
}
