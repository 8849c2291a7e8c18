package model

const EventUserDataUpdated = "userDataUpdated"

// UserDataUpdatedEvent tells listeners to refresh the user. It does not say
// what changed.
type UserDataUpdatedEvent struct {
	UserID        string `json:"user_id" structs:"userId" mapstructure:"userId"`
	WalletAddress string `json:"wallet_address" structs:"walletAddress" mapstructure:"walletAddress"`
}
