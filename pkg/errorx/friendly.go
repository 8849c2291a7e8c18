package errorx

import (
	"errors"
	"strings"
)

const (
	friendlyGeneric          = "Something went wrong while claiming your reward. Please try again."
	friendlyNotFound         = "This quest reward is not available to claim yet."
	friendlyAlreadyClaimed   = "You have already claimed this reward."
	friendlyInProgress       = "Your reward is already being claimed. Please wait a moment."
	friendlyInsufficientFund = "The reward vault is temporarily empty. Please try again later."
	friendlyNetworkBusy      = "The network is busy right now. Please try again in a few minutes."
	friendlyUnsupported      = "This reward cannot be delivered to your wallet right now."
	friendlyConfirmation     = "Your reward was sent and is still being confirmed on-chain."
	friendlyInvalidWallet    = "Please connect a valid wallet address to receive this reward."
)

var friendlyByCode = map[Code]string{
	NotFound:            friendlyNotFound,
	AlreadyClaimed:      friendlyAlreadyClaimed,
	ClaimInProgress:     friendlyInProgress,
	ConfirmationTimeout: friendlyConfirmation,
	TransferFailed:      friendlyGeneric,
	MintFailed:          friendlyGeneric,
	LedgerWriteFailure:  friendlyGeneric,
}

// friendlyByReason maps fragments of raw signer/RPC failure reasons.
var friendlyByReason = []struct {
	fragment string
	message  string
}{
	{"insufficient", friendlyInsufficientFund},
	{"not enough balance", friendlyInsufficientFund},
	{"nonce", friendlyNetworkBusy},
	{"timeout", friendlyNetworkBusy},
	{"no healthy rpc", friendlyNetworkBusy},
	{"unsupported", friendlyUnsupported},
	{"not supported", friendlyUnsupported},
	{"invalid address", friendlyInvalidWallet},
}

// FriendlyMessage returns a message that is safe to show to an end user. Raw
// reasons, transaction hashes and stack content never pass through.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	var e Error
	if errors.As(err, &e) {
		if msg, ok := friendlyByCode[e.Code]; ok && msg != friendlyGeneric {
			return msg
		}
	}

	return FriendlyReason(err.Error())
}

// FriendlyReason maps an opaque failure reason returned by a gateway.
func FriendlyReason(reason string) string {
	lower := strings.ToLower(reason)
	for _, r := range friendlyByReason {
		if strings.Contains(lower, r.fragment) {
			return r.message
		}
	}

	return friendlyGeneric
}
