package types

import (
	"strings"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

type DispatchError int

const (
	ErrNil DispatchError = iota // no error
	ErrGeneric
	ErrNotEnoughBalance
	ErrMarshal
	ErrSubmitTx
	ErrNonceNotMatched
	ErrUnsupported
)

// String returns the opaque reason reported to callers. It never contains node
// output.
func (e DispatchError) String() string {
	switch e {
	case ErrNil:
		return ""
	case ErrNotEnoughBalance:
		return "insufficient balance"
	case ErrNonceNotMatched:
		return "nonce conflict"
	case ErrUnsupported:
		return "unsupported operation"
	default:
		return "submit failed"
	}
}

// ClassifyError maps a raw node error to a DispatchError. Ethereum JSON RPC
// does not return error codes, so this relies on string matching.
func ClassifyError(err error) DispatchError {
	if err == nil {
		return ErrNil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient funds"),
		strings.Contains(msg, "insufficient balance"),
		strings.Contains(msg, "transfer amount exceeds balance"):
		return ErrNotEnoughBalance

	case strings.Contains(msg, "nonce too low"),
		strings.Contains(msg, "nonce too high"),
		strings.Contains(msg, "replacement transaction underpriced"):
		return ErrNonceNotMatched

	case strings.Contains(msg, "not supported"),
		strings.Contains(msg, "method not found"):
		return ErrUnsupported
	}

	return ErrSubmitTx
}

type DispatchedTxRequest struct {
	Chain string
	Tx    *ethtypes.Transaction
}

type DispatchedTxResult struct {
	Success bool
	Err     DispatchError
	Chain   string
	TxHash  string
}

func NewDispatchTxError(request *DispatchedTxRequest, err DispatchError) *DispatchedTxResult {
	return &DispatchedTxResult{
		Chain:   request.Chain,
		TxHash:  request.Tx.Hash().Hex(),
		Success: false,
		Err:     err,
	}
}

func NewDispatchTxSuccess(request *DispatchedTxRequest) *DispatchedTxResult {
	return &DispatchedTxResult{
		Chain:   request.Chain,
		TxHash:  request.Tx.Hash().Hex(),
		Success: true,
		Err:     ErrNil,
	}
}
