package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want DispatchError
	}{
		{name: "nil", err: nil, want: ErrNil},
		{name: "funds", err: errors.New("insufficient funds for gas * price + value"), want: ErrNotEnoughBalance},
		{name: "erc20 balance", err: errors.New("execution reverted: ERC20: transfer amount exceeds balance"), want: ErrNotEnoughBalance},
		{name: "nonce", err: errors.New("nonce too low"), want: ErrNonceNotMatched},
		{name: "underpriced", err: errors.New("replacement transaction underpriced"), want: ErrNonceNotMatched},
		{name: "unsupported", err: errors.New("the method eth_sendRawTransaction does not exist/is not available: method not found"), want: ErrUnsupported},
		{name: "other", err: errors.New("connection reset by peer"), want: ErrSubmitTx},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestDispatchError_String(t *testing.T) {
	require.Equal(t, "insufficient balance", ErrNotEnoughBalance.String())
	require.Equal(t, "nonce conflict", ErrNonceNotMatched.String())
	require.Equal(t, "unsupported operation", ErrUnsupported.String())
	require.Equal(t, "submit failed", ErrSubmitTx.String())
	require.Equal(t, "submit failed", ErrGeneric.String())
}
