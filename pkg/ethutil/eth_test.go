package ethutil

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePrivateKey_Deterministic(t *testing.T) {
	a, err := GeneratePublicKey([]byte("secret"), nil)
	require.NoError(t, err)

	b, err := GeneratePublicKey([]byte("secret"), nil)
	require.NoError(t, err)
	require.Equal(t, a, b)

	c, err := GeneratePublicKey([]byte("secret"), []byte("nonce"))
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestToWei(t *testing.T) {
	require.Equal(t, big.NewInt(50), ToWei(50, 0))
	require.Equal(t, "50000000000000000000", ToWei(50, 18).String())
	require.Equal(t, "1500000", ToWei(1.5, 6).String())
}

func TestToWei_Fraction(t *testing.T) {
	tests := []struct {
		amount   float64
		decimals int
		wei      string
	}{
		{amount: 0.1, decimals: 18, wei: "100000000000000000"},
		{amount: 12.34, decimals: 18, wei: "12340000000000000000"},
		{amount: 0.3, decimals: 6, wei: "300000"},
		{amount: 1.23456789, decimals: 6, wei: "1234567"},
		{amount: 0.5, decimals: 0, wei: "0"},
		{amount: 1e21, decimals: 0, wei: "1000000000000000000000"},
		{amount: -2.5, decimals: 1, wei: "-25"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.wei, ToWei(tt.amount, tt.decimals).String(), "amount=%v", tt.amount)
	}
}

func TestIsValidAddress(t *testing.T) {
	require.True(t, IsValidAddress("0x00000000000000000000000000000000000000a1"))
	require.False(t, IsValidAddress("0x123"))
	require.False(t, IsValidAddress("not an address"))
	require.True(t, IsSameAddress("0xAbC", "0xabc"))
}
