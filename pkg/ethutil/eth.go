package ethutil

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// GeneratePrivateKey derives a deterministic secp256k1 key from the secret and
// the nonce.
func GeneratePrivateKey(secret, nonce []byte) (*ecdsa.PrivateKey, error) {
	seed := sha256.Sum256(append(append([]byte{}, secret...), nonce...))
	return ethcrypto.ToECDSA(seed[:])
}

func GeneratePublicKey(secret, nonce []byte) (common.Address, error) {
	walletPrivateKey, err := GeneratePrivateKey(secret, nonce)
	if err != nil {
		return common.Address{}, err
	}

	return ethcrypto.PubkeyToAddress(walletPrivateKey.PublicKey), nil
}

func IsValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

// IsSameAddress compares two hex addresses case-insensitively.
func IsSameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ToWei converts an amount of whole tokens to its smallest unit. The amount
// is scaled from its shortest decimal form, so 0.1 is exactly 10^(decimals-1).
// Digits beyond decimals are truncated.
func ToWei(amount float64, decimals int) *big.Int {
	if decimals < 0 {
		decimals = 0
	}

	digits := strconv.FormatFloat(amount, 'f', -1, 64)
	negative := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	whole, fraction, _ := strings.Cut(digits, ".")
	if len(fraction) > decimals {
		fraction = fraction[:decimals]
	}
	fraction += strings.Repeat("0", decimals-len(fraction))

	result, ok := new(big.Int).SetString(whole+fraction, 10)
	if !ok {
		return big.NewInt(0)
	}

	if negative {
		result.Neg(result)
	}

	return result
}
