package blockchain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

const erc20ABIString = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

// rewardNFTABIString covers the mint entrypoint of the reward collection and
// the ERC-721 and ERC-1155 events a mint emits.
const rewardNFTABIString = `[
	{"type":"function","name":"safeMint","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"uri","type":"string"}],
	 "outputs":[]},
	{"type":"event","name":"Transfer","anonymous":false,
	 "inputs":[{"name":"from","type":"address","indexed":true},
	           {"name":"to","type":"address","indexed":true},
	           {"name":"tokenId","type":"uint256","indexed":true}]},
	{"type":"event","name":"TransferSingle","anonymous":false,
	 "inputs":[{"name":"operator","type":"address","indexed":true},
	           {"name":"from","type":"address","indexed":true},
	           {"name":"to","type":"address","indexed":true},
	           {"name":"id","type":"uint256","indexed":false},
	           {"name":"value","type":"uint256","indexed":false}]}
]`

var (
	erc20ABI     = mustParseABI(erc20ABIString)
	rewardNFTABI = mustParseABI(rewardNFTABIString)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}

	return parsed
}

func PackTransfer(to common.Address, amount *big.Int) ([]byte, error) {
	return erc20ABI.Pack("transfer", to, amount)
}

func PackSafeMint(to common.Address, uri string) ([]byte, error) {
	return rewardNFTABI.Pack("safeMint", to, uri)
}

// DecodeMintedTokenID returns the id of the first token minted by the logs. A
// mint is an ERC-721 Transfer or an ERC-1155 TransferSingle whose sender is
// the zero address. If contract is not empty, logs emitted by other contracts
// are ignored.
func DecodeMintedTokenID(logs []*ethtypes.Log, contract string) (string, bool) {
	transferID := rewardNFTABI.Events["Transfer"].ID
	transferSingleID := rewardNFTABI.Events["TransferSingle"].ID

	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 {
			continue
		}

		if contract != "" && !strings.EqualFold(log.Address.Hex(), contract) {
			continue
		}

		switch log.Topics[0] {
		case transferID:
			// ERC-20 Transfer shares the signature but does not index the value.
			if len(log.Topics) != 4 || log.Topics[1] != (common.Hash{}) {
				continue
			}

			return new(big.Int).SetBytes(log.Topics[3].Bytes()).String(), true

		case transferSingleID:
			if len(log.Topics) != 4 || log.Topics[2] != (common.Hash{}) {
				continue
			}

			values, err := rewardNFTABI.Unpack("TransferSingle", log.Data)
			if err != nil || len(values) != 2 {
				continue
			}

			id, ok := values[0].(*big.Int)
			if !ok {
				continue
			}

			return id.String(), true
		}
	}

	return "", false
}
