package explorer

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

var ErrReceiptNotFound = errors.New("receipt not found")

type TransferKind string

const (
	// TokenTransfer lists ERC-20 transfers.
	TokenTransfer TransferKind = "tokentx"

	// NFTTransfer lists ERC-721 transfers.
	NFTTransfer TransferKind = "tokennfttx"
)

type TransactionFilter struct {
	Kind       TransferKind
	Address    string
	Contract   string
	StartBlock uint64
}

type Transaction struct {
	Hash        string
	BlockNumber uint64
	From        string
	To          string
	Contract    string
	TokenID     string
	Value       string
}

type Log struct {
	Address string
	Topics  []string
	Data    string
}

func (l Log) ToEthLog() (*ethtypes.Log, error) {
	log := &ethtypes.Log{Address: common.HexToAddress(l.Address)}
	for _, topic := range l.Topics {
		log.Topics = append(log.Topics, common.HexToHash(topic))
	}

	if l.Data != "" && l.Data != "0x" {
		data, err := hexutil.Decode(l.Data)
		if err != nil {
			return nil, err
		}
		log.Data = data
	}

	return log, nil
}
