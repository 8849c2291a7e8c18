package blockchain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func erc721TransferLog(contract string, from, to common.Address, tokenID int64) *ethtypes.Log {
	return &ethtypes.Log{
		Address: common.HexToAddress(contract),
		Topics: []common.Hash{
			rewardNFTABI.Events["Transfer"].ID,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
			common.BigToHash(big.NewInt(tokenID)),
		},
	}
}

func Test_DecodeMintedTokenID(t *testing.T) {
	to := common.HexToAddress(testutil.Wallet1)
	other := common.HexToAddress(testutil.Wallet2)

	transferSingleData, err := rewardNFTABI.Events["TransferSingle"].Inputs.NonIndexed().
		Pack(big.NewInt(7), big.NewInt(1))
	require.NoError(t, err)

	erc20Transfer := &ethtypes.Log{
		Address: common.HexToAddress(testutil.TokenContract),
		Topics: []common.Hash{
			rewardNFTABI.Events["Transfer"].ID,
			common.BytesToHash(other.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: common.BigToHash(big.NewInt(50)).Bytes(),
	}

	testCases := []struct {
		name     string
		logs     []*ethtypes.Log
		contract string
		wantID   string
		wantOK   bool
	}{
		{
			name:     "erc721 mint",
			logs:     []*ethtypes.Log{erc721TransferLog(testutil.NFTContract, common.Address{}, to, 42)},
			contract: testutil.NFTContract,
			wantID:   "42",
			wantOK:   true,
		},
		{
			name: "erc1155 mint",
			logs: []*ethtypes.Log{{
				Address: common.HexToAddress(testutil.NFTContract),
				Topics: []common.Hash{
					rewardNFTABI.Events["TransferSingle"].ID,
					common.BytesToHash(other.Bytes()),
					{},
					common.BytesToHash(to.Bytes()),
				},
				Data: transferSingleData,
			}},
			wantID: "7",
			wantOK: true,
		},
		{
			name:     "skip erc20 transfer and non mint",
			logs:     []*ethtypes.Log{erc20Transfer, erc721TransferLog(testutil.NFTContract, other, to, 3)},
			contract: "",
			wantOK:   false,
		},
		{
			name:     "other contract",
			logs:     []*ethtypes.Log{erc721TransferLog(testutil.TokenContract, common.Address{}, to, 5)},
			contract: testutil.NFTContract,
			wantOK:   false,
		},
		{
			name:     "first mint wins",
			logs:     []*ethtypes.Log{nil, erc20Transfer, erc721TransferLog(testutil.NFTContract, common.Address{}, to, 9)},
			contract: testutil.NFTContract,
			wantID:   "9",
			wantOK:   true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := DecodeMintedTokenID(tt.logs, tt.contract)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantID, id)
		})
	}
}

func Test_PackTransfer(t *testing.T) {
	data, err := PackTransfer(common.HexToAddress(testutil.Wallet1), big.NewInt(50))
	require.NoError(t, err)
	require.Equal(t, erc20ABI.Methods["transfer"].ID, data[:4])

	values, err := erc20ABI.Methods["transfer"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(testutil.Wallet1), values[0])
	require.Equal(t, big.NewInt(50), values[1])
}

func Test_PackSafeMint(t *testing.T) {
	data, err := PackSafeMint(common.HexToAddress(testutil.Wallet1), "data:application/json;base64,e30=")
	require.NoError(t, err)
	require.Equal(t, rewardNFTABI.Methods["safeMint"].ID, data[:4])

	values, err := rewardNFTABI.Methods["safeMint"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	require.Equal(t, "data:application/json;base64,e30=", values[1])
}
