package explorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hauntpass/backend/config"
	"github.com/hauntpass/backend/pkg/api"
	"github.com/hauntpass/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Endpoint {
	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)

	return New(config.ExplorerConfigs{Endpoints: []string{server.URL}, APIKey: "key"})
}

func Test_Endpoint_BlockNumber(t *testing.T) {
	endpoint := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api", r.URL.Path)
		require.Equal(t, "proxy", r.URL.Query().Get("module"))
		require.Equal(t, "eth_blockNumber", r.URL.Query().Get("action"))
		require.Equal(t, "key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{"jsonrpc":"2.0","id":83,"result":"0x10d4f"}`))
	})

	number, err := endpoint.BlockNumber(testutil.MockContext())
	require.NoError(t, err)
	require.Equal(t, uint64(0x10d4f), number)
}

func Test_Endpoint_GetTransactions(t *testing.T) {
	endpoint := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "account", q.Get("module"))
		require.Equal(t, "tokennfttx", q.Get("action"))
		require.Equal(t, testutil.Wallet1, q.Get("address"))
		require.Equal(t, testutil.NFTContract, q.Get("contractaddress"))
		require.Equal(t, "100", q.Get("startblock"))

		w.Write([]byte(`{"status":"1","message":"OK","result":[
			{"blockNumber":"101","hash":"0xaaa","from":"0x0000000000000000000000000000000000000000",
			 "to":"` + testutil.Wallet1 + `","contractAddress":"` + testutil.NFTContract + `","tokenID":"42"}
		]}`))
	})

	txs, err := endpoint.GetTransactions(testutil.MockContext(), TransactionFilter{
		Kind:       NFTTransfer,
		Address:    testutil.Wallet1,
		Contract:   testutil.NFTContract,
		StartBlock: 100,
	})
	require.NoError(t, err)
	require.Equal(t, []Transaction{{
		Hash:        "0xaaa",
		BlockNumber: 101,
		From:        "0x0000000000000000000000000000000000000000",
		To:          testutil.Wallet1,
		Contract:    testutil.NFTContract,
		TokenID:     "42",
	}}, txs)
}

func Test_Endpoint_GetTransactions_Empty(t *testing.T) {
	endpoint := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
	})

	txs, err := endpoint.GetTransactions(testutil.MockContext(), TransactionFilter{
		Kind:    TokenTransfer,
		Address: testutil.Wallet1,
	})
	require.NoError(t, err)
	require.Empty(t, txs)
}

func Test_Endpoint_GetTransactions_RateLimited(t *testing.T) {
	endpoint := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`))
	})

	_, err := endpoint.GetTransactions(testutil.MockContext(), TransactionFilter{
		Kind:    TokenTransfer,
		Address: testutil.Wallet1,
	})
	require.ErrorContains(t, err, "Max rate limit reached")
}

func Test_Endpoint_GetReceiptLogs(t *testing.T) {
	endpoint := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "eth_getTransactionReceipt", r.URL.Query().Get("action"))

		switch r.URL.Query().Get("txhash") {
		case "0xmined":
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"status":"0x1","logs":[
				{"address":"` + testutil.NFTContract + `","topics":["0x01","0x02"],"data":"0x0a"}
			]}}`))
		default:
			w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
		}
	})

	ctx := testutil.MockContext()
	logs, err := endpoint.GetReceiptLogs(ctx, "0xmined")
	require.NoError(t, err)
	require.Equal(t, []Log{{Address: testutil.NFTContract, Topics: []string{"0x01", "0x02"}, Data: "0x0a"}}, logs)

	ethLog, err := logs[0].ToEthLog()
	require.NoError(t, err)
	require.Len(t, ethLog.Topics, 2)
	require.Equal(t, []byte{0x0a}, ethLog.Data)

	_, err = endpoint.GetReceiptLogs(ctx, "0xpending")
	require.ErrorIs(t, err, ErrReceiptNotFound)
}

func Test_Endpoint_InvalidResponse(t *testing.T) {
	generator := &api.MockAPIGenerator{
		MockClient: api.MockAPIClient{
			GETFunc: func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
				return &api.Response{Code: http.StatusOK, Body: api.Array{}}, nil
			},
		},
	}
	endpoint := New(config.ExplorerConfigs{})
	endpoint.apiGenerator = generator

	_, err := endpoint.BlockNumber(testutil.MockContext())
	require.Error(t, err)
	require.Equal(t, "eth_blockNumber", generator.MockClient.LastQuery["action"])
}
