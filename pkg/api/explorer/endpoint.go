package explorer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/hauntpass/backend/config"
	"github.com/hauntpass/backend/pkg/api"
)

const apiPath = "/api"

const noTransactionsMessage = "No transactions found"

// Endpoint reads an Etherscan compatible explorer. Every configured endpoint
// is tried before a call fails.
type Endpoint struct {
	apiKey       string
	apiGenerator api.Generator
}

func New(cfg config.ExplorerConfigs) *Endpoint {
	return &Endpoint{
		apiKey:       cfg.APIKey,
		apiGenerator: api.NewGenerator(cfg.Endpoints...),
	}
}

func (e *Endpoint) get(ctx context.Context, query api.Parameter) (api.JSON, error) {
	opts := []api.Opt{}
	if e.apiKey != "" {
		opts = append(opts, api.WithQuery("apikey", e.apiKey))
	}

	resp, err := e.apiGenerator.New(apiPath).Query(query).GET(ctx, opts...)
	if err != nil {
		return nil, err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return nil, errors.New("invalid response")
	}

	return body, nil
}

func (e *Endpoint) BlockNumber(ctx context.Context) (uint64, error) {
	body, err := e.get(ctx, api.Parameter{"module": "proxy", "action": "eth_blockNumber"})
	if err != nil {
		return 0, err
	}

	result, err := body.GetString("result")
	if err != nil {
		return 0, err
	}

	return hexutil.DecodeUint64(result)
}

// GetTransactions returns transfers involving the address, oldest first.
func (e *Endpoint) GetTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	query := api.Parameter{
		"module":     "account",
		"action":     string(filter.Kind),
		"address":    filter.Address,
		"startblock": strconv.FormatUint(filter.StartBlock, 10),
		"sort":       "asc",
	}

	if filter.Contract != "" {
		query["contractaddress"] = filter.Contract
	}

	body, err := e.get(ctx, query)
	if err != nil {
		return nil, err
	}

	// If status is not 1, result carries the error message.
	status, _ := body.GetString("status")
	if status != "1" {
		message, _ := body.GetString("message")
		if message == noTransactionsMessage {
			return nil, nil
		}

		reason, _ := body.GetString("result")
		return nil, fmt.Errorf("explorer returned %s: %s", message, reason)
	}

	array, err := body.GetArray("result")
	if err != nil {
		return nil, err
	}

	transactions := []Transaction{}
	for _, item := range array {
		hash, err := item.GetString("hash")
		if err != nil {
			return nil, err
		}

		blockNumber, err := item.GetString("blockNumber")
		if err != nil {
			return nil, err
		}

		height, err := strconv.ParseUint(blockNumber, 10, 64)
		if err != nil {
			return nil, err
		}

		from, _ := item.GetString("from")
		to, _ := item.GetString("to")
		contract, _ := item.GetString("contractAddress")
		tokenID, _ := item.GetString("tokenID")
		value, _ := item.GetString("value")

		transactions = append(transactions, Transaction{
			Hash:        hash,
			BlockNumber: height,
			From:        from,
			To:          to,
			Contract:    contract,
			TokenID:     tokenID,
			Value:       value,
		})
	}

	return transactions, nil
}

// GetReceiptLogs returns ErrReceiptNotFound while the transaction is not
// mined.
func (e *Endpoint) GetReceiptLogs(ctx context.Context, txHash string) ([]Log, error) {
	body, err := e.get(ctx, api.Parameter{
		"module": "proxy",
		"action": "eth_getTransactionReceipt",
		"txhash": txHash,
	})
	if err != nil {
		return nil, err
	}

	result, err := body.GetJSON("result")
	if err != nil {
		return nil, err
	}

	if result == nil {
		return nil, ErrReceiptNotFound
	}

	array, err := result.GetArray("logs")
	if err != nil {
		return nil, err
	}

	logs := []Log{}
	for _, item := range array {
		address, err := item.GetString("address")
		if err != nil {
			return nil, err
		}

		topics, err := item.GetStringArray("topics")
		if err != nil {
			return nil, err
		}

		data, _ := item.GetString("data")
		logs = append(logs, Log{Address: address, Topics: topics, Data: data})
	}

	return logs, nil
}
