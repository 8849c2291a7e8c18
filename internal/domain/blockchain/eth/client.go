package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/hauntpass/backend/pkg/xcontext"
)

const (
	probeTimeout = 5 * time.Second

	// Nodes further than this from the median height are considered stale.
	maxHeightDistance = 5
)

// EthClient is the part of the chain api used by the gateways and the
// reconciler.
type EthClient interface {
	Start(ctx context.Context)

	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	BalanceAt(ctx context.Context, from common.Address, block *big.Int) (*big.Int, error)
	GetSignedContractTx(
		ctx context.Context, key *ecdsa.PrivateKey, contract common.Address, data []byte,
	) (*ethtypes.Transaction, error)
}

type rpcNode struct {
	url    string
	client *ethclient.Client
	height uint64
}

// defaultEthClient spreads calls over the configured rpcs. The set of usable
// nodes is refreshed periodically, a node lagging behind the others is left
// out.
type defaultEthClient struct {
	chain      string
	chainID    *big.Int
	useEip1559 bool
	urls       []string

	mutex sync.RWMutex
	nodes []*rpcNode
}

func NewEthClient(chain string, chainID int64, rpcs []string, useEip1559 bool) *defaultEthClient {
	return &defaultEthClient{
		chain:      chain,
		chainID:    big.NewInt(chainID),
		useEip1559: useEip1559,
		urls:       rpcs,
	}
}

// Start refreshes the nodes until ctx is done, then closes them.
func (c *defaultEthClient) Start(ctx context.Context) {
	go func() {
		frequency := xcontext.Configs(ctx).Blockchain.RefreshConnectionFrequency
		if frequency <= 0 {
			frequency = time.Minute
		}

		ticker := time.NewTicker(frequency)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.replaceNodes(nil)
				return
			case <-ticker.C:
				c.refresh(ctx)
			}
		}
	}()
}

func (c *defaultEthClient) refresh(ctx context.Context) {
	nodes := c.probe(ctx)
	if len(nodes) == 0 {
		xcontext.Logger(ctx).Errorf("No rpc of chain %s is reachable", c.chain)
	} else {
		urls := make([]string, 0, len(nodes))
		for _, node := range nodes {
			urls = append(urls, node.url)
		}

		xcontext.Logger(ctx).Debugf("Healthy rpcs of chain %s: %v", c.chain, urls)
	}

	c.replaceNodes(nodes)
}

func (c *defaultEthClient) replaceNodes(nodes []*rpcNode) {
	c.mutex.Lock()
	old := c.nodes
	c.nodes = nodes
	c.mutex.Unlock()

	for _, node := range old {
		node.client.Close()
	}
}

// probe dials every rpc concurrently and keeps those close to the median
// height.
func (c *defaultEthClient) probe(ctx context.Context) []*rpcNode {
	var wg sync.WaitGroup
	var mutex sync.Mutex
	reachable := []*rpcNode{}

	for _, url := range c.urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()

			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()

			client, err := ethclient.DialContext(probeCtx, url)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot dial rpc %s: %v", url, err)
				return
			}

			height, err := client.BlockNumber(probeCtx)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot get block number from rpc %s: %v", url, err)
				client.Close()
				return
			}

			mutex.Lock()
			reachable = append(reachable, &rpcNode{url: url, client: client, height: height})
			mutex.Unlock()
		}(url)
	}
	wg.Wait()

	if len(reachable) == 0 {
		return nil
	}

	sort.Slice(reachable, func(i, j int) bool { return reachable[i].height > reachable[j].height })
	median := reachable[len(reachable)/2].height

	healthy := []*rpcNode{}
	for _, node := range reachable {
		if distance(node.height, median) < maxHeightDistance {
			healthy = append(healthy, node)
		} else {
			node.client.Close()
		}
	}

	return healthy
}

func distance(a, b uint64) uint64 {
	if a > b {
		return a - b
	}

	return b - a
}

// shuffledNodes returns the healthy nodes in a random order, probing them
// first if it was never done.
func (c *defaultEthClient) shuffledNodes(ctx context.Context) []*rpcNode {
	c.mutex.RLock()
	nodes := c.nodes
	c.mutex.RUnlock()

	if nodes == nil {
		c.refresh(ctx)

		c.mutex.RLock()
		nodes = c.nodes
		c.mutex.RUnlock()
	}

	shuffled := make([]*rpcNode, len(nodes))
	for i, j := range rand.Perm(len(nodes)) {
		shuffled[i] = nodes[j]
	}

	return shuffled
}

// call runs f on a random healthy node. A read is retried on the next node
// when the node fails, an answer such as ethereum.NotFound is returned as is.
func call[T any](
	ctx context.Context, c *defaultEthClient, retry bool, f func(*ethclient.Client) (T, error),
) (T, error) {
	var zero T

	nodes := c.shuffledNodes(ctx)
	if len(nodes) == 0 {
		return zero, fmt.Errorf("no healthy RPC for chain %s", c.chain)
	}

	var lastErr error
	for _, node := range nodes {
		result, err := f(node.client)
		if err == nil || errors.Is(err, ethereum.NotFound) || !retry {
			return result, err
		}

		xcontext.Logger(ctx).Warnf("Call to rpc %s failed: %v", node.url, err)
		lastErr = err
	}

	return zero, lastErr
}

func (c *defaultEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	return call(ctx, c, true, func(client *ethclient.Client) (uint64, error) {
		return client.BlockNumber(ctx)
	})
}

func (c *defaultEthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return call(ctx, c, true, func(client *ethclient.Client) (*ethtypes.Receipt, error) {
		return client.TransactionReceipt(ctx, txHash)
	})
}

// SendTransaction is not retried on another node, a transaction accepted by
// a failing node may already be in the mempool.
func (c *defaultEthClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	_, err := call(ctx, c, false, func(client *ethclient.Client) (struct{}, error) {
		return struct{}{}, client.SendTransaction(ctx, tx)
	})

	return err
}

func (c *defaultEthClient) BalanceAt(ctx context.Context, from common.Address, block *big.Int) (*big.Int, error) {
	return call(ctx, c, true, func(client *ethclient.Client) (*big.Int, error) {
		return client.BalanceAt(ctx, from, block)
	})
}

// GetSignedContractTx builds and signs a call of the contract with the given
// calldata. Nonce, gas limit and fees are taken from the node.
func (c *defaultEthClient) GetSignedContractTx(
	ctx context.Context, key *ecdsa.PrivateKey, contract common.Address, data []byte,
) (*ethtypes.Transaction, error) {
	return call(ctx, c, true, func(client *ethclient.Client) (*ethtypes.Transaction, error) {
		from := crypto.PubkeyToAddress(key.PublicKey)

		nonce, err := client.PendingNonceAt(ctx, from)
		if err != nil {
			return nil, err
		}

		gas, err := client.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &contract, Data: data})
		if err != nil {
			return nil, err
		}

		var txData ethtypes.TxData
		if c.useEip1559 {
			tip, err := client.SuggestGasTipCap(ctx)
			if err != nil {
				return nil, err
			}

			header, err := client.HeaderByNumber(ctx, nil)
			if err != nil {
				return nil, err
			}

			if header.BaseFee == nil {
				return nil, fmt.Errorf("eip-1559 is not supported by chain %s", c.chain)
			}

			feeCap := new(big.Int).Add(tip, new(big.Int).Mul(header.BaseFee, big.NewInt(2)))
			txData = &ethtypes.DynamicFeeTx{
				ChainID:   c.chainID,
				Nonce:     nonce,
				GasTipCap: tip,
				GasFeeCap: feeCap,
				Gas:       gas,
				To:        &contract,
				Value:     common.Big0,
				Data:      data,
			}
		} else {
			gasPrice, err := client.SuggestGasPrice(ctx)
			if err != nil {
				return nil, err
			}

			txData = &ethtypes.LegacyTx{
				Nonce:    nonce,
				GasPrice: gasPrice,
				Gas:      gas,
				To:       &contract,
				Value:    common.Big0,
				Data:     data,
			}
		}

		return ethtypes.SignNewTx(key, ethtypes.LatestSignerForChainID(c.chainID), txData)
	})
}
