package blockchain

import "context"

type MockTokenGateway struct {
	TransferFunc func(ctx context.Context, req TransferRequest) TransferResult
}

func (g *MockTokenGateway) Transfer(ctx context.Context, req TransferRequest) TransferResult {
	if g.TransferFunc != nil {
		return g.TransferFunc(ctx, req)
	}

	return TransferResult{}
}

type MockNFTGateway struct {
	MintFunc func(ctx context.Context, req MintRequest) MintResult
}

func (g *MockNFTGateway) Mint(ctx context.Context, req MintRequest) MintResult {
	if g.MintFunc != nil {
		return g.MintFunc(ctx, req)
	}

	return MintResult{}
}
