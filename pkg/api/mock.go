package api

import (
	"context"
)

type MockAPIGenerator struct {
	NewFunc    func(path string, args ...any) Client
	MockClient MockAPIClient
}

func (m *MockAPIGenerator) New(path string, args ...any) Client {
	if m.NewFunc != nil {
		return m.NewFunc(path, args...)
	}

	return &m.MockClient
}

// MockAPIClient records the last query, so tests can assert what was asked.
type MockAPIClient struct {
	LastQuery Parameter
	GETFunc   func(ctx context.Context, opts ...Opt) (*Response, error)
}

func (c *MockAPIClient) Header(name, value string) Client {
	return c
}

func (c *MockAPIClient) Query(query Parameter) Client {
	c.LastQuery = query
	return c
}

func (c *MockAPIClient) GET(ctx context.Context, opts ...Opt) (*Response, error) {
	if c.GETFunc != nil {
		return c.GETFunc(ctx, opts...)
	}

	return nil, ErrNoHost
}
