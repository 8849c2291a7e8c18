package api

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"

	"github.com/hauntpass/backend/pkg/xcontext"
)

type Client interface {
	Header(name, value string) Client
	Query(query Parameter) Client
	GET(ctx context.Context, opts ...Opt) (*Response, error)
}

// Generator creates clients of one path on a set of equivalent hosts, e.g.
// the mirrors of a block explorer.
type Generator interface {
	New(path string, args ...any) Client
}

type defaultGenerator struct {
	hosts []string
}

func NewGenerator(hosts ...string) *defaultGenerator {
	return &defaultGenerator{hosts: hosts}
}

func (g *defaultGenerator) New(path string, args ...any) Client {
	return &defaultClient{
		hosts:   g.hosts,
		path:    fmt.Sprintf(path, args...),
		headers: make(http.Header),
	}
}

type Opt interface {
	Do(*http.Request)
}

type defaultClient struct {
	hosts   []string
	path    string
	headers http.Header
	query   Parameter
}

func (c *defaultClient) Header(name, value string) Client {
	c.headers.Set(name, value)
	return c
}

func (c *defaultClient) Query(query Parameter) Client {
	c.query = query
	return c
}

// GET asks the hosts in a random order and returns the first response which
// is not a server error and whose body could be parsed.
func (c *defaultClient) GET(ctx context.Context, opts ...Opt) (*Response, error) {
	if len(c.hosts) == 0 {
		return nil, ErrNoHost
	}

	var lastErr error
	for _, index := range rand.Perm(len(c.hosts)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.get(ctx, c.hosts[index], opts...)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot call %s%s: %v", c.hosts[index], c.path, err)
			lastErr = err
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("all hosts failed, last error: %w", lastErr)
}

func (c *defaultClient) get(ctx context.Context, host string, opts ...Opt) (*Response, error) {
	url := host + c.path
	if len(c.query) > 0 {
		url += "?" + c.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header = c.headers.Clone()
	for _, opt := range opts {
		opt.Do(req)
	}

	result, err := xcontext.HTTPClient(ctx).Do(req)
	if err != nil {
		return nil, err
	}
	defer result.Body.Close()

	if result.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("status %d", result.StatusCode)
	}

	body, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, err
	}

	resp := &Response{Code: result.StatusCode, Header: result.Header, RawBody: body}
	if resp.Body, err = parseBody(body); err != nil {
		return nil, err
	}

	return resp, nil
}
