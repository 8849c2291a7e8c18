package api

import (
	"net/http"
)

type queryOpt struct {
	key   string
	value string
}

// WithQuery sets a query parameter which must not appear in logs, such as an
// API key.
func WithQuery(key, value string) *queryOpt {
	return &queryOpt{key: key, value: value}
}

func (opt *queryOpt) Do(req *http.Request) {
	q := req.URL.Query()
	q.Set(opt.key, opt.value)
	req.URL.RawQuery = q.Encode()
}
