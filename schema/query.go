package schema

import (
	"net/url"
	"strings"
)

// QueryParam is one key-value pair of a review query.
type QueryParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Query is an ordered sequence of parameters. Keys may repeat.
type Query []QueryParam

// QueryBounds holds the epoch-second boundaries of a date range. A nil field
// means the bound is absent and must not be sent.
type QueryBounds struct {
	GTE *int64 `json:"updated_at_gte,omitempty"`
	LTE *int64 `json:"updated_at_lte,omitempty"`
}

// Add appends a parameter and returns the extended query.
func (q Query) Add(key, value string) Query {
	return append(q, QueryParam{Key: key, Value: value})
}

// Values returns every value for key, in order.
func (q Query) Values(key string) []string {
	var out []string
	for _, p := range q {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}

// Get returns the first value for key, or "".
func (q Query) Get(key string) string {
	for _, p := range q {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Has reports whether key is present at least once.
func (q Query) Has(key string) bool {
	for _, p := range q {
		if p.Key == key {
			return true
		}
	}
	return false
}

// Encode renders the query in insertion order. url.Values is not used here
// because it sorts keys.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
