// Package returnto preserves the destination a visitor attempted before being sent to log in.
package returnto

import (
	"fmt"
	"net/url"
	"strings"
)

// Param is a single query key/value pair.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered set of query parameters. Keys are unique; Set keeps the
// position of the first occurrence and replaces its value.
type Query []Param

// Set returns q with key set to value.
func (q Query) Set(key, value string) Query {
	for i := range q {
		if q[i].Key == key {
			out := make(Query, len(q))
			copy(out, q)
			out[i].Value = value
			return out
		}
	}
	out := make(Query, len(q), len(q)+1)
	copy(out, q)
	return append(out, Param{Key: key, Value: value})
}

// Get returns the value for key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Keys returns keys in order.
func (q Query) Keys() []string {
	keys := make([]string, len(q))
	for i, p := range q {
		keys[i] = p.Key
	}
	return keys
}

// Encode serializes q in order using form encoding.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
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

// ParseQuery parses a raw query string keeping first-seen key order.
// Later duplicates of a key replace the earlier value. Like url.ParseQuery, pairs
// that fail to unescape are skipped and the first such error is returned along
// with every pair that parsed.
func ParseQuery(raw string) (Query, error) {
	raw = strings.TrimPrefix(raw, "?")
	var (
		q        Query
		firstErr error
	)
	for raw != "" {
		var part string
		part, raw, _ = strings.Cut(raw, "&")
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("unescape query key %q: %w", k, err)
			}
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("unescape query value for %q: %w", key, err)
			}
			continue
		}
		q = q.Set(key, value)
	}
	return q, firstErr
}
