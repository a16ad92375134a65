package services

import (
	"net/url"
	"strings"
)

// param is one key/value pair of a query string.
type param struct {
	key, value string
}

// QueryParams is an ordered list of query-string parameters using
// application/x-www-form-urlencoded rules. Unlike url.Values it keeps the
// original parameter order, so a round trip only changes what was edited.
type QueryParams struct {
	params []param
}

// ParseQuery parses a raw query string, with or without the leading '?'.
// Malformed percent escapes are kept literally rather than rejected.
func ParseQuery(raw string) *QueryParams {
	raw = strings.TrimPrefix(raw, "?")
	q := &QueryParams{}
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		q.params = append(q.params, param{key: formDecode(key), value: formDecode(value)})
	}
	return q
}

// Get returns the first value for key and whether key is present at all.
func (q *QueryParams) Get(key string) (string, bool) {
	for _, p := range q.params {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

// Set replaces the first value for key in place and drops any later
// duplicates. If key is absent it is appended.
func (q *QueryParams) Set(key, value string) {
	out := q.params[:0]
	found := false
	for _, p := range q.params {
		if p.key != key {
			out = append(out, p)
			continue
		}
		if !found {
			out = append(out, param{key: key, value: value})
			found = true
		}
	}
	if !found {
		out = append(out, param{key: key, value: value})
	}
	q.params = out
}

// Len returns the number of parameters.
func (q *QueryParams) Len() int { return len(q.params) }

// Encode serializes the parameters in order, without a leading '?'.
func (q *QueryParams) Encode() string {
	var b strings.Builder
	for i, p := range q.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(formEncode(p.key))
		b.WriteByte('=')
		b.WriteString(formEncode(p.value))
	}
	return b.String()
}

func formDecode(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if dec, err := url.PathUnescape(s); err == nil {
		return dec
	}
	return s
}

// formEncode leaves alphanumerics and "*-._" as they are, turns spaces
// into '+', and percent-encodes every other byte.
func formEncode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '*', c == '-', c == '.', c == '_':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
