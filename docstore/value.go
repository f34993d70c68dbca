package docstore

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// String coerces a document value to string, returning "" for anything else.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int64 coerces a document value to int64. JSON round-trips turn integers
// into float64, and table storage hands Edm.Int64 back as a string, so all
// three shapes are accepted.
func Int64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// compareValues orders two document field values: numbers numerically,
// strings lexically, anything else as equal.
func compareValues(a, b any) int {
	if af, ok := asFloat(a); ok {
		if bf, ok := asFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	return 0
}

// sortDocuments orders docs by the given field, tie-breaking on id so the
// order is total and stable across refetches.
func sortDocuments(docs []Document, orderField string, dir Direction) {
	less := func(i, j int) bool {
		c := compareValues(docs[i][orderField], docs[j][orderField])
		if c == 0 {
			c = strings.Compare(String(docs[i]["id"]), String(docs[j]["id"]))
		}
		if dir == Descending {
			return c > 0
		}
		return c < 0
	}
	sort.Slice(docs, less)
}
