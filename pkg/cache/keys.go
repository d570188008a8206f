package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CanonicalParams renders a parameter set as "name:value" pairs joined by
// underscores, sorted by name. Two parameter sets that differ only in
// insertion order render identically, so they share a cache entry.
func CanonicalParams(params map[string]interface{}) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf("%s:%s", name, formatParam(params[name])))
	}
	return strings.Join(pairs, "_")
}

func formatParam(v interface{}) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", t)
	}
}
