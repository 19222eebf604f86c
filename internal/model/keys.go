package model

import (
	"sort"
	"strconv"
	"strings"
)

// MakePartKey joins a part number and revision into a display key. A missing
// revision yields the bare part number.
func MakePartKey(pn, revision string) string {
	pn = strings.ToUpper(pn)
	if revision == "" {
		return pn
	}
	return pn + ":" + strings.ToUpper(revision)
}

// SplitPartKey is the inverse of MakePartKey.
func SplitPartKey(key string) (pn, revision string) {
	pn, revision, _ = strings.Cut(key, ":")
	return pn, revision
}

// PolPortKey builds the polarization-port key used throughout hookup entries.
func PolPortKey(pol, port string) string {
	return strings.ToLower(pol) + "-" + strings.ToLower(port)
}

// SplitPolPortKey is the inverse of PolPortKey.
func SplitPolPortKey(key string) (pol, port string) {
	pol, port, _ = strings.Cut(key, "-")
	return pol, port
}

// KeyOrder selects how peeled keys compare.
type KeyOrder string

const (
	// OrderNP compares the trailing number first, then the prefix.
	OrderNP KeyOrder = "NP"
	// OrderPN compares the prefix first, then the trailing number.
	OrderPN KeyOrder = "PN"
)

type peeledKey struct {
	prefix string
	number int
	hasNum bool
}

// peelKey separates a key of the form prefix[number] into its parts.
func peelKey(key string) peeledKey {
	for i := 0; i < len(key); i++ {
		if n, err := strconv.Atoi(key[i:]); err == nil {
			return peeledKey{prefix: key[:i], number: n, hasNum: true}
		}
	}
	return peeledKey{prefix: key}
}

func (p peeledKey) less(q peeledKey, order KeyOrder) bool {
	if order == OrderPN {
		if p.prefix != q.prefix {
			return p.prefix < q.prefix
		}
		return p.number < q.number
	}
	if p.number != q.number {
		return p.number < q.number
	}
	return p.prefix < q.prefix
}

// SortKeys orders keys of the form prefix[number] by the requested order.
// Returns a new slice, input is untouched.
func SortKeys(keys []string, order KeyOrder) []string {
	out := append([]string(nil), keys...)
	peeled := make(map[string]peeledKey, len(out))
	for _, k := range out {
		peeled[k] = peelKey(k)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := peeled[out[i]], peeled[out[j]]
		if pi.less(pj, order) {
			return true
		}
		if pj.less(pi, order) {
			return false
		}
		return out[i] < out[j]
	})
	return out
}

// MatchPartNumbers resolves requested part numbers against the known set.
// In exact mode only whole-string matches are returned. Otherwise each
// request matches every known part number it is a prefix of; an exact hit is
// listed before the remaining prefix matches. Results are deduplicated and
// number-prefix ordered within each request.
func MatchPartNumbers(requested, known []string, exact bool) []string {
	knownUpper := make([]string, len(known))
	for i, k := range known {
		knownUpper[i] = strings.ToUpper(k)
	}

	seen := make(map[string]bool)
	var found []string
	add := func(pn string) {
		if !seen[pn] {
			seen[pn] = true
			found = append(found, pn)
		}
	}

	for _, req := range requested {
		req = strings.ToUpper(req)
		if exact {
			for _, k := range knownUpper {
				if k == req {
					add(k)
					break
				}
			}
			continue
		}
		var prefixed []string
		for _, k := range knownUpper {
			if k == req {
				add(k)
			} else if strings.HasPrefix(k, req) {
				prefixed = append(prefixed, k)
			}
		}
		for _, k := range SortKeys(prefixed, OrderNP) {
			add(k)
		}
	}
	return found
}
