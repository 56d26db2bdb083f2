package git

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// SortTags returns tags in ascending version order. Tags that do not parse
// as versions sort after those that do, in lexical order.
func SortTags(tags []string) []string {
	type parsed struct {
		name string
		v    *semver.Version
	}
	items := make([]parsed, len(tags))
	for i, tag := range tags {
		v, err := semver.NewVersion(tag)
		if err != nil {
			v = nil
		}
		items[i] = parsed{name: tag, v: v}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.v != nil && b.v != nil:
			if c := a.v.Compare(b.v); c != 0 {
				return c < 0
			}
			return a.name < b.name
		case a.v != nil:
			return true
		case b.v != nil:
			return false
		default:
			return a.name < b.name
		}
	})

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out
}
