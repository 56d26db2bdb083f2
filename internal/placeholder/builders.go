package placeholder

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/leapstack-labs/gitver/internal/git"
	"github.com/leapstack-labs/gitver/internal/refs"
	"github.com/leapstack-labs/gitver/internal/template"
)

const (
	dirtySuffix    = "-DIRTY"
	snapshotSuffix = "-SNAPSHOT"

	datetimeLayout = "20060102.150405"
	zeroDatetime   = "00000000.000000"
	zeroISO        = "0000-00-00T00:00:00Z"
)

// Inputs are the build-wide values the global key families derive from.
type Inputs struct {
	Situation git.Situation
	Match     *refs.Match
	// UserProperties become property.<name>.
	UserProperties map[string]string
	// Environ is a list of KEY=VALUE pairs that become env.<KEY>.
	Environ []string
}

// Global builds the placeholder map shared by every project of a build.
func Global(in Inputs) *Map {
	m := NewMap()
	sit, match := in.Situation, in.Match

	commit := match.Commit
	m.SetString("commit", commit)
	m.SetFunc("commit.short", func() string { return git.ShortCommit(commit) })

	ts := sit.Timestamp.UTC()
	m.SetFunc("commit.timestamp", func() string { return strconv.FormatInt(ts.Unix(), 10) })
	m.SetFunc("commit.timestamp.year", func() string { return strconv.Itoa(ts.Year()) })
	m.SetFunc("commit.timestamp.year.2digit", func() string { return pad2(ts.Year() % 100) })
	m.SetFunc("commit.timestamp.month", func() string { return pad2(int(ts.Month())) })
	m.SetFunc("commit.timestamp.day", func() string { return pad2(ts.Day()) })
	m.SetFunc("commit.timestamp.hour", func() string { return pad2(ts.Hour()) })
	m.SetFunc("commit.timestamp.minute", func() string { return pad2(ts.Minute()) })
	m.SetFunc("commit.timestamp.second", func() string { return pad2(ts.Second()) })
	m.SetFunc("commit.timestamp.datetime", func() string {
		if ts.Unix() <= 0 {
			return zeroDatetime
		}
		return ts.Format(datetimeLayout)
	})

	ref := match.RefName
	m.SetString("ref", ref)
	m.SetFunc("ref.slug", func() string { return template.Slugify(ref) })
	for name, value := range match.Rule.Pattern.GroupValues(ref) {
		m.SetString("ref."+name, value)
		m.SetFunc("ref."+name+".slug", func() string { return template.Slugify(value) })
	}

	dirty := !sit.Clean
	m.SetFunc("dirty", func() string { return suffixIf(dirty, dirtySuffix) })
	m.SetFunc("dirty.snapshot", func() string { return suffixIf(dirty, snapshotSuffix) })

	describe := sync.OnceValues(func() (git.Description, error) {
		return sit.Describe(match.DescribeRegexp())
	})
	m.Set("describe", func() (string, error) {
		d, err := describe()
		return d.String(), err
	})
	m.Set("describe.tag", func() (string, error) {
		d, err := describe()
		return d.Tag, err
	})
	m.Set("describe.distance", func() (string, error) {
		d, err := describe()
		return strconv.Itoa(d.Distance), err
	})
	describePattern := match.Rule.DescribeTagPattern
	for _, name := range describePattern.Groups() {
		group := func() (string, error) {
			d, err := describe()
			if err != nil {
				return "", err
			}
			return describePattern.GroupValues(d.Tag)[name], nil
		}
		m.Set("describe.tag."+name, group)
		m.Set("describe.tag."+name+".slug", func() (string, error) {
			v, err := group()
			return template.Slugify(v), err
		})
	}

	for k, v := range in.UserProperties {
		m.SetString("property."+k, v)
	}

	for _, kv := range in.Environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		m.SetString("env."+k, v)
	}

	return m
}

// ForProject extends global with the version keys of a project whose
// original version is version.
func ForProject(global *Map, version string) *Map {
	m := global.Clone()
	m.SetString("version", version)
	m.SetFunc("version.release", func() string { return strings.TrimSuffix(version, snapshotSuffix) })

	components := strings.Split(releaseCore(version), ".")
	component := func(i int) func() string {
		return func() string {
			if i < len(components) {
				return components[i]
			}
			return ""
		}
	}
	m.SetFunc("version.major", component(0))
	m.SetFunc("version.minor", component(1))
	m.SetFunc("version.patch", component(2))
	return m
}

// ForProperty extends a project map with the original value of the
// property being rendered.
func ForProperty(project *Map, value string) *Map {
	m := project.Clone()
	m.SetString("value", value)
	return m
}

// Property is a name/value pair in insertion order.
type Property struct {
	Name  string
	Value string
}

// BuildProperties returns the git.* metadata properties appended to every
// patched project.
func BuildProperties(sit git.Situation, match *refs.Match) []Property {
	ts := sit.Timestamp.UTC()
	datetime := zeroISO
	if ts.Unix() > 0 {
		datetime = ts.Format(time.RFC3339)
	}
	return []Property{
		{"git.worktree", sit.RootDir},
		{"git.commit", match.Commit},
		{"git.commit.short", git.ShortCommit(match.Commit)},
		{"git.commit.timestamp", strconv.FormatInt(ts.Unix(), 10)},
		{"git.commit.timestamp.datetime", datetime},
		{"git.ref", match.RefName},
		{"git.ref.slug", template.Slugify(match.RefName)},
	}
}

// Values renders every key of m, sorted by key. Keys whose producer fails
// are reported with the error text.
func Values(m *Map) []Property {
	keys := m.Keys()
	out := make([]Property, 0, len(keys))
	for _, k := range keys {
		v, _, err := m.Lookup(k)
		if err != nil {
			v = "<error: " + err.Error() + ">"
		}
		out = append(out, Property{Name: k, Value: v})
	}
	return out
}

// releaseCore strips everything from the first "-" on.
func releaseCore(version string) string {
	core, _, _ := strings.Cut(version, "-")
	return core
}

func pad2(n int) string {
	return template.LeftPad(strconv.Itoa(n), 2, '0')
}

func suffixIf(cond bool, suffix string) string {
	if cond {
		return suffix
	}
	return ""
}
