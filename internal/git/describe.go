package git

import (
	"context"
	"regexp"
	"strings"
)

// describe walks history from head, newest commit first, and reports the
// first commit carrying a tag that matches pattern. The distance is the walk
// depth, counted from 0 at head. Without a matching tag the tag is "root" and
// the distance is the depth of the last commit walked.
func describe(ctx context.Context, repo *Repository, head string, hasCommits bool, pattern *regexp.Regexp) (Description, error) {
	if !hasCommits {
		return Description{Commit: head, Tag: rootTag}, nil
	}

	tagged, err := tagsByCommit(ctx, repo)
	if err != nil {
		return Description{}, err
	}

	out, err := repo.Run(ctx, "rev-list", "--date-order", "HEAD")
	if err != nil {
		return Description{}, err
	}
	commits := lines(out)

	for distance, commit := range commits {
		var matching []string
		for _, tag := range tagged[commit] {
			if pattern == nil || pattern.MatchString(tag) {
				matching = append(matching, tag)
			}
		}
		if len(matching) > 0 {
			sorted := SortTags(matching)
			return Description{Commit: head, Tag: sorted[len(sorted)-1], Distance: distance}, nil
		}
	}

	return Description{Commit: head, Tag: rootTag, Distance: len(commits) - 1}, nil
}

// tagsByCommit maps commit hashes to the tags pointing at them. Annotated
// tags are peeled to their commit.
func tagsByCommit(ctx context.Context, repo *Repository) (map[string][]string, error) {
	out, err := repo.Run(ctx, "for-each-ref",
		"--format=%(objectname) %(*objectname) %(refname:strip=2)", "refs/tags")
	if err != nil {
		return nil, err
	}

	result := make(map[string][]string)
	for _, line := range lines(out) {
		fields := strings.Fields(line)
		var commit, name string
		switch len(fields) {
		case 2: // lightweight tag: no peeled object
			commit, name = fields[0], fields[1]
		case 3:
			commit, name = fields[1], fields[2]
		default:
			continue
		}
		result[commit] = append(result[commit], name)
	}
	return result, nil
}
