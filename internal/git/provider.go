package git

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const rootTag = "root"

// Load reads the situation of the repository containing dir.
func Load(ctx context.Context, dir string, logger *slog.Logger) (Situation, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	probe := NewRepository(dir)
	top, ok := probe.try(ctx, "rev-parse", "--show-toplevel")
	if !ok {
		return Situation{}, fmt.Errorf("not a git repository (or any of the parent directories): %s", dir)
	}
	repo := NewRepository(filepath.Clean(top))

	sit := Situation{
		RootDir:   repo.Dir(),
		Head:      ZeroCommit,
		Timestamp: time.Unix(0, 0).UTC(),
		Clean:     true,
	}

	if branch, ok := repo.try(ctx, "symbolic-ref", "-q", "--short", "HEAD"); ok {
		sit.Branch = branch
	}

	head, hasCommits := repo.try(ctx, "rev-parse", "--verify", "-q", "HEAD^{commit}")
	if hasCommits {
		sit.Head = head

		out, err := repo.Run(ctx, "show", "-s", "--format=%ct", "HEAD")
		if err != nil {
			return Situation{}, err
		}
		secs, err := strconv.ParseInt(strings.TrimSpace(out), 10, 64)
		if err != nil {
			return Situation{}, fmt.Errorf("parsing commit timestamp %q: %w", strings.TrimSpace(out), err)
		}
		sit.Timestamp = time.Unix(secs, 0).UTC()

		out, err = repo.Run(ctx, "tag", "--points-at", "HEAD")
		if err != nil {
			return Situation{}, err
		}
		sit.Tags = lines(out)
	}

	status, err := repo.Run(ctx, "status", "--porcelain")
	if err != nil {
		return Situation{}, err
	}
	sit.Clean = strings.TrimSpace(status) == ""

	logger.Debug("loaded git situation",
		"root", sit.RootDir, "head", sit.Head, "branch", sit.Branch,
		"tags", sit.Tags, "clean", sit.Clean, "timestamp", sit.Timestamp)

	return sit.WithDescriber(func(pattern *regexp.Regexp) (Description, error) {
		return describe(ctx, repo, sit.Head, hasCommits, pattern)
	}), nil
}
