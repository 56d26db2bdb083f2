// Package commands implements the gitver subcommands.
package commands

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gitver/internal/cli/config"
	"github.com/leapstack-labs/gitver/internal/cli/output"
	"github.com/leapstack-labs/gitver/internal/engine"
	"github.com/leapstack-labs/gitver/internal/git"
)

// DescriptorName is the project descriptor looked up in the project
// directory.
const DescriptorName = "pom.xml"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Build    *engine.Build
	Renderer *output.Renderer
	// Descriptor is the descriptor the build starts from.
	Descriptor string
}

// NewCommandContext creates a CommandContext with a build and renderer.
// args may name the descriptor to start from.
func NewCommandContext(cmd *cobra.Command, args []string) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	logger := config.GetLogger(cmd.Context())

	descriptor := filepath.Join(cfg.ProjectDir, DescriptorName)
	if len(args) > 0 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return nil, err
		}
		descriptor = abs
	}

	return &CommandContext{
		Cfg:        cfg,
		Logger:     logger,
		Build:      engine.New(EngineConfig(cfg), engine.WithLogger(logger)),
		Renderer:   output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
		Descriptor: descriptor,
	}, nil
}

// EngineConfig maps the loaded configuration onto a build configuration.
func EngineConfig(cfg *config.Config) engine.Config {
	return engine.Config{
		StateDir:        cfg.StateDir,
		Disable:         cfg.Disabled(),
		Refs:            cfg.RefsConfig(),
		UpdatePom:       cfg.UpdatePom,
		UpdatePomOption: cfg.Options.UpdatePom,
		Declared:        cfg.Declared(),
		UserProperties:  cfg.Options.Properties,
		Environ:         os.Environ(),
		RefOptions: git.RefOptions{
			Ref:    cfg.Options.GitRef,
			Branch: cfg.Options.GitBranch,
			Tag:    cfg.Options.GitTag,
		},
	}
}
