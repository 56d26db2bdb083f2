package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gitver/internal/cli/output"
	"github.com/leapstack-labs/gitver/internal/engine"
)

// NewApplyCommand creates the apply command.
func NewApplyCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "apply [pom.xml]",
		Short: "Write git-versioned descriptors",
		Long: `Resolve the version for the current git situation and patch the project
descriptor and every related descriptor.

Each patched descriptor is written next to the original as
.git-versioned-pom.xml. With update_pom (or --update-pom) the original is
overwritten as well. Nothing is written unless every descriptor could be
patched.`,
		Example: `  # Patch the project in the current directory
  gitver apply

  # Pretend HEAD is a release tag
  gitver apply --git-tag v1.4.0

  # Show what would change without writing
  gitver apply --dry-run -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the patched descriptors without writing them")
	return cmd
}

func runApply(cmd *cobra.Command, args []string, dryRun bool) error {
	cmdCtx, err := NewCommandContext(cmd, args)
	if err != nil {
		return err
	}
	b := cmdCtx.Build

	var report *engine.Report
	if dryRun {
		report, err = b.Plan(cmd.Context(), cmdCtx.Descriptor)
	} else {
		report, err = b.Apply(cmd.Context(), cmdCtx.Descriptor)
	}
	if err != nil {
		return err
	}

	out := applyOutput(report, dryRun)
	r := cmdCtx.Renderer
	if ok, err := r.Structured(out); ok {
		return err
	}

	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Versioning"))
		r.Println("")
	} else {
		r.Header(1, "Versioning")
	}
	if out.Skipped != "" {
		r.Println("Skipped: " + out.Skipped)
		return nil
	}

	rows := make([][]string, 0, len(out.Projects))
	for _, p := range out.Projects {
		status := fmt.Sprintf("%d changes", len(p.Changes))
		if p.Skipped != "" {
			status = "skipped: " + p.Skipped
		}
		rows = append(rows, []string{p.Project, p.Original, p.Version, status})
	}
	r.Table([]string{"Project", "Original", "Version", "Status"}, rows)

	switch {
	case dryRun:
		r.Println("Dry run, nothing written.")
	case r.EffectiveMode() == output.ModeMarkdown:
		r.Println("")
		for _, f := range out.Written {
			r.Println(output.FormatKeyValue("Written", f))
		}
	default:
		r.Success(fmt.Sprintf("%d files written", len(out.Written)))
	}
	return nil
}

func applyOutput(report *engine.Report, dryRun bool) output.ApplyOutput {
	out := output.ApplyOutput{
		Skipped:  string(report.State.Skip),
		DryRun:   dryRun,
		Projects: make([]output.ProjectResult, 0, len(report.Results)),
		Written:  report.Written,
	}
	if out.Written == nil {
		out.Written = []string{}
	}
	if out.Skipped != "" {
		return out
	}
	for _, res := range report.Results {
		pr := output.ProjectResult{
			File:     res.File,
			Project:  res.Original.ProjectID(),
			Original: res.Original.Version,
			Version:  res.Version(),
			Skipped:  string(res.Skip),
		}
		for _, c := range res.Changes {
			pr.Changes = append(pr.Changes, output.ChangeInfo{
				Scope: c.Scope, Section: c.Section, Key: c.Key, From: c.From, To: c.To,
			})
		}
		out.Projects = append(out.Projects, pr)
	}
	return out
}
