package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gitver/internal/cli/output"
	"github.com/leapstack-labs/gitver/internal/related"
)

// NewRelatedCommand creates the related command.
func NewRelatedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "related [pom.xml]",
		Short: "Show the related projects",
		Long: `Display the projects versioned together with the given descriptor: its
parents, aggregators and modules inside the repository, plus the configured
related_projects. Projects are grouped by depth, parents first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRelated,
	}
}

func runRelated(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if _, err := cmdCtx.Build.Process(ctx, cmdCtx.Descriptor); err != nil {
		return err
	}
	st, err := cmdCtx.Build.State(ctx)
	if err != nil {
		return err
	}

	out := output.RelatedOutput{Skipped: string(st.Skip), Levels: []output.RelatedLevel{}}
	if closure := cmdCtx.Build.Closure(); closure != nil {
		if out, err = relatedOutput(closure); err != nil {
			return err
		}
	}

	r := cmdCtx.Renderer
	if ok, err := r.Structured(out); ok {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		relatedMarkdown(r, out)
	} else {
		relatedText(r, out)
	}
	return nil
}

func relatedOutput(closure *related.Closure) (output.RelatedOutput, error) {
	graph := closure.Graph
	levels, err := graph.Levels()
	if err != nil {
		return output.RelatedOutput{}, fmt.Errorf("failed to group related projects: %w", err)
	}

	out := output.RelatedOutput{
		Levels:        make([]output.RelatedLevel, 0, len(levels)),
		TotalProjects: graph.Len(),
		TotalEdges:    graph.EdgeCount(),
	}
	for i, level := range levels {
		rl := output.RelatedLevel{Level: i, Projects: make([]output.RelatedNode, 0, len(level))}
		for _, id := range level {
			node := output.RelatedNode{
				Project:  id,
				Parents:  graph.Parents(id),
				Children: graph.Children(id),
			}
			if n, ok := graph.Node(id); ok {
				node.File = n.Data
			}
			rl.Projects = append(rl.Projects, node)
		}
		out.Levels = append(out.Levels, rl)
	}
	return out, nil
}

func relatedText(r *output.Renderer, out output.RelatedOutput) {
	styles := r.Styles()

	r.Header(1, "Related Projects")
	if out.Skipped != "" {
		r.Println("Skipped: " + out.Skipped)
		return
	}
	for _, level := range out.Levels {
		r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", level.Level)))
		for _, p := range level.Projects {
			r.Printf("  %s\n", styles.Path.Render(p.Project))
			if p.File != "" {
				r.Printf("    %s %s\n", styles.Muted.Render("file:"), p.File)
			} else {
				r.Printf("    %s\n", styles.Muted.Render("declared"))
			}
			if len(p.Children) > 0 {
				r.Printf("    %s %s\n", styles.Muted.Render("children:"), strings.Join(p.Children, ", "))
			}
		}
		r.Println("")
	}
	r.Muted(fmt.Sprintf("Total: %d projects, %d links", out.TotalProjects, out.TotalEdges))
}

func relatedMarkdown(r *output.Renderer, out output.RelatedOutput) {
	r.Println(output.FormatHeader(1, "Related Projects"))
	r.Println("")
	if out.Skipped != "" {
		r.Println(output.FormatKeyValue("Skipped", out.Skipped))
		return
	}
	for _, level := range out.Levels {
		r.Println(output.FormatHeader(2, fmt.Sprintf("Level %d", level.Level)))
		for _, p := range level.Projects {
			r.Printf("- %s\n", p.Project)
			if p.File != "" {
				r.Printf("  - file: %s\n", p.File)
			}
			if len(p.Children) > 0 {
				r.Printf("  - children: %s\n", strings.Join(p.Children, ", "))
			}
		}
		r.Println("")
	}
	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Projects", fmt.Sprintf("%d", out.TotalProjects)))
	r.Println(output.FormatKeyValue("Total Links", fmt.Sprintf("%d", out.TotalEdges)))
}
