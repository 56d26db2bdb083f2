package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gitver/internal/cli/output"
	"github.com/leapstack-labs/gitver/internal/engine"
	"github.com/leapstack-labs/gitver/internal/placeholder"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [pom.xml]",
		Short: "Show the matched rule, version and placeholders",
		Long: `Resolve the git situation and show which ref rule applies, the version
the project would get, every placeholder value available to formats and the
git.* build properties. Nothing is written.`,
		Example: `  # Show the resolution for the current directory
  gitver show

  # As YAML
  gitver show -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	res, err := cmdCtx.Build.Process(ctx, cmdCtx.Descriptor)
	if err != nil {
		return err
	}
	st, err := cmdCtx.Build.State(ctx)
	if err != nil {
		return err
	}

	out := showOutput(st, res)
	r := cmdCtx.Renderer
	if ok, err := r.Structured(out); ok {
		return err
	}
	if r.EffectiveMode() == output.ModeMarkdown {
		showMarkdown(r, out)
	} else {
		showText(r, out)
	}
	return nil
}

func showOutput(st *engine.State, res *engine.Result) output.ShowOutput {
	out := output.ShowOutput{
		Skipped: string(st.Skip),
		Project: res.Original.ProjectID(),
		Version: res.Version(),
	}
	if st.Match == nil {
		return out
	}
	if res.Skip != engine.SkipNone {
		out.Skipped = string(res.Skip)
	}

	rule := st.Match.Rule
	out.Match = &output.MatchInfo{
		Type:       engine.KindTitle(st.Match.Kind()),
		Ref:        st.Match.RefName,
		Commit:     st.Match.Commit,
		Version:    rule.Version,
		Properties: rule.Properties,
		UpdatePom:  st.UpdatePom,
	}
	if rule.Pattern != nil {
		out.Match.Pattern = rule.Pattern.String()
	}
	if rule.DescribeTagPattern != nil {
		out.Match.DescribeTagPattern = rule.DescribeTagPattern.String()
	}

	values := placeholder.Values(placeholder.ForProject(st.Placeholders, res.Original.Version))
	out.Placeholders = keyValues(maskEnv(values))
	out.BuildProperties = keyValues(st.BuildProperties)
	return out
}

// Environment placeholders are listed by name only; their values may hold
// credentials.
const (
	envPrefix   = "env."
	maskedValue = "****"
)

func maskEnv(props []placeholder.Property) []placeholder.Property {
	for i := range props {
		if strings.HasPrefix(props[i].Name, envPrefix) {
			props[i].Value = maskedValue
		}
	}
	return props
}

func keyValues(props []placeholder.Property) []output.KeyValue {
	out := make([]output.KeyValue, 0, len(props))
	for _, p := range props {
		out = append(out, output.KeyValue{Name: p.Name, Value: p.Value})
	}
	return out
}

func showText(r *output.Renderer, out output.ShowOutput) {
	styles := r.Styles()

	r.Header(1, out.Project)
	r.KeyValue("Version", styles.Version.Render(out.Version))
	if out.Skipped != "" {
		r.KeyValue("Skipped", out.Skipped)
	}
	if out.Match == nil {
		return
	}

	r.Println("")
	r.Header(2, "Matched rule")
	r.KeyValue("Type", out.Match.Type)
	r.KeyValue("Ref", out.Match.Ref)
	r.KeyValue("Commit", out.Match.Commit)
	if out.Match.Pattern != "" {
		r.KeyValue("Pattern", out.Match.Pattern)
	}
	if out.Match.Version != "" {
		r.KeyValue("Version format", out.Match.Version)
	}

	r.Println("")
	r.Header(2, "Placeholders")
	r.Table([]string{"Key", "Value"}, rows(out.Placeholders))

	r.Println("")
	r.Header(2, "Build properties")
	r.Table([]string{"Property", "Value"}, rows(out.BuildProperties))
}

func showMarkdown(r *output.Renderer, out output.ShowOutput) {
	r.Println(output.FormatHeader(1, out.Project))
	r.Println("")
	r.Println(output.FormatKeyValue("Version", out.Version))
	if out.Skipped != "" {
		r.Println(output.FormatKeyValue("Skipped", out.Skipped))
	}
	if out.Match == nil {
		return
	}

	r.Println("")
	r.Println(output.FormatHeader(2, "Matched rule"))
	r.Println("")
	r.Println(output.FormatKeyValue("Type", out.Match.Type))
	r.Println(output.FormatKeyValue("Ref", out.Match.Ref))
	r.Println(output.FormatKeyValue("Commit", out.Match.Commit))
	if out.Match.Pattern != "" {
		r.Println(output.FormatKeyValue("Pattern", output.FormatCode(out.Match.Pattern)))
	}
	if out.Match.Version != "" {
		r.Println(output.FormatKeyValue("Version format", output.FormatCode(out.Match.Version)))
	}

	r.Println("")
	r.Println(output.FormatHeader(2, "Placeholders"))
	r.Println("")
	r.Table([]string{"Key", "Value"}, rows(out.Placeholders))

	r.Println("")
	r.Println(output.FormatHeader(2, "Build properties"))
	r.Println("")
	r.Table([]string{"Property", "Value"}, rows(out.BuildProperties))
}

func rows(kvs []output.KeyValue) [][]string {
	out := make([][]string, 0, len(kvs))
	for _, kv := range kvs {
		out = append(out, []string{kv.Name, kv.Value})
	}
	return out
}
