package output

// MatchInfo describes the selected rule.
type MatchInfo struct {
	Type               string            `json:"type" yaml:"type"`
	Ref                string            `json:"ref" yaml:"ref"`
	Commit             string            `json:"commit" yaml:"commit"`
	Pattern            string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	DescribeTagPattern string            `json:"describe_tag_pattern,omitempty" yaml:"describe_tag_pattern,omitempty"`
	Version            string            `json:"version,omitempty" yaml:"version,omitempty"`
	Properties         map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
	UpdatePom          bool              `json:"update_pom" yaml:"update_pom"`
}

// KeyValue is an ordered name/value pair.
type KeyValue struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// ShowOutput is the result of the show command.
type ShowOutput struct {
	Skipped         string     `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Match           *MatchInfo `json:"match,omitempty" yaml:"match,omitempty"`
	Project         string     `json:"project,omitempty" yaml:"project,omitempty"`
	Version         string     `json:"version,omitempty" yaml:"version,omitempty"`
	Placeholders    []KeyValue `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
	BuildProperties []KeyValue `json:"build_properties,omitempty" yaml:"build_properties,omitempty"`
}

// ChangeInfo is one patched value.
type ChangeInfo struct {
	Scope   string `json:"scope" yaml:"scope"`
	Section string `json:"section" yaml:"section"`
	Key     string `json:"key" yaml:"key"`
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
}

// ProjectResult is the outcome for one descriptor.
type ProjectResult struct {
	File     string       `json:"file" yaml:"file"`
	Project  string       `json:"project" yaml:"project"`
	Original string       `json:"original_version" yaml:"original_version"`
	Version  string       `json:"version" yaml:"version"`
	Skipped  string       `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Changes  []ChangeInfo `json:"changes,omitempty" yaml:"changes,omitempty"`
}

// ApplyOutput is the result of the apply command.
type ApplyOutput struct {
	Skipped  string          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	DryRun   bool            `json:"dry_run" yaml:"dry_run"`
	Projects []ProjectResult `json:"projects" yaml:"projects"`
	Written  []string        `json:"written" yaml:"written"`
}

// RelatedNode is one project of the related closure.
type RelatedNode struct {
	Project  string   `json:"project" yaml:"project"`
	File     string   `json:"file,omitempty" yaml:"file,omitempty"`
	Parents  []string `json:"parents,omitempty" yaml:"parents,omitempty"`
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
}

// RelatedLevel groups projects by depth in the hierarchy.
type RelatedLevel struct {
	Level    int           `json:"level" yaml:"level"`
	Projects []RelatedNode `json:"projects" yaml:"projects"`
}

// RelatedOutput is the result of the related command.
type RelatedOutput struct {
	Skipped       string         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Levels        []RelatedLevel `json:"levels" yaml:"levels"`
	TotalProjects int            `json:"total_projects" yaml:"total_projects"`
	TotalEdges    int            `json:"total_edges" yaml:"total_edges"`
}
