package config

import (
	"errors"
	"fmt"
	"slices"
)

var outputModes = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(outputModes, c.OutputFormat) {
		errs = append(errs, fmt.Errorf("unknown output format %q (want one of %v)", c.OutputFormat, outputModes))
	}
	for i, rc := range c.Refs.List {
		if rc.Type == "" {
			errs = append(errs, fmt.Errorf("refs.list[%d]: type is required", i))
		}
	}
	for i, p := range c.RelatedProjects {
		if p.GroupID == "" || p.ArtifactID == "" {
			errs = append(errs, fmt.Errorf("related_projects[%d]: group_id and artifact_id are required", i))
		}
	}
	return errors.Join(errs...)
}
