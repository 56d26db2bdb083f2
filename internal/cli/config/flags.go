package config

import "github.com/spf13/pflag"

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default: <state dir>/"+ConfigFileName+")")
	fs.String("project-dir", "", "project directory (default: current directory)")
	fs.BoolP("verbose", "v", false, "Verbose output")
	fs.StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")
	fs.String("git-ref", "", "Version as if HEAD were this ref (refs/heads/... or refs/tags/...)")
	fs.String("git-tag", "", "Version as if HEAD were this tag")
	fs.String("git-branch", "", "Version as if HEAD were this branch")
	fs.Bool("disable", false, "Disable versioning")
	fs.Bool("update-pom", false, "Overwrite the original descriptors")
	fs.StringArrayP(DefineFlag, "D", nil, "User property key=value, available as ${property.<key>}")
}
