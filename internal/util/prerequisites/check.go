// Package prerequisites checks that the external tools the installer shells
// out to are on PATH.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool is an external binary the installer may run.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// GitTools returns the tools needed to install the framework from a git remote.
func GitTools() []Tool {
	return []Tool{
		{
			Name:        "git",
			Required:    true,
			Description: "Required for fetching the framework from its repository",
			InstallURL:  "https://git-scm.com/downloads",
		},
	}
}

// BuildTools returns the tools needed to run a front-end build command.
// A failed build only warns, so the shell is optional.
func BuildTools() []Tool {
	return []Tool{
		{
			Name:        "sh",
			Required:    false,
			Description: "Runs the front-end build command",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}
	for _, tool := range tools {
		result := CheckResult{Tool: tool}
		if path, err := exec.LookPath(tool.Name); err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}
		results.Results = append(results.Results, result)
	}
	return results
}

// CheckInstall checks the tools an install run needs. Git is skipped when
// the framework comes from object storage; the shell only when a build
// command is configured.
func CheckInstall(useGit, build bool) *CheckResults {
	var tools []Tool
	if useGit {
		tools = append(tools, GitTools()...)
	}
	if build {
		tools = append(tools, BuildTools()...)
	}
	return Check(tools)
}
