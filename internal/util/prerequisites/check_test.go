package prerequisites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_FoundTool(t *testing.T) {
	// Different environments ship different tools.
	var found string
	for _, name := range []string{"sh", "ls", "cat"} {
		if r := Check([]Tool{{Name: name}}); r.Results[0].Found {
			found = name
			break
		}
	}
	if found == "" {
		t.Skip("no common tools found in PATH")
	}

	results := Check([]Tool{{Name: found, Required: true}})
	require.Len(t, results.Results, 1)
	assert.True(t, results.Results[0].Found)
	assert.NotEmpty(t, results.Results[0].Path)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestCheck_Missing(t *testing.T) {
	tests := []struct {
		name     string
		required bool
	}{
		{"required", true},
		{"optional", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Check([]Tool{{Name: "nonexistent-tool-xyz123", Required: tt.required, InstallURL: "https://example.com"}})

			assert.Len(t, results.Missing, 1)
			assert.Equal(t, tt.required, results.HasErrors())
			if tt.required {
				assert.ErrorContains(t, results.Error(), "nonexistent-tool-xyz123 (https://example.com)")
			} else {
				assert.NoError(t, results.Error())
			}
		})
	}
}

func TestCheckInstall_SelectsTools(t *testing.T) {
	assert.Empty(t, CheckInstall(false, false).Results)

	results := CheckInstall(true, true)
	require.Len(t, results.Results, 2)
	assert.Equal(t, "git", results.Results[0].Tool.Name)
	assert.True(t, results.Results[0].Tool.Required)
	assert.Equal(t, "sh", results.Results[1].Tool.Name)
	assert.False(t, results.Results[1].Tool.Required)
}
