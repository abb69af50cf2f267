package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		name           string
		version        string
		expectedOutput string
	}{
		{
			name:           "dev version",
			version:        "dev",
			expectedOutput: "mcp-k8s version dev\n",
		},
		{
			name:           "semantic version",
			version:        "v1.2.3",
			expectedOutput: "mcp-k8s version v1.2.3\n",
		},
		{
			name:           "empty version",
			version:        "",
			expectedOutput: "mcp-k8s version \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalVersion := rootCmd.Version
			defer func() {
				rootCmd.Version = originalVersion
			}()
			rootCmd.Version = tt.version

			cmd := newVersionCmd()
			var buf bytes.Buffer
			cmd.SetOut(&buf)
			cmd.SetArgs([]string{})

			assert.NoError(t, cmd.Execute())
			assert.Equal(t, tt.expectedOutput, buf.String())
		})
	}
}

func TestVersionCmdProperties(t *testing.T) {
	cmd := newVersionCmd()

	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Print the version number of mcp-k8s", cmd.Short)
}
