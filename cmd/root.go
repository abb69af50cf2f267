package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the entry point when the application is called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcp-k8s",
	Short: "MCP server and chat command loop for Kubernetes workloads",
	Long: `mcp-k8s manages pods and deployments in a Kubernetes cluster. It exposes
pod tools over the Model Context Protocol (MCP) and can run a chat command
loop that turns chat lines such as "deploy nginx" into cluster actions.

When run without subcommands, it starts the MCP server (equivalent to 'mcp-k8s serve').`,
	// Errors are reported by the commands themselves.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. main injects the
// version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-k8s version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newChatCmd())
}
