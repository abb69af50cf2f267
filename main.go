package main

import "github.com/prathamesh1010/mcp-k8s/cmd"

// version is set by the release build via -ldflags.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
