// Command creatorscout finds social media creators for a topic and serves
// them over HTTP, MCP and the command line.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
