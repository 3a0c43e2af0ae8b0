// Package cli provides the command-line interface for stockinfo
package cli

import (
	"os"
)

// Version is reported by the version command and stamped on log lines.
const Version = "1.0.0"

// Run starts the CLI application
func Run() {
	rootCmd := NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		DisplayError(os.Stderr, err)
		os.Exit(1)
	}
}
