package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"scanagram/pkg/ui"
)

var (
	// Version information, overridden at build time via ldflags
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scanagram",
	Short: "Instagram profile analytics for OSINT investigations",
	Long: `Scanagram is a command-line tool for analyzing public Instagram profiles.

Features:
  - Profile metadata and recent post collection
  - Engagement, temporal and risk-indicator statistics
  - JSON and Markdown investigation reports
  - Secure credential storage using the system keychain
  - Conservative client-side rate limiting with automatic backoff
  - Resumable investigations via checkpoints

This tool is intended for educational and authorized investigative use.
Only data Instagram exposes to a logged-in browser session is collected.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuiet(true)
		}
		if noColor {
			ui.SetColorEnabled(false)
		}
		if verbose && logLevel == "info" {
			logLevel = "debug"
		}

		// Don't show logo for certain commands
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./scanagram.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show all output including debug logs")

	rootCmd.SetVersionTemplate(`Scanagram {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
