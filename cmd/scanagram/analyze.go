package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"scanagram/pkg/analyzer"
	"scanagram/pkg/config"
	"scanagram/pkg/instagram"
	"scanagram/pkg/logger"
	"scanagram/pkg/report"
	"scanagram/pkg/session"
	"scanagram/pkg/ui"
)

var (
	maxPosts        int
	outputFormat    string
	outputDir       string
	accountName     string
	resumeRun       bool
	forceRestart    bool
	noHumanize      bool
	requestsPerHour int
	sessionID       string
	csrfToken       string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [username]",
	Short: "Analyze an Instagram profile and generate a report",
	Long: `Analyze a public Instagram profile: collect its metadata and recent
posts, compute engagement, temporal and risk-indicator statistics, and
write an investigation report.

Examples:
  scanagram analyze natgeo
  scanagram analyze natgeo --max-posts 100 --format json
  scanagram analyze natgeo --resume
  scanagram analyze natgeo -a investigator2 -o ./cases/natgeo`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&maxPosts, "max-posts", 0, "maximum number of posts to analyze (default from config)")
	analyzeCmd.Flags().StringVarP(&outputFormat, "format", "f", "", "report format: json, markdown or both")
	analyzeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for reports")
	analyzeCmd.Flags().StringVarP(&accountName, "account", "a", "", "stored account to authenticate with")
	analyzeCmd.Flags().BoolVar(&resumeRun, "resume", false, "resume an interrupted investigation from its checkpoint")
	analyzeCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "discard any existing checkpoint and start fresh")
	analyzeCmd.Flags().BoolVar(&noHumanize, "no-humanize", false, "disable randomized request timing")
	analyzeCmd.Flags().IntVar(&requestsPerHour, "requests-per-hour", 0, "rolling hourly request budget")
	analyzeCmd.Flags().StringVar(&sessionID, "session-id", "", "Instagram session ID (overrides stored credentials)")
	analyzeCmd.Flags().StringVar(&csrfToken, "csrf-token", "", "Instagram CSRF token (overrides stored credentials)")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	username := args[0]

	flags := map[string]interface{}{
		"max-posts":         maxPosts,
		"format":            outputFormat,
		"output":            outputDir,
		"no-humanize":       noHumanize,
		"requests-per-hour": requestsPerHour,
		"session-id":        sessionID,
		"csrf-token":        csrfToken,
		"log-level":         logLevel,
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Configuration error", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}

	account, err := resolveAccount(cfg)
	if err != nil {
		ui.PrintError("No credentials available", err.Error())
		fmt.Println("\nTo authenticate, either:")
		fmt.Println("  1. Run 'scanagram auth login' to store credentials securely")
		fmt.Println("  2. Set SCANAGRAM_SESSION_ID and SCANAGRAM_CSRF_TOKEN environment variables")
		fmt.Println("  3. Pass --session-id and --csrf-token flags")
		os.Exit(1)
	}

	client := instagram.NewClient(30*time.Second, logger.GetLogger())
	client.SetHeaders(account.Headers())
	if account.UserAgent == "" && cfg.Instagram.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Instagram.UserAgent)
	}

	a := analyzer.New(client, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintInfo("Target", username)
	ui.PrintInfo("Max posts", fmt.Sprintf("%d", cfg.Limits.MaxPosts))

	rep, err := a.Investigate(ctx, username, analyzer.Options{
		MaxPosts:     maxPosts,
		Resume:       resumeRun,
		ForceRestart: forceRestart,
	})
	if err != nil {
		ui.PrintError("Investigation failed", err.Error())
		os.Exit(1)
	}

	exporter := report.NewExporter(cfg.Output.BaseDirectory, logger.GetLogger())
	switch cfg.Output.Format {
	case "json":
		path, err := exporter.ExportJSON(rep)
		if err != nil {
			ui.PrintError("Failed to write report", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Report written: " + path)
	case "markdown":
		path, err := exporter.ExportMarkdown(rep)
		if err != nil {
			ui.PrintError("Failed to write report", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Report written: " + path)
	default:
		jsonPath, mdPath, err := exporter.ExportBoth(rep)
		if err != nil {
			ui.PrintError("Failed to write report", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Reports written: " + jsonPath + ", " + mdPath)
	}

	report.PrintSummary(rep)
}

// resolveAccount picks credentials with the following precedence: a named
// stored account, explicit config/flag/env credentials, then the default
// stored account.
func resolveAccount(cfg *config.Config) (*session.Account, error) {
	if accountName != "" {
		manager, err := session.NewManager()
		if err != nil {
			return nil, fmt.Errorf("credential store unavailable: %w", err)
		}
		account, err := manager.Retrieve(accountName)
		if err != nil {
			return nil, fmt.Errorf("account %q not found: %w", accountName, err)
		}
		return account, nil
	}

	if cfg.Instagram.SessionID != "" && cfg.Instagram.CSRFToken != "" {
		return &session.Account{
			Username:  "default",
			SessionID: cfg.Instagram.SessionID,
			CSRFToken: cfg.Instagram.CSRFToken,
			UserAgent: cfg.Instagram.UserAgent,
		}, nil
	}

	manager, err := session.NewManager()
	if err != nil {
		return nil, fmt.Errorf("credential store unavailable: %w", err)
	}
	account, err := manager.RetrieveDefault()
	if err != nil {
		return nil, err
	}
	return account, nil
}
