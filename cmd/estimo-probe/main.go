// Command estimo-probe runs named checks against the Estimo backend through
// the resilient client and writes a JSON report. It exits non-zero when any
// check fails.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/estimo-immo/estimo-go/internal/config"
	"github.com/estimo-immo/estimo-go/internal/logging"
	"github.com/estimo-immo/estimo-go/pkg/estimo"
	"github.com/getsentry/sentry-go"
)

// ProbeConfig holds the command line settings
type ProbeConfig struct {
	ConfigPath string
	OutputDir  string
	Email      string
	Password   string
	Verbose    bool
	Checks     []string
}

var defaultChecks = []string{"health", "me", "interest-rate", "timeline", "capex"}

func main() {
	pc := parseFlags()

	cfg, err := config.Load(pc.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	level := cfg.Log.Level
	if pc.Verbose {
		level = "debug"
	}
	logger := logging.New(level, cfg.Log.Pretty)

	st, closeStore, err := cfg.OpenStore(logger)
	if err != nil {
		logger.Error("Failed to open session store", "error", err)
		os.Exit(2)
	}
	defer func() { _ = closeStore() }()

	opts := &estimo.ClientOptions{
		BaseURL:     cfg.API.URL,
		Store:       st,
		Navigator:   estimo.NoopNavigator{},
		LoginRoute:  cfg.Auth.LoginRoute,
		RetryPolicy: cfg.RetryPolicy(),
		Logger:      logger,
		SentryDSN:   cfg.Sentry.DSN,
	}
	if cfg.Sentry.DSN != "" {
		opts.SentryOptions = &sentry.ClientOptions{Environment: cfg.Sentry.Environment}
	}
	if limiter := cfg.RateLimiter(); limiter != nil {
		opts.RateLimiter = limiter
	}

	client, err := estimo.NewClient(opts)
	if err != nil {
		logger.Error("Failed to create client", "error", err)
		os.Exit(2)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if pc.Email != "" {
		if err := client.Auth.Login(ctx, pc.Email, pc.Password); err != nil {
			logger.Error("Login failed", "error", err, "message", estimo.UserMessage(err))
			os.Exit(1)
		}
	}

	report := NewProber(client, logger).Run(ctx, pc.Checks)

	if err := os.MkdirAll(pc.OutputDir, 0755); err != nil {
		logger.Error("Failed to create output directory", "error", err)
		os.Exit(2)
	}
	reportPath := filepath.Join(pc.OutputDir, fmt.Sprintf("probe_report_%d.json", time.Now().Unix()))
	if err := saveReport(report, reportPath); err != nil {
		logger.Error("Failed to save report", "error", err)
		os.Exit(2)
	}

	printSummary(report, reportPath)

	if report.Failed > 0 {
		os.Exit(1)
	}
}

func parseFlags() *ProbeConfig {
	pc := &ProbeConfig{}

	flag.StringVar(&pc.ConfigPath, "config", "", "Path to a YAML config file")
	flag.StringVar(&pc.OutputDir, "output", "./probe_results", "Output directory for reports")
	flag.StringVar(&pc.Email, "email", "", "Log in with this email before probing")
	flag.StringVar(&pc.Password, "password", "", "Password for -email")
	flag.BoolVar(&pc.Verbose, "verbose", false, "Verbose output")
	checkList := flag.String("checks", "", "Comma-separated list of checks to run (empty for all)")

	flag.Parse()

	pc.Checks = defaultChecks
	if *checkList != "" {
		pc.Checks = strings.Split(*checkList, ",")
	}
	return pc
}

func saveReport(report *ProbeReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func printSummary(report *ProbeReport, path string) {
	fmt.Println("\n=== Probe Summary ===")
	fmt.Printf("Total Checks: %d\n", report.TotalChecks)
	fmt.Printf("Passed: %d\n", report.Passed)
	fmt.Printf("Failed: %d\n", report.Failed)
	fmt.Printf("Success Rate: %.2f%%\n", report.SuccessRate)

	if report.Failed > 0 {
		fmt.Println("\nFailed Checks:")
		for _, r := range report.Results {
			if !r.Passed {
				fmt.Printf("  - %s: %s\n", r.Check, r.Error)
			}
		}
	}
	fmt.Printf("\nReport: %s\n", path)
}
