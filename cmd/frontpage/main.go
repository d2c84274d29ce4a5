package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/frontpage/internal/config"
	"github.com/pders01/frontpage/internal/debuglog"
	"github.com/pders01/frontpage/internal/storage"
	"github.com/pders01/frontpage/internal/topstories"
	"github.com/pders01/frontpage/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

// readRetention is how long read marks are kept.
const readRetention = 90 * 24 * time.Hour

var (
	configPath string
	dbPath     string
	sourceName string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:           "frontpage",
	Short:         "Browse top stories in the terminal",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&sourceName, "source", "", "Story source: api or rss (overrides config)")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")

	rootCmd.AddCommand(versionCmd, configGenCmd, sectionsCmd, storiesCmd, showCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config, applies flag overrides and validates the
// result. Warnings are printed, errors abort.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if sourceName != "" {
		cfg.API.Source = strings.ToLower(sourceName)
	}

	issues := cfg.Validate()
	for _, issue := range issues {
		if issue.Severity == config.SeverityWarning {
			fmt.Fprintln(cmd.ErrOrStderr(), issue)
		}
	}
	if config.HasErrors(issues) {
		var msgs []string
		for _, issue := range issues {
			if issue.Severity == config.SeverityError {
				msgs = append(msgs, issue.Field+": "+issue.Message)
			}
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "logging disabled: %v\n", err)
	}
	defer debuglog.Close()

	if !quiet {
		tui.ShowBanner(Version)
	}

	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return err
	}
	defer store.Close()

	if n, err := store.PruneReads(time.Now().Add(-readRetention)); err != nil {
		debuglog.Warnf("pruning read marks: %v", err)
	} else if n > 0 {
		debuglog.Infof("pruned %d read marks", n)
	}

	app := tui.NewApp(store, topstories.NewSource(cfg), cfg)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
