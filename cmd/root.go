package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/iksnae/cursor-history/internal"
	"github.com/iksnae/cursor-history/internal/config"
	"github.com/spf13/cobra"
)

var (
	verbose       bool
	configPath    string
	workspacePath string
	noCache       bool
	version       string = "dev"
	commit        string = "unknown"
	date          string = "unknown"

	// cfg is loaded before every command runs
	cfg = config.Default()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cursor-history",
	Short: "Browse, search and analyze Cursor IDE chat history",
	Long: `A CLI and MCP server for the chat history Cursor IDE keeps in its
per-workspace state databases (workspaceStorage/<hash>/state.vscdb).

Conversations are rebuilt from the canonical chat data when it exists, or
synthesized from the AI generation and prompt logs when it does not.

Quick Start:
  cursor-history workspaces              # List workspaces
  cursor-history list                    # List conversations across workspaces
  cursor-history show <id>               # View a conversation
  cursor-history export --format md      # Export as Markdown
  cursor-history serve                   # Run the MCP server on stdio`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level, err := internal.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		internal.SetLogLevel(level)
		if verbose {
			internal.SetVerbose(true)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(os.Stderr, fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

// newHistory wires a History from the loaded config and the global flags
func newHistory() (*internal.History, error) {
	root, err := resolveWorkspaceStorage()
	if err != nil {
		return nil, err
	}

	parser := internal.NewChatParser(nil, nil)
	synth := internal.NewSynthesizer(parser, cfg.PairingStrategy())

	opts := internal.HistoryOptions{
		Concurrency: cfg.Concurrency,
		Deduplicate: cfg.Deduplicate,
	}
	if cfg.Cache.Enabled && !noCache {
		cacheDir := cfg.Cache.Dir
		if cacheDir == "" {
			if cacheDir, err = internal.DefaultCacheDir(); err != nil {
				return nil, fmt.Errorf("failed to locate cache directory: %w", err)
			}
		}
		opts.Cache = internal.NewCacheManager(cacheDir)
	}

	return internal.NewHistory(
		internal.NewWorkspaceScanner(root),
		internal.NewReconstructor(parser, synth),
		opts,
	), nil
}

// resolveWorkspaceStorage picks the workspaceStorage directory: flag, then config, then the OS default
func resolveWorkspaceStorage() (string, error) {
	root := workspacePath
	if root == "" {
		root = cfg.WorkspaceStorage
	}
	if root == "" {
		paths, err := internal.DetectStoragePaths()
		if err != nil {
			return "", fmt.Errorf("failed to detect storage paths: %w", err)
		}
		root = paths.WorkspaceStorage
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", &internal.StorageError{Path: root, Op: "stat", Err: err}
	}
	if !info.IsDir() {
		return "", &internal.StorageError{Path: root, Op: "stat", Err: errors.New("not a directory")}
	}
	return root, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .cursor-history.yaml in the current or home directory)")
	rootCmd.PersistentFlags().StringVar(&workspacePath, "workspace-path", "", "Custom path to Cursor's workspaceStorage directory")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Rebuild conversations instead of reading the cache")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
