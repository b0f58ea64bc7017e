package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/iksnae/cursor-history/internal/config"
	"github.com/iksnae/cursor-history/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of every command to its default so runs do not leak into each other
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns what it wrote to stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = config.Default()

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	err := rootCmd.Execute()
	return stdout.String(), err
}

// executeWithStorage runs args against a fresh mock workspaceStorage, an empty
// config file and no cache
func executeWithStorage(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := testutil.CreateMockWorkspaceStorage(t)
	return execute(t, append(args, "--workspace-path", root, "--config", emptyConfig(t), "--no-cache")...)
}

func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}
