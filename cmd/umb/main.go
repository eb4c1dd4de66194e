// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Command umb is a thin CLI collaborator around the ats/umbio core: it
// imports an UMB container, reports a summary, and can re-export it
// under a different compression backend. Grounded in
// cmd/consensus/main.go's cobra-based main() (_examples/luxfi-consensus),
// cross-corroborated by opal-lang-opal's and orbas1-Synnergy's
// cobra-based CLIs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/umb/archive"
	"github.com/luxfi/umb/ats"
	"github.com/luxfi/umb/internal/toolinfo"
	"github.com/luxfi/umb/logx"
	"github.com/luxfi/umb/metrics"
)

var (
	logLevel    string
	importPath  string
	exportPath  string
	compression string
	toolConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "umb",
	Short: "Inspect and transcode UMB annotated-transition-system containers",
	Long: `umb imports an UMB container, validates it against the annotated
transition system's structural invariants, and prints a summary. Given
both --import-umb and --export-umb, it re-exports the container under
--compression, unchanged otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	rootCmd.Flags().StringVar(&importPath, "import-umb", "", "path to an UMB container to read")
	rootCmd.Flags().StringVar(&exportPath, "export-umb", "", "path to write the (re-encoded) UMB container to")
	rootCmd.Flags().StringVar(&compression, "compression", "gzip", "export compression: none, gzip, xz (bzip2 is read-only)")
	rootCmd.Flags().StringVar(&toolConfig, "tool-config", "", "path to a toolinfo JSON config (optional)")
	rootCmd.MarkFlagRequired("import-umb")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "umb: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if _, err := logx.ParseLevel(logLevel); err != nil {
		return err
	}
	logger := logx.New("umb")

	if toolConfig != "" {
		if err := toolinfo.Load(toolConfig); err != nil {
			return err
		}
	}

	mc, err := metrics.NewCollectors(nil)
	if err != nil {
		return fmt.Errorf("umb: metrics: %w", err)
	}

	logger.Info("importing UMB container", "path", importPath)
	a, warnings, err := ats.ReadATS(importPath, mc)
	if err != nil {
		return fmt.Errorf("umb: import %s: %w", importPath, err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "umb: warning: %s\n", w)
	}

	fmt.Printf("states=%d choices=%d branches=%d initial=%d time=%s\n",
		a.NumStates, a.NumChoices, a.NumBranches, a.NumInitialStates(), a.Time)

	if exportPath == "" {
		return nil
	}

	c := archive.Compression(compression)
	switch c {
	case archive.None, archive.Gzip, archive.Bzip2, archive.Xz:
	default:
		return fmt.Errorf("umb: unknown --compression %q", compression)
	}

	if err := ats.WriteATS(a, exportPath, c, mc); err != nil {
		return fmt.Errorf("umb: export %s: %w", exportPath, err)
	}
	fmt.Printf("wrote %s (%s)\n", exportPath, c)
	return nil
}
