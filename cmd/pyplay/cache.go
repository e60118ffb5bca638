package main

import (
	"fmt"
	"os"

	"github.com/caffeineduck/pyplay/executor"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Compiled interpreter cache",
	Long: `The interpreter is compiled once and kept on disk so later starts
are fast. Clear it after replacing the WASM binary with one of the same
name, or to reclaim space.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the compiled interpreter cache",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), cacheDir())
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd, cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cacheDir() string {
	if cfg != nil && cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	return executor.DefaultCacheDir()
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	dir := cacheDir()
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}
