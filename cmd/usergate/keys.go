package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func keysCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Inspect and manage the API key pool",
	}
	cmd.AddCommand(keysGenerateCmd(opts))
	cmd.AddCommand(keysStatsCmd(opts))
	return cmd
}

func keysGenerateCmd(opts *rootOptions) *cobra.Command {
	var target int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Top the available partition up to --target keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("target") {
				target = cfg.Keys.PoolSize
			}
			if target < 0 {
				return fmt.Errorf("--target must not be negative")
			}
			logger, err := newLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			pool, err := openPool(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = pool.Close() }()
			added, err := pool.EnsureCapacity(cmd.Context(), target)
			if err != nil {
				return err
			}
			stats := pool.Stats()
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %d keys (available=%d used=%d)\n", added, stats.Available, stats.Used)
			return err
		},
	}
	cmd.Flags().IntVar(&target, "target", 0, "desired number of available keys (default keys.pool_size)")
	return cmd
}

func keysStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print pool partition sizes as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			pool, err := openPool(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = pool.Close() }()
			stats := pool.Stats()
			return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]int{
				"available": stats.Available,
				"used":      stats.Used,
				"total":     stats.Total(),
			})
		},
	}
}
