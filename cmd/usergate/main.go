// Command usergate serves the versioned user API and manages the API key pool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"usergate/internal/config"
)

// Version is stamped at build time.
var Version = "dev"

var exitFunc = os.Exit

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
	}
}

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "usergate",
		Short:         "Versioned user API with API key issuance",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("USERGATE_CONFIG"), "path to a YAML config file")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(keysCmd(opts))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func (o *rootOptions) load() (config.Config, error) {
	return config.Load(o.configPath)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}
