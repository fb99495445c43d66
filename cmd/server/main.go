package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prajwalbharadwajbm/campaignstudio/internal/config"
)

const VERSION = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "campaignstudio",
		Short:         "Web front-end for the creative automation campaign backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfigs()
		},
	}
	root.AddCommand(newServeCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the campaign studio UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), flags.apply(cmd))
		},
	}
	cmd.Flags().IntVar(&flags.port, "port", 0, "listen port (overrides PORT)")
	cmd.Flags().StringVar(&flags.backendURL, "backend-url", "", "campaign backend base URL (overrides BACKEND_URL)")
	cmd.Flags().BoolVar(&flags.demo, "demo", false, "serve sample data from an in-memory backend")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), VERSION)
		},
	}
}

type serveFlags struct {
	port       int
	backendURL string
	demo       bool
}

// apply folds the flags that were set into the loaded configuration
func (f serveFlags) apply(cmd *cobra.Command) serveOptions {
	opts := serveOptions{
		general: config.AppConfigInstance.GeneralConfig,
		backend: config.AppConfigInstance.BackendConfig,
		ui:      config.AppConfigInstance.UIConfig,
		cache:   config.GetCacheConfig(),
		demo:    f.demo,
	}
	if cmd.Flags().Changed("port") {
		opts.general.Port = f.port
	}
	if cmd.Flags().Changed("backend-url") {
		opts.backend.BaseURL = f.backendURL
	}
	return opts
}
