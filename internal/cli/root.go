package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prodplan/prodplan/internal/app"
	"github.com/prodplan/prodplan/internal/config"
	"github.com/prodplan/prodplan/internal/logging"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Version and Commit are set at build time via ldflags.
	Version = "dev"
	Commit  = "none"
)

const defaultConfigPath = "./config/application.yaml"

// NewRootCommand builds the prodplan command tree. Without a subcommand it serves the HTTP API.
func NewRootCommand() *cobra.Command {
	var configPath string
	var cfg config.Application

	rootCmd := &cobra.Command{
		Use:           "prodplan",
		Short:         "Production scheduling and stock ledger service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if err := logging.Init(cfg.Log); err != nil {
				return err
			}
			log.WithFields(log.Fields{"version": Version, "commit": Commit}).Debug("prodplan starting")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML configuration file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	})
	rootCmd.AddCommand(newGenerateCommand(&cfg))
	return rootCmd
}

// Execute runs the root command until it finishes or the process receives SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func serve(ctx context.Context, cfg config.Application) error {
	application, err := app.NewApplication(ctx, cfg)
	if err != nil {
		return err
	}
	return application.Run(ctx)
}
