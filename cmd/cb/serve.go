package main

import (
	"github.com/franz/cloudbuccaneer/internal/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rename API over HTTP",
	Long: `Serve the rename pipeline over HTTP.

Endpoints:
  POST /api/rename  {"folder": "...", "dry_run": false}  -> JSON summary
  POST /api/undo    {"run_id": "..."} (optional)          -> JSON summary
  GET  /api/config                                        -> effective settings
  GET  /health
  GET  /metrics                                           -> Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().StringSlice("cors-origin", nil, "allowed CORS origin (repeatable, \"*\" for any)")

	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("serve.cors_origins", serveCmd.Flags().Lookup("cors-origin"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	engineCfg, err := engineConfig()
	if err != nil {
		return err
	}

	logger := eventLogger()
	defer logger.Close()

	server, err := api.New(api.Config{
		EngineConfig: engineCfg,
		JournalPath:  viper.GetString("db"),
		Recursive:    viper.GetBool("rename.recursive"),
		MoveCovers:   viper.GetBool("rename.move_covers"),
		RetryConfig:  retryConfig(),
		Logger:       logger,
		CORSOrigins:  viper.GetStringSlice("serve.cors_origins"),
		Debug:        viper.GetBool("verbose"),
	})
	if err != nil {
		return err
	}
	return server.Run(viper.GetString("serve.addr"))
}
