package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/certs"
	"github.com/Veraticus/claims-triage/internal/config"
	"github.com/Veraticus/claims-triage/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the triage HTTP API",
		Long: `Serve the admin and analysis API.

Teams, categories, client configurations and rules are managed under /api;
reports are analyzed with POST /api/configs/:id/analyze and scanned for new
rules with POST /api/configs/:id/discover (multipart field "file").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			weights, err := config.LoadScoringWeights()
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			opts := server.ListenOptions{Addr: viper.GetString("server.addr")}
			if viper.GetBool("server.tls") {
				dir := config.ExpandPath(viper.GetString("server.cert_dir"))
				pair, created, err := certs.Ensure(dir, viper.GetStringSlice("server.hosts")...)
				if err != nil {
					return fmt.Errorf("failed to prepare TLS certificate: %w", err)
				}
				if created {
					slog.Info("Generated self-signed certificate", "cert", pair.CertFile)
				}
				opts.CertFile, opts.KeyFile = pair.CertFile, pair.KeyFile
			}

			srv := server.New(store, analysis.New(weights, slog.Default()), slog.Default())
			return srv.Listen(ctx, opts)
		},
	}

	cmd.Flags().String("addr", server.DefaultAddr, "listen address")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed certificate")
	cmd.Flags().String("cert-dir", filepath.Join(config.ConfigDir(), "certs"), "where the self-signed certificate is kept")
	cmd.Flags().StringSlice("host", nil, "extra host names or IPs the certificate must cover")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("server.cert_dir", cmd.Flags().Lookup("cert-dir"))
	_ = viper.BindPFlag("server.hosts", cmd.Flags().Lookup("host"))
	return cmd
}
