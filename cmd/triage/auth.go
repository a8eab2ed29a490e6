package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/claims-triage/internal/cli"
	"github.com/Veraticus/claims-triage/internal/config"
	"github.com/Veraticus/claims-triage/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Open a local callback server and print the Google consent URL
2. Exchange the authorization code for a token
3. Save the token for 'triage export --sheets'

You'll need to run this once to set up Google Sheets integration.`,
		Args: cobra.NoArgs,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 client secret (overrides config)")
	cmd.Flags().String("callback-addr", sheets.DefaultCallbackAddr, "address of the local OAuth2 callback server")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")

	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Please set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret flags")
	}

	callback, _ := cmd.Flags().GetString("callback-addr")
	tokenFile := config.SheetsTokenPath()
	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	token, err := sheets.Authenticate(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackAddr: callback,
	}, slog.Default())
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Google Sheets authentication complete"))
	fmt.Fprintf(cmd.OutOrStdout(), "  Token saved to %s\n", tokenFile)
	if token.RefreshToken == "" {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Google did not return a refresh token; revoke access and run this again."))
	}
	return nil
}
