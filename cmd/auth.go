package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teemow/consultcal/internal/google"
)

func addOAuthClientFlags(cmd *cobra.Command) {
	cmd.Flags().String("google-client-id", "", "Google OAuth client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().String("google-client-secret", "", "Google OAuth client secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().String("google-redirect-url", google.PlaygroundRedirectURL, "Redirect URI registered for the OAuth client")
}

func newAuthURLCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "auth-url",
		Short: "Print the Google consent URL for obtaining a refresh token",
		Long: `Print the Google OAuth consent URL for the calendar scopes consultcal needs.

Open the URL as the calendar owner, approve access and pass the returned
code to "consultcal auth-exchange" to obtain GOOGLE_REFRESH_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, configFile)
			if err != nil {
				return err
			}
			creds := s.Credentials()
			if err := creds.Validate(false); err != nil {
				return err
			}
			if state == "" {
				state = uuid.NewString()
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), google.AuthURL(creds, state))
			return err
		},
	}

	addOAuthClientFlags(cmd)
	cmd.Flags().StringVar(&state, "state", "", "OAuth state parameter. Defaults to a random value.")
	return cmd
}

func newAuthExchangeCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "auth-exchange",
		Short: "Exchange an authorization code for a refresh token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, configFile)
			if err != nil {
				return err
			}
			creds := s.Credentials()
			if err := creds.Validate(false); err != nil {
				return err
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("--code is required")
			}

			tok, err := google.Exchange(cmd.Context(), creds, code)
			if err != nil {
				return err
			}
			if tok.RefreshToken == "" {
				return fmt.Errorf("no refresh token returned; revoke the app's access and run auth-url again")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "GOOGLE_REFRESH_TOKEN=%s\n", tok.RefreshToken)
			return err
		},
	}

	addOAuthClientFlags(cmd)
	cmd.Flags().StringVar(&code, "code", "", "Authorization code returned by the consent screen")
	return cmd
}
