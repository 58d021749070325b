package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	authsvc "github.com/MolotilkaHolotilka/json-to-excel-converter/internal/services/auth"
)

var tokenFlags struct {
	subject string
	ttl     time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the export API",
	Long: `Sign an HS256 token with auth.jwt_secret (or JWT_SECRET) that the API
accepts on its export routes.

Example:
  JWT_SECRET=s3cret sheetctl token --subject nightly-report --ttl 720h`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVarP(&tokenFlags.subject, "subject", "s", "", "client name carried in the token")
	tokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 0, "token lifetime (default auth.jwt_ttl)")
	_ = tokenCmd.MarkFlagRequired("subject")
}

func runToken(cmd *cobra.Command, _ []string) error {
	if appCfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not configured")
	}

	ttl := appCfg.Auth.JWTTTL
	if tokenFlags.ttl > 0 {
		ttl = tokenFlags.ttl
	}

	token, expiresAt, err := authsvc.NewJWTManager(appCfg.Auth.JWTSecret, ttl).Generate(tokenFlags.subject)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
