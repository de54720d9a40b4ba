package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-alarm/internal/auth"
	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/config"
)

func newHashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print the argon2id hash of a panel secret for api.auth.panels.",
		Long: `hash-secret prints the value to put in a panel's secret_hash.

The secret is read from the argument or, when none is given, from the first
line of standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd, args)
			if err != nil {
				return err
			}
			hash, err := auth.HashSecret(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func readSecret(cmd *cobra.Command, args []string) (string, error) {
	var secret string
	if len(args) == 1 {
		secret = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading secret from stdin: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		return "", errors.New("secret must not be empty")
	}
	return secret, nil
}

// newAuthenticator builds the panel authenticator, or returns nil when no
// signing secret is configured.
func newAuthenticator(cfg config.APIAuthConfig) (*auth.Authenticator, error) {
	if cfg.JWTSecret == "" {
		return nil, nil //nolint:nilnil // nil disables panel authentication
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.GetTokenTTL())
	if err != nil {
		return nil, err
	}
	panels := make(map[string]string, len(cfg.Panels))
	for _, p := range cfg.Panels {
		panels[p.ID] = p.SecretHash
	}
	return auth.NewAuthenticator(issuer, panels), nil
}
