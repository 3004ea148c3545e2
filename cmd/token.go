package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenUserID int64
	tokenRole   string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for local development",
	Long:  `Sign a bearer token for a user id and role with the configured JWT secret.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		token, err := mintToken(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration, tokenUserID, tokenRole)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64VarP(&tokenUserID, "user-id", "u", 0, "id of the user the token is issued for")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleEmployee), "employee, manager or admin")
	_ = tokenCmd.MarkFlagRequired("user-id")
}

func mintToken(secret string, ttl time.Duration, userID int64, rawRole string) (string, error) {
	if userID <= 0 {
		return "", errors.New("user id must be positive")
	}
	role, ok := auth.ParseRole(rawRole)
	if !ok {
		return "", fmt.Errorf("unknown role %q", rawRole)
	}
	return auth.NewTokenService(secret, ttl).Issue(auth.Actor{ID: userID, Role: role})
}
