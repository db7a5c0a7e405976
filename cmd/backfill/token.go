package main

import (
	"encoding/json"
	"time"

	"receptionist-dashboard/internal/auth"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a dashboard token pair for an org member (support use)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, _ := cmd.Flags().GetString("user")
		orgID, _ := cmd.Flags().GetString("org")
		role, _ := cmd.Flags().GetString("role")

		m, err := auth.NewManager(cfg.Auth)
		if err != nil {
			return err
		}
		pair, err := m.IssuePair(time.Now(), auth.Identity{UserID: userID, OrgID: orgID, Role: role})
		if err != nil {
			return err
		}
		log.Info("token issued", "user_id", userID, "org_id", orgID, "role", role)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(pair)
	},
}

func init() {
	tokenCmd.Flags().String("user", "", "user id (required)")
	tokenCmd.Flags().String("org", "", "org id (required)")
	tokenCmd.Flags().String("role", "member", "org role: owner, admin or member")
	_ = tokenCmd.MarkFlagRequired("user")
	_ = tokenCmd.MarkFlagRequired("org")
}
