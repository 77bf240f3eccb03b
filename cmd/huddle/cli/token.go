package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/huddlehq/huddle/internal/config"
	"github.com/huddlehq/huddle/internal/service"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and inspect project tokens",
		Long: `Mint a project token for a member directly from the store, or decode an
existing token. Useful for recovering access when a team loses its token,
and for wiring MCP clients that authenticate with a static bearer token.`,
	}

	cmd.AddCommand(newTokenIssueCmd())
	cmd.AddCommand(newTokenInspectCmd())

	return cmd
}

// resolveJWTSecret returns the configured signing secret, prompting on the
// terminal when the config leaves it unset.
func resolveJWTSecret(cfg *config.Config) (string, error) {
	if cfg.Auth.JWTSecret != "" {
		return cfg.Auth.JWTSecret, nil
	}

	fmt.Print("JWT secret: ")
	secretBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	fmt.Println()

	if len(secretBytes) == 0 {
		return "", fmt.Errorf("a JWT secret is required (set auth.jwt_secret or HUDDLE_AUTH_JWT_SECRET)")
	}
	return string(secretBytes), nil
}

// ---------- token issue ----------

func newTokenIssueCmd() *cobra.Command {
	var (
		memberID string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Mint a project token for a member",
		Example: `  huddle token issue --member 0190c7a2-...
  huddle token issue --member 0190c7a2-... --ttl 24h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenIssue(memberID, ttl)
		},
	}

	cmd.Flags().StringVar(&memberID, "member", "", "Member ID the token authenticates as (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.token_ttl from config)")
	cmd.MarkFlagRequired("member")

	return cmd
}

func runTokenIssue(memberID string, ttl time.Duration) error {
	cfg := loadConfig()

	secret, err := resolveJWTSecret(cfg)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = config.Duration(cfg.Auth.TokenTTL, 7*24*time.Hour)
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	member, err := st.GetMember(context.Background(), memberID)
	if err != nil {
		return fmt.Errorf("member %s not found", memberID)
	}

	authSvc := service.NewAuthService(secret, ttl)
	token, err := authSvc.IssueToken(member.ProjectID, member)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Printf("Token for %s (%s) on project %s, valid %s:\n\n", member.Name, member.Role, member.ProjectID, ttl)
	fmt.Println(token)
	return nil
}

// ---------- token inspect ----------

func newTokenInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Validate a token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenInspect(args[0])
		},
	}
}

func runTokenInspect(token string) error {
	cfg := loadConfig()

	secret, err := resolveJWTSecret(cfg)
	if err != nil {
		return err
	}

	authSvc := service.NewAuthService(secret, 0)
	principal, err := authSvc.ValidateToken(token)
	if err != nil {
		return fmt.Errorf("token is not valid: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]string{
		"project_id": principal.ProjectID,
		"member_id":  principal.MemberID,
		"name":       principal.Name,
		"role":       principal.Role,
	})
}
