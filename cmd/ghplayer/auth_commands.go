package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ghplayer/internal/auth"
	"ghplayer/internal/config"
	"ghplayer/internal/credentials"
	"ghplayer/internal/session"
)

const notifyTimeout = 3 * time.Second

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var token, baseURL, apiKey string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store backend credentials and an access token",
		Long: "Stores the backend URL, anon API key, and access token used for library\n" +
			"requests. Missing values fall back to [backend] in the config file and\n" +
			"GHPLAYER_ACCESS_TOKEN.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCredentials(func(cfg *config.Config, store *credentials.Store) error {
				stored := credentials.Config{
					BaseURL:     firstNonEmpty(baseURL, cfg.Backend.URL),
					APIKey:      firstNonEmpty(apiKey, cfg.Backend.APIKey),
					AccessToken: firstNonEmpty(token, os.Getenv("GHPLAYER_ACCESS_TOKEN")),
				}
				if !stored.Complete() {
					return fmt.Errorf("backend url, api key, and token are all required (use --url, --api-key, --token or [backend] in the config)")
				}
				exp, hasExp, err := credentials.TokenExpiry(stored.AccessToken)
				if err != nil {
					return fmt.Errorf("access token rejected: %w", err)
				}
				if err := store.Save(cmd.Context(), stored); err != nil {
					return fmt.Errorf("save credentials: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Stored credentials for %s\n", strings.TrimRight(stored.BaseURL, "/"))
				switch {
				case !hasExp:
					fmt.Fprintln(out, "Token has no expiry")
				case exp.Before(time.Now()):
					fmt.Fprintf(out, "Warning: token already expired %s\n", humanize.Time(exp))
				default:
					fmt.Fprintf(out, "Token expires %s\n", humanize.Time(exp))
				}
				notifyLoginState(cmd, ctx, true)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (defaults to GHPLAYER_ACCESS_TOKEN)")
	cmd.Flags().StringVar(&baseURL, "url", "", "Backend base URL (defaults to [backend] url)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Backend anon API key (defaults to [backend] api_key)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	var forget bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCredentials(func(cfg *config.Config, store *credentials.Store) error {
				var err error
				if forget {
					err = store.Clear(cmd.Context())
				} else {
					err = store.ClearToken(cmd.Context())
				}
				if err != nil {
					return fmt.Errorf("clear credentials: %w", err)
				}
				if forget {
					fmt.Fprintln(cmd.OutOrStdout(), "Stored credentials removed")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Access token removed")
				}
				notifyLoginState(cmd, ctx, false)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&forget, "all", false, "Also forget the backend URL and API key")
	return cmd
}

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect stored login state",
	}
	authCmd.AddCommand(newAuthStatusCommand(ctx))
	return authCmd
}

func newAuthStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the stored token grants access",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withCredentials(func(cfg *config.Config, store *credentials.Store) error {
				snap := auth.NewGate(store, nil).Snapshot(cmd.Context(), session.Extras{})
				if asJSON {
					return writeJSON(cmd, snap)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Logged in:   %s\n", yesNo(snap.LoggedIn))
				fmt.Fprintf(out, "Stored:      %s\n", yesNo(snap.Stored))
				fmt.Fprintf(out, "Token:       %s\n", yesNo(snap.HasToken))
				if !snap.ExpiresAt.IsZero() {
					fmt.Fprintf(out, "Expires:     %s (%s)\n", snap.ExpiresAt.Local().Format(time.DateTime), humanize.Time(snap.ExpiresAt))
				} else if snap.HasToken && !snap.Expired {
					fmt.Fprintln(out, "Expires:     never")
				}
				if snap.Expired {
					fmt.Fprintln(out, "Token expired or unreadable; run `ghplayer login` with a fresh token")
				}
				fmt.Fprintf(out, "Credentials: %s\n", store.Path())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// notifyLoginState tells a running daemon to reload its root. The daemon
// being down is not an error: it seeds the flag from the store on start.
func notifyLoginState(cmd *cobra.Command, ctx *commandContext, loggedIn bool) {
	client, err := ctx.apiClient("")
	if err != nil {
		return
	}
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	notifyCtx, cancel := context.WithTimeout(parent, notifyTimeout)
	defer cancel()
	if err := client.SetLoginState(notifyCtx, loggedIn); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Daemon not notified (it picks up the change on next start)")
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Daemon notified")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
