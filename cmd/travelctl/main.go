package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aashish1107/TravelAgent/internal/client"
	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	server    string
	tokenFile string
	dedup     bool
	verbose   bool
}

func main() {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "travelctl",
		Short:         "Command-line client for the TravelAgent API",
		Long:          "travelctl signs in to a TravelAgent server, keeps the token pair on disk\nand refreshes it transparently when the access token expires.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.server, "server", envOr("TRAVELAGENT_URL", "http://localhost:5000"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&flags.tokenFile, "token-file", defaultTokenFile(), "where the token pair is stored")
	rootCmd.PersistentFlags().BoolVar(&flags.dedup, "dedup-refresh", false, "collapse concurrent refreshes into one call")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log refresh activity to stderr")

	rootCmd.AddCommand(
		registerCmd(flags),
		loginCmd(flags),
		logoutCmd(flags),
		whoamiCmd(flags),
		getCmd(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newClient(flags *globalFlags) (*client.SessionClient, error) {
	opts := []client.SessionOption{}
	if flags.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithLogger(logger))
	}
	if flags.dedup {
		opts = append(opts, client.WithRefreshDedup())
	}
	return client.NewSessionClient(flags.server, client.NewFileTokenStore(flags.tokenFile), opts...), nil
}

func registerCmd(flags *globalFlags) *cobra.Command {
	var req model.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(flags)
			if err != nil {
				return err
			}
			req.Password = passwordFrom(req.Password)
			resp, err := c.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s (id %d)\n", resp.Message, resp.User.Email, resp.User.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (or TRAVELCTL_PASSWORD)")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func loginCmd(flags *globalFlags) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(flags)
			if err != nil {
				return err
			}
			resp, err := c.Login(cmd.Context(), email, passwordFrom(password))
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", resp.Message, resp.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (or TRAVELCTL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(flags)
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(flags)
			if err != nil {
				return err
			}
			user, err := c.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(user)
		},
	}
}

func getCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>",
		Short: "GET an API path with automatic token refresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(flags)
			if err != nil {
				return err
			}
			return fetch(cmd.Context(), c, args[0])
		},
	}
}

func fetch(ctx context.Context, c *client.SessionClient, path string) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if json.Indent(&pretty, body, "", "  ") == nil {
		body = pretty.Bytes()
	}
	fmt.Println(string(body))
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func passwordFrom(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("TRAVELCTL_PASSWORD")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".travelctl-tokens.json"
	}
	return filepath.Join(dir, "travelagent", "tokens.json")
}
