package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/articles/internal/api"
	"github.com/matheuskafuri/articles/internal/config"
	"github.com/matheuskafuri/articles/internal/session"
	"github.com/matheuskafuri/articles/internal/storage"
)

var (
	flagUsername string
	flagPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the token in the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.RequestTimeout())
		defer cancel()

		err = a.Session.Login(ctx, api.Credentials{Username: flagUsername, Password: flagPassword})
		printMessage(cmd.OutOrStdout(), a.Session)
		return err
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		a.Session.Logout()
		printMessage(cmd.OutOrStdout(), a.Session)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the local store and session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		storePath := flagStore
		if storePath == "" {
			storePath = config.StorePath()
		}
		store, err := storage.Open(storePath)
		if err != nil {
			return fmt.Errorf("opening local store: %w", err)
		}
		defer store.Close()

		_, hasToken, err := store.Get(storage.TokenKey)
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		keys, size, err := store.Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Store: %s\n", storePath)
		fmt.Fprintf(out, "Keys: %d\n", keys)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		if hasToken {
			fmt.Fprintln(out, "Session: logged in")
		} else {
			fmt.Fprintln(out, "Session: logged out")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "username (at least 3 characters)")
	loginCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "password (at least 8 characters)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}

func printMessage(w io.Writer, sess *session.Controller) {
	if msg := sess.Snapshot().Message; msg != "" {
		fmt.Fprintln(w, msg)
	}
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
