package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/articles/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig  string
	flagStore   string
	flagLogFile string

	flagCheck       bool
	flagReleasesURL string
)

var rootCmd = &cobra.Command{
	Use:           "articles",
	Short:         "Terminal client for the Articles API",
	Long:          "articles logs in to the Articles API and lets you list, create, edit and delete your articles from the terminal.",
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "path to the local store (default $XDG_DATA_HOME/articles/local.db)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "path to the log file (default $XDG_STATE_HOME/articles/articles.log)")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "look up the latest release")
	versionCmd.Flags().StringVar(&flagReleasesURL, "releases-url", update.ReleasesURL, "latest-release endpoint")
	_ = versionCmd.Flags().MarkHidden("releases-url")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "articles %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		res, err := update.Check(ctx, nil, flagReleasesURL, version)
		if err != nil {
			return err
		}
		if res.Newer() {
			fmt.Fprintf(out, "A newer release is available: %s\n", res.Latest)
		} else {
			fmt.Fprintln(out, "You are on the latest release.")
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
