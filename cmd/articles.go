package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/articles/internal/api"
	"github.com/matheuskafuri/articles/internal/app"
	"github.com/matheuskafuri/articles/internal/articles"
)

var (
	flagTitle string
	flagText  string
	flagTopic string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your articles",
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		if err := a.Articles.List(ctx); err != nil {
			return err
		}
		printArticles(cmd.OutOrStdout(), a.Articles.Articles())
		return nil
	}),
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an article",
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		in, err := checkInput(api.ArticleInput{Title: flagTitle, Text: flagText, Topic: flagTopic})
		if err != nil {
			return err
		}
		return a.Articles.Create(ctx, in)
	}),
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit an article; fields left out keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		// The server wants the whole article, so start from its copy
		if err := a.Articles.List(ctx); err != nil {
			return err
		}
		items := a.Articles.Articles()
		i := slices.IndexFunc(items, func(it api.Article) bool { return it.ID == id })
		if i < 0 {
			return fmt.Errorf("article %d not found", id)
		}

		in := items[i].Input()
		if cmd.Flags().Changed("title") {
			in.Title = flagTitle
		}
		if cmd.Flags().Changed("text") {
			in.Text = flagText
		}
		if cmd.Flags().Changed("topic") {
			in.Topic = flagTopic
		}
		if in, err = checkInput(in); err != nil {
			return err
		}
		return a.Articles.Update(ctx, id, in)
	}),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an article",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return a.Articles.Delete(ctx, id)
	}),
}

func init() {
	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVar(&flagTitle, "title", "", "article title")
		c.Flags().StringVar(&flagText, "text", "", "article text")
		c.Flags().StringVar(&flagTopic, "topic", "", "one of JavaScript, React, Node")
	}

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
}

type sessionRunE func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error

// withSession opens the client, runs fn under the request timeout and prints
// the resulting session message whatever the outcome.
func withSession(fn sessionRunE) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, closeApp, err := openApp()
		if err != nil {
			return err
		}
		defer closeApp()

		if !a.Session.RequireSession() {
			return fmt.Errorf("not logged in, run `articles login` first")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.RequestTimeout())
		defer cancel()

		err = fn(ctx, cmd, a, args)
		printMessage(cmd.OutOrStdout(), a.Session)
		return err
	}
}

// checkInput applies the article form's submit gate.
func checkInput(in api.ArticleInput) (api.ArticleInput, error) {
	in = articles.Normalize(in)
	if err := articles.ValidateInput(in); err != nil {
		return in, fmt.Errorf("invalid article: %w", err)
	}
	return in, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid article id %q", s)
	}
	return id, nil
}

func printArticles(w io.Writer, items []api.Article) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No articles yet")
		return
	}
	for _, a := range items {
		fmt.Fprintf(w, "#%d  %s  [%s]\n    %s\n", a.ID, a.Title, a.Topic, a.Text)
	}
}
