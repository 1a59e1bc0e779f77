package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// errNoQuotes is the CLI form of the empty-collection signal.
var errNoQuotes = errors.New("no quotes available")

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func printQuote(w io.Writer, q domain.Quote) error {
	_, err := fmt.Fprintf(w, "%q (%s)\n", q.Text, q.Category)
	return err
}

// withSession runs fn against a bootstrapped session and closes it.
// Logs go to stderr so stdout only carries results.
func withSession(cmd *cobra.Command, opts *options, fn func(*session) error) error {
	s, err := bootstrap(cmd.Context(), opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(s)
}

func newAddCommand(opts *options) *cobra.Command {
	var text, category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a quote to the collection",
		Long: `Add a quote and persist the collection. Unless --offline is set the quote
is also published to the remote service; a failed publish is logged and
does not undo the add.`,
		Example: `  quotekeeper add --text "Stay hungry, stay foolish." --category Inspiration`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(s *session) error {
				q, err := s.store.Add(cmd.Context(), strings.TrimSpace(text), strings.TrimSpace(category))
				if err != nil {
					return err
				}

				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), q)
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %q to %s (%d quotes)\n", q.Text, q.Category, s.store.Len())

				return err
			})
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "quote text")
	cmd.Flags().StringVarP(&category, "category", "c", "", "quote category")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newRandomCommand(opts *options) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Print a random quote",
		Long: `Print one quote chosen uniformly at random from the selected category.
Without --category the remembered category is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(s *session) error {
				selected := category
				if selected == "" {
					selected = s.store.SelectedCategory(cmd.Context())
				}

				q, ok := s.store.PickRandomIn(selected)
				if !ok {
					return errNoQuotes
				}

				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), q)
				}

				return printQuote(cmd.OutOrStdout(), q)
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category to pick from (\"all\" for every quote)")

	return cmd
}

func newListCommand(opts *options) *cobra.Command {
	var (
		category string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes, optionally filtered by category",
		Long: `List the quotes of one category in collection order. Without --category
the remembered category is used. --remember stores --category as the new
default filter.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(s *session) error {
				ctx := cmd.Context()

				selected := category
				if selected == "" {
					selected = s.store.SelectedCategory(ctx)
				} else if remember {
					if err := s.store.SelectCategory(ctx, selected); err != nil {
						return err
					}
				}

				quotes := s.store.Filter(selected)

				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), quotes)
				}

				for _, q := range quotes {
					if err := printQuote(cmd.OutOrStdout(), q); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category to list (\"all\" for every quote)")
	cmd.Flags().BoolVar(&remember, "remember", false, "remember --category as the default filter")

	return cmd
}

func newCategoriesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the distinct categories",
		Long:  `List each category once, in order of first appearance. The remembered filter is marked with *.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, opts, func(s *session) error {
				categories := append([]string{domain.AllCategories}, s.store.Categories()...)
				selected := s.store.SelectedCategory(cmd.Context())

				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), map[string]any{
						"categories": categories,
						"selected":   selected,
					})
				}

				for _, c := range categories {
					mark := " "
					if c == selected {
						mark = "*"
					}

					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, c); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}
}
